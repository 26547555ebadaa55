package main

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/Ameerovich/TRRCMS-Backend-sub000/modules/imports/domain/entities/staging"
)

type findingView struct {
	EntityType staging.EntityType `json:"entity_type"`
	RecordID   uuid.UUID          `json:"record_id"`
	OriginalID string             `json:"original_id"`
	Status     staging.Status     `json:"status"`
	Errors     []staging.Finding  `json:"errors,omitempty"`
	Warnings   []staging.Finding  `json:"warnings,omitempty"`
	Approved   bool               `json:"approved_for_commit"`
	StagedAt   time.Time          `json:"staged_at"`
}

func newFindingsCmd() *cobra.Command {
	var entity string

	cmd := &cobra.Command{
		Use:   "findings <package>",
		Short: "List staged records carrying validation errors or warnings",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runFindings(cmd.Context(), args[0], entity)
		},
	}

	cmd.Flags().StringVar(&entity, "entity", "", "Narrow to one entity type")
	return cmd
}

func runFindings(ctx context.Context, arg, entity string) error {
	types := staging.CommitOrder()
	if entity != "" {
		t, err := parseEntityType(entity)
		if err != nil {
			return withCode(exitUsage, err)
		}
		types = []staging.EntityType{t}
	}

	app, ctx, cleanup, err := openApplication(ctx)
	if err != nil {
		return err
	}
	defer cleanup()

	svc := packageService(app)
	pkg, err := resolvePackage(ctx, svc, arg)
	if err != nil {
		return err
	}

	for _, t := range types {
		records, err := svc.Findings(ctx, pkg.ID(), t)
		if err != nil {
			return classify(err)
		}
		for _, r := range records {
			line := findingView{
				EntityType: t,
				RecordID:   r.ID,
				OriginalID: r.OriginalID,
				Status:     r.ValidationStatus,
				Errors:     r.ValidationErrors,
				Warnings:   r.ValidationWarnings,
				Approved:   r.ApprovedForCommit,
				StagedAt:   r.StagedAt,
			}
			if err := writeJSONLine(line); err != nil {
				return err
			}
		}
	}
	return nil
}
