package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/Ameerovich/TRRCMS-Backend-sub000/modules/imports/domain/entities/staging"
	"github.com/Ameerovich/TRRCMS-Backend-sub000/pkg/composables"
)

type approveOptions struct {
	actorID    uuid.UUID
	entityType staging.EntityType
	recordID   uuid.UUID
	revoke     bool
}

type approvalView struct {
	PackageID  uuid.UUID          `json:"package_id"`
	EntityType staging.EntityType `json:"entity_type"`
	RecordID   uuid.UUID          `json:"record_id"`
	Approved   bool               `json:"approved"`
}

func newApproveCmd() *cobra.Command {
	var opts approveOptions
	var actor, entity, record string

	cmd := &cobra.Command{
		Use:   "approve <package>",
		Short: "Approve one staged record for commit (or revoke with --revoke)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runApprove(cmd.Context(), args[0], opts)
		},
	}

	cmd.Flags().StringVar(&actor, "actor", "", "Acting operator UUID (required)")
	cmd.Flags().StringVar(&entity, "entity", "", "Entity type of the record (required)")
	cmd.Flags().StringVar(&record, "record", "", "Staged record UUID (required)")
	cmd.Flags().BoolVar(&opts.revoke, "revoke", false, "Withdraw the approval instead")
	_ = cmd.MarkFlagRequired("actor")
	_ = cmd.MarkFlagRequired("entity")
	_ = cmd.MarkFlagRequired("record")

	cmd.PreRunE = func(cmd *cobra.Command, args []string) error {
		actorID, err := uuid.Parse(strings.TrimSpace(actor))
		if err != nil {
			return withCode(exitUsage, fmt.Errorf("invalid --actor: %w", err))
		}
		opts.actorID = actorID

		t, err := parseEntityType(entity)
		if err != nil {
			return withCode(exitUsage, err)
		}
		opts.entityType = t

		id, err := uuid.Parse(strings.TrimSpace(record))
		if err != nil {
			return withCode(exitUsage, fmt.Errorf("invalid --record: %w", err))
		}
		opts.recordID = id
		return nil
	}

	return cmd
}

func runApprove(ctx context.Context, arg string, opts approveOptions) error {
	app, ctx, cleanup, err := openApplication(ctx)
	if err != nil {
		return err
	}
	defer cleanup()

	ctx = composables.WithActor(ctx, opts.actorID)
	svc := packageService(app)
	pkg, err := resolvePackage(ctx, svc, arg)
	if err != nil {
		return err
	}

	approved := !opts.revoke
	if err := svc.SetApproval(ctx, pkg.ID(), opts.entityType, opts.recordID, approved); err != nil {
		return classify(err)
	}
	return writeJSONLine(approvalView{
		PackageID:  pkg.ID(),
		EntityType: opts.entityType,
		RecordID:   opts.recordID,
		Approved:   approved,
	})
}
