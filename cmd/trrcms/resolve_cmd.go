package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/Ameerovich/TRRCMS-Backend-sub000/modules/imports/domain/entities/conflict"
	"github.com/Ameerovich/TRRCMS-Backend-sub000/modules/imports/services"
	"github.com/Ameerovich/TRRCMS-Backend-sub000/pkg/composables"
)

type resolveOptions struct {
	actorID    uuid.UUID
	conflictID uuid.UUID
	resolution conflict.Resolution
	masterRef  conflict.Ref
}

func newResolveCmd() *cobra.Command {
	var opts resolveOptions
	var actor, conflictID, resolution, masterSource, masterKey string

	cmd := &cobra.Command{
		Use:   "resolve",
		Short: "Resolve one conflict: merge into a master record or keep both",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runResolve(cmd.Context(), opts)
		},
	}

	cmd.Flags().StringVar(&conflictID, "conflict", "", "Conflict UUID (required)")
	cmd.Flags().StringVar(&resolution, "resolution", "", "merged or kept_distinct (required)")
	cmd.Flags().StringVar(&masterSource, "master-source", "", "Surviving side's source: staged or production")
	cmd.Flags().StringVar(&masterKey, "master-key", "", "Surviving side's key (original id or production UUID)")
	cmd.Flags().StringVar(&actor, "actor", "", "Acting operator UUID (required)")

	_ = cmd.MarkFlagRequired("conflict")
	_ = cmd.MarkFlagRequired("resolution")
	_ = cmd.MarkFlagRequired("actor")

	cmd.PreRunE = func(cmd *cobra.Command, args []string) error {
		id, err := uuid.Parse(strings.TrimSpace(actor))
		if err != nil {
			return withCode(exitUsage, fmt.Errorf("invalid --actor: %w", err))
		}
		opts.actorID = id

		cid, err := uuid.Parse(strings.TrimSpace(conflictID))
		if err != nil {
			return withCode(exitUsage, fmt.Errorf("invalid --conflict: %w", err))
		}
		opts.conflictID = cid

		opts.resolution = conflict.Resolution(strings.TrimSpace(resolution))
		opts.masterRef = conflict.Ref{
			Source: conflict.Source(strings.TrimSpace(masterSource)),
			Key:    strings.TrimSpace(masterKey),
		}
		return nil
	}

	return cmd
}

func runResolve(ctx context.Context, opts resolveOptions) error {
	app, ctx, cleanup, err := openApplication(ctx)
	if err != nil {
		return err
	}
	defer cleanup()

	ctx = composables.WithActor(ctx, opts.actorID)
	resolved, err := mergeService(app).Resolve(ctx, services.ResolveDTO{
		ConflictID: opts.conflictID,
		MasterRef:  opts.masterRef,
		Resolution: opts.resolution,
	})
	if err != nil {
		return classify(err)
	}
	return writeJSONLine(conflictLine(resolved))
}
