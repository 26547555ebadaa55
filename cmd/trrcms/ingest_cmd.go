package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/Ameerovich/TRRCMS-Backend-sub000/modules/imports/domain/aggregates/importpackage"
	"github.com/Ameerovich/TRRCMS-Backend-sub000/pkg/composables"
)

type ingestOptions struct {
	actorID  uuid.UUID
	filePath string
	fileName string
}

func newIngestCmd() *cobra.Command {
	var opts ingestOptions

	cmd := &cobra.Command{
		Use:   "ingest",
		Short: "Register a survey container and copy it into managed storage",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runIngest(cmd.Context(), opts)
		},
	}

	cmd.Flags().StringVar(&opts.filePath, "file", "", "Path to the survey container (required)")
	cmd.Flags().StringVar(&opts.fileName, "name", "", "Original file name (default: base of --file)")

	var actor string
	cmd.Flags().StringVar(&actor, "actor", "", "Acting operator UUID (required)")

	_ = cmd.MarkFlagRequired("file")
	_ = cmd.MarkFlagRequired("actor")

	cmd.PreRunE = func(cmd *cobra.Command, args []string) error {
		id, err := uuid.Parse(strings.TrimSpace(actor))
		if err != nil {
			return withCode(exitUsage, fmt.Errorf("invalid --actor: %w", err))
		}
		opts.actorID = id
		return nil
	}

	return cmd
}

func runIngest(ctx context.Context, opts ingestOptions) error {
	app, ctx, cleanup, err := openApplication(ctx)
	if err != nil {
		return err
	}
	defer cleanup()

	ctx = composables.WithActor(ctx, opts.actorID)
	dto := &importpackage.IngestDTO{
		FilePath:         opts.filePath,
		OriginalFileName: opts.fileName,
	}
	pkg, err := packageService(app).Ingest(ctx, dto)
	if err != nil {
		return classify(err)
	}
	return writeJSONLine(packageLine(pkg))
}
