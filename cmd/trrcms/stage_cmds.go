package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/Ameerovich/TRRCMS-Backend-sub000/modules/imports/domain/aggregates/importpackage"
	"github.com/Ameerovich/TRRCMS-Backend-sub000/modules/imports/services"
	"github.com/Ameerovich/TRRCMS-Backend-sub000/pkg/composables"
)

type stageAction func(ctx context.Context, svc *services.PackageService, id uuid.UUID) (importpackage.ImportPackage, error)

// newStageCmd covers the pipeline commands that act on one package and
// print the updated package: a positional package id or code plus --actor.
func newStageCmd(use, short string, action stageAction) *cobra.Command {
	var actorID uuid.UUID

	cmd := &cobra.Command{
		Use:   use + " <package>",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStage(cmd.Context(), actorID, args[0], action)
		},
	}

	var actor string
	cmd.Flags().StringVar(&actor, "actor", "", "Acting operator UUID (required)")
	_ = cmd.MarkFlagRequired("actor")

	cmd.PreRunE = func(cmd *cobra.Command, args []string) error {
		id, err := uuid.Parse(strings.TrimSpace(actor))
		if err != nil {
			return withCode(exitUsage, fmt.Errorf("invalid --actor: %w", err))
		}
		actorID = id
		return nil
	}

	return cmd
}

func runStage(ctx context.Context, actorID uuid.UUID, arg string, action stageAction) error {
	app, ctx, cleanup, err := openApplication(ctx)
	if err != nil {
		return err
	}
	defer cleanup()

	ctx = composables.WithActor(ctx, actorID)
	svc := packageService(app)

	pkg, err := resolvePackage(ctx, svc, arg)
	if err != nil {
		return err
	}
	out, err := action(ctx, svc, pkg.ID())
	if err != nil {
		return classify(err)
	}
	return writeJSONLine(packageLine(out))
}

func newValidateCmd() *cobra.Command {
	return newStageCmd("validate", "Run the validation pipeline over a package",
		func(ctx context.Context, svc *services.PackageService, id uuid.UUID) (importpackage.ImportPackage, error) {
			return svc.RunValidation(ctx, id)
		})
}

func newDetectCmd() *cobra.Command {
	return newStageCmd("detect", "Run duplicate detection against staged and production records",
		func(ctx context.Context, svc *services.PackageService, id uuid.UUID) (importpackage.ImportPackage, error) {
			return svc.DetectDuplicates(ctx, id)
		})
}

func newReviewCompleteCmd() *cobra.Command {
	return newStageCmd("review-complete", "Close conflict review and mark the package ready to commit",
		func(ctx context.Context, svc *services.PackageService, id uuid.UUID) (importpackage.ImportPackage, error) {
			return svc.CompleteReview(ctx, id)
		})
}

func newCommitCmd() *cobra.Command {
	return newStageCmd("commit", "Commit approved records into the production registry",
		func(ctx context.Context, svc *services.PackageService, id uuid.UUID) (importpackage.ImportPackage, error) {
			return svc.Commit(ctx, id)
		})
}

func newResetCmd() *cobra.Command {
	return newStageCmd("reset", "Return a failed or partial commit to ready_to_commit for retry",
		func(ctx context.Context, svc *services.PackageService, id uuid.UUID) (importpackage.ImportPackage, error) {
			return svc.Reset(ctx, id)
		})
}

func newAbandonCmd() *cobra.Command {
	return newStageCmd("abandon", "Close a package that will never be committed",
		func(ctx context.Context, svc *services.PackageService, id uuid.UUID) (importpackage.ImportPackage, error) {
			return svc.Abandon(ctx, id)
		})
}

func newCleanupCmd() *cobra.Command {
	return newStageCmd("cleanup", "Purge a terminal package's staging rows, conflicts and staged blobs",
		func(ctx context.Context, svc *services.PackageService, id uuid.UUID) (importpackage.ImportPackage, error) {
			return svc.Cleanup(ctx, id)
		})
}
