package main

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/Ameerovich/TRRCMS-Backend-sub000/modules/imports/domain/entities/conflict"
	"github.com/Ameerovich/TRRCMS-Backend-sub000/modules/imports/domain/entities/staging"
)

type statusView struct {
	Package       packageView     `json:"package"`
	Staging       staging.Summary `json:"staging,omitempty"`
	OpenConflicts []conflictView  `json:"open_conflicts,omitempty"`
}

func newStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status <package>",
		Short: "Show a package with its staging summary and open conflicts",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStatus(cmd.Context(), args[0])
		},
	}
}

func runStatus(ctx context.Context, arg string) error {
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

	summary, err := svc.StagingSummary(ctx, pkg.ID())
	if err != nil {
		return classify(err)
	}

	open, err := mergeService(app).ListByPackage(ctx, pkg.ID(), &conflict.FindParams{
		Statuses: []conflict.Status{conflict.StatusUnresolved},
	})
	if err != nil {
		return classify(err)
	}

	view := statusView{
		Package: packageLine(pkg),
		Staging: summary,
	}
	for _, c := range open {
		view.OpenConflicts = append(view.OpenConflicts, conflictLine(c))
	}
	return writeJSONLine(view)
}
