package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Ameerovich/TRRCMS-Backend-sub000/modules/imports/domain/aggregates/importpackage"
)

type listOptions struct {
	statuses []importpackage.Status
	limit    int
	offset   int
	asc      bool
}

func newListCmd() *cobra.Command {
	var opts listOptions
	var statuses []string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List import packages, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runList(cmd.Context(), opts)
		},
	}

	cmd.Flags().StringSliceVar(&statuses, "status", nil, "Filter by status (repeatable)")
	cmd.Flags().IntVar(&opts.limit, "limit", 50, "Maximum packages to print")
	cmd.Flags().IntVar(&opts.offset, "offset", 0, "Packages to skip")
	cmd.Flags().BoolVar(&opts.asc, "asc", false, "Oldest first")

	cmd.PreRunE = func(cmd *cobra.Command, args []string) error {
		parsed, err := parseStatuses(statuses)
		if err != nil {
			return withCode(exitUsage, err)
		}
		opts.statuses = parsed
		return nil
	}

	return cmd
}

func parseStatuses(vals []string) ([]importpackage.Status, error) {
	known := map[importpackage.Status]struct{}{
		importpackage.StatusPending:            {},
		importpackage.StatusValidating:         {},
		importpackage.StatusStaging:            {},
		importpackage.StatusReviewingConflicts: {},
		importpackage.StatusReadyToCommit:      {},
		importpackage.StatusCommitting:         {},
		importpackage.StatusCompleted:          {},
		importpackage.StatusPartiallyCompleted: {},
		importpackage.StatusFailed:             {},
		importpackage.StatusAbandoned:          {},
	}
	out := make([]importpackage.Status, 0, len(vals))
	for _, v := range vals {
		s := importpackage.Status(strings.TrimSpace(v))
		if _, ok := known[s]; !ok {
			return nil, fmt.Errorf("unknown status: %q", v)
		}
		out = append(out, s)
	}
	return out, nil
}

func runList(ctx context.Context, opts listOptions) error {
	app, ctx, cleanup, err := openApplication(ctx)
	if err != nil {
		return err
	}
	defer cleanup()

	pkgs, err := packageService(app).List(ctx, &importpackage.FindParams{
		Statuses: opts.statuses,
		Limit:    opts.limit,
		Offset:   opts.offset,
		SortAsc:  opts.asc,
	})
	if err != nil {
		return classify(err)
	}
	for _, p := range pkgs {
		if err := writeJSONLine(packageLine(p)); err != nil {
			return err
		}
	}
	return nil
}
