package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Ameerovich/TRRCMS-Backend-sub000/modules/imports/domain/entities/conflict"
	"github.com/Ameerovich/TRRCMS-Backend-sub000/modules/imports/domain/entities/staging"
)

type conflictsOptions struct {
	statuses    []conflict.Status
	entityTypes []staging.EntityType
	limit       int
	offset      int
}

func newConflictsCmd() *cobra.Command {
	var opts conflictsOptions
	var status string
	var entities []string

	cmd := &cobra.Command{
		Use:   "conflicts <package>",
		Short: "List a package's duplicate conflicts, highest score first",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConflicts(cmd.Context(), args[0], opts)
		},
	}

	cmd.Flags().StringVar(&status, "state", "open", "Filter: open, resolved or all")
	cmd.Flags().StringSliceVar(&entities, "entity", nil, "Filter by entity type (repeatable)")
	cmd.Flags().IntVar(&opts.limit, "limit", 0, "Maximum conflicts to print (0: all)")
	cmd.Flags().IntVar(&opts.offset, "offset", 0, "Conflicts to skip")

	cmd.PreRunE = func(cmd *cobra.Command, args []string) error {
		switch strings.TrimSpace(status) {
		case "open":
			opts.statuses = []conflict.Status{conflict.StatusUnresolved}
		case "resolved":
			opts.statuses = []conflict.Status{conflict.StatusResolved}
		case "all":
			opts.statuses = nil
		default:
			return withCode(exitUsage, fmt.Errorf("unknown --state: %q", status))
		}
		for _, e := range entities {
			t, err := parseEntityType(e)
			if err != nil {
				return withCode(exitUsage, err)
			}
			opts.entityTypes = append(opts.entityTypes, t)
		}
		return nil
	}

	return cmd
}

func runConflicts(ctx context.Context, arg string, opts conflictsOptions) error {
	app, ctx, cleanup, err := openApplication(ctx)
	if err != nil {
		return err
	}
	defer cleanup()

	pkg, err := resolvePackage(ctx, packageService(app), arg)
	if err != nil {
		return err
	}

	conflicts, err := mergeService(app).ListByPackage(ctx, pkg.ID(), &conflict.FindParams{
		Statuses:    opts.statuses,
		EntityTypes: opts.entityTypes,
		Limit:       opts.limit,
		Offset:      opts.offset,
	})
	if err != nil {
		return classify(err)
	}
	for _, c := range conflicts {
		if err := writeJSONLine(conflictLine(c)); err != nil {
			return err
		}
	}
	return nil
}
