package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Ameerovich/TRRCMS-Backend-sub000/modules/registry/domain/entities/attachment"
)

func newExportReportCmd() *cobra.Command {
	var kind string

	cmd := &cobra.Command{
		Use:   "export-report <package>",
		Short: "Export a package report as XLSX into attachment storage",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExportReport(cmd.Context(), args[0], kind)
		},
	}

	cmd.Flags().StringVar(&kind, "kind", "commit", "Report kind: commit or findings")

	cmd.PreRunE = func(cmd *cobra.Command, args []string) error {
		kind = strings.TrimSpace(kind)
		switch kind {
		case "commit", "findings":
			return nil
		default:
			return withCode(exitUsage, fmt.Errorf("unknown --kind: %q", kind))
		}
	}

	return cmd
}

func runExportReport(ctx context.Context, arg, kind string) error {
	app, ctx, cleanup, err := openApplication(ctx)
	if err != nil {
		return err
	}
	defer cleanup()

	pkg, err := resolvePackage(ctx, packageService(app), arg)
	if err != nil {
		return err
	}

	svc := exportService(app)
	var att *attachment.Attachment
	if kind == "findings" {
		att, err = svc.ExportFindings(ctx, pkg.ID())
	} else {
		att, err = svc.ExportCommitReport(ctx, pkg.ID())
	}
	if err != nil {
		return classify(err)
	}
	return writeJSONLine(attachmentLine(att))
}
