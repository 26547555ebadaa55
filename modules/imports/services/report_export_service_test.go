package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Ameerovich/TRRCMS-Backend-sub000/modules/imports/domain/aggregates/importpackage"
)

func TestExportCommitReportRequiresReport(t *testing.T) {
	packages := &stubPackages{pkg: packageInStatus(importpackage.StatusReadyToCommit)}
	svc := NewReportExportService(packages, nil, nil)

	_, err := svc.ExportCommitReport(context.Background(), packages.pkg.ID())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no commit report")
}

func TestJoinCommitErrors(t *testing.T) {
	assert.Empty(t, joinCommitErrors(nil))

	got := joinCommitErrors([]importpackage.CommitError{
		{OriginalID: "u-3", Message: "unresolvable reference"},
		{Message: "batch rolled back"},
	})
	assert.Equal(t, "u-3: unresolvable reference; batch rolled back", got)
}
