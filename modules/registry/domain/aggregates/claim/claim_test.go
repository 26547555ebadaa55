package claim_test

import (
	"testing"

	"github.com/Ameerovich/TRRCMS-Backend-sub000/modules/registry/domain/aggregates/claim"
)

func TestParseStatus(t *testing.T) {
	tests := []struct {
		raw        string
		want       claim.Status
		recognized bool
	}{
		{raw: "draft", want: claim.StatusDraft, recognized: true},
		{raw: "Submitted", want: claim.StatusSubmitted, recognized: true},
		{raw: "under_review", want: claim.StatusUnderReview, recognized: true},
		{raw: "underreview", want: claim.StatusUnderReview, recognized: true},
		{raw: "accepted", want: claim.StatusAccepted, recognized: true},
		{raw: "rejected", want: claim.StatusRejected, recognized: true},
		{raw: "pending", want: claim.StatusDraft, recognized: false},
		{raw: "", want: claim.StatusDraft, recognized: false},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			got, recognized := claim.ParseStatus(tt.raw)
			if got != tt.want || recognized != tt.recognized {
				t.Errorf("ParseStatus(%q) = (%v, %v), want (%v, %v)",
					tt.raw, got, recognized, tt.want, tt.recognized)
			}
		})
	}
}

func TestStatusIsImportable(t *testing.T) {
	importable := []claim.Status{claim.StatusDraft, claim.StatusSubmitted}
	for _, s := range importable {
		if !s.IsImportable() {
			t.Errorf("%v should be importable", s)
		}
	}

	reviewOnly := []claim.Status{claim.StatusUnderReview, claim.StatusAccepted, claim.StatusRejected}
	for _, s := range reviewOnly {
		if s.IsImportable() {
			t.Errorf("%v should not be importable", s)
		}
	}
}
