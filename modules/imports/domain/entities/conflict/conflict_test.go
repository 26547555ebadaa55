package conflict_test

import (
	"testing"

	"github.com/go-faster/errors"
	"github.com/google/uuid"

	"github.com/Ameerovich/TRRCMS-Backend-sub000/modules/imports/domain/entities/conflict"
	"github.com/Ameerovich/TRRCMS-Backend-sub000/modules/imports/domain/entities/staging"
)

func TestCanonicalizeIsOrientationFree(t *testing.T) {
	staged := conflict.Ref{Source: conflict.SourceStaged, Key: "p-042", Label: "Ahmad Halabi"}
	production := conflict.Ref{Source: conflict.SourceProduction, Key: "7b0d5c1e-9a70-4fd1-9a53-1f2ce2a3b901", Label: "Ahmad Halabi"}

	l1, r1 := conflict.Canonicalize(staged, production)
	l2, r2 := conflict.Canonicalize(production, staged)

	if !l1.Equal(l2) || !r1.Equal(r2) {
		t.Fatalf("canonical order depends on input order: (%v,%v) vs (%v,%v)", l1, r1, l2, r2)
	}
	// "production:<uuid>" sorts before "staged:p-042".
	if l1.Source != conflict.SourceProduction {
		t.Errorf("left side = %v, want the production ref", l1)
	}
}

func TestNewCanonicalizesPair(t *testing.T) {
	pkgID := uuid.New()
	a := conflict.Ref{Source: conflict.SourceStaged, Key: "p-9"}
	b := conflict.Ref{Source: conflict.SourceProduction, Key: "0f0e..."}

	c1 := conflict.New(pkgID, staging.EntityPerson, a, b, 100, conflict.ConfidenceExact, nil)
	c2 := conflict.New(pkgID, staging.EntityPerson, b, a, 100, conflict.ConfidenceExact, nil)

	if !c1.Left().Equal(c2.Left()) || !c1.Right().Equal(c2.Right()) {
		t.Error("conflicts built from either orientation must store the same pair")
	}
	if c1.Status() != conflict.StatusUnresolved || c1.Resolution() != conflict.ResolutionNone {
		t.Errorf("new conflict = (%v, %v), want (unresolved, none)", c1.Status(), c1.Resolution())
	}
	if !c1.AutoDetected() {
		t.Error("detection conflicts default to auto detected")
	}
}

func TestResolveExactlyOnce(t *testing.T) {
	c := conflict.New(
		uuid.New(),
		staging.EntityPerson,
		conflict.Ref{Source: conflict.SourceStaged, Key: "p-1"},
		conflict.Ref{Source: conflict.SourceStaged, Key: "p-2"},
		92,
		conflict.ConfidenceHigh,
		conflict.MatchCriteria{"full_name": 45, "father_name": 20, "family_name": 20},
	)
	actor := uuid.New()

	if err := c.Resolve(conflict.ResolutionKeptDistinct, nil, actor); err != nil {
		t.Fatalf("first resolution: %v", err)
	}
	if c.Status() != conflict.StatusResolved {
		t.Fatalf("status = %v, want resolved", c.Status())
	}
	if c.ResolvedBy() == nil || *c.ResolvedBy() != actor {
		t.Error("resolver not recorded")
	}
	if c.ResolvedAt() == nil {
		t.Error("resolution time not recorded")
	}

	err := c.Resolve(conflict.ResolutionMerged, nil, uuid.New())
	if !errors.Is(err, conflict.ErrAlreadyResolved) {
		t.Fatalf("second resolution: err = %v, want ErrAlreadyResolved", err)
	}
	if c.Resolution() != conflict.ResolutionKeptDistinct {
		t.Error("failed resolution must leave the row unchanged")
	}
	if *c.ResolvedBy() != actor {
		t.Error("failed resolution must not change the resolver")
	}
}

func TestResolveRejectsNonTerminalResolution(t *testing.T) {
	c := conflict.New(
		uuid.New(),
		staging.EntityUnit,
		conflict.Ref{Source: conflict.SourceStaged, Key: "u-1"},
		conflict.Ref{Source: conflict.SourceStaged, Key: "u-2"},
		100,
		conflict.ConfidenceExact,
		nil,
	)
	if err := c.Resolve(conflict.ResolutionNone, nil, uuid.New()); err == nil {
		t.Fatal("resolving to none must fail")
	}
	if c.Status() != conflict.StatusUnresolved {
		t.Error("failed resolution must leave the conflict open")
	}
}

func TestOtherSide(t *testing.T) {
	left := conflict.Ref{Source: conflict.SourceProduction, Key: "1111"}
	right := conflict.Ref{Source: conflict.SourceStaged, Key: "p-3"}
	c := conflict.New(uuid.New(), staging.EntityPerson, left, right, 88, conflict.ConfidenceHigh, nil)

	other, ok := c.Other(conflict.Ref{Source: conflict.SourceStaged, Key: "p-3"})
	if !ok {
		t.Fatal("staged side not found")
	}
	if other.Source != conflict.SourceProduction {
		t.Errorf("other side = %v, want the production ref", other)
	}

	if _, ok := c.Other(conflict.Ref{Source: conflict.SourceStaged, Key: "p-999"}); ok {
		t.Error("unknown ref must not match")
	}
}
