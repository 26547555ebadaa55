package services_test

import (
	"io"
	"strings"
	"testing"

	registry "github.com/Ameerovich/TRRCMS-Backend-sub000/modules/registry"
	"github.com/Ameerovich/TRRCMS-Backend-sub000/modules/registry/domain/aggregates/building"
	"github.com/Ameerovich/TRRCMS-Backend-sub000/modules/registry/domain/aggregates/evidence"
	"github.com/Ameerovich/TRRCMS-Backend-sub000/modules/registry/domain/aggregates/person"
	"github.com/Ameerovich/TRRCMS-Backend-sub000/modules/registry/domain/aggregates/relation"
	"github.com/Ameerovich/TRRCMS-Backend-sub000/modules/registry/domain/aggregates/unit"
	"github.com/Ameerovich/TRRCMS-Backend-sub000/modules/registry/infrastructure/persistence"
	"github.com/Ameerovich/TRRCMS-Backend-sub000/modules/registry/infrastructure/storage"
	"github.com/Ameerovich/TRRCMS-Backend-sub000/modules/registry/services"
	"github.com/Ameerovich/TRRCMS-Backend-sub000/pkg/itf"
)

func TestAttachmentService(t *testing.T) {
	f := itf.NewTestContext().
		WithModules(registry.NewModule()).
		Build(t)

	svc := services.NewAttachmentService(
		persistence.NewAttachmentRepository(),
		persistence.NewEvidenceRepository(),
		storage.NewFSStorage(t.TempDir()),
	)

	first, err := svc.Create(f.Ctx, "deed.pdf", strings.NewReader("scanned deed bytes"))
	if err != nil {
		t.Fatal(err)
	}
	if len(first.Hash()) != 64 {
		t.Errorf("expected sha256 hex hash, got %q", first.Hash())
	}
	if first.Size() != int64(len("scanned deed bytes")) {
		t.Errorf("size = %d, want %d", first.Size(), len("scanned deed bytes"))
	}

	t.Run("DedupByContentHash", func(t *testing.T) {
		again, err := svc.Create(f.Ctx, "copy-of-deed.pdf", strings.NewReader("scanned deed bytes"))
		if err != nil {
			t.Fatal(err)
		}
		if again.ID() != first.ID() {
			t.Errorf("same content produced a second attachment: %s vs %s", again.ID(), first.ID())
		}
		// The first upload's name wins.
		if again.Name() != "deed.pdf" {
			t.Errorf("unexpected name %q", again.Name())
		}
	})

	t.Run("OpenRoundtrip", func(t *testing.T) {
		rc, err := svc.Open(f.Ctx, first.ID())
		if err != nil {
			t.Fatal(err)
		}
		defer rc.Close()
		payload, err := io.ReadAll(rc)
		if err != nil {
			t.Fatal(err)
		}
		if string(payload) != "scanned deed bytes" {
			t.Errorf("payload round trip lost content: %q", payload)
		}
	})

	t.Run("DeleteSkipsReferenced", func(t *testing.T) {
		b, err := persistence.NewBuildingRepository().Create(f.Ctx, building.New("01-02-003-0077", "Souq lane 4"))
		if err != nil {
			t.Fatal(err)
		}
		u, err := persistence.NewUnitRepository().Create(f.Ctx, unit.New(b.ID(), "G-2"))
		if err != nil {
			t.Fatal(err)
		}
		p, err := persistence.NewPersonRepository().Create(f.Ctx, person.New("Samira", "Qudsi"))
		if err != nil {
			t.Fatal(err)
		}
		rel, err := persistence.NewRelationRepository().Create(f.Ctx, relation.New(p.ID(), u.ID(), relation.TypeOwner))
		if err != nil {
			t.Fatal(err)
		}

		relID := rel.ID()
		attID := first.ID()
		if _, err := persistence.NewEvidenceRepository().Create(f.Ctx, evidence.New("title_deed").
			WithRelationID(&relID).
			WithAttachmentID(&attID)); err != nil {
			t.Fatal(err)
		}

		deleted, err := svc.DeleteIfUnreferenced(f.Ctx, first.ID())
		if err != nil {
			t.Fatal(err)
		}
		if deleted {
			t.Error("referenced attachment must not be deleted")
		}
		if _, err := svc.GetByID(f.Ctx, first.ID()); err != nil {
			t.Errorf("referenced attachment should survive: %v", err)
		}
	})

	t.Run("DeleteRemovesUnreferenced", func(t *testing.T) {
		orphan, err := svc.Create(f.Ctx, "orphan.jpg", strings.NewReader("unreferenced photo"))
		if err != nil {
			t.Fatal(err)
		}

		deleted, err := svc.DeleteIfUnreferenced(f.Ctx, orphan.ID())
		if err != nil {
			t.Fatal(err)
		}
		if !deleted {
			t.Fatal("unreferenced attachment should be deleted")
		}
		if _, err := svc.GetByID(f.Ctx, orphan.ID()); err != persistence.ErrAttachmentNotFound {
			t.Errorf("expected ErrAttachmentNotFound after delete, got %v", err)
		}
	})
}
