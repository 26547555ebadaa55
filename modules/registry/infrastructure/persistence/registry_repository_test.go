package persistence_test

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	registry "github.com/Ameerovich/TRRCMS-Backend-sub000/modules/registry"
	"github.com/Ameerovich/TRRCMS-Backend-sub000/modules/registry/domain/aggregates/building"
	"github.com/Ameerovich/TRRCMS-Backend-sub000/modules/registry/domain/aggregates/claim"
	"github.com/Ameerovich/TRRCMS-Backend-sub000/modules/registry/domain/aggregates/evidence"
	"github.com/Ameerovich/TRRCMS-Backend-sub000/modules/registry/domain/aggregates/household"
	"github.com/Ameerovich/TRRCMS-Backend-sub000/modules/registry/domain/aggregates/person"
	"github.com/Ameerovich/TRRCMS-Backend-sub000/modules/registry/domain/aggregates/relation"
	"github.com/Ameerovich/TRRCMS-Backend-sub000/modules/registry/domain/aggregates/survey"
	"github.com/Ameerovich/TRRCMS-Backend-sub000/modules/registry/domain/aggregates/unit"
	"github.com/Ameerovich/TRRCMS-Backend-sub000/modules/registry/domain/entities/attachment"
	"github.com/Ameerovich/TRRCMS-Backend-sub000/modules/registry/domain/entities/vocabulary"
	"github.com/Ameerovich/TRRCMS-Backend-sub000/modules/registry/infrastructure/persistence"
	"github.com/Ameerovich/TRRCMS-Backend-sub000/pkg/itf"
)

func setupTest(t *testing.T) *itf.TestEnvironment {
	t.Helper()
	return itf.NewTestContext().
		WithModules(registry.NewModule()).
		Build(t)
}

func TestRegistryRepositories_CommitChain(t *testing.T) {
	f := setupTest(t)

	buildingRepo := persistence.NewBuildingRepository()
	unitRepo := persistence.NewUnitRepository()
	personRepo := persistence.NewPersonRepository()
	householdRepo := persistence.NewHouseholdRepository()
	relationRepo := persistence.NewRelationRepository()
	evidenceRepo := persistence.NewEvidenceRepository()
	claimRepo := persistence.NewClaimRepository()
	surveyRepo := persistence.NewSurveyRepository()
	attachmentRepo := persistence.NewAttachmentRepository()

	b, err := buildingRepo.Create(f.Ctx, building.New("01-02-003-0045", "Old Quarter 12").
		WithBuildingType("residential").
		WithFloorsCount(3))
	if err != nil {
		t.Fatal(err)
	}
	if b.ID() == uuid.Nil {
		t.Fatal("expected generated building id")
	}

	t.Run("BuildingLookups", func(t *testing.T) {
		byCode, err := buildingRepo.GetByCode(f.Ctx, "01-02-003-0045")
		if err != nil {
			t.Fatal(err)
		}
		if byCode.ID() != b.ID() {
			t.Errorf("GetByCode returned %s, want %s", byCode.ID(), b.ID())
		}

		exists, err := buildingRepo.ExistsByCode(f.Ctx, "01-02-003-0045")
		if err != nil {
			t.Fatal(err)
		}
		if !exists {
			t.Error("expected building code to exist")
		}

		if _, err := buildingRepo.GetByCode(f.Ctx, "99-99-999-9999"); err != persistence.ErrBuildingNotFound {
			t.Errorf("expected ErrBuildingNotFound, got %v", err)
		}
	})

	u, err := unitRepo.Create(f.Ctx, unit.New(b.ID(), "A-1").WithUnitType("apartment"))
	if err != nil {
		t.Fatal(err)
	}

	t.Run("UnitKeys", func(t *testing.T) {
		keys, err := unitRepo.GetKeys(f.Ctx)
		if err != nil {
			t.Fatal(err)
		}
		if len(keys) != 1 {
			t.Fatalf("expected 1 unit key, got %d", len(keys))
		}
		if keys[0].BuildingCode != "01-02-003-0045" || keys[0].UnitNumber != "A-1" {
			t.Errorf("unexpected key %+v", keys[0])
		}
	})

	head, err := personRepo.Create(f.Ctx, person.New("Ahmad", "Halabi").
		WithNationalID("10203040506").
		WithGender(person.GenderMale).
		WithBirthYear(1969))
	if err != nil {
		t.Fatal(err)
	}

	t.Run("PersonUpdateAndDeactivate", func(t *testing.T) {
		updated, err := personRepo.Update(f.Ctx, head.WithPhone("+963-11-555"))
		if err != nil {
			t.Fatal(err)
		}
		if updated.Phone() != "+963-11-555" {
			t.Errorf("expected updated phone, got %q", updated.Phone())
		}

		spare, err := personRepo.Create(f.Ctx, person.New("Ghost", "Entry"))
		if err != nil {
			t.Fatal(err)
		}
		if err := personRepo.Deactivate(f.Ctx, spare.ID()); err != nil {
			t.Fatal(err)
		}
		active, err := personRepo.GetActive(f.Ctx)
		if err != nil {
			t.Fatal(err)
		}
		for _, p := range active {
			if p.ID() == spare.ID() {
				t.Error("deactivated person still listed as active")
			}
		}
	})

	h, err := householdRepo.Create(f.Ctx, household.New(u.ID(), head.ID(), 5).
		WithDemographics(1, 1, 2, 1, 0, 0).
		WithDisplacementStatus("returnee"))
	if err != nil {
		t.Fatal(err)
	}
	if h.Size() != 5 || h.MaleChildCount() != 2 {
		t.Errorf("household round trip lost counters: %+v", h)
	}

	rel, err := relationRepo.Create(f.Ctx, relation.New(head.ID(), u.ID(), relation.TypeOwner).
		WithOwnershipShare(decimal.RequireFromString("0.5")))
	if err != nil {
		t.Fatal(err)
	}
	if !rel.OwnershipShare().Equal(decimal.RequireFromString("0.5")) {
		t.Errorf("ownership share round trip: got %s", rel.OwnershipShare())
	}

	att, err := attachmentRepo.Create(f.Ctx, attachment.New(
		"2c26b46b68ffc68ff99b453c1d30413413422d706483bfa0f98a5e886266e7ae",
		"2c/26/2c26b46b68ffc68ff99b453c1d30413413422d706483bfa0f98a5e886266e7ae",
		3,
		attachment.WithName("deed.pdf"),
		attachment.WithMimeType("application/pdf"),
	))
	if err != nil {
		t.Fatal(err)
	}

	relID := rel.ID()
	attID := att.ID()
	ev, err := evidenceRepo.Create(f.Ctx, evidence.New("title_deed").
		WithRelationID(&relID).
		WithAttachmentID(&attID).
		WithDocument("TD-1881", "Land Registry Directorate", nil))
	if err != nil {
		t.Fatal(err)
	}
	if ev.RelationID() == nil || *ev.RelationID() != relID {
		t.Error("evidence lost its relation link")
	}

	t.Run("EvidenceCountByAttachment", func(t *testing.T) {
		n, err := evidenceRepo.CountByAttachment(f.Ctx, attID)
		if err != nil {
			t.Fatal(err)
		}
		if n != 1 {
			t.Errorf("expected 1 evidence referencing attachment, got %d", n)
		}
	})

	filed := time.Date(2025, 3, 14, 0, 0, 0, 0, time.UTC)
	cl, err := claimRepo.Create(f.Ctx, claim.New(head.ID(), u.ID(), "restitution").
		WithStatus(claim.StatusSubmitted).
		WithFiledDate(&filed))
	if err != nil {
		t.Fatal(err)
	}
	if cl.Status() != claim.StatusSubmitted {
		t.Errorf("claim status round trip: got %v", cl.Status())
	}

	pkgID := uuid.New()
	if _, err := surveyRepo.Create(f.Ctx, survey.New(b.ID(), "Field Team 3", "damage_assessment").
		WithPackageID(&pkgID)); err != nil {
		t.Fatal(err)
	}

	t.Run("SurveyByPackage", func(t *testing.T) {
		surveys, err := surveyRepo.GetByPackageID(f.Ctx, pkgID)
		if err != nil {
			t.Fatal(err)
		}
		if len(surveys) != 1 {
			t.Fatalf("expected 1 survey for package, got %d", len(surveys))
		}
		if surveys[0].SurveyorName() != "Field Team 3" {
			t.Errorf("unexpected surveyor %q", surveys[0].SurveyorName())
		}
	})

	t.Run("RepointAfterMerge", func(t *testing.T) {
		survivor, err := personRepo.Create(f.Ctx, person.New("Ahmad", "Al-Halabi").
			WithNationalID("10203040506-dup"))
		if err != nil {
			t.Fatal(err)
		}

		moved, err := relationRepo.RepointPerson(f.Ctx, head.ID(), survivor.ID())
		if err != nil {
			t.Fatal(err)
		}
		if moved != 1 {
			t.Errorf("expected 1 relation repointed, got %d", moved)
		}

		movedHeads, err := householdRepo.RepointHead(f.Ctx, head.ID(), survivor.ID())
		if err != nil {
			t.Fatal(err)
		}
		if movedHeads != 1 {
			t.Errorf("expected 1 household head repointed, got %d", movedHeads)
		}

		movedClaims, err := claimRepo.RepointClaimant(f.Ctx, head.ID(), survivor.ID())
		if err != nil {
			t.Fatal(err)
		}
		if movedClaims != 1 {
			t.Errorf("expected 1 claim repointed, got %d", movedClaims)
		}
	})
}

func TestAttachmentRepository_HashUnique(t *testing.T) {
	f := setupTest(t)

	repo := persistence.NewAttachmentRepository()

	first, err := repo.Create(f.Ctx, attachment.New(
		"9f86d081884c7d659a2feaa0c55ad015a3bf4f1b2b0b822cd15d6c15b0f00a08",
		"9f/86/9f86d081884c7d659a2feaa0c55ad015a3bf4f1b2b0b822cd15d6c15b0f00a08",
		4,
	))
	if err != nil {
		t.Fatal(err)
	}

	// Same hash again must surface the unique violation as the sentinel.
	// This poisons the test transaction, so it is the last statement here.
	_, err = repo.Create(f.Ctx, attachment.New(first.Hash(), "elsewhere", 4))
	if err != persistence.ErrAttachmentHashTaken {
		t.Errorf("expected ErrAttachmentHashTaken, got %v", err)
	}
}

func TestVocabularyRepository(t *testing.T) {
	f := setupTest(t)

	repo := persistence.NewVocabularyRepository()

	codes := []*vocabulary.Code{
		vocabulary.New(vocabulary.BuildingType, "residential", vocabulary.WithLabel("Residential"), vocabulary.WithPosition(1)),
		vocabulary.New(vocabulary.BuildingType, "commercial", vocabulary.WithLabel("Commercial"), vocabulary.WithPosition(2)),
		vocabulary.New(vocabulary.ClaimType, "restitution", vocabulary.WithLabel("Restitution")),
	}
	if err := repo.Upsert(f.Ctx, codes...); err != nil {
		t.Fatal(err)
	}

	t.Run("SetsIncludeInactive", func(t *testing.T) {
		if err := repo.Deactivate(f.Ctx, vocabulary.BuildingType, "commercial"); err != nil {
			t.Fatal(err)
		}

		sets, err := repo.Sets(f.Ctx)
		if err != nil {
			t.Fatal(err)
		}
		set := sets[vocabulary.BuildingType]
		if !set.Contains("commercial") {
			t.Error("deactivated code should still be known")
		}
		if set.IsActive("commercial") {
			t.Error("deactivated code should not be active")
		}
		if !set.IsActive("residential") {
			t.Error("residential should stay active")
		}
	})

	t.Run("UpsertOverwrites", func(t *testing.T) {
		if err := repo.Upsert(f.Ctx, vocabulary.New(vocabulary.ClaimType, "restitution",
			vocabulary.WithLabel("Property Restitution"), vocabulary.WithPosition(4))); err != nil {
			t.Fatal(err)
		}
		listed, err := repo.GetByVocabulary(f.Ctx, vocabulary.ClaimType)
		if err != nil {
			t.Fatal(err)
		}
		if len(listed) != 1 || listed[0].Label() != "Property Restitution" {
			t.Errorf("upsert did not overwrite label: %+v", listed)
		}
	})
}
