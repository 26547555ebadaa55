package imports

import (
	"embed"
	"io/fs"

	"github.com/Ameerovich/TRRCMS-Backend-sub000/modules/imports/handlers"
	"github.com/Ameerovich/TRRCMS-Backend-sub000/modules/imports/infrastructure/archive"
	"github.com/Ameerovich/TRRCMS-Backend-sub000/modules/imports/infrastructure/persistence"
	"github.com/Ameerovich/TRRCMS-Backend-sub000/modules/imports/matching"
	"github.com/Ameerovich/TRRCMS-Backend-sub000/modules/imports/merging"
	"github.com/Ameerovich/TRRCMS-Backend-sub000/modules/imports/services"
	"github.com/Ameerovich/TRRCMS-Backend-sub000/modules/imports/validation"
	registrypersistence "github.com/Ameerovich/TRRCMS-Backend-sub000/modules/registry/infrastructure/persistence"
	"github.com/Ameerovich/TRRCMS-Backend-sub000/modules/registry/infrastructure/storage"
	registryservices "github.com/Ameerovich/TRRCMS-Backend-sub000/modules/registry/services"
	"github.com/Ameerovich/TRRCMS-Backend-sub000/pkg/application"
	"github.com/Ameerovich/TRRCMS-Backend-sub000/pkg/configuration"
)

//go:embed infrastructure/persistence/schema/*.sql
var MigrationFiles embed.FS

func NewModule() application.Module {
	return &Module{}
}

type Module struct{}

// Register wires the import pipeline. The registry module must be registered
// first: the commit engine writes through its repositories and services.
func (m *Module) Register(app application.Application) error {
	conf := configuration.Use()
	log := conf.Logger()

	schemaFS, err := fs.Sub(MigrationFiles, "infrastructure/persistence/schema")
	if err != nil {
		return err
	}
	app.Migrations().RegisterSchema("imports", schemaFS)

	packages := persistence.NewPackageRepository()
	staged := persistence.NewStagingRepository()
	conflicts := persistence.NewConflictRepository()
	auditLog := persistence.NewAuditRepository()

	registryRepos := services.RegistryRepos{
		Buildings:  registrypersistence.NewBuildingRepository(),
		Units:      registrypersistence.NewUnitRepository(),
		Persons:    registrypersistence.NewPersonRepository(),
		Households: registrypersistence.NewHouseholdRepository(),
		Relations:  registrypersistence.NewRelationRepository(),
		Evidences:  registrypersistence.NewEvidenceRepository(),
		Claims:     registrypersistence.NewClaimRepository(),
		Surveys:    registrypersistence.NewSurveyRepository(),
	}

	attachments := app.Service(registryservices.AttachmentService{}).(*registryservices.AttachmentService)
	vocabularies := app.Service(registryservices.VocabularyService{}).(*registryservices.VocabularyService)

	// Blobs extracted from containers wait here until commit promotes them
	// into attachment storage.
	blobs := storage.NewFSStorage(conf.Storage.StagingPath)

	unpacker := services.NewUnpackService(staged, blobs, log)
	validator := services.NewValidationService(
		staged,
		validation.NewPipeline(log, validation.DefaultValidators(conf.Spatial, vocabularies.Cache())...),
	)
	detector := services.NewDetectionService(
		staged,
		conflicts,
		registryRepos.Persons,
		registryRepos.Units,
		matching.NewPersonMatcher(conf.Matching),
	)
	committer := services.NewCommitService(staged, conflicts, registryRepos, attachments, blobs, log)

	mergeRegistry := merging.NewRegistry(
		merging.NewPersonStrategy(staged, registryRepos.Persons, registryRepos.Households, registryRepos.Relations, registryRepos.Claims),
		merging.NewUnitStrategy(staged, registryRepos.Units, registryRepos.Households, registryRepos.Relations, registryRepos.Claims),
	)

	app.RegisterServices(
		services.NewPackageService(services.PackageServiceOptions{
			Packages:      packages,
			Staged:        staged,
			Conflicts:     conflicts,
			Unpacker:      unpacker,
			Validator:     validator,
			Detector:      detector,
			Committer:     committer,
			Archive:       archive.NewStore(conf.Storage.ArchivePath),
			Blobs:         blobs,
			ContainersDir: conf.Storage.ContainersPath,
			Publisher:     app.EventPublisher(),
			Log:           log,
		}),
		services.NewMergeService(conflicts, packages, mergeRegistry, app.EventPublisher()),
		services.NewReportExportService(packages, app.DB(), attachments),
	)

	handlers.RegisterAuditHandler(app.EventPublisher(), app.DB(), auditLog, log)

	return nil
}

func (m *Module) Name() string {
	return "imports"
}
