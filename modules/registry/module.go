package registry

import (
	"embed"
	"io/fs"

	"github.com/Ameerovich/TRRCMS-Backend-sub000/modules/registry/domain/entities/vocabulary"
	"github.com/Ameerovich/TRRCMS-Backend-sub000/modules/registry/infrastructure/persistence"
	"github.com/Ameerovich/TRRCMS-Backend-sub000/modules/registry/infrastructure/storage"
	"github.com/Ameerovich/TRRCMS-Backend-sub000/modules/registry/services"
	"github.com/Ameerovich/TRRCMS-Backend-sub000/pkg/application"
	"github.com/Ameerovich/TRRCMS-Backend-sub000/pkg/configuration"
)

//go:embed infrastructure/persistence/schema/*.sql
var MigrationFiles embed.FS

func NewModule() application.Module {
	return &Module{}
}

type Module struct{}

func (m *Module) Register(app application.Application) error {
	conf := configuration.Use()

	schemaFS, err := fs.Sub(MigrationFiles, "infrastructure/persistence/schema")
	if err != nil {
		return err
	}
	app.Migrations().RegisterSchema("registry", schemaFS)

	vocabularyRepo := persistence.NewVocabularyRepository()
	vocabularyCache := vocabulary.NewCache(vocabularyRepo)

	app.RegisterServices(
		services.NewAttachmentService(
			persistence.NewAttachmentRepository(),
			persistence.NewEvidenceRepository(),
			storage.NewFSStorage(conf.Storage.AttachmentsPath),
		),
		services.NewVocabularyService(vocabularyRepo, vocabularyCache),
	)

	return nil
}

func (m *Module) Name() string {
	return "registry"
}
