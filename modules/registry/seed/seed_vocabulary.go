package seed

import (
	"context"

	"github.com/Ameerovich/TRRCMS-Backend-sub000/modules/registry/services"
	"github.com/Ameerovich/TRRCMS-Backend-sub000/pkg/application"
	"github.com/Ameerovich/TRRCMS-Backend-sub000/pkg/configuration"
)

// VocabularySeedFunc loads the TOML vocabulary seed at path into the
// vocabulary table. Seeding upserts, so re-running refreshes labels and
// positions without touching codes operators added by hand.
func VocabularySeedFunc(path string) application.SeedFunc {
	return func(ctx context.Context, app application.Application) error {
		svc := app.Service(services.VocabularyService{}).(*services.VocabularyService)
		n, err := svc.SeedFromFile(ctx, path)
		if err != nil {
			return err
		}
		configuration.Use().Logger().Infof("Seeded %d vocabulary codes from %s", n, path)
		return nil
	}
}
