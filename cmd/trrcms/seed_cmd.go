package main

import (
	"context"

	"github.com/spf13/cobra"

	registryseed "github.com/Ameerovich/TRRCMS-Backend-sub000/modules/registry/seed"
	"github.com/Ameerovich/TRRCMS-Backend-sub000/pkg/application"
	"github.com/Ameerovich/TRRCMS-Backend-sub000/pkg/configuration"
)

// newSeedCmd prepares a fresh deployment: every module's baseline reference
// data goes in through one seeder run. Targeted re-imports of a single seed
// file go through "vocab seed" instead.
func newSeedCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Seed baseline reference data into the database",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSeed(cmd.Context())
		},
	}
}

func runSeed(ctx context.Context) error {
	app, ctx, cleanup, err := openApplication(ctx)
	if err != nil {
		return err
	}
	defer cleanup()

	seeder := application.NewSeeder()
	seeder.Register(
		registryseed.VocabularySeedFunc(configuration.Use().Vocabulary.SeedPath),
	)
	if err := seeder.Seed(ctx, app); err != nil {
		return classify(err)
	}
	return writeJSONLine(struct {
		Seeded bool `json:"seeded"`
	}{Seeded: true})
}
