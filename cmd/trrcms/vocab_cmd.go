package main

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/Ameerovich/TRRCMS-Backend-sub000/modules/registry/domain/entities/vocabulary"
	"github.com/Ameerovich/TRRCMS-Backend-sub000/pkg/configuration"
)

func newVocabCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "vocab",
		Short: "Manage controlled vocabulary codes",
	}
	cmd.AddCommand(newVocabSeedCmd())
	cmd.AddCommand(newVocabListCmd())
	return cmd
}

func newVocabSeedCmd() *cobra.Command {
	var file string

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Load the TOML vocabulary seed into the vocabulary table",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runVocabSeed(cmd.Context(), file)
		},
	}

	cmd.Flags().StringVar(&file, "file", "", "Seed file path (default: configured seed path)")
	return cmd
}

func runVocabSeed(ctx context.Context, file string) error {
	app, ctx, cleanup, err := openApplication(ctx)
	if err != nil {
		return err
	}
	defer cleanup()

	if file == "" {
		file = configuration.Use().Vocabulary.SeedPath
	}
	n, err := vocabularyService(app).SeedFromFile(ctx, file)
	if err != nil {
		return classify(err)
	}
	return writeJSONLine(struct {
		Seeded int    `json:"seeded"`
		Path   string `json:"path"`
	}{Seeded: n, Path: file})
}

type codeView struct {
	Vocabulary string `json:"vocabulary"`
	Code       string `json:"code"`
	Label      string `json:"label"`
	Active     bool   `json:"active"`
	Position   int    `json:"position"`
}

func newVocabListCmd() *cobra.Command {
	var name string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List vocabulary codes",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runVocabList(cmd.Context(), name)
		},
	}

	cmd.Flags().StringVar(&name, "vocabulary", "", "Narrow to one vocabulary")
	return cmd
}

func runVocabList(ctx context.Context, name string) error {
	app, ctx, cleanup, err := openApplication(ctx)
	if err != nil {
		return err
	}
	defer cleanup()

	svc := vocabularyService(app)
	var codes []*vocabulary.Code
	if name == "" {
		codes, err = svc.GetAll(ctx)
	} else {
		codes, err = svc.GetByVocabulary(ctx, name)
	}
	if err != nil {
		return classify(err)
	}
	for _, c := range codes {
		line := codeView{
			Vocabulary: c.Vocabulary(),
			Code:       c.Code(),
			Label:      c.Label(),
			Active:     c.Active(),
			Position:   c.Position(),
		}
		if err := writeJSONLine(line); err != nil {
			return err
		}
	}
	return nil
}
