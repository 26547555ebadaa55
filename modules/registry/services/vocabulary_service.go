package services

import (
	"context"

	"github.com/Ameerovich/TRRCMS-Backend-sub000/modules/registry/domain/entities/vocabulary"
)

// VocabularyService manages the controlled code lists and keeps the
// in-process cache coherent with the table.
type VocabularyService struct {
	repo  vocabulary.Repository
	cache *vocabulary.Cache
}

func NewVocabularyService(repo vocabulary.Repository, cache *vocabulary.Cache) *VocabularyService {
	return &VocabularyService{
		repo:  repo,
		cache: cache,
	}
}

func (s *VocabularyService) Cache() *vocabulary.Cache {
	return s.cache
}

func (s *VocabularyService) GetAll(ctx context.Context) ([]*vocabulary.Code, error) {
	return s.repo.GetAll(ctx)
}

func (s *VocabularyService) GetByVocabulary(ctx context.Context, name string) ([]*vocabulary.Code, error) {
	return s.repo.GetByVocabulary(ctx, name)
}

func (s *VocabularyService) Upsert(ctx context.Context, codes ...*vocabulary.Code) error {
	if err := s.repo.Upsert(ctx, codes...); err != nil {
		return err
	}
	s.cache.Invalidate()
	return nil
}

func (s *VocabularyService) Deactivate(ctx context.Context, name, code string) error {
	if err := s.repo.Deactivate(ctx, name, code); err != nil {
		return err
	}
	s.cache.Invalidate()
	return nil
}

// SeedFromFile loads a TOML seed file into the vocabulary table. Existing
// codes are updated in place; codes absent from the seed are left alone.
func (s *VocabularyService) SeedFromFile(ctx context.Context, path string) (int, error) {
	codes, err := vocabulary.NewFileProvider(path).Load()
	if err != nil {
		return 0, err
	}
	if err := s.Upsert(ctx, codes...); err != nil {
		return 0, err
	}
	return len(codes), nil
}
