package service

import (
	"context"
	"errors"

	"github.com/spec-kit/tutorial-service/internal/domain"
	"github.com/spec-kit/tutorial-service/internal/repository"
	apperrors "github.com/spec-kit/tutorial-service/pkg/util"
)

// CatalogService reads and replaces free-form catalog documents.
type CatalogService struct {
	repo repository.CatalogRepository
}

// NewCatalogService constructs the service.
func NewCatalogService(repo repository.CatalogRepository) *CatalogService {
	return &CatalogService{repo: repo}
}

// Seed installs the demo entry unless it already exists.
func (s *CatalogService) Seed(ctx context.Context) error {
	return s.repo.Seed(ctx, domain.CatalogItem{Key: "foo", Document: []byte(`"The Foo Wrestlers"`)})
}

// Get returns the stored document. Missing keys carry an X-Error header.
func (s *CatalogService) Get(ctx context.Context, key string) (*domain.CatalogItem, error) {
	item, err := s.repo.Get(ctx, key)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NewNotFound("Item", map[string]any{"item_id": key}).
				WithHeader("X-Error", "There goes my error")
		}
		return nil, err
	}
	return item, nil
}

// Put replaces the document stored under key.
func (s *CatalogService) Put(ctx context.Context, key string, document []byte) error {
	return s.repo.Put(ctx, domain.CatalogItem{Key: key, Document: document})
}
