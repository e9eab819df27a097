package repository

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/redis/go-redis/v9"

	"github.com/spec-kit/tutorial-service/internal/domain"
)

const catalogHashKey = "catalog:items"

// CatalogRepository stores free-form item documents by key.
type CatalogRepository interface {
	Get(ctx context.Context, key string) (*domain.CatalogItem, error)
	Put(ctx context.Context, item domain.CatalogItem) error
	// Seed stores the item only when the key is absent.
	Seed(ctx context.Context, item domain.CatalogItem) error
}

// memoryCatalogRepository owns its keys; callers may pass strings backed by
// request buffers that are reused after the request.
type memoryCatalogRepository struct {
	mu    sync.RWMutex
	items map[string][]byte
}

// NewMemoryCatalogRepository returns a process-local catalog.
func NewMemoryCatalogRepository() CatalogRepository {
	return &memoryCatalogRepository{items: make(map[string][]byte)}
}

func (r *memoryCatalogRepository) Get(_ context.Context, key string) (*domain.CatalogItem, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	doc, ok := r.items[key]
	if !ok {
		return nil, ErrNotFound
	}
	return &domain.CatalogItem{Key: key, Document: append([]byte(nil), doc...)}, nil
}

func (r *memoryCatalogRepository) Put(_ context.Context, item domain.CatalogItem) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items[strings.Clone(item.Key)] = append([]byte(nil), item.Document...)
	return nil
}

func (r *memoryCatalogRepository) Seed(_ context.Context, item domain.CatalogItem) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.items[item.Key]; !ok {
		r.items[strings.Clone(item.Key)] = append([]byte(nil), item.Document...)
	}
	return nil
}

type redisCatalogRepository struct {
	client *redis.Client
}

// NewRedisCatalogRepository keeps documents in a single Redis hash.
func NewRedisCatalogRepository(client *redis.Client) CatalogRepository {
	return &redisCatalogRepository{client: client}
}

func (r *redisCatalogRepository) Get(ctx context.Context, key string) (*domain.CatalogItem, error) {
	doc, err := r.client.HGet(ctx, catalogHashKey, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &domain.CatalogItem{Key: key, Document: doc}, nil
}

func (r *redisCatalogRepository) Put(ctx context.Context, item domain.CatalogItem) error {
	return r.client.HSet(ctx, catalogHashKey, item.Key, item.Document).Err()
}

func (r *redisCatalogRepository) Seed(ctx context.Context, item domain.CatalogItem) error {
	return r.client.HSetNX(ctx, catalogHashKey, item.Key, item.Document).Err()
}
