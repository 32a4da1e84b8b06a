package repository

import (
	"context"

	"figurehub/internal/cache"
	"figurehub/internal/http-api/models"
)

// cachedFigureRepository decorates a FigureRepository with the redis
// tag-UID cache. Only GetByTagUID is cached; GetByID goes straight through.
type cachedFigureRepository struct {
	inner FigureRepository
	cache *cache.FigureCache
}

func NewCachedFigureRepository(inner FigureRepository, figureCache *cache.FigureCache) FigureRepository {
	return &cachedFigureRepository{inner: inner, cache: figureCache}
}

func (r *cachedFigureRepository) GetByID(ctx context.Context, id string) (*models.Figure, error) {
	return r.inner.GetByID(ctx, id)
}

func (r *cachedFigureRepository) GetByTagUID(ctx context.Context, tagUID string) (*models.Figure, error) {
	if figure, ok := r.cache.Get(ctx, tagUID); ok {
		return figure, nil
	}
	figure, err := r.inner.GetByTagUID(ctx, tagUID)
	if err != nil {
		return nil, err
	}
	r.cache.Set(ctx, tagUID, figure)
	return figure, nil
}
