// ABOUTME: Cached category catalog backed by the gallery API
// ABOUTME: Deduplicates concurrent refreshes with singleflight

package services

import (
	"context"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/artspark/gallery-bff/cache"
	"github.com/artspark/gallery-bff/models"
)

const categoriesCacheKey = "catalog:categories"

// CatalogService serves the category list from cache. Categories change
// rarely, so one upstream fetch per TTL window is enough; concurrent cache
// misses collapse into a single upstream call.
type CatalogService struct {
	api   *GalleryClient
	cache *cache.Cache
	ttl   time.Duration
	group singleflight.Group
}

func NewCatalogService(api *GalleryClient, c *cache.Cache, ttl time.Duration) *CatalogService {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &CatalogService{api: api, cache: c, ttl: ttl}
}

// Categories returns the cached category list, refreshing it on a miss.
func (s *CatalogService) Categories(ctx context.Context) ([]models.CategorySummary, error) {
	if val, ok := s.cache.Get(categoriesCacheKey); ok {
		if categories, ok := val.([]models.CategorySummary); ok {
			return categories, nil
		}
	}

	result, err, _ := s.group.Do(categoriesCacheKey, func() (any, error) {
		categories, err := s.api.Categories(ctx)
		if err != nil {
			return nil, err
		}
		s.cache.SetWithTTL(categoriesCacheKey, categories, s.ttl)
		return categories, nil
	})
	if err != nil {
		return nil, err
	}
	return result.([]models.CategorySummary), nil
}

// Invalidate drops the cached list so the next read refetches.
func (s *CatalogService) Invalidate() {
	s.cache.Clear(categoriesCacheKey)
}
