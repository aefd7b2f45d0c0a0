package repository

import (
	"context"
	"fmt"
	"time"

	gocache "github.com/patrickmn/go-cache"

	"github.com/veritabl/scorer/internal/domain"
)

// CachedCommunityRepository keeps community lookups in process memory.
// Communities change rarely but are checked on every stamp submission.
type CachedCommunityRepository struct {
	inner *CommunityRepository
	cache *gocache.Cache
}

func NewCachedCommunityRepository(inner *CommunityRepository, ttl time.Duration) *CachedCommunityRepository {
	return &CachedCommunityRepository{
		inner: inner,
		cache: gocache.New(ttl, 2*ttl),
	}
}

func communityCacheKey(id uint32) string {
	return fmt.Sprintf("community:%d", id)
}

func (r *CachedCommunityRepository) Create(ctx context.Context, name string) (domain.Community, error) {
	return r.inner.Create(ctx, name)
}

func (r *CachedCommunityRepository) Get(ctx context.Context, id uint32) (domain.Community, error) {
	if cached, ok := r.cache.Get(communityCacheKey(id)); ok {
		return cached.(domain.Community), nil
	}

	community, err := r.inner.Get(ctx, id)
	if err != nil {
		return domain.Community{}, err
	}
	r.cache.SetDefault(communityCacheKey(id), community)
	return community, nil
}

func (r *CachedCommunityRepository) Delete(ctx context.Context, id uint32) error {
	err := r.inner.Delete(ctx, id)
	r.cache.Delete(communityCacheKey(id))
	return err
}
