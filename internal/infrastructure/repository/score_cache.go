package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/bradfitz/gomemcache/memcache"

	"github.com/veritabl/scorer/internal/domain"
)

// CachedScoreRepository is a memcached read-through decorator over the score
// store. Only DONE rows are cached: PROCESSING and ERROR are transient states
// clients poll for, and serving them stale would mask a resolution.
type CachedScoreRepository struct {
	inner *ScoreRepository
	mc    *memcache.Client
	ttl   int32
}

func NewCachedScoreRepository(inner *ScoreRepository, mc *memcache.Client, ttlSeconds int32) *CachedScoreRepository {
	return &CachedScoreRepository{inner: inner, mc: mc, ttl: ttlSeconds}
}

func scoreCacheKey(passportID uint64) string {
	return fmt.Sprintf("scorer:score:%d", passportID)
}

func (r *CachedScoreRepository) GetByPassport(ctx context.Context, passportID uint64) (domain.Score, error) {
	key := scoreCacheKey(passportID)
	if item, err := r.mc.Get(key); err == nil {
		var score domain.Score
		if err := json.Unmarshal(item.Value, &score); err == nil {
			return score, nil
		}
	}

	score, err := r.inner.GetByPassport(ctx, passportID)
	if err != nil {
		return domain.Score{}, err
	}

	if score.Status != nil && *score.Status == domain.ScoreStatusDone {
		if payload, err := json.Marshal(score); err == nil {
			_ = r.mc.Set(&memcache.Item{Key: key, Value: payload, Expiration: r.ttl})
		}
	}
	return score, nil
}

func (r *CachedScoreRepository) Claim(ctx context.Context, passportID uint64) (uint64, bool, error) {
	claim, claimed, err := r.inner.Claim(ctx, passportID)
	if claimed {
		r.invalidate(passportID)
	}
	return claim, claimed, err
}

func (r *CachedScoreRepository) Finalize(ctx context.Context, passportID uint64, claim uint64, result domain.CalculationResult) error {
	err := r.inner.Finalize(ctx, passportID, claim, result)
	r.invalidate(passportID)
	return err
}

func (r *CachedScoreRepository) Fail(ctx context.Context, passportID uint64, claim uint64, reason string) error {
	err := r.inner.Fail(ctx, passportID, claim, reason)
	r.invalidate(passportID)
	return err
}

func (r *CachedScoreRepository) Delete(ctx context.Context, passportID uint64) error {
	err := r.inner.Delete(ctx, passportID)
	r.invalidate(passportID)
	return err
}

func (r *CachedScoreRepository) invalidate(passportID uint64) {
	// A failed eviction only extends staleness by the TTL.
	if err := r.mc.Delete(scoreCacheKey(passportID)); err != nil && !errors.Is(err, memcache.ErrCacheMiss) {
		slog.Debug("score cache eviction failed", "passport", passportID, "error", err)
	}
}
