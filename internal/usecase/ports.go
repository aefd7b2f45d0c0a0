package usecase

import (
	"context"
	"encoding/json"

	"github.com/veritabl/scorer/internal/domain"
)

// PassportRepository defines persistence/lookup for passports.
type PassportRepository interface {
	Upsert(ctx context.Context, address string, communityID uint32) (domain.Passport, error)
	Get(ctx context.Context, id uint64) (domain.Passport, error)
	GetByAddress(ctx context.Context, address string, communityID uint32) (domain.Passport, error)
	MarkRequiresCalculation(ctx context.Context, id uint64) error
	ListFlagged(ctx context.Context, limit int) ([]uint64, error)
	Delete(ctx context.Context, id uint64) error
}

// StampRepository defines persistence for credential stamps. Upsert and
// Remove flag the owning passport dirty as part of the same transaction.
type StampRepository interface {
	Upsert(ctx context.Context, passportID uint64, hash string, provider string, credential json.RawMessage) (domain.Stamp, error)
	Remove(ctx context.Context, passportID uint64, hash string) error
	List(ctx context.Context, passportID uint64) ([]domain.Stamp, error)
}

// ScoreRepository defines the score lifecycle operations. Claim returns a
// generation token that Finalize and Fail must present, so a superseded
// claim cannot resolve against its successor's cycle.
type ScoreRepository interface {
	Claim(ctx context.Context, passportID uint64) (uint64, bool, error)
	Finalize(ctx context.Context, passportID uint64, claim uint64, result domain.CalculationResult) error
	Fail(ctx context.Context, passportID uint64, claim uint64, reason string) error
	GetByPassport(ctx context.Context, passportID uint64) (domain.Score, error)
	Delete(ctx context.Context, passportID uint64) error
}

// CommunityRepository defines persistence for communities.
type CommunityRepository interface {
	Create(ctx context.Context, name string) (domain.Community, error)
	Get(ctx context.Context, id uint32) (domain.Community, error)
	Delete(ctx context.Context, id uint32) error
}

// Signal wakes the recalculation worker after a triggering write.
type Signal interface {
	WakeScorer(ctx context.Context) error
}
