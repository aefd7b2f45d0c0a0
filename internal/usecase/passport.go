package usecase

import (
	"context"

	"github.com/veritabl/scorer/internal/domain"
)

type PassportUsecase struct {
	passports   PassportRepository
	communities CommunityRepository
	signal      Signal
}

func NewPassportUsecase(passports PassportRepository, communities CommunityRepository, signal Signal) *PassportUsecase {
	return &PassportUsecase{passports: passports, communities: communities, signal: signal}
}

// Submit registers (or re-registers) an address for scoring in a community
// and schedules a recalculation even when no stamps changed.
func (uc *PassportUsecase) Submit(ctx context.Context, address string, communityID uint32) (domain.Passport, error) {
	normalized, err := domain.NormalizeAddress(address)
	if err != nil {
		return domain.Passport{}, err
	}

	if _, err := uc.communities.Get(ctx, communityID); err != nil {
		return domain.Passport{}, err
	}

	passport, err := uc.passports.Upsert(ctx, normalized, communityID)
	if err != nil {
		return domain.Passport{}, err
	}

	if err := uc.passports.MarkRequiresCalculation(ctx, passport.ID); err != nil {
		return domain.Passport{}, err
	}

	if err := uc.signal.WakeScorer(ctx); err != nil {
		// The worker still polls; a missed wakeup only delays the cycle.
		return passport, nil
	}
	return passport, nil
}

func (uc *PassportUsecase) Get(ctx context.Context, address string, communityID uint32) (domain.Passport, error) {
	normalized, err := domain.NormalizeAddress(address)
	if err != nil {
		return domain.Passport{}, err
	}
	return uc.passports.GetByAddress(ctx, normalized, communityID)
}

func (uc *PassportUsecase) Delete(ctx context.Context, id uint64) error {
	return uc.passports.Delete(ctx, id)
}
