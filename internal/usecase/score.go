package usecase

import (
	"context"

	"github.com/veritabl/scorer/internal/domain"
)

type ScoreUsecase struct {
	passports PassportRepository
	scores    ScoreRepository
	signal    Signal
}

func NewScoreUsecase(passports PassportRepository, scores ScoreRepository, signal Signal) *ScoreUsecase {
	return &ScoreUsecase{passports: passports, scores: scores, signal: signal}
}

// Get returns the latest score state for (address, community). A PROCESSING
// or ERROR status is a normal, queryable outcome.
func (uc *ScoreUsecase) Get(ctx context.Context, address string, communityID uint32) (domain.Score, error) {
	normalized, err := domain.NormalizeAddress(address)
	if err != nil {
		return domain.Score{}, err
	}

	passport, err := uc.passports.GetByAddress(ctx, normalized, communityID)
	if err != nil {
		return domain.Score{}, err
	}
	return uc.scores.GetByPassport(ctx, passport.ID)
}

// RequestRecalculation flags an existing passport dirty without any stamp
// mutation.
func (uc *ScoreUsecase) RequestRecalculation(ctx context.Context, address string, communityID uint32) error {
	normalized, err := domain.NormalizeAddress(address)
	if err != nil {
		return err
	}

	passport, err := uc.passports.GetByAddress(ctx, normalized, communityID)
	if err != nil {
		return err
	}

	if err := uc.passports.MarkRequiresCalculation(ctx, passport.ID); err != nil {
		return err
	}

	_ = uc.signal.WakeScorer(ctx)
	return nil
}

// DeleteScore removes the score row for a passport, lifting its deletion
// protection.
func (uc *ScoreUsecase) DeleteScore(ctx context.Context, passportID uint64) error {
	return uc.scores.Delete(ctx, passportID)
}
