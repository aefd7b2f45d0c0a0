package usecase

import (
	"context"
	"encoding/json"

	"github.com/veritabl/scorer/internal/domain"
)

// StampInput is one verified credential as submitted by the API layer. The
// credential document arrives already validated by the verification
// collaborator and is stored opaquely.
type StampInput struct {
	Hash       string          `json:"hash"`
	Provider   string          `json:"provider"`
	Credential json.RawMessage `json:"credential"`
}

type StampUsecase struct {
	passports PassportRepository
	stamps    StampRepository
	signal    Signal
}

func NewStampUsecase(passports PassportRepository, stamps StampRepository, signal Signal) *StampUsecase {
	return &StampUsecase{passports: passports, stamps: stamps, signal: signal}
}

// Submit attaches stamps to the passport for (address, community), creating
// the passport on first submission. Each upsert flags the passport dirty
// inside the stamp transaction; the wakeup signal is fire-and-forget.
func (uc *StampUsecase) Submit(ctx context.Context, address string, communityID uint32, inputs []StampInput) ([]domain.Stamp, error) {
	normalized, err := domain.NormalizeAddress(address)
	if err != nil {
		return nil, err
	}

	passport, err := uc.passports.Upsert(ctx, normalized, communityID)
	if err != nil {
		return nil, err
	}

	stamps := make([]domain.Stamp, 0, len(inputs))
	for _, input := range inputs {
		stamp, err := uc.stamps.Upsert(ctx, passport.ID, input.Hash, input.Provider, input.Credential)
		if err != nil {
			return nil, err
		}
		stamps = append(stamps, stamp)
	}

	_ = uc.signal.WakeScorer(ctx)
	return stamps, nil
}

// Remove revokes a stamp by hash. The passport is flagged dirty even when
// the hash was already gone.
func (uc *StampUsecase) Remove(ctx context.Context, address string, communityID uint32, hash string) error {
	normalized, err := domain.NormalizeAddress(address)
	if err != nil {
		return err
	}

	passport, err := uc.passports.GetByAddress(ctx, normalized, communityID)
	if err != nil {
		return err
	}

	if err := uc.stamps.Remove(ctx, passport.ID, hash); err != nil {
		return err
	}

	_ = uc.signal.WakeScorer(ctx)
	return nil
}

func (uc *StampUsecase) List(ctx context.Context, address string, communityID uint32) ([]domain.Stamp, error) {
	normalized, err := domain.NormalizeAddress(address)
	if err != nil {
		return nil, err
	}

	passport, err := uc.passports.GetByAddress(ctx, normalized, communityID)
	if err != nil {
		return nil, err
	}
	return uc.stamps.List(ctx, passport.ID)
}
