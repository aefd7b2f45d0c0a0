package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/veritabl/scorer/internal/domain"
)

type mockScoreRepo struct {
	scores  map[uint64]domain.Score
	deleted []uint64
}

func newMockScoreRepo() *mockScoreRepo {
	return &mockScoreRepo{scores: map[uint64]domain.Score{}}
}

func (m *mockScoreRepo) Claim(ctx context.Context, passportID uint64) (uint64, bool, error) {
	return 0, false, nil
}

func (m *mockScoreRepo) Finalize(ctx context.Context, passportID uint64, claim uint64, result domain.CalculationResult) error {
	return nil
}

func (m *mockScoreRepo) Fail(ctx context.Context, passportID uint64, claim uint64, reason string) error {
	return nil
}

func (m *mockScoreRepo) GetByPassport(ctx context.Context, passportID uint64) (domain.Score, error) {
	if score, ok := m.scores[passportID]; ok {
		return score, nil
	}
	return domain.Score{}, domain.NotFoundError{Resource: "score"}
}

func (m *mockScoreRepo) Delete(ctx context.Context, passportID uint64) error {
	delete(m.scores, passportID)
	m.deleted = append(m.deleted, passportID)
	return nil
}

func TestScoreGetResolvesPassportFirst(t *testing.T) {
	passports := newMockPassportRepo()
	scores := newMockScoreRepo()
	uc := NewScoreUsecase(passports, scores, &mockSignal{})

	address := "0xab5801a7d398351b8be11c439e05c5b3259aec9b"
	passport, _ := passports.Upsert(context.Background(), address, 1)
	status := domain.ScoreStatusProcessing
	scores.scores[passport.ID] = domain.Score{PassportID: passport.ID, Status: &status}

	score, err := uc.Get(context.Background(), "0xAB5801A7D398351B8BE11C439E05C5B3259AEC9B", 1)
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if score.Status == nil || *score.Status != domain.ScoreStatusProcessing {
		t.Fatalf("expected PROCESSING status, got %v", score.Status)
	}
}

func TestScoreGetUnknownPassport(t *testing.T) {
	uc := NewScoreUsecase(newMockPassportRepo(), newMockScoreRepo(), &mockSignal{})

	_, err := uc.Get(context.Background(), "0xab5801a7d398351b8be11c439e05c5b3259aec9b", 1)
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestRequestRecalculationFlagsAndWakes(t *testing.T) {
	passports := newMockPassportRepo()
	signal := &mockSignal{}
	uc := NewScoreUsecase(passports, newMockScoreRepo(), signal)

	address := "0xab5801a7d398351b8be11c439e05c5b3259aec9b"
	passport, _ := passports.Upsert(context.Background(), address, 1)

	if err := uc.RequestRecalculation(context.Background(), address, 1); err != nil {
		t.Fatalf("request failed: %v", err)
	}

	if len(passports.marked) != 1 || passports.marked[0] != passport.ID {
		t.Fatalf("expected passport %d flagged, got %v", passport.ID, passports.marked)
	}
	if signal.wakes != 1 {
		t.Fatalf("expected one wakeup, got %d", signal.wakes)
	}
}
