package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/veritabl/scorer/internal/domain"
)

type mockCommunityRepo struct {
	communities map[uint32]domain.Community
	deleted     []uint32
}

func newMockCommunityRepo(ids ...uint32) *mockCommunityRepo {
	repo := &mockCommunityRepo{communities: map[uint32]domain.Community{}}
	for _, id := range ids {
		repo.communities[id] = domain.Community{ID: id, Name: "community"}
	}
	return repo
}

func (m *mockCommunityRepo) Create(ctx context.Context, name string) (domain.Community, error) {
	id := uint32(len(m.communities) + 1)
	community := domain.Community{ID: id, Name: name}
	m.communities[id] = community
	return community, nil
}

func (m *mockCommunityRepo) Get(ctx context.Context, id uint32) (domain.Community, error) {
	if community, ok := m.communities[id]; ok {
		return community, nil
	}
	return domain.Community{}, domain.NotFoundError{Resource: "community"}
}

func (m *mockCommunityRepo) Delete(ctx context.Context, id uint32) error {
	delete(m.communities, id)
	m.deleted = append(m.deleted, id)
	return nil
}

func TestPassportSubmitMarksForCalculation(t *testing.T) {
	passports := newMockPassportRepo()
	signal := &mockSignal{}
	uc := NewPassportUsecase(passports, newMockCommunityRepo(1), signal)

	passport, err := uc.Submit(context.Background(), "0xAb5801a7D398351b8bE11C439e05C5B3259aeC9B", 1)
	if err != nil {
		t.Fatalf("submit failed: %v", err)
	}

	if len(passports.marked) != 1 || passports.marked[0] != passport.ID {
		t.Fatalf("expected passport %d to be flagged, got %v", passport.ID, passports.marked)
	}
	if signal.wakes != 1 {
		t.Fatalf("expected one wakeup, got %d", signal.wakes)
	}
}

func TestPassportSubmitUnknownCommunity(t *testing.T) {
	uc := NewPassportUsecase(newMockPassportRepo(), newMockCommunityRepo(), &mockSignal{})

	_, err := uc.Submit(context.Background(), "0xab5801a7d398351b8be11c439e05c5b3259aec9b", 42)
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestPassportSubmitInvalidAddress(t *testing.T) {
	uc := NewPassportUsecase(newMockPassportRepo(), newMockCommunityRepo(1), &mockSignal{})

	_, err := uc.Submit(context.Background(), "0x1234", 1)
	if !errors.Is(err, domain.ErrInvalidAddress) {
		t.Fatalf("expected invalid address, got %v", err)
	}
}

func TestPassportSubmitReturnsSameRowTwice(t *testing.T) {
	passports := newMockPassportRepo()
	uc := NewPassportUsecase(passports, newMockCommunityRepo(1), &mockSignal{})

	first, err := uc.Submit(context.Background(), "0xab5801a7d398351b8be11c439e05c5b3259aec9b", 1)
	if err != nil {
		t.Fatalf("first submit failed: %v", err)
	}
	second, err := uc.Submit(context.Background(), "0xAB5801A7D398351B8BE11C439E05C5B3259AEC9B", 1)
	if err != nil {
		t.Fatalf("second submit failed: %v", err)
	}

	if first.ID != second.ID {
		t.Fatalf("expected one passport per (address, community), got %d and %d", first.ID, second.ID)
	}
}
