package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"

	"github.com/veritabl/scorer/internal/domain"
)

type mockPassportRepo struct {
	passports map[string]domain.Passport
	nextID    uint64
	marked    []uint64
	deleted   []uint64
}

func newMockPassportRepo() *mockPassportRepo {
	return &mockPassportRepo{passports: map[string]domain.Passport{}, nextID: 1}
}

func passportKey(address string, communityID uint32) string {
	return fmt.Sprintf("%s/%d", address, communityID)
}

func (m *mockPassportRepo) Upsert(ctx context.Context, address string, communityID uint32) (domain.Passport, error) {
	key := passportKey(address, communityID)
	if existing, ok := m.passports[key]; ok {
		return existing, nil
	}
	passport := domain.Passport{ID: m.nextID, Address: address, CommunityID: communityID}
	m.nextID++
	m.passports[key] = passport
	return passport, nil
}

func (m *mockPassportRepo) Get(ctx context.Context, id uint64) (domain.Passport, error) {
	for _, passport := range m.passports {
		if passport.ID == id {
			return passport, nil
		}
	}
	return domain.Passport{}, domain.NotFoundError{Resource: "passport"}
}

func (m *mockPassportRepo) GetByAddress(ctx context.Context, address string, communityID uint32) (domain.Passport, error) {
	if passport, ok := m.passports[passportKey(address, communityID)]; ok {
		return passport, nil
	}
	return domain.Passport{}, domain.NotFoundError{Resource: "passport"}
}

func (m *mockPassportRepo) MarkRequiresCalculation(ctx context.Context, id uint64) error {
	m.marked = append(m.marked, id)
	return nil
}

func (m *mockPassportRepo) ListFlagged(ctx context.Context, limit int) ([]uint64, error) {
	return nil, nil
}

func (m *mockPassportRepo) Delete(ctx context.Context, id uint64) error {
	m.deleted = append(m.deleted, id)
	return nil
}

type mockStampRepo struct {
	stamps  map[uint64]map[string]domain.Stamp
	removed []string
}

func newMockStampRepo() *mockStampRepo {
	return &mockStampRepo{stamps: map[uint64]map[string]domain.Stamp{}}
}

func (m *mockStampRepo) Upsert(ctx context.Context, passportID uint64, hash string, provider string, credential json.RawMessage) (domain.Stamp, error) {
	if m.stamps[passportID] == nil {
		m.stamps[passportID] = map[string]domain.Stamp{}
	}
	stamp := domain.Stamp{PassportID: passportID, Hash: hash, Provider: provider, Credential: credential}
	m.stamps[passportID][hash] = stamp
	return stamp, nil
}

func (m *mockStampRepo) Remove(ctx context.Context, passportID uint64, hash string) error {
	delete(m.stamps[passportID], hash)
	m.removed = append(m.removed, hash)
	return nil
}

func (m *mockStampRepo) List(ctx context.Context, passportID uint64) ([]domain.Stamp, error) {
	var stamps []domain.Stamp
	for _, stamp := range m.stamps[passportID] {
		stamps = append(stamps, stamp)
	}
	return stamps, nil
}

type mockSignal struct {
	wakes int
}

func (m *mockSignal) WakeScorer(ctx context.Context) error {
	m.wakes++
	return nil
}

func TestStampSubmitNormalizesAddressAndWakes(t *testing.T) {
	passports := newMockPassportRepo()
	stamps := newMockStampRepo()
	signal := &mockSignal{}
	uc := NewStampUsecase(passports, stamps, signal)

	inputs := []StampInput{{Hash: "h1", Provider: "Google", Credential: json.RawMessage(`{"ok":true}`)}}
	stored, err := uc.Submit(context.Background(), "0xAb5801a7D398351b8bE11C439e05C5B3259aeC9B", 1, inputs)
	if err != nil {
		t.Fatalf("submit failed: %v", err)
	}
	if len(stored) != 1 {
		t.Fatalf("expected 1 stamp, got %d", len(stored))
	}

	normalized := "0xab5801a7d398351b8be11c439e05c5b3259aec9b"
	if _, err := passports.GetByAddress(context.Background(), normalized, 1); err != nil {
		t.Fatalf("passport not stored under normalized address: %v", err)
	}
	if signal.wakes != 1 {
		t.Fatalf("expected one wakeup, got %d", signal.wakes)
	}
}

func TestStampSubmitIdempotentOnHash(t *testing.T) {
	passports := newMockPassportRepo()
	stamps := newMockStampRepo()
	uc := NewStampUsecase(passports, stamps, &mockSignal{})

	address := "0xab5801a7d398351b8be11c439e05c5b3259aec9b"
	first := []StampInput{{Hash: "h1", Provider: "Google", Credential: json.RawMessage(`{"v":1}`)}}
	second := []StampInput{{Hash: "h1", Provider: "Google", Credential: json.RawMessage(`{"v":2}`)}}

	if _, err := uc.Submit(context.Background(), address, 1, first); err != nil {
		t.Fatalf("first submit failed: %v", err)
	}
	if _, err := uc.Submit(context.Background(), address, 1, second); err != nil {
		t.Fatalf("second submit failed: %v", err)
	}

	listed, err := uc.List(context.Background(), address, 1)
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(listed) != 1 {
		t.Fatalf("expected resubmission to overwrite, got %d stamps", len(listed))
	}
	if string(listed[0].Credential) != `{"v":2}` {
		t.Fatalf("expected latest credential, got %s", listed[0].Credential)
	}
}

func TestStampSubmitRejectsInvalidAddress(t *testing.T) {
	uc := NewStampUsecase(newMockPassportRepo(), newMockStampRepo(), &mockSignal{})

	_, err := uc.Submit(context.Background(), "nope", 1, []StampInput{{Hash: "h1"}})
	if err == nil {
		t.Fatalf("expected invalid address error")
	}
}

func TestStampRemoveWakesScorer(t *testing.T) {
	passports := newMockPassportRepo()
	stamps := newMockStampRepo()
	signal := &mockSignal{}
	uc := NewStampUsecase(passports, stamps, signal)

	address := "0xab5801a7d398351b8be11c439e05c5b3259aec9b"
	if _, err := uc.Submit(context.Background(), address, 1, []StampInput{{Hash: "h1", Provider: "Google"}}); err != nil {
		t.Fatalf("submit failed: %v", err)
	}

	if err := uc.Remove(context.Background(), address, 1, "h1"); err != nil {
		t.Fatalf("remove failed: %v", err)
	}
	if len(stamps.removed) != 1 || stamps.removed[0] != "h1" {
		t.Fatalf("expected h1 removed, got %v", stamps.removed)
	}
	if signal.wakes != 2 {
		t.Fatalf("expected wakeup after remove, got %d", signal.wakes)
	}
}
