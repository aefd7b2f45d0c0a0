package domain

import (
	"errors"
	"testing"
)

func TestNormalizeAddress(t *testing.T) {
	mixed := "0xAb5801a7D398351b8bE11C439e05C5B3259aeC9B"
	want := "0xab5801a7d398351b8be11c439e05c5b3259aec9b"

	got, err := NormalizeAddress(mixed)
	if err != nil {
		t.Fatalf("normalize failed: %v", err)
	}
	if got != want {
		t.Fatalf("expected %s got %s", want, got)
	}

	lower, err := NormalizeAddress(want)
	if err != nil {
		t.Fatalf("normalize failed: %v", err)
	}
	if lower != want {
		t.Fatalf("normalization is not idempotent: %s", lower)
	}
}

func TestNormalizeAddressRejectsGarbage(t *testing.T) {
	for _, input := range []string{"", "not-an-address", "0x1234", "0xZZ5801a7d398351b8be11c439e05c5b3259aec9b"} {
		if _, err := NormalizeAddress(input); !errors.Is(err, ErrInvalidAddress) {
			t.Fatalf("expected ErrInvalidAddress for %q, got %v", input, err)
		}
	}
}

func TestSentinelErrorMatching(t *testing.T) {
	if !errors.Is(NotFoundError{Resource: "passport"}, ErrNotFound) {
		t.Fatalf("expected NotFoundError to match sentinel")
	}
	if !errors.Is(ProtectedReferenceError{Resource: "passport", Referencer: "score"}, ErrProtectedReference) {
		t.Fatalf("expected ProtectedReferenceError to match sentinel")
	}
	if !errors.Is(ComputationError{Reason: "bad stamp"}, ErrComputation) {
		t.Fatalf("expected ComputationError to match sentinel")
	}
	if errors.Is(NotFoundError{}, ErrProtectedReference) {
		t.Fatalf("sentinels must not cross-match")
	}
}
