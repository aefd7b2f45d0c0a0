package domain

import "fmt"

// NotFoundError represents a missing resource.
type NotFoundError struct {
	Resource string
}

func (e NotFoundError) Error() string {
	if e.Resource == "" {
		return "not found"
	}
	return fmt.Sprintf("%s not found", e.Resource)
}

// Is enables errors.Is matching on NotFoundError.
func (e NotFoundError) Is(target error) bool {
	_, ok := target.(NotFoundError)
	if ok {
		return true
	}
	_, ok = target.(*NotFoundError)
	return ok
}

// ErrNotFound is the sentinel error for missing resources.
var ErrNotFound = NotFoundError{}

// ConflictError represents a write that lost a uniqueness race it could not
// resolve internally.
type ConflictError struct {
	Resource string
}

func (e ConflictError) Error() string {
	if e.Resource == "" {
		return "conflict"
	}
	return fmt.Sprintf("%s conflict", e.Resource)
}

// Is enables errors.Is matching on ConflictError.
func (e ConflictError) Is(target error) bool {
	_, ok := target.(ConflictError)
	if ok {
		return true
	}
	_, ok = target.(*ConflictError)
	return ok
}

// ErrConflict is the sentinel error for unresolved uniqueness conflicts.
var ErrConflict = ConflictError{}

// ProtectedReferenceError is returned when deleting a resource that another
// row still references.
type ProtectedReferenceError struct {
	Resource   string
	Referencer string
}

func (e ProtectedReferenceError) Error() string {
	if e.Resource == "" {
		return "protected reference"
	}
	return fmt.Sprintf("%s is still referenced by %s", e.Resource, e.Referencer)
}

// Is enables errors.Is matching on ProtectedReferenceError.
func (e ProtectedReferenceError) Is(target error) bool {
	_, ok := target.(ProtectedReferenceError)
	if ok {
		return true
	}
	_, ok = target.(*ProtectedReferenceError)
	return ok
}

// ErrProtectedReference is the sentinel error for protected deletions.
var ErrProtectedReference = ProtectedReferenceError{}

// ComputationError is a domain-level score computation failure. It is
// recorded on the score row, never surfaced to the client that triggered the
// recalculation.
type ComputationError struct {
	Reason string
}

func (e ComputationError) Error() string {
	if e.Reason == "" {
		return "computation failed"
	}
	return fmt.Sprintf("computation failed: %s", e.Reason)
}

// Is enables errors.Is matching on ComputationError.
func (e ComputationError) Is(target error) bool {
	_, ok := target.(ComputationError)
	if ok {
		return true
	}
	_, ok = target.(*ComputationError)
	return ok
}

// ErrComputation is the sentinel error for failed score computations.
var ErrComputation = ComputationError{}
