package domain

import "errors"

// Domain-level error kinds. Packages wrap them with fmt.Errorf("%w: ...")
// so callers and handlers can match with errors.Is.
var (
	// ErrTransientFetch the store could not be read during an availability check
	ErrTransientFetch = errors.New("transient fetch error")

	// ErrValidation malformed booking payload, never persisted
	ErrValidation = errors.New("validation error")

	// ErrInsufficientCredit a ledger spend would make the balance negative
	ErrInsufficientCredit = errors.New("insufficient lesson credit")

	// ErrInvalidTransition the lifecycle does not allow the requested status change
	ErrInvalidTransition = errors.New("invalid status transition")

	// ErrConflict a concurrent booking took the slot at write time
	ErrConflict = errors.New("slot conflict")

	ErrNotFound     = errors.New("not found")
	ErrAccessDenied = errors.New("access denied")
)
