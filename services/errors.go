package services

import "errors"

// The four failure kinds every ledger operation can surface. Handlers map
// them with errors.Is; everything else is treated as an internal error and
// the transaction that raised it is rolled back in full.
var (
	// ErrValidation: malformed or invariant-violating input (negative
	// resulting stock, mismatched split totals, unknown enum values).
	ErrValidation = errors.New("validation failed")

	// ErrNotFound: referenced entity does not exist or does not belong to
	// the stated parent.
	ErrNotFound = errors.New("not found")

	// ErrInvalidState: operation not legal from the entity's current state
	// (mutating a voided item, closing a closed shift, re-splitting an
	// already split order, moving an item backward).
	ErrInvalidState = errors.New("invalid state")

	// ErrConflict: concurrent uniqueness violation (terminal or employee
	// already has an open shift).
	ErrConflict = errors.New("conflict")
)
