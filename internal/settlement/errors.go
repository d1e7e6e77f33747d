package settlement

import "errors"

// Validation rejections. None of these leave any state mutated.
var (
	ErrInvalidOutcome = errors.New("invalid outcome")
	ErrBetNotFound    = errors.New("bet not found")
	ErrNotOwner       = errors.New("bet does not belong to user")
	ErrAlreadySettled = errors.New("bet already settled")
	ErrLedgerMissing  = errors.New("bankroll ledger missing for user")
	ErrReviewNotFound = errors.New("settlement review not found")
	ErrReviewNotOpen  = errors.New("settlement review is not open")
)
