package service

import "errors"

var (
	ErrInvalidStake      = errors.New("stake must be positive")
	ErrInvalidOdds       = errors.New("odds must be a non-zero american price")
	ErrInvalidAmount     = errors.New("amount must be positive")
	ErrInsufficientFunds = errors.New("insufficient bankroll")
	ErrCoolOffActive     = errors.New("cool-off period active")
	ErrLimitExceeded     = errors.New("loss limit exceeded")
	ErrProfileNotFound   = errors.New("user profile not found")
)
