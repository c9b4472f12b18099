package engine

import "errors"

// Rejections: no economic effect occurred, safe to report directly.
var (
	ErrInvalidRequest    = errors.New("invalid_request")
	ErrInvalidStake      = errors.New("invalid_stake")
	ErrInsufficientFunds = errors.New("insufficient_funds")
	ErrOracleUnavailable = errors.New("oracle_unavailable")
	ErrHouseIlliquid     = errors.New("house_illiquid")
	ErrDebitFailed       = errors.New("debit_failed")
	ErrHalted            = errors.New("engine_halted")
)
