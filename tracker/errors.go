package tracker

import "errors"

var (
	ErrInvalidAmount       = errors.New("amount must be greater than zero")
	ErrInvalidPhone        = errors.New("invalid counterparty phone")
	ErrInitiationFailed    = errors.New("gateway rejected initiation")
	ErrTransactionNotFound = errors.New("transaction not found")
	ErrSideEffectFailed    = errors.New("wallet credit failed after confirmed payment")
)
