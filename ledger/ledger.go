package ledger

import (
	"context"

	"github.com/shopspring/decimal"
)

type CreditRequest struct {
	// Idempotency key. The reference generated at initiation time, so the
	// wallet is credited at most once per payment no matter how often the
	// call is retried
	Reference string
	// Provider assigned transaction identifier, for audit trails
	TransactionId string
	// Counterparty phone in canonical international form
	Phone string
	// Amount confirmed by the provider
	Amount decimal.Decimal
	// Human readable description of the originating payment
	Description string
}

// Ledger is the collaborator credited exactly once when a payment reaches
// a successful terminal status
type Ledger interface {
	Credit(ctx context.Context, req CreditRequest) (err error)
}
