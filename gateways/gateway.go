package gateways

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
)

type (
	InitiateRequest struct {
		// Amount to collect from the counterparty
		Amount decimal.Decimal
		// Counterparty phone in canonical international form
		Phone string
		// Client generated idempotency token. Never reused
		Reference string
		// URL the provider may notify. Purely informational for the tracker
		CallbackURL string
		// Human readable description shown on the counterparty handset
		Description string
	}
	Initiation struct {
		// Provider assigned identifier of the transaction
		TransactionId string
		// Raw provider status string at initiation time
		Status string
	}
	VerifyRequest struct {
		// Provider assigned identifier of the transaction
		TransactionId string
	}
	Verification struct {
		// Raw provider status string. Vocabulary is provider defined free text
		Status string
	}
)

type Gateway interface {
	// Ask the provider to start collecting the payment from the counterparty
	Initiate(ctx context.Context, req InitiateRequest) (initiation Initiation, err error)

	// Query the provider reported status of a transaction
	Verify(ctx context.Context, req VerifyRequest) (verification Verification, err error)
}

// Error is a rejection reported by the provider itself, carrying whatever
// detail text the provider returned. Transport failures are plain errors
type Error struct {
	StatusCode int
	Detail     string
}

func (e *Error) Error() string {
	if e.Detail == "" {
		return fmt.Sprintf("gateway returned status %d", e.StatusCode)
	}
	return fmt.Sprintf("gateway returned status %d: %s", e.StatusCode, e.Detail)
}
