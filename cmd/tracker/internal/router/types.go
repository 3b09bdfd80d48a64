package router

import (
	"time"

	"github.com/brightsms/momotracker/tracker"
	"github.com/shopspring/decimal"
)

type Initiate struct {
	Amount      decimal.Decimal `json:"amount"`
	Phone       string          `json:"phone"`
	Description string          `json:"description,omitempty"`
}

func InitiateToTracker(src *Initiate) (out tracker.Initiate) {
	out = tracker.Initiate{
		Amount:      src.Amount,
		Phone:       src.Phone,
		Description: src.Description,
	}
	return out
}

type Payment struct {
	// Identifier of the transaction
	Id string `json:"transaction_id"`
	// Idempotency token generated at initiation
	Reference string `json:"reference"`
	// Amount collected from the counterparty
	Amount decimal.Decimal `json:"amount"`
	// Counterparty phone in canonical international form
	Phone string `json:"counterparty_phone"`
	// Description shown on the counterparty handset
	Description string `json:"description,omitempty"`
	// Initiation time
	CreatedAt time.Time `json:"created_at"`
	// Status of the payment
	Status tracker.Status `json:"status"`
	// Foreground polls seen so far
	Attempts uint64 `json:"attempt_count"`
	// Credit attempt error, only present on unsettled records
	Error string `json:"error,omitempty"`
}

// Convert from the tracker's Transaction type to the wire Payment
func PaymentFromTracker(src *tracker.Transaction) (payment Payment) {
	payment = Payment{
		Id:          src.Id,
		Reference:   src.Reference,
		Amount:      src.Amount,
		Phone:       src.Phone,
		Description: src.Description,
		CreatedAt:   src.CreatedAt,
		Status:      src.Status,
		Attempts:    src.Attempts,
		Error:       src.Error,
	}
	return payment
}
