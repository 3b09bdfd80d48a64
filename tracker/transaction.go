package tracker

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

type Status string

const (
	// Exists only until the initiation call returns
	StatusInitiating Status = "initiating"
	// Foreground polled window, short interval, bounded attempts
	StatusProcessing Status = "processing"
	// Long interval, unbounded, entered when the foreground bound is exhausted
	StatusBackground Status = "background"
	StatusCompleted  Status = "completed"
	StatusFailed     Status = "failed"
)

// Terminal reports whether no further transitions leave the status
func (s Status) Terminal() (terminal bool) {
	return s == StatusCompleted || s == StatusFailed
}

// Tracking reports whether a polling loop should own the transaction
func (s Status) Tracking() (tracking bool) {
	return s == StatusProcessing || s == StatusBackground
}

// MapProviderStatus interprets the provider's free text status vocabulary.
// Unrecognized values are non terminal: polling continues rather than
// guessing success or failure
func MapProviderStatus(raw string) (status Status, terminal bool) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "success", "completed":
		return StatusCompleted, true
	case "failed", "cancelled":
		return StatusFailed, true
	default:
		return "", false
	}
}

func PendingKey(id string) (key []byte) {
	return []byte("/pending/" + id)
}

func TransactionKey(id string) (key []byte) {
	return []byte("/transactions/" + id)
}

func UnsettledKey(id string) (key []byte) {
	return []byte("/unsettled/" + id)
}

type Transaction struct {
	// Provider assigned identifier of the transaction. Unique store key
	Id string `json:"transaction_id"`
	// Client generated idempotency token, created at initiation, never reused
	Reference string `json:"reference"`
	// Amount collected from the counterparty
	Amount decimal.Decimal `json:"amount"`
	// Counterparty phone in canonical international form
	Phone string `json:"counterparty_phone"`
	// Human readable description of the payment
	Description string `json:"description,omitempty"`
	// Set once at initiation, immutable
	CreatedAt time.Time `json:"created_at"`
	// Status of the payment
	Status Status `json:"status"`
	// Non terminal polls observed in the current foreground window.
	// Reset to zero on the transition into background
	Attempts uint64 `json:"attempt_count"`
	// Error message of the credit attempt, set only on unsettled records
	Error string `json:"error,omitempty"`
}

func (t *Transaction) Bytes() (bytes []byte) {
	bytes, _ = json.Marshal(t)
	return bytes
}

func (t *Transaction) FromBytes(b []byte) (err error) {
	return json.Unmarshal(b, t)
}
