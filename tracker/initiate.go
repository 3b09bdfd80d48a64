package tracker

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/brightsms/momotracker/gateways"
	"github.com/brightsms/momotracker/phone"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type Initiate struct {
	// Amount to collect from the counterparty
	Amount decimal.Decimal
	// Counterparty phone. Normalized before anything touches the wire
	Phone string
	// Human readable description shown on the counterparty handset
	Description string
}

func (c *Controller) validateInitiate(req *Initiate) (err error) {
	if !req.Amount.IsPositive() {
		return ErrInvalidAmount
	}

	normalized, err := phone.Normalize(req.Phone)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidPhone, err)
	}
	req.Phone = normalized
	return nil
}

// Initiate asks the provider to collect the payment, records the resulting
// transaction as pending and starts foreground polling for it. Validation
// failures never reach the provider; provider rejections store nothing
func (c *Controller) Initiate(ctx context.Context, req Initiate) (tx Transaction, err error) {
	err = c.validateInitiate(&req)
	if err != nil {
		return tx, err
	}

	// Initiating lives only for the duration of this call: nothing is
	// stored until the provider has assigned a transaction id
	tx = Transaction{
		Reference:   uuid.NewString(),
		Amount:      req.Amount,
		Phone:       req.Phone,
		Description: req.Description,
		CreatedAt:   time.Now(),
		Status:      StatusInitiating,
	}

	initiation, err := c.gateway.Initiate(ctx, gateways.InitiateRequest{
		Amount:      tx.Amount,
		Phone:       tx.Phone,
		Reference:   tx.Reference,
		CallbackURL: c.callbackURL,
		Description: tx.Description,
	})
	if err != nil {
		var gatewayErr *gateways.Error
		if errors.As(err, &gatewayErr) {
			return Transaction{}, fmt.Errorf("%w: %s", ErrInitiationFailed, gatewayErr.Detail)
		}
		return Transaction{}, fmt.Errorf("%w: %w", ErrInitiationFailed, err)
	}

	tx.Id = initiation.TransactionId
	tx.Status = StatusProcessing

	tx, err = c.savePending(tx)
	if err != nil {
		return tx, fmt.Errorf("failed to record pending transaction: %w", err)
	}

	c.startLoop(tx.Id)
	c.publish(Update{Event: EventProcessing, Transaction: tx})
	return tx, nil
}
