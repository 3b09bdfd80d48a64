package rest

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/brightsms/momotracker/ledger"
	"github.com/shopspring/decimal"
)

// Config holds the configuration of a wallet service client.
type Config struct {
	// Base URL of the wallet service
	Url string
	// HTTP Client to use
	Client *http.Client
}

// Ledger credits wallets over the wallet service REST API. The reference is
// forwarded as an idempotency key so replays are safe
type Ledger struct {
	url    string
	client *http.Client
}

var _ ledger.Ledger = (*Ledger)(nil)

func New(config Config) *Ledger {
	client := config.Client
	if client == nil {
		client = http.DefaultClient
	}
	return &Ledger{
		url:    strings.TrimSuffix(config.Url, "/"),
		client: client,
	}
}

func (l *Ledger) Credit(ctx context.Context, req ledger.CreditRequest) (err error) {
	body, err := json.Marshal(struct {
		Reference     string          `json:"reference"`
		TransactionId string          `json:"transaction_id"`
		Phone         string          `json:"phone"`
		Amount        decimal.Decimal `json:"amount"`
		Description   string          `json:"description,omitempty"`
	}{
		Reference:     req.Reference,
		TransactionId: req.TransactionId,
		Phone:         req.Phone,
		Amount:        req.Amount,
		Description:   req.Description,
	})
	if err != nil {
		return fmt.Errorf("failed to marshal credit request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, l.url+"/credits", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to prepare credit request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Idempotency-Key", req.Reference)

	resp, err := l.client.Do(httpReq)
	if err != nil {
		return fmt.Errorf("failed to reach wallet service: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		raw, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("wallet service rejected credit with status %d: %s", resp.StatusCode, strings.TrimSpace(string(raw)))
	}
	return nil
}
