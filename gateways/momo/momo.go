package momo

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/brightsms/momotracker/gateways"
	"github.com/shopspring/decimal"
)

// Config holds the configuration of a mobile money gateway client.
type Config struct {
	// Base URL of the provider API
	// Example: https://gateway.example.com/api/v1
	Url string
	// Custom headers to send
	CustomHeaders map[string]string
	// HTTP Client to use. Authentication, if any, lives in its Transport
	Client *http.Client
}

type Gateway struct {
	url     string
	headers map[string]string
	client  *http.Client
}

var _ gateways.Gateway = (*Gateway)(nil)

func New(config Config) *Gateway {
	client := config.Client
	if client == nil {
		client = http.DefaultClient
	}
	return &Gateway{
		url:     strings.TrimSuffix(config.Url, "/"),
		headers: config.CustomHeaders,
		client:  client,
	}
}

type initiateBody struct {
	Amount      decimal.Decimal `json:"amount"`
	Phone       string          `json:"phone"`
	Reference   string          `json:"reference"`
	CallbackURL string          `json:"callback_url,omitempty"`
	Description string          `json:"description,omitempty"`
}

func (g *Gateway) do(req *http.Request) (resp *http.Response, err error) {
	req.Header.Set("Content-Type", "application/json")
	for key, value := range g.headers {
		req.Header.Set(key, value)
	}
	return g.client.Do(req)
}

// Providers disagree on the field carrying rejection detail
func rejectionDetail(body []byte) (detail string) {
	var payload struct {
		Message string `json:"message"`
		Error   string `json:"error"`
		Detail  string `json:"detail"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return strings.TrimSpace(string(body))
	}
	for _, candidate := range []string{payload.Message, payload.Error, payload.Detail} {
		if candidate != "" {
			return candidate
		}
	}
	return strings.TrimSpace(string(body))
}

func (g *Gateway) Initiate(ctx context.Context, req gateways.InitiateRequest) (initiation gateways.Initiation, err error) {
	body, err := json.Marshal(initiateBody{
		Amount:      req.Amount,
		Phone:       req.Phone,
		Reference:   req.Reference,
		CallbackURL: req.CallbackURL,
		Description: req.Description,
	})
	if err != nil {
		return initiation, fmt.Errorf("failed to marshal initiate request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, g.url+"/initiate", bytes.NewReader(body))
	if err != nil {
		return initiation, fmt.Errorf("failed to prepare initiate request: %w", err)
	}

	resp, err := g.do(httpReq)
	if err != nil {
		return initiation, fmt.Errorf("failed to reach gateway: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		raw, _ := io.ReadAll(resp.Body)
		return initiation, &gateways.Error{StatusCode: resp.StatusCode, Detail: rejectionDetail(raw)}
	}

	var payload struct {
		TransactionId string `json:"transaction_id"`
		Status        string `json:"status"`
	}
	err = json.NewDecoder(resp.Body).Decode(&payload)
	if err != nil {
		return initiation, &gateways.Error{StatusCode: resp.StatusCode, Detail: fmt.Sprintf("malformed body: %v", err)}
	}
	if payload.TransactionId == "" {
		return initiation, &gateways.Error{StatusCode: resp.StatusCode, Detail: "no transaction_id in response"}
	}

	initiation = gateways.Initiation{
		TransactionId: payload.TransactionId,
		Status:        payload.Status,
	}
	return initiation, nil
}

func (g *Gateway) Verify(ctx context.Context, req gateways.VerifyRequest) (verification gateways.Verification, err error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, g.url+"/verify/"+req.TransactionId, nil)
	if err != nil {
		return verification, fmt.Errorf("failed to prepare verify request: %w", err)
	}

	resp, err := g.do(httpReq)
	if err != nil {
		return verification, fmt.Errorf("failed to reach gateway: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		raw, _ := io.ReadAll(resp.Body)
		return verification, &gateways.Error{StatusCode: resp.StatusCode, Detail: rejectionDetail(raw)}
	}

	var payload struct {
		Status string `json:"status"`
	}
	err = json.NewDecoder(resp.Body).Decode(&payload)
	if err != nil {
		return verification, &gateways.Error{StatusCode: resp.StatusCode, Detail: fmt.Sprintf("malformed body: %v", err)}
	}

	verification = gateways.Verification{Status: payload.Status}
	return verification, nil
}
