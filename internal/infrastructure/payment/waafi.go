// Package payment adapts the WaafiPay API for EVC Plus mobile wallet charges.
package payment

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/brightnest/cleaning-portal/internal/core/ports"
)

const (
	schemaVersion = "1.0"
	channelName   = "WEB"
	serviceName   = "API_PURCHASE"
	paymentMethod = "mwallet_account"

	defaultTimeout  = 30 * time.Second
	defaultCurrency = "USD"
	maxResponseSize = 1 << 20
)

// Config holds the merchant credentials issued by the gateway.
type Config struct {
	BaseURL     string
	MerchantUID string
	APIUserID   string
	APIKey      string
	Currency    string
	Timeout     time.Duration
}

// WaafiClient implements ports.PaymentGateway.
type WaafiClient struct {
	cfg  Config
	http *http.Client
	log  zerolog.Logger
	now  func() time.Time
}

func NewWaafiClient(cfg Config, log zerolog.Logger) *WaafiClient {
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	if cfg.Currency == "" {
		cfg.Currency = defaultCurrency
	}
	return &WaafiClient{
		cfg:  cfg,
		http: &http.Client{Timeout: cfg.Timeout},
		log:  log,
		now:  time.Now,
	}
}

type waafiRequest struct {
	SchemaVersion string        `json:"schemaVersion"`
	RequestID     string        `json:"requestId"`
	Timestamp     string        `json:"timestamp"`
	ChannelName   string        `json:"channelName"`
	ServiceName   string        `json:"serviceName"`
	ServiceParams serviceParams `json:"serviceParams"`
}

type serviceParams struct {
	MerchantUID     string          `json:"merchantUid"`
	APIUserID       string          `json:"apiUserId"`
	APIKey          string          `json:"apiKey"`
	PaymentMethod   string          `json:"paymentMethod"`
	PayerInfo       payerInfo       `json:"payerInfo"`
	TransactionInfo transactionInfo `json:"transactionInfo"`
}

type payerInfo struct {
	AccountNo string `json:"accountNo"`
}

type transactionInfo struct {
	ReferenceID string `json:"referenceId"`
	InvoiceID   string `json:"invoiceId"`
	Amount      string `json:"amount"`
	Currency    string `json:"currency"`
	Description string `json:"description"`
}

type waafiResponse struct {
	ResponseCode string `json:"responseCode"`
	ResponseMsg  string `json:"responseMsg"`
	Params       struct {
		TransactionID string `json:"transactionId"`
		ReferenceID   string `json:"referenceId"`
		State         string `json:"state"`
	} `json:"params"`
}

// Charge sends one purchase request. The receipt carries the gateway's code
// and message as returned; deciding approval is left to the caller.
func (c *WaafiClient) Charge(ctx context.Context, req ports.ChargeRequest) (*ports.ChargeReceipt, error) {
	currency := req.Currency
	if currency == "" {
		currency = c.cfg.Currency
	}
	body := waafiRequest{
		SchemaVersion: schemaVersion,
		RequestID:     uuid.NewString(),
		Timestamp:     c.now().UTC().Format("2006-01-02 15:04:05"),
		ChannelName:   channelName,
		ServiceName:   serviceName,
		ServiceParams: serviceParams{
			MerchantUID:   c.cfg.MerchantUID,
			APIUserID:     c.cfg.APIUserID,
			APIKey:        c.cfg.APIKey,
			PaymentMethod: paymentMethod,
			PayerInfo:     payerInfo{AccountNo: req.AccountNo},
			TransactionInfo: transactionInfo{
				ReferenceID: req.ReferenceID,
				InvoiceID:   req.InvoiceID,
				Amount:      strconv.FormatFloat(req.Amount, 'f', 2, 64),
				Currency:    currency,
				Description: req.Description,
			},
		},
	}

	raw, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("encode charge: %w", err)
	}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.BaseURL, bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("build charge request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("payment gateway unreachable: %w", err)
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return nil, fmt.Errorf("read charge response: %w", err)
	}
	if resp.StatusCode >= http.StatusInternalServerError {
		return nil, fmt.Errorf("payment gateway returned %d", resp.StatusCode)
	}

	var out waafiResponse
	if err := json.Unmarshal(payload, &out); err != nil {
		return nil, fmt.Errorf("decode charge response (status %d): %w", resp.StatusCode, err)
	}

	c.log.Debug().
		Str("reference_id", req.ReferenceID).
		Str("response_code", out.ResponseCode).
		Str("state", out.Params.State).
		Msg("charge answered")

	return &ports.ChargeReceipt{
		Code:          out.ResponseCode,
		Message:       out.ResponseMsg,
		ReferenceID:   out.Params.ReferenceID,
		TransactionID: out.Params.TransactionID,
		State:         out.Params.State,
	}, nil
}
