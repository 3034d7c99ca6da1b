package payment

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/pulsehub/pulsehub/internal/config"
	"go.uber.org/zap"
)

// HostedGateway talks to the hosted marketplace-payments API over HTTP.
type HostedGateway struct {
	baseURL   string
	apiKey    string
	apiSecret string
	client    *http.Client
	log       *zap.Logger
}

func NewHostedGateway(cfg config.Config, log *zap.Logger) (*HostedGateway, error) {
	baseURL := strings.TrimSpace(cfg.Gateway.BaseURL)
	if baseURL == "" {
		return nil, ErrInvalidConfig
	}
	if strings.TrimSpace(cfg.Gateway.APIKey) == "" || strings.TrimSpace(cfg.Gateway.APISecret) == "" {
		return nil, ErrInvalidConfig
	}

	return &HostedGateway{
		baseURL:   strings.TrimRight(baseURL, "/"),
		apiKey:    cfg.Gateway.APIKey,
		apiSecret: cfg.Gateway.APISecret,
		client:    &http.Client{Timeout: 15 * time.Second},
		log:       log.Named("providers.payment"),
	}, nil
}

type checkoutSessionPayload struct {
	BuyerID     string `json:"buyer_id"`
	BuyerEmail  string `json:"buyer_email"`
	PayoutKey   string `json:"payout_key"`
	ItemName    string `json:"item_name"`
	Amount      int64  `json:"amount"`
	Currency    string `json:"currency"`
	Commission  int64  `json:"commission"`
	CallbackURL string `json:"callback_url"`
}

type checkoutSessionResponse struct {
	Token       string `json:"token"`
	CheckoutURL string `json:"checkout_url"`
	Message     string `json:"message"`
}

type verifyResponse struct {
	PaymentID     string `json:"payment_id"`
	Status        string `json:"status"`
	FailureReason string `json:"failure_reason"`
	Amount        int64  `json:"amount"`
	Currency      string `json:"currency"`
}

func (g *HostedGateway) CreateCheckoutSession(ctx context.Context, req CheckoutRequest) (*CheckoutSession, error) {
	if req.AmountCents <= 0 {
		return nil, ErrInvalidAmount
	}

	payload := checkoutSessionPayload{
		BuyerID:     req.BuyerID,
		BuyerEmail:  req.BuyerEmail,
		PayoutKey:   req.SellerPayoutKey,
		ItemName:    req.ItemName,
		Amount:      req.AmountCents,
		Currency:    normalizeCurrency(req.Currency),
		Commission:  req.CommissionCents,
		CallbackURL: req.CallbackURL,
	}

	var resp checkoutSessionResponse
	if err := g.do(ctx, http.MethodPost, "/v1/checkout/sessions", payload, &resp); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCheckoutInit, err)
	}
	if strings.TrimSpace(resp.Token) == "" || strings.TrimSpace(resp.CheckoutURL) == "" {
		if strings.TrimSpace(resp.Message) != "" {
			return nil, fmt.Errorf("%w: %s", ErrCheckoutInit, resp.Message)
		}
		return nil, ErrCheckoutInit
	}

	return &CheckoutSession{
		SessionToken: resp.Token,
		CheckoutURL:  resp.CheckoutURL,
	}, nil
}

func (g *HostedGateway) VerifyPayment(ctx context.Context, sessionToken string) (*Verification, error) {
	sessionToken = strings.TrimSpace(sessionToken)
	if sessionToken == "" {
		return nil, ErrSessionNotFound
	}

	path := "/v1/checkout/sessions/" + url.PathEscape(sessionToken)
	var resp verifyResponse
	if err := g.do(ctx, http.MethodGet, path, nil, &resp); err != nil {
		return nil, err
	}

	confirmed := strings.EqualFold(strings.TrimSpace(resp.Status), "succeeded")
	reason := strings.TrimSpace(resp.FailureReason)
	if !confirmed && reason == "" {
		reason = "payment_failed"
	}

	return &Verification{
		Confirmed:     confirmed,
		PaymentID:     resp.PaymentID,
		FailureReason: reason,
		AmountCents:   resp.Amount,
		Currency:      resp.Currency,
	}, nil
}

func (g *HostedGateway) do(ctx context.Context, method, path string, body any, out any) error {
	var reader *bytes.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(encoded)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, g.baseURL+path, reader)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.SetBasicAuth(g.apiKey, g.apiSecret)

	resp, err := g.client.Do(req)
	if err != nil {
		g.log.Warn("gateway request failed", zap.String("path", path), zap.Error(err))
		return err
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return ErrSessionNotFound
	case resp.StatusCode >= http.StatusBadRequest:
		g.log.Warn("gateway error response",
			zap.String("path", path),
			zap.Int("status", resp.StatusCode),
		)
		return fmt.Errorf("gateway returned status %d", resp.StatusCode)
	}

	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

func normalizeCurrency(currency string) string {
	currency = strings.ToUpper(strings.TrimSpace(currency))
	if currency == "" {
		return "USD"
	}
	return currency
}
