package gateway

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"

	cfgpkg "github.com/inkwell-labs/inkwell/pkg/config"
	"github.com/inkwell-labs/inkwell/pkg/types"
)

// PayOSClient talks to the PayOS payment-link API (api-merchant.payos.vn).
// Requests and webhooks are authenticated with an HMAC-SHA256 checksum over
// the alphabetically ordered key=value pairs of the payload.
type PayOSClient struct {
	cfg  cfgpkg.PayOSConfig
	http *http.Client
	log  *zap.SugaredLogger
}

func NewPayOSClient(cfg *cfgpkg.Config, log *zap.SugaredLogger) *PayOSClient {
	return &PayOSClient{
		cfg:  cfg.PayOS,
		http: &http.Client{Timeout: 10 * time.Second},
		log:  log,
	}
}

func (c *PayOSClient) Provider() types.PaymentProvider { return types.PaymentProviderPayOS }

type payosEnvelope struct {
	Code      string          `json:"code"`
	Desc      string          `json:"desc"`
	Data      json.RawMessage `json:"data"`
	Signature string          `json:"signature"`
}

type payosPaymentData struct {
	OrderCode   int64  `json:"orderCode"`
	Amount      int64  `json:"amount"`
	Status      string `json:"status"`
	CheckoutURL string `json:"checkoutUrl"`
	Code        string `json:"code"`
}

func (c *PayOSClient) CreateCheckout(ctx context.Context, req *CreateCheckoutRequest) (*Checkout, error) {
	body := map[string]any{
		"orderCode":   req.OrderCode,
		"amount":      req.Amount,
		"description": req.Description,
		"returnUrl":   c.cfg.ReturnURL,
		"cancelUrl":   c.cfg.CancelURL,
	}
	// Creation signature covers the five fixed fields, not the whole body.
	sigInput := fmt.Sprintf("amount=%d&cancelUrl=%s&description=%s&orderCode=%d&returnUrl=%s",
		req.Amount, c.cfg.CancelURL, req.Description, req.OrderCode, c.cfg.ReturnURL)
	body["signature"] = hmacSHA256Hex(c.cfg.ChecksumKey, sigInput)

	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("payos: marshal checkout request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.BaseURL+"/v2/payment-requests", bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("payos: build request: %w", err)
	}
	c.setHeaders(httpReq)

	env, err := c.do(httpReq)
	if err != nil {
		return nil, err
	}
	if env.Code != "00" {
		return nil, fmt.Errorf("payos: checkout rejected: code=%s desc=%s", env.Code, env.Desc)
	}

	var data payosPaymentData
	if err := json.Unmarshal(env.Data, &data); err != nil {
		return nil, fmt.Errorf("payos: decode checkout data: %w", err)
	}
	return &Checkout{CheckoutURL: data.CheckoutURL, OrderCode: data.OrderCode}, nil
}

func (c *PayOSClient) GetStatus(ctx context.Context, orderCode int64) (Status, error) {
	url := fmt.Sprintf("%s/v2/payment-requests/%d", c.cfg.BaseURL, orderCode)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", fmt.Errorf("payos: build status request: %w", err)
	}
	c.setHeaders(httpReq)

	env, err := c.do(httpReq)
	if err != nil {
		return "", err
	}
	if env.Code != "00" {
		return "", fmt.Errorf("payos: status rejected: code=%s desc=%s", env.Code, env.Desc)
	}

	var data payosPaymentData
	if err := json.Unmarshal(env.Data, &data); err != nil {
		return "", fmt.Errorf("payos: decode status data: %w", err)
	}
	switch data.Status {
	case "PAID":
		return StatusPaid, nil
	case "CANCELLED":
		return StatusCancelled, nil
	case "EXPIRED":
		return StatusExpired, nil
	default:
		// PENDING and PROCESSING both count as not yet settled.
		return StatusPending, nil
	}
}

// ParseWebhook verifies a webhook payload's checksum and maps it onto the
// provider-neutral Event. The caller owns the decision of what a duplicate
// or unknown order code means.
func (c *PayOSClient) ParseWebhook(body []byte) (*Event, error) {
	var env payosEnvelope
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, fmt.Errorf("payos: decode webhook: %w", err)
	}
	if env.Data == nil {
		return nil, fmt.Errorf("payos: webhook missing data")
	}

	expected, err := SignPayOSData(c.cfg.ChecksumKey, env.Data)
	if err != nil {
		return nil, fmt.Errorf("payos: sign webhook data: %w", err)
	}
	if !hmac.Equal([]byte(expected), []byte(env.Signature)) {
		return nil, fmt.Errorf("payos: webhook signature mismatch")
	}

	var data payosPaymentData
	if err := json.Unmarshal(env.Data, &data); err != nil {
		return nil, fmt.Errorf("payos: decode webhook data: %w", err)
	}

	return &Event{
		Provider:  types.PaymentProviderPayOS,
		OrderCode: data.OrderCode,
		Succeeded: env.Code == "00" && data.Code == "00",
		Amount:    data.Amount,
		Raw:       json.RawMessage(body),
	}, nil
}

func (c *PayOSClient) setHeaders(req *http.Request) {
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-client-id", c.cfg.ClientID)
	req.Header.Set("x-api-key", c.cfg.APIKey)
}

func (c *PayOSClient) do(req *http.Request) (*payosEnvelope, error) {
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 500 {
		return nil, fmt.Errorf("%w: payos returned %d", ErrUnavailable, resp.StatusCode)
	}

	var env payosEnvelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return nil, fmt.Errorf("%w: decode payos response: %v", ErrUnavailable, err)
	}
	return &env, nil
}

// SignPayOSData computes the webhook checksum: HMAC-SHA256 over the data
// object's keys sorted alphabetically and joined as key=value&key=value.
// Null values are serialized as empty strings, per the PayOS contract.
func SignPayOSData(checksumKey string, data json.RawMessage) (string, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var m map[string]any
	if err := dec.Decode(&m); err != nil {
		return "", err
	}

	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	pairs := make([]string, 0, len(keys))
	for _, k := range keys {
		pairs = append(pairs, k+"="+payosValueString(m[k]))
	}
	return hmacSHA256Hex(checksumKey, strings.Join(pairs, "&")), nil
}

func payosValueString(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case json.Number:
		return t.String()
	case bool:
		if t {
			return "true"
		}
		return "false"
	default:
		b, _ := json.Marshal(t)
		return string(b)
	}
}

func hmacSHA256Hex(key, input string) string {
	mac := hmac.New(sha256.New, []byte(key))
	mac.Write([]byte(input))
	return hex.EncodeToString(mac.Sum(nil))
}
