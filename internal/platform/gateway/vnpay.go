package gateway

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha512"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	cfgpkg "github.com/inkwell-labs/inkwell/pkg/config"
	"github.com/inkwell-labs/inkwell/pkg/tool"
	"github.com/inkwell-labs/inkwell/pkg/types"
)

// VNPayClient implements the VNPAY bank gateway: checkout is a redirect URL
// whose query string is signed with HMAC-SHA512, payment results arrive on
// the IPN endpoint as a signed query string, and settlement status can be
// polled through the querydr merchant API.
type VNPayClient struct {
	cfg  cfgpkg.VNPayConfig
	http *http.Client
	log  *zap.SugaredLogger
}

func NewVNPayClient(cfg *cfgpkg.Config, log *zap.SugaredLogger) *VNPayClient {
	return &VNPayClient{
		cfg:  cfg.VNPay,
		http: &http.Client{Timeout: 10 * time.Second},
		log:  log,
	}
}

func (c *VNPayClient) Provider() types.PaymentProvider { return types.PaymentProviderVNPay }

func (c *VNPayClient) CreateCheckout(ctx context.Context, req *CreateCheckoutRequest) (*Checkout, error) {
	now := time.Now()
	params := url.Values{}
	params.Set("vnp_Version", "2.1.0")
	params.Set("vnp_Command", "pay")
	params.Set("vnp_TmnCode", c.cfg.TmnCode)
	// VNPAY expects the amount multiplied by 100.
	params.Set("vnp_Amount", strconv.FormatInt(req.Amount*100, 10))
	params.Set("vnp_CurrCode", "VND")
	params.Set("vnp_TxnRef", strconv.FormatInt(req.OrderCode, 10))
	params.Set("vnp_OrderInfo", req.Description)
	params.Set("vnp_OrderType", "other")
	params.Set("vnp_Locale", "vn")
	params.Set("vnp_ReturnUrl", c.cfg.ReturnURL)
	params.Set("vnp_IpAddr", "127.0.0.1")
	params.Set("vnp_CreateDate", now.Format("20060102150405"))
	params.Set("vnp_ExpireDate", now.Add(15*time.Minute).Format("20060102150405"))

	signed := SignVNPayParams(c.cfg.HashSecret, params)
	params.Set("vnp_SecureHash", signed)

	return &Checkout{
		CheckoutURL: c.cfg.BaseURL + "?" + params.Encode(),
		OrderCode:   req.OrderCode,
	}, nil
}

func (c *VNPayClient) GetStatus(ctx context.Context, orderCode int64) (Status, error) {
	now := time.Now()
	// Order codes embed their creation second (see tool.GenerateOrderCode),
	// which querydr wants back as vnp_TransactionDate.
	txnDate := tool.OrderCodeTime(orderCode).Format("20060102150405")

	body := map[string]string{
		"vnp_RequestId":       tool.GenerateUUIDV7(),
		"vnp_Version":         "2.1.0",
		"vnp_Command":         "querydr",
		"vnp_TmnCode":         c.cfg.TmnCode,
		"vnp_TxnRef":          strconv.FormatInt(orderCode, 10),
		"vnp_OrderInfo":       "query transaction",
		"vnp_TransactionDate": txnDate,
		"vnp_CreateDate":      now.Format("20060102150405"),
		"vnp_IpAddr":          "127.0.0.1",
	}
	sigInput := strings.Join([]string{
		body["vnp_RequestId"], body["vnp_Version"], body["vnp_Command"], body["vnp_TmnCode"],
		body["vnp_TxnRef"], body["vnp_TransactionDate"], body["vnp_CreateDate"],
		body["vnp_IpAddr"], body["vnp_OrderInfo"],
	}, "|")
	body["vnp_SecureHash"] = hmacSHA512Hex(c.cfg.HashSecret, sigInput)

	payload, err := json.Marshal(body)
	if err != nil {
		return "", fmt.Errorf("vnpay: marshal querydr: %w", err)
	}
	queryURL := strings.Replace(c.cfg.BaseURL, "/vpcpay.html", "/merchant_webapi/api/transaction", 1)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, queryURL, bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("vnpay: build querydr request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 500 {
		return "", fmt.Errorf("%w: vnpay returned %d", ErrUnavailable, resp.StatusCode)
	}

	var out struct {
		ResponseCode      string `json:"vnp_ResponseCode"`
		TransactionStatus string `json:"vnp_TransactionStatus"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("%w: decode vnpay querydr response: %v", ErrUnavailable, err)
	}

	switch out.TransactionStatus {
	case "00":
		return StatusPaid, nil
	case "01":
		return StatusPending, nil
	case "02":
		return StatusCancelled, nil
	default:
		// Unknown transaction or gateway-side failure codes all map to
		// cancelled; reconciliation treats them as terminal failure.
		return StatusCancelled, nil
	}
}

// ParseIPN verifies and maps the instant-payment-notification query string
// VNPAY delivers after a payment attempt settles.
func (c *VNPayClient) ParseIPN(query url.Values) (*Event, error) {
	received := query.Get("vnp_SecureHash")
	if received == "" {
		return nil, fmt.Errorf("vnpay: ipn missing secure hash")
	}

	params := url.Values{}
	for k, vs := range query {
		if k == "vnp_SecureHash" || k == "vnp_SecureHashType" {
			continue
		}
		for _, v := range vs {
			params.Add(k, v)
		}
	}
	expected := SignVNPayParams(c.cfg.HashSecret, params)
	if !hmac.Equal([]byte(strings.ToLower(received)), []byte(expected)) {
		return nil, fmt.Errorf("vnpay: ipn signature mismatch")
	}

	orderCode, err := strconv.ParseInt(query.Get("vnp_TxnRef"), 10, 64)
	if err != nil {
		return nil, fmt.Errorf("vnpay: invalid vnp_TxnRef %q", query.Get("vnp_TxnRef"))
	}
	amount, _ := strconv.ParseInt(query.Get("vnp_Amount"), 10, 64)

	raw, _ := json.Marshal(flattenQuery(query))
	return &Event{
		Provider:  types.PaymentProviderVNPay,
		OrderCode: orderCode,
		Succeeded: query.Get("vnp_ResponseCode") == "00",
		Amount:    amount / 100,
		Raw:       raw,
	}, nil
}

// SignVNPayParams computes the HMAC-SHA512 secure hash over the URL-encoded
// parameters sorted by key, the scheme shared by the pay URL and the IPN.
func SignVNPayParams(secret string, params url.Values) string {
	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	pairs := make([]string, 0, len(keys))
	for _, k := range keys {
		pairs = append(pairs, url.QueryEscape(k)+"="+url.QueryEscape(params.Get(k)))
	}
	return hmacSHA512Hex(secret, strings.Join(pairs, "&"))
}

func flattenQuery(query url.Values) map[string]string {
	m := make(map[string]string, len(query))
	for k := range query {
		m[k] = query.Get(k)
	}
	return m
}

func hmacSHA512Hex(key, input string) string {
	mac := hmac.New(sha512.New, []byte(key))
	mac.Write([]byte(input))
	return hex.EncodeToString(mac.Sum(nil))
}
