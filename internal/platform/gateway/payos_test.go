package gateway

import (
	"encoding/json"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	cfgpkg "github.com/inkwell-labs/inkwell/pkg/config"
	"github.com/inkwell-labs/inkwell/pkg/types"
)

const testChecksumKey = "test-checksum-key"

func newTestPayOSClient() *PayOSClient {
	return NewPayOSClient(&cfgpkg.Config{
		PayOS: cfgpkg.PayOSConfig{ChecksumKey: testChecksumKey},
	}, nil)
}

func signedWebhookBody(t *testing.T, code string, data map[string]any) []byte {
	t.Helper()
	dataBytes, err := json.Marshal(data)
	require.NoError(t, err)
	sig, err := SignPayOSData(testChecksumKey, dataBytes)
	require.NoError(t, err)
	return []byte(fmt.Sprintf(`{"code":%q,"desc":"success","data":%s,"signature":%q}`, code, dataBytes, sig))
}

func TestPayOSParseWebhook_Success(t *testing.T) {
	c := newTestPayOSClient()
	body := signedWebhookBody(t, "00", map[string]any{
		"orderCode": 1735030000123,
		"amount":    41000,
		"code":      "00",
		"desc":      "success",
		"reference": "FT24123456",
	})

	evt, err := c.ParseWebhook(body)
	require.NoError(t, err)
	require.Equal(t, types.PaymentProviderPayOS, evt.Provider)
	require.Equal(t, int64(1735030000123), evt.OrderCode)
	require.Equal(t, int64(41000), evt.Amount)
	require.True(t, evt.Succeeded)
}

func TestPayOSParseWebhook_FailureCode(t *testing.T) {
	c := newTestPayOSClient()
	body := signedWebhookBody(t, "00", map[string]any{
		"orderCode": 42,
		"amount":    41000,
		"code":      "01",
	})

	evt, err := c.ParseWebhook(body)
	require.NoError(t, err)
	require.False(t, evt.Succeeded)
}

func TestPayOSParseWebhook_BadSignature(t *testing.T) {
	c := newTestPayOSClient()
	body := []byte(`{"code":"00","data":{"orderCode":42,"amount":41000,"code":"00"},"signature":"deadbeef"}`)

	_, err := c.ParseWebhook(body)
	require.Error(t, err)
	require.Contains(t, err.Error(), "signature mismatch")
}

func TestSignPayOSData_Deterministic(t *testing.T) {
	// Key order in the JSON must not matter; null serializes as empty.
	a := json.RawMessage(`{"b":"2","a":1,"c":null}`)
	b := json.RawMessage(`{"c":null,"a":1,"b":"2"}`)

	sigA, err := SignPayOSData(testChecksumKey, a)
	require.NoError(t, err)
	sigB, err := SignPayOSData(testChecksumKey, b)
	require.NoError(t, err)
	require.Equal(t, sigA, sigB)

	// Large order codes must keep integer formatting, not float notation.
	big := json.RawMessage(`{"orderCode":1735030000123}`)
	sigBig, err := SignPayOSData(testChecksumKey, big)
	require.NoError(t, err)
	require.Equal(t, hmacSHA256Hex(testChecksumKey, "orderCode=1735030000123"), sigBig)
}
