package gateway

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/require"

	cfgpkg "github.com/inkwell-labs/inkwell/pkg/config"
	"github.com/inkwell-labs/inkwell/pkg/types"
)

const testHashSecret = "test-hash-secret"

func newTestVNPayClient() *VNPayClient {
	return NewVNPayClient(&cfgpkg.Config{
		VNPay: cfgpkg.VNPayConfig{TmnCode: "INKWELL1", HashSecret: testHashSecret},
	}, nil)
}

func signedIPNQuery(responseCode string) url.Values {
	q := url.Values{}
	q.Set("vnp_TmnCode", "INKWELL1")
	q.Set("vnp_TxnRef", "1735030000123")
	q.Set("vnp_Amount", "4100000")
	q.Set("vnp_ResponseCode", responseCode)
	q.Set("vnp_TransactionNo", "14226112")
	q.Set("vnp_BankCode", "NCB")
	q.Set("vnp_SecureHash", SignVNPayParams(testHashSecret, q))
	return q
}

func TestVNPayParseIPN_Success(t *testing.T) {
	c := newTestVNPayClient()
	evt, err := c.ParseIPN(signedIPNQuery("00"))
	require.NoError(t, err)
	require.Equal(t, types.PaymentProviderVNPay, evt.Provider)
	require.Equal(t, int64(1735030000123), evt.OrderCode)
	// vnp_Amount carries the x100 value.
	require.Equal(t, int64(41000), evt.Amount)
	require.True(t, evt.Succeeded)
}

func TestVNPayParseIPN_UserCancelled(t *testing.T) {
	c := newTestVNPayClient()
	evt, err := c.ParseIPN(signedIPNQuery("24"))
	require.NoError(t, err)
	require.False(t, evt.Succeeded)
}

func TestVNPayParseIPN_TamperedAmount(t *testing.T) {
	c := newTestVNPayClient()
	q := signedIPNQuery("00")
	q.Set("vnp_Amount", "100")

	_, err := c.ParseIPN(q)
	require.Error(t, err)
	require.Contains(t, err.Error(), "signature mismatch")
}

func TestSignVNPayParams_SortedAndEncoded(t *testing.T) {
	a := url.Values{}
	a.Set("vnp_OrderInfo", "premium 30 days")
	a.Set("vnp_Amount", "4100000")

	b := url.Values{}
	b.Set("vnp_Amount", "4100000")
	b.Set("vnp_OrderInfo", "premium 30 days")

	require.Equal(t, SignVNPayParams(testHashSecret, a), SignVNPayParams(testHashSecret, b))
	require.Equal(t,
		hmacSHA512Hex(testHashSecret, "vnp_Amount=4100000&vnp_OrderInfo=premium+30+days"),
		SignVNPayParams(testHashSecret, a))
}
