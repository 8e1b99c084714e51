package payment

import (
	"net/url"
	"strings"
	"testing"

	"shop-service/config"
	"shop-service/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig() config.PaymentConfig {
	return config.PaymentConfig{
		MerchantID:  "1211149",
		Secret:      "test-merchant-secret",
		CheckoutURL: "https://sandbox.payhere.lk/pay/checkout",
		ReturnURL:   "http://localhost:3000/payment/success",
		CancelURL:   "http://localhost:3000/payment/cancel",
		NotifyURL:   "http://localhost:8080/api/orders/payhere-webhook",
		Currency:    "LKR",
	}
}

func testItems() []models.OrderItemData {
	return []models.OrderItemData{
		{ProductID: "p1", ProductName: "Blue T-Shirt", Quantity: 2, UnitPrice: 1000},
	}
}

func TestBuildRedirectDeterministic(t *testing.T) {
	b := NewBuilder(testConfig())

	url1, err := b.BuildRedirect("ord-abc123", 2000, testItems())
	require.NoError(t, err)
	url2, err := b.BuildRedirect("ord-abc123", 2000, testItems())
	require.NoError(t, err)

	assert.Equal(t, url1, url2)
}

func TestBuildRedirectURLShape(t *testing.T) {
	b := NewBuilder(testConfig())

	payURL, err := b.BuildRedirect("ord-abc123", 2000, testItems())
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(payURL, "https://sandbox.payhere.lk/pay/checkout?"))

	parsed, err := url.Parse(payURL)
	require.NoError(t, err)
	q := parsed.Query()

	assert.Equal(t, "1211149", q.Get("merchant_id"))
	assert.Equal(t, "ord-abc123", q.Get("order_id"))
	assert.Equal(t, "20.00", q.Get("amount"))
	assert.Equal(t, "LKR", q.Get("currency"))
	assert.Equal(t, "Blue T-Shirt x2", q.Get("items"))
	assert.NotEmpty(t, q.Get("return_url"))
	assert.NotEmpty(t, q.Get("cancel_url"))
	assert.NotEmpty(t, q.Get("notify_url"))

	hash := q.Get("hash")
	assert.Len(t, hash, 64)
	for _, c := range hash {
		assert.Contains(t, "0123456789abcdef", string(c))
	}
}

func TestBuildRedirectRejectsBadAmount(t *testing.T) {
	b := NewBuilder(testConfig())

	_, err := b.BuildRedirect("ord-abc123", 0, testItems())
	assert.ErrorIs(t, err, ErrInvalidAmount)

	_, err = b.BuildRedirect("ord-abc123", -500, testItems())
	assert.ErrorIs(t, err, ErrInvalidAmount)
}

func TestDigestChangesWithEveryField(t *testing.T) {
	base := testConfig()
	b := NewBuilder(base)

	baseURL, err := b.BuildRedirect("ord-abc123", 2000, testItems())
	require.NoError(t, err)
	baseHash := hashOf(t, baseURL)

	// Different order id
	u, err := b.BuildRedirect("ord-xyz789", 2000, testItems())
	require.NoError(t, err)
	assert.NotEqual(t, baseHash, hashOf(t, u))

	// Different amount
	u, err = b.BuildRedirect("ord-abc123", 2001, testItems())
	require.NoError(t, err)
	assert.NotEqual(t, baseHash, hashOf(t, u))

	// Different items
	otherItems := []models.OrderItemData{
		{ProductName: "Blue T-Shirt", Quantity: 3},
	}
	u, err = b.BuildRedirect("ord-abc123", 2000, otherItems)
	require.NoError(t, err)
	assert.NotEqual(t, baseHash, hashOf(t, u))

	// Different merchant id
	altCfg := base
	altCfg.MerchantID = "9999999"
	u, err = NewBuilder(altCfg).BuildRedirect("ord-abc123", 2000, testItems())
	require.NoError(t, err)
	assert.NotEqual(t, baseHash, hashOf(t, u))

	// Different currency
	altCfg = base
	altCfg.Currency = "USD"
	u, err = NewBuilder(altCfg).BuildRedirect("ord-abc123", 2000, testItems())
	require.NoError(t, err)
	assert.NotEqual(t, baseHash, hashOf(t, u))

	// Different secret
	altCfg = base
	altCfg.Secret = "another-secret"
	u, err = NewBuilder(altCfg).BuildRedirect("ord-abc123", 2000, testItems())
	require.NoError(t, err)
	assert.NotEqual(t, baseHash, hashOf(t, u))
}

func hashOf(t *testing.T, rawURL string) string {
	t.Helper()
	parsed, err := url.Parse(rawURL)
	require.NoError(t, err)
	return parsed.Query().Get("hash")
}

func TestVerifyCallback(t *testing.T) {
	b := NewBuilder(testConfig())

	n := Notification{
		MerchantID: "1211149",
		OrderID:    "ord-abc123",
		PaymentID:  "pay-555",
		Amount:     "20.00",
		Currency:   "LKR",
		StatusCode: StatusCodeSuccess,
	}
	n.Signature = b.SignNotification(n)

	assert.NoError(t, b.VerifyCallback(n))

	// Uppercase hex from the gateway is accepted
	upper := n
	upper.Signature = strings.ToUpper(n.Signature)
	assert.NoError(t, b.VerifyCallback(upper))

	// Missing signature
	unsigned := n
	unsigned.Signature = ""
	assert.ErrorIs(t, b.VerifyCallback(unsigned), ErrMissingSignature)

	// Tampered status code
	tampered := n
	tampered.StatusCode = "0"
	assert.ErrorIs(t, b.VerifyCallback(tampered), ErrBadSignature)

	// Tampered amount
	tampered = n
	tampered.Amount = "2000.00"
	assert.ErrorIs(t, b.VerifyCallback(tampered), ErrBadSignature)
}

func TestFormatAmount(t *testing.T) {
	assert.Equal(t, "20.00", FormatAmount(2000))
	assert.Equal(t, "0.05", FormatAmount(5))
	assert.Equal(t, "1234.56", FormatAmount(123456))
}

func TestSerializeItems(t *testing.T) {
	items := []models.OrderItemData{
		{ProductName: "Blue T-Shirt", Quantity: 2},
		{ProductName: "Cap", Quantity: 1},
	}
	assert.Equal(t, "Blue T-Shirt x2, Cap x1", SerializeItems(items))
	assert.Equal(t, "", SerializeItems(nil))
}
