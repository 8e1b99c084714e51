// Package payment builds gateway redirect URLs and verifies the
// asynchronous callbacks the gateway sends back. The canonical string
// hashed on both sides is the interoperability contract: field order,
// the pipe delimiter and the two-decimal amount format must match the
// verifier exactly.
package payment

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"net/url"
	"strings"

	"shop-service/config"
	"shop-service/internal/models"
)

// StatusCodeSuccess is the gateway's status_code for a captured payment.
const StatusCodeSuccess = "2"

var (
	ErrInvalidAmount    = fmt.Errorf("payment: amount must be positive")
	ErrMissingSignature = fmt.Errorf("payment: callback signature missing")
	ErrBadSignature     = fmt.Errorf("payment: callback signature mismatch")
)

// Builder derives redirect URLs and integrity digests from order data and
// the merchant secret. It is deterministic and side-effect free.
type Builder struct {
	cfg config.PaymentConfig
}

// NewBuilder creates a payment-link builder from merchant configuration
func NewBuilder(cfg config.PaymentConfig) *Builder {
	return &Builder{cfg: cfg}
}

// BuildRedirect assembles the checkout URL for a card order. Amount is in
// minor currency units; non-positive amounts are rejected rather than
// encoded.
func (b *Builder) BuildRedirect(orderID string, amount int64, items []models.OrderItemData) (string, error) {
	if amount <= 0 {
		return "", ErrInvalidAmount
	}

	amountStr := FormatAmount(amount)
	itemsStr := SerializeItems(items)
	digest := b.sign(b.cfg.MerchantID, orderID, amountStr, b.cfg.Currency, itemsStr)

	q := url.Values{}
	q.Set("merchant_id", b.cfg.MerchantID)
	q.Set("return_url", b.cfg.ReturnURL)
	q.Set("cancel_url", b.cfg.CancelURL)
	q.Set("notify_url", b.cfg.NotifyURL)
	q.Set("order_id", orderID)
	q.Set("items", itemsStr)
	q.Set("currency", b.cfg.Currency)
	q.Set("amount", amountStr)
	q.Set("hash", digest)

	return b.cfg.CheckoutURL + "?" + q.Encode(), nil
}

// Notification is the parsed body of a gateway callback.
type Notification struct {
	MerchantID string
	OrderID    string
	PaymentID  string
	Amount     string
	Currency   string
	StatusCode string
	Signature  string
}

// VerifyCallback recomputes the callback digest and compares it in
// constant time. Unsigned or tampered callbacks are rejected before any
// field is trusted.
func (b *Builder) VerifyCallback(n Notification) error {
	if n.Signature == "" {
		return ErrMissingSignature
	}

	expected := b.SignNotification(n)
	if !hmac.Equal([]byte(expected), []byte(strings.ToLower(n.Signature))) {
		return ErrBadSignature
	}
	return nil
}

// SignNotification computes the callback digest for a notification the
// way the gateway does. Exposed for sandbox tooling and test fixtures.
func (b *Builder) SignNotification(n Notification) string {
	return b.sign(n.MerchantID, n.OrderID, n.PaymentID, n.Amount, n.Currency, n.StatusCode)
}

// sign joins the fields with the pipe delimiter and returns the
// hex-encoded HMAC-SHA256 digest under the merchant secret.
func (b *Builder) sign(fields ...string) string {
	canonical := strings.Join(fields, "|")
	mac := hmac.New(sha256.New, []byte(b.cfg.Secret))
	mac.Write([]byte(canonical))
	return hex.EncodeToString(mac.Sum(nil))
}

// FormatAmount renders minor currency units with exactly two decimals.
func FormatAmount(cents int64) string {
	return fmt.Sprintf("%d.%02d", cents/100, cents%100)
}

// SerializeItems renders line items as "Name xQty" joined by commas, the
// display form the gateway echoes on its hosted page.
func SerializeItems(items []models.OrderItemData) string {
	parts := make([]string, len(items))
	for i, item := range items {
		parts[i] = fmt.Sprintf("%s x%d", item.ProductName, item.Quantity)
	}
	return strings.Join(parts, ", ")
}
