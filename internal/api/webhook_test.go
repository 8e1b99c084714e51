package api

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"shop-service/config"
	"shop-service/internal/auth"
	"shop-service/internal/payment"
	"shop-service/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func newWebhookRouter() (*gin.Engine, *payment.Builder) {
	gin.SetMode(gin.TestMode)

	builder := payment.NewBuilder(config.PaymentConfig{
		MerchantID:  "1211149",
		Secret:      "test-merchant-secret",
		CheckoutURL: "https://sandbox.payhere.lk/pay/checkout",
		Currency:    "LKR",
	})

	h := NewHandler(nil, nil, nil, nil, builder,
		auth.NewJWTService("test-secret", time.Hour), 15*time.Second)

	router := gin.New()
	router.POST("/api/orders/payhere-webhook", h.paymentWebhook)
	return router, builder
}

func postWebhook(router *gin.Engine, form url.Values) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/orders/payhere-webhook",
		strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	router.ServeHTTP(w, req)
	return w
}

func TestWebhookRejectsUnsignedCallback(t *testing.T) {
	router, _ := newWebhookRouter()

	form := url.Values{}
	form.Set("merchant_id", "1211149")
	form.Set("order_id", "ord-abc123")
	form.Set("payment_id", "pay-555")
	form.Set("payhere_amount", "20.00")
	form.Set("payhere_currency", "LKR")
	form.Set("status_code", "2")

	w := postWebhook(router, form)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "invalid signature")
}

func TestWebhookRejectsTamperedCallback(t *testing.T) {
	router, _ := newWebhookRouter()

	form := url.Values{}
	form.Set("merchant_id", "1211149")
	form.Set("order_id", "ord-abc123")
	form.Set("payment_id", "pay-555")
	form.Set("payhere_amount", "20.00")
	form.Set("payhere_currency", "LKR")
	form.Set("status_code", "2")
	form.Set("signature", strings.Repeat("ab", 32))

	w := postWebhook(router, form)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestWebhookAcknowledgesNonSuccessStatus(t *testing.T) {
	router, builder := newWebhookRouter()

	// A correctly signed callback with a non-success status is
	// acknowledged but triggers no transition.
	n := payment.Notification{
		MerchantID: "1211149",
		OrderID:    "ord-abc123",
		PaymentID:  "pay-555",
		Amount:     "20.00",
		Currency:   "LKR",
		StatusCode: "0",
	}

	form := url.Values{}
	form.Set("merchant_id", n.MerchantID)
	form.Set("order_id", n.OrderID)
	form.Set("payment_id", n.PaymentID)
	form.Set("payhere_amount", n.Amount)
	form.Set("payhere_currency", n.Currency)
	form.Set("status_code", n.StatusCode)
	form.Set("signature", builder.SignNotification(n))

	w := postWebhook(router, form)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "OK", w.Body.String())
}

// unreachableStore trips on any data access the webhook path should not
// make; the one it does make fails like a dropped connection.
type unreachableStore struct {
	service.OrderStore
}

func (unreachableStore) IsEventProcessed(ctx context.Context, eventID string) (bool, error) {
	return false, errors.New("dial tcp: connection refused")
}

type recordingCache struct {
	cleared bool
}

func (c *recordingCache) MarkWebhookSeen(ctx context.Context, paymentID string, ttl time.Duration) (bool, error) {
	return true, nil
}

func (c *recordingCache) ClearWebhookSeen(ctx context.Context, paymentID string) error {
	c.cleared = true
	return nil
}

func TestWebhookAcknowledgesFailedConfirmation(t *testing.T) {
	gin.SetMode(gin.TestMode)

	builder := payment.NewBuilder(config.PaymentConfig{
		MerchantID:  "1211149",
		Secret:      "test-merchant-secret",
		CheckoutURL: "https://sandbox.payhere.lk/pay/checkout",
		Currency:    "LKR",
	})

	cache := &recordingCache{}
	orderService := service.NewOrderService(unreachableStore{}, cache, builder, nil, false)

	h := NewHandler(nil, orderService, nil, nil, builder,
		auth.NewJWTService("test-secret", time.Hour), 15*time.Second)

	router := gin.New()
	router.POST("/api/orders/payhere-webhook", h.paymentWebhook)

	n := payment.Notification{
		MerchantID: "1211149",
		OrderID:    "ord-abc123",
		PaymentID:  "pay-555",
		Amount:     "20.00",
		Currency:   "LKR",
		StatusCode: "2",
	}

	form := url.Values{}
	form.Set("merchant_id", n.MerchantID)
	form.Set("order_id", n.OrderID)
	form.Set("payment_id", n.PaymentID)
	form.Set("payhere_amount", n.Amount)
	form.Set("payhere_currency", n.Currency)
	form.Set("status_code", n.StatusCode)
	form.Set("signature", builder.SignNotification(n))

	w := postWebhook(router, form)

	// A verified callback is acknowledged with the fixed "OK" even when
	// confirmation fails internally, and the dedup marker is released so
	// a redelivery can complete the transition.
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "OK", w.Body.String())
	assert.True(t, cache.cleared)
}
