package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"shop-service/config"
	"shop-service/internal/models"
	"shop-service/internal/payment"
	"shop-service/internal/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// memOrderStore backs OrderService tests without a database.
type memOrderStore struct {
	products      []models.Product
	orders        map[string]*models.Order
	created       *models.Order
	decremented   bool
	restored      bool
	statusUpdates []string
	processed     map[string]bool
}

func newMemOrderStore(products ...models.Product) *memOrderStore {
	return &memOrderStore{
		products:  products,
		orders:    make(map[string]*models.Order),
		processed: make(map[string]bool),
	}
}

func (m *memOrderStore) GetProductsByIDs(ctx context.Context, ids []string) ([]models.Product, error) {
	return m.products, nil
}

func (m *memOrderStore) DecrementStockTx(ctx context.Context, items []models.OrderItemData) error {
	m.decremented = true
	return nil
}

func (m *memOrderStore) RestoreStock(ctx context.Context, items []models.OrderItemData) error {
	m.restored = true
	return nil
}

func (m *memOrderStore) CreateOrder(ctx context.Context, order *models.Order) error {
	m.created = order
	m.orders[order.ID] = order
	return nil
}

func (m *memOrderStore) GetOrderByID(ctx context.Context, id string) (*models.Order, error) {
	if order, ok := m.orders[id]; ok {
		return order, nil
	}
	return nil, store.ErrNoRows
}

func (m *memOrderStore) GetOrderByTrackingCode(ctx context.Context, code string) (*models.Order, error) {
	for _, order := range m.orders {
		if order.TrackingCode == code {
			return order, nil
		}
	}
	return nil, store.ErrNoRows
}

func (m *memOrderStore) GetOrders(ctx context.Context) ([]models.Order, error) {
	return nil, nil
}

func (m *memOrderStore) GetOrdersByUserID(ctx context.Context, userID string) ([]models.Order, error) {
	return nil, nil
}

func (m *memOrderStore) UpdateOrderStatus(ctx context.Context, orderID, status string) error {
	m.statusUpdates = append(m.statusUpdates, status)
	if order, ok := m.orders[orderID]; ok {
		order.Status = status
	}
	return nil
}

func (m *memOrderStore) DeleteOrder(ctx context.Context, orderID string) (string, error) {
	order, ok := m.orders[orderID]
	if !ok {
		return "", store.ErrNoRows
	}
	delete(m.orders, orderID)
	return order.TrackingCode, nil
}

func (m *memOrderStore) IsEventProcessed(ctx context.Context, eventID string) (bool, error) {
	return m.processed[eventID], nil
}

func (m *memOrderStore) MarkEventProcessed(ctx context.Context, eventID, eventType string) error {
	m.processed[eventID] = true
	return nil
}

type memEvents struct {
	created []*models.OrderCreatedEvent
	paid    []*models.OrderPaidEvent
}

func (m *memEvents) PublishOrderCreated(ctx context.Context, event *models.OrderCreatedEvent) error {
	m.created = append(m.created, event)
	return nil
}

func (m *memEvents) PublishOrderPaid(ctx context.Context, event *models.OrderPaidEvent) error {
	m.paid = append(m.paid, event)
	return nil
}

func (m *memEvents) PublishOrderStatusChanged(ctx context.Context, event *models.OrderStatusChangedEvent) error {
	return nil
}

func (m *memEvents) PublishOrderDeleted(ctx context.Context, event *models.OrderDeletedEvent) error {
	return nil
}

type memCache struct{}

func (memCache) MarkWebhookSeen(ctx context.Context, paymentID string, ttl time.Duration) (bool, error) {
	return true, nil
}

func (memCache) ClearWebhookSeen(ctx context.Context, paymentID string) error {
	return nil
}

func testBuilder() *payment.Builder {
	return payment.NewBuilder(config.PaymentConfig{
		MerchantID:  "1211149",
		Secret:      "test-merchant-secret",
		CheckoutURL: "https://sandbox.payhere.lk/pay/checkout",
		Currency:    "LKR",
	})
}

func newTestOrderService(store *memOrderStore, events *memEvents) *OrderService {
	return NewOrderService(store, memCache{}, testBuilder(), events, false)
}

func TestTrackingCode(t *testing.T) {
	code := TrackingCode("3f1c9a2e-0d4b-4f6a-9c8e-5b7d2a1e4c6f")

	assert.Equal(t, "ORD-1E4C6F", code)
	assert.Len(t, code, 10)
}

func TestTrackingCodeShortID(t *testing.T) {
	assert.Equal(t, "ORD-AB12", TrackingCode("ab12"))
}

func TestCalculateTotal(t *testing.T) {
	items := []models.OrderItemData{
		{ProductID: "p1", Quantity: 2, UnitPrice: 1000},
		{ProductID: "p2", Quantity: 1, UnitPrice: 500},
	}

	assert.Equal(t, int64(2500), calculateTotal(items))
	assert.Equal(t, int64(0), calculateTotal(nil))
}

func TestValidateTransition(t *testing.T) {
	tests := []struct {
		name    string
		from    string
		to      string
		wantErr bool
	}{
		{"pending to paid", models.OrderStatusPending, models.OrderStatusPaid, false},
		{"pending to packed (COD)", models.OrderStatusPending, models.OrderStatusPacked, false},
		{"paid to packed", models.OrderStatusPaid, models.OrderStatusPacked, false},
		{"packed to ready", models.OrderStatusPacked, models.OrderStatusReadyToDeliver, false},
		{"ready to delivered", models.OrderStatusReadyToDeliver, models.OrderStatusDelivered, false},
		{"skip to delivered", models.OrderStatusPending, models.OrderStatusDelivered, true},
		{"reverse", models.OrderStatusPacked, models.OrderStatusPending, true},
		{"delivered is terminal", models.OrderStatusDelivered, models.OrderStatusPacked, true},
		{"no self loop", models.OrderStatusPacked, models.OrderStatusPacked, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateTransition(tt.from, tt.to)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrValidation)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidOrderStatus(t *testing.T) {
	assert.True(t, models.ValidOrderStatus(models.OrderStatusPending))
	assert.True(t, models.ValidOrderStatus(models.OrderStatusDelivered))
	assert.False(t, models.ValidOrderStatus("Shipped"))
	assert.False(t, models.ValidOrderStatus(""))
}

func TestCreateOrderRejectsTotalMismatch(t *testing.T) {
	st := newMemOrderStore(models.Product{ID: "p1", Name: "Mug", Price: 1000, Stock: 10})
	svc := newTestOrderService(st, &memEvents{})

	req := &CreateOrderRequest{
		Items:         []OrderItemRequest{{ProductID: "p1", Quantity: 2}},
		TotalAmount:   1500, // computed total is 2000
		PaymentMethod: models.PaymentMethodCOD,
		Address:       "12 Lake Rd",
		City:          "Colombo",
		Phone:         "0771234567",
	}

	resp, err := svc.Create(context.Background(), "user-1", req)

	assert.Nil(t, resp)
	assert.ErrorIs(t, err, ErrValidation)
	assert.Nil(t, st.created)
	assert.False(t, st.decremented)
}

func TestCreateOrderCOD(t *testing.T) {
	st := newMemOrderStore(models.Product{ID: "p1", Name: "Mug", Price: 1000, Stock: 10})
	events := &memEvents{}
	svc := newTestOrderService(st, events)

	req := &CreateOrderRequest{
		Items:         []OrderItemRequest{{ProductID: "p1", Quantity: 2}},
		TotalAmount:   2000,
		PaymentMethod: models.PaymentMethodCOD,
		Address:       "12 Lake Rd",
		City:          "Colombo",
		Phone:         "0771234567",
	}

	resp, err := svc.Create(context.Background(), "user-1", req)
	require.NoError(t, err)

	assert.Equal(t, CODConfirmedMsg, resp.Msg)
	assert.Equal(t, TrackingCode(resp.OrderID), resp.TrackingCode)
	assert.Len(t, resp.TrackingCode, 10)
	assert.Empty(t, resp.PayURL)

	require.NotNil(t, st.created)
	assert.Equal(t, models.OrderStatusPending, st.created.Status)
	assert.Equal(t, int64(2000), st.created.TotalAmount)
	assert.True(t, st.decremented)
	require.Len(t, events.created, 1)
	assert.Equal(t, resp.OrderID, events.created[0].OrderID)
}

func TestCreateOrderCardReturnsPayURL(t *testing.T) {
	st := newMemOrderStore(models.Product{ID: "p1", Name: "Mug", Price: 1000, Stock: 10})
	svc := newTestOrderService(st, &memEvents{})

	req := &CreateOrderRequest{
		Items:         []OrderItemRequest{{ProductID: "p1", Quantity: 1}},
		TotalAmount:   1000,
		PaymentMethod: models.PaymentMethodCard,
		Address:       "12 Lake Rd",
		City:          "Colombo",
		Phone:         "0771234567",
	}

	resp, err := svc.Create(context.Background(), "user-1", req)
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(resp.PayURL, "https://sandbox.payhere.lk/pay/checkout?"))
	assert.Empty(t, resp.Msg)
	// The order waits for the gateway callback.
	require.NotNil(t, st.created)
	assert.Equal(t, models.OrderStatusPending, st.created.Status)
}

func TestConfirmPaymentIdempotent(t *testing.T) {
	st := newMemOrderStore()
	st.orders["o1"] = &models.Order{
		ID:           "o1",
		TrackingCode: "ORD-ABC123",
		Status:       models.OrderStatusPending,
		TotalAmount:  2000,
	}
	events := &memEvents{}
	svc := newTestOrderService(st, events)

	require.NoError(t, svc.ConfirmPayment(context.Background(), "o1", "pay-1"))
	assert.Equal(t, []string{models.OrderStatusPaid}, st.statusUpdates)
	require.Len(t, events.paid, 1)
	assert.Equal(t, "pay-1", events.paid[0].PaymentID)

	// A redelivered callback changes nothing.
	require.NoError(t, svc.ConfirmPayment(context.Background(), "o1", "pay-1"))
	assert.Equal(t, []string{models.OrderStatusPaid}, st.statusUpdates)
	assert.Len(t, events.paid, 1)
}
