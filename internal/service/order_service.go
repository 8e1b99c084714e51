package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"shop-service/internal/models"
	"shop-service/internal/payment"
	"shop-service/internal/store"
	"shop-service/internal/util"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// CODConfirmedMsg is returned to the caller for cash-on-delivery orders.
const CODConfirmedMsg = "COD Order Confirmed"

// OrderStore is the slice of the data layer the order lifecycle touches.
// *store.Store satisfies it.
type OrderStore interface {
	GetProductsByIDs(ctx context.Context, ids []string) ([]models.Product, error)
	DecrementStockTx(ctx context.Context, items []models.OrderItemData) error
	RestoreStock(ctx context.Context, items []models.OrderItemData) error
	CreateOrder(ctx context.Context, order *models.Order) error
	GetOrderByID(ctx context.Context, id string) (*models.Order, error)
	GetOrderByTrackingCode(ctx context.Context, code string) (*models.Order, error)
	GetOrders(ctx context.Context) ([]models.Order, error)
	GetOrdersByUserID(ctx context.Context, userID string) ([]models.Order, error)
	UpdateOrderStatus(ctx context.Context, orderID, status string) error
	DeleteOrder(ctx context.Context, orderID string) (string, error)
	IsEventProcessed(ctx context.Context, eventID string) (bool, error)
	MarkEventProcessed(ctx context.Context, eventID, eventType string) error
}

// OrderEvents publishes order lifecycle events. *broker.EventPublisher
// satisfies it.
type OrderEvents interface {
	PublishOrderCreated(ctx context.Context, event *models.OrderCreatedEvent) error
	PublishOrderPaid(ctx context.Context, event *models.OrderPaidEvent) error
	PublishOrderStatusChanged(ctx context.Context, event *models.OrderStatusChangedEvent) error
	PublishOrderDeleted(ctx context.Context, event *models.OrderDeletedEvent) error
}

// WebhookCache dedupes gateway callback deliveries. *redisclient.Client
// satisfies it.
type WebhookCache interface {
	MarkWebhookSeen(ctx context.Context, paymentID string, ttl time.Duration) (bool, error)
	ClearWebhookSeen(ctx context.Context, paymentID string) error
}

// OrderService drives the order lifecycle: creation with price snapshots,
// payment-link branching, admin status transitions and hard deletes.
type OrderService struct {
	store          OrderStore
	cache          WebhookCache
	payments       *payment.Builder
	eventPublisher OrderEvents
	strictFlow     bool
	logger         *zap.Logger
}

// NewOrderService creates a new order service
func NewOrderService(
	store OrderStore,
	cache WebhookCache,
	payments *payment.Builder,
	eventPublisher OrderEvents,
	strictFlow bool,
) *OrderService {
	return &OrderService{
		store:          store,
		cache:          cache,
		payments:       payments,
		eventPublisher: eventPublisher,
		strictFlow:     strictFlow,
		logger:         util.GetLogger(),
	}
}

// CreateOrderRequest represents a cart submission
type CreateOrderRequest struct {
	Items         []OrderItemRequest `json:"items" binding:"required,min=1"`
	TotalAmount   int64              `json:"total_amount" binding:"required"`
	PaymentMethod string             `json:"payment_method" binding:"required"`
	Address       string             `json:"address" binding:"required"`
	City          string             `json:"city" binding:"required"`
	Phone         string             `json:"phone" binding:"required"`
}

// OrderItemRequest represents one cart line
type OrderItemRequest struct {
	ProductID string `json:"product_id" binding:"required"`
	Quantity  int    `json:"quantity" binding:"required,min=1"`
}

// CreateOrderResponse is either a COD confirmation or a payment redirect
type CreateOrderResponse struct {
	OrderID      string `json:"order_id"`
	TrackingCode string `json:"trackingCode,omitempty"`
	Msg          string `json:"msg,omitempty"`
	PayURL       string `json:"payUrl,omitempty"`
}

// Create places an order. Unit prices and product names are snapshotted
// from the live catalog; the client-claimed total is recomputed and a
// mismatch is rejected rather than trusted. The order id is pre-generated
// so the record, tracking code included, is written in a single insert.
func (s *OrderService) Create(ctx context.Context, userID string, req *CreateOrderRequest) (*CreateOrderResponse, error) {
	ctx, span := util.StartSpan(ctx, "OrderService.Create")
	defer span.End()

	if req.PaymentMethod != models.PaymentMethodCOD && req.PaymentMethod != models.PaymentMethodCard {
		util.OrdersFailedTotal.WithLabelValues("bad_payment_method").Inc()
		return nil, fmt.Errorf("%w: unknown payment method %q", ErrValidation, req.PaymentMethod)
	}

	products, err := s.resolveProducts(ctx, req.Items)
	if err != nil {
		util.OrdersFailedTotal.WithLabelValues("invalid_items").Inc()
		return nil, err
	}

	itemData := make([]models.OrderItemData, len(req.Items))
	for i, item := range req.Items {
		product := products[item.ProductID]
		itemData[i] = models.OrderItemData{
			ProductID:   product.ID,
			ProductName: product.Name,
			Quantity:    item.Quantity,
			UnitPrice:   product.Price,
		}
	}

	total := calculateTotal(itemData)
	if total != req.TotalAmount {
		util.OrdersFailedTotal.WithLabelValues("total_mismatch").Inc()
		return nil, fmt.Errorf("%w: claimed total %d does not match computed %d",
			ErrValidation, req.TotalAmount, total)
	}

	orderID := uuid.New().String()
	trackingCode := TrackingCode(orderID)

	// Build the redirect before any write so a builder failure cannot
	// strand a persisted order.
	var payURL string
	if req.PaymentMethod == models.PaymentMethodCard {
		payURL, err = s.payments.BuildRedirect(orderID, total, itemData)
		if err != nil {
			util.OrdersFailedTotal.WithLabelValues("payment_link").Inc()
			return nil, fmt.Errorf("%w: %v", ErrValidation, err)
		}
	}

	if err := s.store.DecrementStockTx(ctx, itemData); err != nil {
		util.OrdersFailedTotal.WithLabelValues("insufficient_stock").Inc()
		return nil, fmt.Errorf("%w: %v", ErrValidation, err)
	}

	order := &models.Order{
		ID:            orderID,
		TrackingCode:  trackingCode,
		UserID:        userID,
		TotalAmount:   total,
		PaymentMethod: req.PaymentMethod,
		Status:        models.OrderStatusPending,
		Address:       req.Address,
		City:          req.City,
		Phone:         req.Phone,
	}
	order.Items = make([]models.OrderItem, len(itemData))
	for i, d := range itemData {
		order.Items[i] = models.OrderItem{
			ProductID:   d.ProductID,
			ProductName: d.ProductName,
			Quantity:    d.Quantity,
			UnitPrice:   d.UnitPrice,
		}
	}

	if err := s.store.CreateOrder(ctx, order); err != nil {
		if restoreErr := s.store.RestoreStock(ctx, itemData); restoreErr != nil {
			s.logger.Error("Failed to restore stock after aborted order",
				zap.String("order_id", orderID),
				zap.Error(restoreErr))
		}
		util.OrdersFailedTotal.WithLabelValues("db_error").Inc()
		return nil, fmt.Errorf("failed to create order: %w", err)
	}

	util.OrdersCreatedTotal.WithLabelValues(req.PaymentMethod).Inc()
	s.logger.Info("Order created",
		zap.String("order_id", orderID),
		zap.String("tracking_code", trackingCode),
		zap.String("payment_method", req.PaymentMethod))

	event := &models.OrderCreatedEvent{
		BaseEvent: models.BaseEvent{
			EventID:   uuid.New().String(),
			EventType: models.EventTypeOrderCreated,
			Timestamp: time.Now(),
		},
		OrderID:       orderID,
		TrackingCode:  trackingCode,
		UserID:        userID,
		TotalAmount:   total,
		PaymentMethod: req.PaymentMethod,
		Items:         itemData,
	}
	if err := s.eventPublisher.PublishOrderCreated(ctx, event); err != nil {
		s.logger.Error("Failed to publish OrderCreated event", zap.Error(err))
	}

	resp := &CreateOrderResponse{OrderID: orderID, TrackingCode: trackingCode}
	if req.PaymentMethod == models.PaymentMethodCard {
		// Redirect generation is not payment confirmation; the order
		// stays Pending until the gateway callback arrives.
		resp.PayURL = payURL
	} else {
		resp.Msg = CODConfirmedMsg
	}
	return resp, nil
}

// resolveProducts loads every referenced product, failing when any id is
// unknown.
func (s *OrderService) resolveProducts(ctx context.Context, items []OrderItemRequest) (map[string]*models.Product, error) {
	ids := make([]string, len(items))
	for i, item := range items {
		ids[i] = item.ProductID
	}

	products, err := s.store.GetProductsByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to load products: %w", err)
	}

	byID := make(map[string]*models.Product, len(products))
	for i := range products {
		byID[products[i].ID] = &products[i]
	}

	for _, item := range items {
		if _, ok := byID[item.ProductID]; !ok {
			return nil, fmt.Errorf("%w: product %s", ErrNotFound, item.ProductID)
		}
	}
	return byID, nil
}

// ListAll retrieves every order for admin display
func (s *OrderService) ListAll(ctx context.Context) ([]models.Order, error) {
	return s.store.GetOrders(ctx)
}

// ListByUser retrieves the caller's own orders
func (s *OrderService) ListByUser(ctx context.Context, userID string) ([]models.Order, error) {
	return s.store.GetOrdersByUserID(ctx, userID)
}

// Get retrieves one order by id
func (s *OrderService) Get(ctx context.Context, orderID string) (*models.Order, error) {
	order, err := s.store.GetOrderByID(ctx, orderID)
	if errors.Is(err, store.ErrNoRows) {
		return nil, fmt.Errorf("%w: order %s", ErrNotFound, orderID)
	}
	return order, err
}

// GetByTracking retrieves one order by tracking code
func (s *OrderService) GetByTracking(ctx context.Context, code string) (*models.Order, error) {
	order, err := s.store.GetOrderByTrackingCode(ctx, code)
	if errors.Is(err, store.ErrNoRows) {
		return nil, fmt.Errorf("%w: tracking code %s", ErrNotFound, code)
	}
	return order, err
}

// Transition moves an order to a new status. With strict flow enabled only
// the forward chain is legal; otherwise any member of the status
// enumeration is accepted.
func (s *OrderService) Transition(ctx context.Context, orderID, next string) (*models.Order, error) {
	ctx, span := util.StartSpan(ctx, "OrderService.Transition")
	defer span.End()

	if !models.ValidOrderStatus(next) {
		return nil, fmt.Errorf("%w: unknown status %q", ErrValidation, next)
	}

	order, err := s.Get(ctx, orderID)
	if err != nil {
		return nil, err
	}

	if s.strictFlow {
		if err := validateTransition(order.Status, next); err != nil {
			return nil, err
		}
	}

	if err := s.store.UpdateOrderStatus(ctx, orderID, next); err != nil {
		if errors.Is(err, store.ErrNoRows) {
			return nil, fmt.Errorf("%w: order %s", ErrNotFound, orderID)
		}
		return nil, fmt.Errorf("failed to update order status: %w", err)
	}

	util.OrderTransitionsTotal.WithLabelValues(next).Inc()
	s.logger.Info("Order status changed",
		zap.String("order_id", orderID),
		zap.String("from", order.Status),
		zap.String("to", next))

	event := &models.OrderStatusChangedEvent{
		BaseEvent: models.BaseEvent{
			EventID:   uuid.New().String(),
			EventType: models.EventTypeOrderStatusChanged,
			Timestamp: time.Now(),
		},
		OrderID:      orderID,
		TrackingCode: order.TrackingCode,
		FromStatus:   order.Status,
		ToStatus:     next,
	}
	if err := s.eventPublisher.PublishOrderStatusChanged(ctx, event); err != nil {
		s.logger.Error("Failed to publish OrderStatusChanged event", zap.Error(err))
	}

	order.Status = next
	return order, nil
}

// Delete hard-deletes an order, returning its tracking code for audit
// display.
func (s *OrderService) Delete(ctx context.Context, orderID string) (string, error) {
	trackingCode, err := s.store.DeleteOrder(ctx, orderID)
	if errors.Is(err, store.ErrNoRows) {
		return "", fmt.Errorf("%w: order %s", ErrNotFound, orderID)
	}
	if err != nil {
		return "", fmt.Errorf("failed to delete order: %w", err)
	}

	util.OrdersDeletedTotal.Inc()
	s.logger.Info("Order deleted",
		zap.String("order_id", orderID),
		zap.String("tracking_code", trackingCode))

	event := &models.OrderDeletedEvent{
		BaseEvent: models.BaseEvent{
			EventID:   uuid.New().String(),
			EventType: models.EventTypeOrderDeleted,
			Timestamp: time.Now(),
		},
		OrderID:      orderID,
		TrackingCode: trackingCode,
	}
	if err := s.eventPublisher.PublishOrderDeleted(ctx, event); err != nil {
		s.logger.Error("Failed to publish OrderDeleted event", zap.Error(err))
	}

	return trackingCode, nil
}

// ConfirmPayment handles a verified gateway callback. Idempotent on the
// gateway payment id: retried deliveries are acknowledged without a second
// transition.
func (s *OrderService) ConfirmPayment(ctx context.Context, orderID, paymentID string) error {
	ctx, span := util.StartSpan(ctx, "OrderService.ConfirmPayment")
	defer span.End()

	// Fast-path dedup for retried deliveries; the processed_events row
	// below remains the durable record.
	first, cacheErr := s.cache.MarkWebhookSeen(ctx, paymentID, 24*time.Hour)
	if cacheErr == nil && !first {
		s.logger.Info("Payment callback already seen", zap.String("payment_id", paymentID))
		return nil
	}

	if err := s.confirmPayment(ctx, orderID, paymentID); err != nil {
		// Release the marker so the gateway's retry is not swallowed.
		if cacheErr == nil {
			if derr := s.cache.ClearWebhookSeen(ctx, paymentID); derr != nil {
				s.logger.Warn("Failed to clear webhook marker", zap.Error(derr))
			}
		}
		return err
	}
	return nil
}

func (s *OrderService) confirmPayment(ctx context.Context, orderID, paymentID string) error {
	eventKey := "payment:" + paymentID
	processed, err := s.store.IsEventProcessed(ctx, eventKey)
	if err != nil {
		return fmt.Errorf("failed to check payment idempotency: %w", err)
	}
	if processed {
		s.logger.Info("Payment callback already processed", zap.String("payment_id", paymentID))
		return nil
	}

	order, err := s.Get(ctx, orderID)
	if err != nil {
		return err
	}

	if order.Status != models.OrderStatusPending {
		s.logger.Warn("Payment callback for non-pending order",
			zap.String("order_id", orderID),
			zap.String("status", order.Status))
		return s.store.MarkEventProcessed(ctx, eventKey, models.EventTypeOrderPaid)
	}

	if err := s.store.UpdateOrderStatus(ctx, orderID, models.OrderStatusPaid); err != nil {
		return fmt.Errorf("failed to mark order paid: %w", err)
	}

	util.PaymentsConfirmedTotal.Inc()
	s.logger.Info("Payment confirmed",
		zap.String("order_id", orderID),
		zap.String("payment_id", paymentID))

	event := &models.OrderPaidEvent{
		BaseEvent: models.BaseEvent{
			EventID:   uuid.New().String(),
			EventType: models.EventTypeOrderPaid,
			Timestamp: time.Now(),
		},
		OrderID:      orderID,
		TrackingCode: order.TrackingCode,
		PaymentID:    paymentID,
		Amount:       order.TotalAmount,
	}
	if err := s.eventPublisher.PublishOrderPaid(ctx, event); err != nil {
		s.logger.Error("Failed to publish OrderPaid event", zap.Error(err))
	}

	return s.store.MarkEventProcessed(ctx, eventKey, models.EventTypeOrderPaid)
}

// TrackingCode derives the human-readable reference from an order id:
// "ORD-" plus the last six characters, uppercased. Always 10 characters.
func TrackingCode(orderID string) string {
	tail := orderID
	if len(tail) > 6 {
		tail = tail[len(tail)-6:]
	}
	return "ORD-" + strings.ToUpper(tail)
}

// calculateTotal sums line-item subtotals
func calculateTotal(items []models.OrderItemData) int64 {
	var total int64
	for _, item := range items {
		total += item.UnitPrice * int64(item.Quantity)
	}
	return total
}

// forwardTransitions is the strict lifecycle chain. COD orders are never
// marked Paid, so Pending may also step directly to Packed.
var forwardTransitions = map[string][]string{
	models.OrderStatusPending:        {models.OrderStatusPaid, models.OrderStatusPacked},
	models.OrderStatusPaid:           {models.OrderStatusPacked},
	models.OrderStatusPacked:         {models.OrderStatusReadyToDeliver},
	models.OrderStatusReadyToDeliver: {models.OrderStatusDelivered},
	models.OrderStatusDelivered:      {},
}

func validateTransition(from, to string) error {
	for _, allowed := range forwardTransitions[from] {
		if to == allowed {
			return nil
		}
	}
	return fmt.Errorf("%w: illegal transition %s -> %s", ErrValidation, from, to)
}
