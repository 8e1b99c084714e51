package models

import "time"

// Event types
const (
	EventTypeOrderCreated       = "ORDER_CREATED"
	EventTypeOrderPaid          = "ORDER_PAID"
	EventTypeOrderStatusChanged = "ORDER_STATUS_CHANGED"
	EventTypeOrderDeleted       = "ORDER_DELETED"
)

// BaseEvent contains common fields for all events
type BaseEvent struct {
	EventID   string    `json:"event_id"`
	EventType string    `json:"event_type"`
	Timestamp time.Time `json:"timestamp"`
}

// OrderCreatedEvent published when an order is placed. COD orders are
// immediately actionable by fulfillment; Card orders wait for ORDER_PAID.
type OrderCreatedEvent struct {
	BaseEvent
	OrderID       string          `json:"order_id"`
	TrackingCode  string          `json:"tracking_code"`
	UserID        string          `json:"user_id"`
	TotalAmount   int64           `json:"total_amount"`
	PaymentMethod string          `json:"payment_method"`
	Items         []OrderItemData `json:"items"`
}

// OrderPaidEvent published when the gateway confirms a card payment.
type OrderPaidEvent struct {
	BaseEvent
	OrderID      string `json:"order_id"`
	TrackingCode string `json:"tracking_code"`
	PaymentID    string `json:"payment_id"`
	Amount       int64  `json:"amount"`
}

// OrderStatusChangedEvent published on admin-driven transitions.
type OrderStatusChangedEvent struct {
	BaseEvent
	OrderID      string `json:"order_id"`
	TrackingCode string `json:"tracking_code"`
	FromStatus   string `json:"from_status"`
	ToStatus     string `json:"to_status"`
}

// OrderDeletedEvent published on admin hard delete, for audit trails.
type OrderDeletedEvent struct {
	BaseEvent
	OrderID      string `json:"order_id"`
	TrackingCode string `json:"tracking_code"`
}

// OrderItemData represents item data in events
type OrderItemData struct {
	ProductID   string `json:"product_id"`
	ProductName string `json:"product_name"`
	Quantity    int    `json:"quantity"`
	UnitPrice   int64  `json:"unit_price"`
}
