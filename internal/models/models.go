package models

import (
	"time"

	"github.com/lib/pq"
)

// User is an account holder. Role is a closed two-tier enumeration.
type User struct {
	ID           string    `db:"id" json:"id"`
	Email        string    `db:"email" json:"email"`
	PasswordHash string    `db:"password_hash" json:"-"`
	Role         string    `db:"role" json:"role"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
}

// Roles
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// Category groups products. No hierarchy.
type Category struct {
	ID          string    `db:"id" json:"id"`
	Name        string    `db:"name" json:"name"`
	Description string    `db:"description" json:"description,omitempty"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
}

// Product is a catalog entry. Images holds object-storage URLs in display
// order; at least one is required. Prices are stored in minor currency
// units (cents).
type Product struct {
	ID          string         `db:"id" json:"id"`
	Name        string         `db:"name" json:"name"`
	Description string         `db:"description" json:"description,omitempty"`
	Price       int64          `db:"price" json:"price"`
	CategoryID  string         `db:"category_id" json:"category_id"`
	Stock       int            `db:"stock" json:"stock"`
	Images      pq.StringArray `db:"images" json:"images"`
	Sizes       pq.StringArray `db:"sizes" json:"sizes,omitempty"`
	CreatedAt   time.Time      `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time      `db:"updated_at" json:"updated_at"`
}

// Order is the central entity. TrackingCode is derived from the
// pre-generated order id and written in the same insert, so a persisted
// order always carries one. Billing and line-item prices are snapshots
// taken at creation and never recomputed from the live catalog.
type Order struct {
	ID            string    `db:"id" json:"id"`
	TrackingCode  string    `db:"tracking_code" json:"tracking_code"`
	UserID        string    `db:"user_id" json:"user_id"`
	UserEmail     string    `db:"user_email" json:"user_email,omitempty"`
	TotalAmount   int64     `db:"total_amount" json:"total_amount"`
	PaymentMethod string    `db:"payment_method" json:"payment_method"`
	Status        string    `db:"status" json:"status"`
	Address       string    `db:"address" json:"address"`
	City          string    `db:"city" json:"city"`
	Phone         string    `db:"phone" json:"phone"`
	CreatedAt     time.Time `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time `db:"updated_at" json:"updated_at"`

	Items []OrderItem `db:"-" json:"items,omitempty"`
}

// OrderItem is one line of an order. ProductName and UnitPrice are
// snapshots; later catalog edits never touch historical orders.
type OrderItem struct {
	ID          int64  `db:"id" json:"id"`
	OrderID     string `db:"order_id" json:"order_id"`
	ProductID   string `db:"product_id" json:"product_id"`
	ProductName string `db:"product_name" json:"product_name"`
	Quantity    int    `db:"quantity" json:"quantity"`
	UnitPrice   int64  `db:"unit_price" json:"unit_price"`
}

// Payment methods
const (
	PaymentMethodCOD  = "COD"
	PaymentMethodCard = "Card"
)

// Order statuses
const (
	OrderStatusPending        = "Pending"
	OrderStatusPaid           = "Paid"
	OrderStatusPacked         = "Packed"
	OrderStatusReadyToDeliver = "ReadyToDeliver"
	OrderStatusDelivered      = "Delivered"
)

// ValidOrderStatus reports whether s is a member of the status enumeration.
func ValidOrderStatus(s string) bool {
	switch s {
	case OrderStatusPending, OrderStatusPaid, OrderStatusPacked,
		OrderStatusReadyToDeliver, OrderStatusDelivered:
		return true
	}
	return false
}

// Contact is a visitor inquiry.
type Contact struct {
	ID        string    `db:"id" json:"id"`
	Name      string    `db:"name" json:"name"`
	Email     string    `db:"email" json:"email"`
	Subject   string    `db:"subject" json:"subject"`
	Message   string    `db:"message" json:"message"`
	Status    string    `db:"status" json:"status"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// Contact statuses
const (
	ContactStatusUnread = "Unread"
	ContactStatusRead   = "Read"
)

// DefaultContactSubject is applied when a visitor leaves the subject blank.
const DefaultContactSubject = "General Inquiry"

// ProcessedEvent records handled webhook callbacks and consumed broker
// events for idempotency.
type ProcessedEvent struct {
	EventID     string    `db:"event_id"`
	EventType   string    `db:"event_type"`
	ProcessedAt time.Time `db:"processed_at"`
}
