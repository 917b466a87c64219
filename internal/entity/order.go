package entity

import (
	"time"

	"github.com/uptrace/bun"
)

// Order statuses. CANCELLED and DELIVERED are terminal.
const (
	OrderStatusPending    = "PENDING"
	OrderStatusProcessing = "PROCESSING"
	OrderStatusShipped    = "SHIPPED"
	OrderStatusDelivered  = "DELIVERED"
	OrderStatusCancelled  = "CANCELLED"
)

// Payment statuses tracked on the order.
const (
	PaymentStatusPending = "PENDING"
	PaymentStatusPaid    = "PAID"
	PaymentStatusFailed  = "FAILED"
)

// Order represents a purchase order stored in the relational database.
// Its items are created atomically with the order itself.
type Order struct {
	bun.BaseModel `bun:"table:orders,alias:o"`

	ID             int64       `bun:",pk,autoincrement" json:"id"`
	BuyerID        int64       `bun:"buyer_id" json:"buyer_id"`
	Status         string      `bun:"status" json:"status"`
	TotalAmount    float64     `bun:"total_amount" json:"total_amount"`
	PaymentMethod  string      `bun:"payment_method,nullzero" json:"payment_method,omitempty"`
	PaymentStatus  string      `bun:"payment_status" json:"payment_status"`
	TrackingNumber string      `bun:"tracking_number" json:"tracking_number"`
	CreatedAt      time.Time   `bun:"created_at,nullzero,notnull,default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt      time.Time   `bun:"updated_at,nullzero" json:"updated_at"`
	Items          []OrderItem `bun:"rel:has-many,join:id=order_id" json:"items,omitempty"`
}

// OrderItem is a priced, quantity-bound line referencing one product.
// UnitPrice snapshots the product's base price at order time; read-only
// after creation.
type OrderItem struct {
	bun.BaseModel `bun:"table:order_items,alias:oi"`

	ID        int64   `bun:",pk,autoincrement" json:"id"`
	OrderID   int64   `bun:"order_id" json:"order_id"`
	ProductID int64   `bun:"product_id" json:"product_id"`
	Quantity  int     `bun:"quantity" json:"quantity"`
	UnitPrice float64 `bun:"unit_price" json:"unit_price"`
	Subtotal  float64 `bun:"subtotal" json:"subtotal"`
}

// ValidOrderStatus reports whether s names a known order status.
func ValidOrderStatus(s string) bool {
	switch s {
	case OrderStatusPending, OrderStatusProcessing, OrderStatusShipped,
		OrderStatusDelivered, OrderStatusCancelled:
		return true
	}
	return false
}

// TerminalOrderStatus reports whether s admits no further transitions.
func TerminalOrderStatus(s string) bool {
	return s == OrderStatusDelivered || s == OrderStatusCancelled
}

// Cancellable reports whether the order may still be cancelled.
// Shipped and delivered orders already left the warehouse.
func (o *Order) Cancellable() bool {
	return o.Status == OrderStatusPending || o.Status == OrderStatusProcessing
}
