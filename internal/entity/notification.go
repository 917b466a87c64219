package entity

import (
	"time"

	"github.com/uptrace/bun"
)

// Notification types emitted by the marketplace.
const (
	NotificationOrderPlaced    = "ORDER_PLACED"
	NotificationOrderReceived  = "ORDER_RECEIVED"
	NotificationOrderCancelled = "ORDER_CANCELLED"
	NotificationOrderStatus    = "ORDER_STATUS"
	NotificationCertReviewed   = "CERTIFICATION_REVIEWED"
)

// Notification is a per-user inbox entry. Creation is always best-effort;
// a failed insert never fails the operation that triggered it.
type Notification struct {
	bun.BaseModel `bun:"table:notifications,alias:n"`

	ID        int64     `bun:",pk,autoincrement" json:"id"`
	UserID    int64     `bun:"user_id" json:"user_id"`
	Type      string    `bun:"type" json:"type"`
	Title     string    `bun:"title" json:"title"`
	Message   string    `bun:"message" json:"message"`
	IsRead    bool      `bun:"is_read" json:"is_read"`
	CreatedAt time.Time `bun:"created_at,nullzero,notnull,default:CURRENT_TIMESTAMP" json:"created_at"`
}
