package entity

import (
	"time"

	"github.com/uptrace/bun"
)

// Product change kinds recorded in the audit trail.
const (
	ChangeCreate = "CREATE"
	ChangeUpdate = "UPDATE"
	ChangeDelete = "DELETE"
)

// ProductHistory records one field-level change to a product, tagged with
// the acting user and the kind of mutation.
type ProductHistory struct {
	bun.BaseModel `bun:"table:product_history,alias:ph"`

	ID         int64     `bun:",pk,autoincrement" json:"id"`
	ProductID  int64     `bun:"product_id" json:"product_id"`
	UserID     int64     `bun:"user_id" json:"user_id"`
	ChangeType string    `bun:"change_type" json:"change_type"`
	Field      string    `bun:"field" json:"field"`
	OldValue   string    `bun:"old_value,nullzero" json:"old_value,omitempty"`
	NewValue   string    `bun:"new_value,nullzero" json:"new_value,omitempty"`
	CreatedAt  time.Time `bun:"created_at,nullzero,notnull,default:CURRENT_TIMESTAMP" json:"created_at"`
}
