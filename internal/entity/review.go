package entity

import (
	"time"

	"github.com/uptrace/bun"
)

// Review is a buyer's rating of a product. One review per (product, user).
type Review struct {
	bun.BaseModel `bun:"table:reviews,alias:r"`

	ID        int64     `bun:",pk,autoincrement" json:"id"`
	ProductID int64     `bun:"product_id" json:"product_id"`
	UserID    int64     `bun:"user_id" json:"user_id"`
	Rating    int       `bun:"rating" json:"rating"`
	Comment   string    `bun:"comment,nullzero" json:"comment,omitempty"`
	CreatedAt time.Time `bun:"created_at,nullzero,notnull,default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt time.Time `bun:"updated_at,nullzero" json:"updated_at"`
}
