package entity

import (
	"time"

	"github.com/uptrace/bun"
)

// Category groups products for browsing and filtering.
type Category struct {
	bun.BaseModel `bun:"table:categories,alias:c"`

	ID          int64     `bun:",pk,autoincrement" json:"id"`
	Name        string    `bun:"name" json:"name"`
	Slug        string    `bun:"slug" json:"slug"`
	Description string    `bun:"description,nullzero" json:"description,omitempty"`
	ImageURL    string    `bun:"image_url,nullzero" json:"image_url,omitempty"`
	CreatedAt   time.Time `bun:"created_at,nullzero,notnull,default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt   time.Time `bun:"updated_at,nullzero" json:"updated_at"`
}

// Product is a seller's listing. StockQuantity is mutated only by order
// placement/cancellation and explicit seller edits.
type Product struct {
	bun.BaseModel `bun:"table:products,alias:p"`

	ID             int64     `bun:",pk,autoincrement" json:"id"`
	SellerID       int64     `bun:"seller_id" json:"seller_id"`
	CategoryID     int64     `bun:"category_id" json:"category_id"`
	Name           string    `bun:"name" json:"name"`
	Description    string    `bun:"description,nullzero" json:"description,omitempty"`
	BasePrice      float64   `bun:"base_price" json:"base_price"`
	StockQuantity  int       `bun:"stock_quantity" json:"stock_quantity"`
	UnitMeasure    string    `bun:"unit_measure" json:"unit_measure"`
	OriginLocation string    `bun:"origin_location,nullzero" json:"origin_location,omitempty"`
	ImageURL       string    `bun:"image_url,nullzero" json:"image_url,omitempty"`
	IsFeatured     bool      `bun:"is_featured" json:"is_featured"`
	IsActive       bool      `bun:"is_active" json:"is_active"`
	CreatedAt      time.Time `bun:"created_at,nullzero,notnull,default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt      time.Time `bun:"updated_at,nullzero" json:"updated_at"`
}
