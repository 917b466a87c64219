package dto

import "time"

// CreateProductRequest is the seller-facing listing creation payload.
type CreateProductRequest struct {
	CategoryID     int64   `json:"category_id" validate:"required,gt=0"`
	Name           string  `json:"name" validate:"required,min=3,max=120"`
	Description    string  `json:"description" validate:"omitempty,max=2000"`
	BasePrice      float64 `json:"base_price" validate:"required,gt=0"`
	StockQuantity  int     `json:"stock_quantity" validate:"required,gte=0"`
	UnitMeasure    string  `json:"unit_measure" validate:"required,max=32"`
	OriginLocation string  `json:"origin_location" validate:"omitempty,max=120"`
	ImageURL       string  `json:"image_url" validate:"omitempty,url"`
	IsFeatured     bool    `json:"is_featured"`
}

// UpdateProductRequest carries optional field updates; nil means unchanged.
type UpdateProductRequest struct {
	CategoryID     *int64   `json:"category_id" validate:"omitempty,gt=0"`
	Name           *string  `json:"name" validate:"omitempty,min=3,max=120"`
	Description    *string  `json:"description" validate:"omitempty,max=2000"`
	BasePrice      *float64 `json:"base_price" validate:"omitempty,gt=0"`
	StockQuantity  *int     `json:"stock_quantity" validate:"omitempty,gte=0"`
	UnitMeasure    *string  `json:"unit_measure" validate:"omitempty,max=32"`
	OriginLocation *string  `json:"origin_location" validate:"omitempty,max=120"`
	ImageURL       *string  `json:"image_url" validate:"omitempty,url"`
	IsFeatured     *bool    `json:"is_featured"`
	IsActive       *bool    `json:"is_active"`
}

// ProductQuery filters product listings.
type ProductQuery struct {
	PageQuery
	CategoryID int64    `query:"category_id" validate:"omitempty,gt=0"`
	SellerID   int64    `query:"seller_id" validate:"omitempty,gt=0"`
	Search     string   `query:"search" validate:"omitempty,max=120"`
	Featured   *bool    `query:"featured"`
	Active     *bool    `query:"active"`
	MinPrice   *float64 `query:"min_price" validate:"omitempty,gte=0"`
	MaxPrice   *float64 `query:"max_price" validate:"omitempty,gte=0"`
}

// ProductResponse represents a listing as exposed via transport layers.
type ProductResponse struct {
	ID             int64     `json:"id"`
	SellerID       int64     `json:"seller_id"`
	CategoryID     int64     `json:"category_id"`
	Name           string    `json:"name"`
	Description    string    `json:"description,omitempty"`
	BasePrice      float64   `json:"base_price"`
	StockQuantity  int       `json:"stock_quantity"`
	UnitMeasure    string    `json:"unit_measure"`
	OriginLocation string    `json:"origin_location,omitempty"`
	ImageURL       string    `json:"image_url,omitempty"`
	IsFeatured     bool      `json:"is_featured"`
	IsActive       bool      `json:"is_active"`
	AverageRating  float64   `json:"average_rating,omitempty"`
	ReviewCount    int       `json:"review_count,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// PricePoint is one step in a product's price trend.
type PricePoint struct {
	Price      float64   `json:"price"`
	RecordedAt time.Time `json:"recorded_at"`
}

// PriceTrendResponse is the price trajectory reconstructed from the audit
// trail, oldest first.
type PriceTrendResponse struct {
	ProductID    int64        `json:"product_id"`
	CurrentPrice float64      `json:"current_price"`
	Points       []PricePoint `json:"points"`
}
