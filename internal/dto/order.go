package dto

import "time"

// OrderItemRequest is one (product, quantity) pair in a placement request.
type OrderItemRequest struct {
	ProductID int64 `json:"product_id" validate:"required,gt=0"`
	Quantity  int   `json:"quantity" validate:"required,gt=0"`
}

// PlaceOrderRequest is the order placement payload. BuyerID is honoured only
// for admins; everyone else orders for themselves.
type PlaceOrderRequest struct {
	BuyerID       int64              `json:"buyer_id,omitempty" validate:"omitempty,gt=0"`
	PaymentMethod string             `json:"payment_method" validate:"omitempty,max=64"`
	Items         []OrderItemRequest `json:"items" validate:"required,min=1,dive"`
}

// UpdateOrderStatusRequest changes an order's fulfilment state.
type UpdateOrderStatusRequest struct {
	Status        string `json:"status" validate:"required,oneof=PENDING PROCESSING SHIPPED DELIVERED CANCELLED"`
	PaymentStatus string `json:"payment_status" validate:"omitempty,oneof=PENDING PAID FAILED"`
}

// OrderItemResponse is one priced line of an order.
type OrderItemResponse struct {
	ID        int64   `json:"id"`
	ProductID int64   `json:"product_id"`
	Quantity  int     `json:"quantity"`
	UnitPrice float64 `json:"unit_price"`
	Subtotal  float64 `json:"subtotal"`
}

// OrderResponse represents an order as exposed via transport layers.
type OrderResponse struct {
	ID             int64               `json:"id"`
	BuyerID        int64               `json:"buyer_id"`
	Status         string              `json:"status"`
	TotalAmount    float64             `json:"total_amount"`
	PaymentMethod  string              `json:"payment_method,omitempty"`
	PaymentStatus  string              `json:"payment_status"`
	TrackingNumber string              `json:"tracking_number"`
	Items          []OrderItemResponse `json:"items,omitempty"`
	CreatedAt      time.Time           `json:"created_at"`
	UpdatedAt      time.Time           `json:"updated_at"`
}
