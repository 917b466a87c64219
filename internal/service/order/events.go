package order

import "time"

// Event names published to the order lifecycle topic.
const (
	EventOrderPlaced    = "order.placed"
	EventOrderCancelled = "order.cancelled"
)

// Event is the envelope emitted after order mutations commit. Publication is
// best-effort; consumers must tolerate gaps.
type Event struct {
	Event          string    `json:"event"`
	ID             int64     `json:"id"`
	BuyerID        int64     `json:"buyer_id"`
	Status         string    `json:"status"`
	TotalAmount    float64   `json:"total_amount"`
	TrackingNumber string    `json:"tracking_number"`
	OccurredAt     time.Time `json:"occurred_at"`
}
