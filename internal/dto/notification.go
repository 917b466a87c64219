package dto

import "time"

// NotificationQuery filters the caller's inbox.
type NotificationQuery struct {
	PageQuery
	UnreadOnly bool `query:"unread_only"`
}

// NotificationResponse is the transport view of an inbox entry.
type NotificationResponse struct {
	ID        int64     `json:"id"`
	Type      string    `json:"type"`
	Title     string    `json:"title"`
	Message   string    `json:"message"`
	IsRead    bool      `json:"is_read"`
	CreatedAt time.Time `json:"created_at"`
}

// UploadResponse is returned by the upload endpoint; the URL is persisted on
// the owning record by the respective update endpoints.
type UploadResponse struct {
	URL      string `json:"url"`
	PublicID string `json:"public_id"`
}

// HistoryResponse is one audit-trail entry for a product.
type HistoryResponse struct {
	ID         int64     `json:"id"`
	ProductID  int64     `json:"product_id"`
	UserID     int64     `json:"user_id"`
	ChangeType string    `json:"change_type"`
	Field      string    `json:"field"`
	OldValue   string    `json:"old_value,omitempty"`
	NewValue   string    `json:"new_value,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}
