package dto

import "time"

// SubmitCertificationRequest registers a regulatory document for review.
type SubmitCertificationRequest struct {
	TypeCode    string `json:"type_code" validate:"required,max=64"`
	Name        string `json:"name" validate:"omitempty,max=120"`
	DocumentURL string `json:"document_url" validate:"required,url"`
}

// RejectCertificationRequest carries the admin's rejection reason.
type RejectCertificationRequest struct {
	Reason string `json:"reason" validate:"required,min=3,max=500"`
}

// CertificationResponse is the transport view of a certification row.
type CertificationResponse struct {
	ID              int64     `json:"id"`
	UserID          int64     `json:"user_id"`
	TypeCode        string    `json:"type_code"`
	Name            string    `json:"name,omitempty"`
	Status          string    `json:"status"`
	DocumentURL     string    `json:"document_url"`
	RejectionReason string    `json:"rejection_reason,omitempty"`
	VerifiedAt      time.Time `json:"verified_at,omitempty"`
	UploadedAt      time.Time `json:"uploaded_at"`
}

// CertificationStatusResponse summarises a seller's progress against the
// required certification set.
type CertificationStatusResponse struct {
	UserID               int64    `json:"user_id"`
	VerifiedCount        int      `json:"verified_count"`
	TotalRequired        int      `json:"total_required"`
	HasAllCertifications bool     `json:"has_all_certifications"`
	Missing              []string `json:"missing,omitempty"`
}
