package entity

import (
	"time"

	"github.com/uptrace/bun"
)

// Certification statuses.
const (
	CertStatusPending  = "PENDING"
	CertStatusVerified = "VERIFIED"
	CertStatusRejected = "REJECTED"
)

// RequiredCertificationTypes is the fixed set of regulatory codes a seller
// must hold verified before selling privileges unlock.
var RequiredCertificationTypes = []string{
	"INVIMA",
	"ICA",
	"REGISTRO_SANITARIO",
	"CERTIFICADO_ORGANICO",
}

// Certification is a regulatory document submitted by a seller and reviewed
// by an admin.
type Certification struct {
	bun.BaseModel `bun:"table:certifications,alias:cert"`

	ID              int64     `bun:",pk,autoincrement" json:"id"`
	UserID          int64     `bun:"user_id" json:"user_id"`
	TypeCode        string    `bun:"type_code" json:"type_code"`
	Name            string    `bun:"name,nullzero" json:"name,omitempty"`
	Status          string    `bun:"status" json:"status"`
	DocumentURL     string    `bun:"document_url" json:"document_url"`
	RejectionReason string    `bun:"rejection_reason,nullzero" json:"rejection_reason,omitempty"`
	VerifierID      int64     `bun:"verifier_id,nullzero" json:"verifier_id,omitempty"`
	VerifiedAt      time.Time `bun:"verified_at,nullzero" json:"verified_at,omitempty"`
	UploadedAt      time.Time `bun:"uploaded_at,nullzero,notnull,default:CURRENT_TIMESTAMP" json:"uploaded_at"`
	UpdatedAt       time.Time `bun:"updated_at,nullzero" json:"updated_at"`
}

// RequiredCertificationType reports whether code belongs to the required set.
func RequiredCertificationType(code string) bool {
	for _, c := range RequiredCertificationTypes {
		if c == code {
			return true
		}
	}
	return false
}
