package certification

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/agricoventas/platform/internal/auth"
	"github.com/agricoventas/platform/internal/dto"
	"github.com/agricoventas/platform/internal/entity"
	"github.com/agricoventas/platform/pkg/errorbank"
)

var serviceTracer = otel.Tracer("github.com/agricoventas/platform/service/certification")

// ErrCertificationNotFound is surfaced by Store implementations.
var ErrCertificationNotFound = errors.New("certification not found")

// Store is the persistence boundary for certifications.
type Store interface {
	Insert(ctx context.Context, cert *entity.Certification) error
	GetByID(ctx context.Context, certID int64) (*entity.Certification, error)
	ListByUser(ctx context.Context, userID int64, offset, limit int) ([]entity.Certification, int, error)
	VerifiedTypes(ctx context.Context, userID int64) ([]string, error)
	Update(ctx context.Context, cert *entity.Certification) error
	HasOpenSubmission(ctx context.Context, userID int64, typeCode string) (bool, error)
}

// Notifier delivers best-effort user notifications.
type Notifier interface {
	Notify(ctx context.Context, userID int64, kind, title, message string) error
}

// Service manages certification submissions, admin review, and the
// selling-privileges gate.
type Service struct {
	store    Store
	notifier Notifier
	logger   *zap.Logger
}

// NewService wires a new Service instance.
func NewService(store Store, notifier Notifier, logger *zap.Logger) *Service {
	return &Service{store: store, notifier: notifier, logger: logger}
}

// Submit registers a document for admin review. One open submission per
// type code: a pending or verified row for the same type is a conflict.
func (s *Service) Submit(ctx context.Context, actor auth.Actor, req dto.SubmitCertificationRequest) (*entity.Certification, error) {
	ctx, span := serviceTracer.Start(ctx, "CertificationService.Submit", trace.WithAttributes(
		attribute.Int64("user.id", actor.UserID),
		attribute.String("certification.type", req.TypeCode),
	))
	defer span.End()

	open, err := s.store.HasOpenSubmission(ctx, actor.UserID, req.TypeCode)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "store error")
		return nil, errorbank.Internal("failed to check certifications", errorbank.WithCause(err))
	}
	if open {
		return nil, errorbank.Conflict("a pending or verified certification of this type already exists",
			errorbank.WithDetail("type_code", req.TypeCode))
	}

	now := time.Now().UTC()
	cert := &entity.Certification{
		UserID:      actor.UserID,
		TypeCode:    req.TypeCode,
		Name:        req.Name,
		Status:      entity.CertStatusPending,
		DocumentURL: req.DocumentURL,
		UploadedAt:  now,
		UpdatedAt:   now,
	}
	if err := s.store.Insert(ctx, cert); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "insert failed")
		return nil, errorbank.Internal("failed to submit certification", errorbank.WithCause(err))
	}
	return cert, nil
}

// Verify marks a pending certification as VERIFIED (admin only at the
// transport layer).
func (s *Service) Verify(ctx context.Context, verifierID, certID int64) (*entity.Certification, error) {
	return s.review(ctx, verifierID, certID, entity.CertStatusVerified, "")
}

// Reject marks a pending certification as REJECTED with a reason.
func (s *Service) Reject(ctx context.Context, verifierID, certID int64, reason string) (*entity.Certification, error) {
	return s.review(ctx, verifierID, certID, entity.CertStatusRejected, reason)
}

func (s *Service) review(ctx context.Context, verifierID, certID int64, status, reason string) (*entity.Certification, error) {
	ctx, span := serviceTracer.Start(ctx, "CertificationService.Review", trace.WithAttributes(
		attribute.Int64("certification.id", certID),
		attribute.String("certification.status", status),
	))
	defer span.End()

	cert, err := s.store.GetByID(ctx, certID)
	if errors.Is(err, ErrCertificationNotFound) {
		return nil, errorbank.NotFound("certification not found")
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "store error")
		return nil, errorbank.Internal("failed to load certification", errorbank.WithCause(err))
	}
	if cert.Status != entity.CertStatusPending {
		return nil, errorbank.Conflict("certification has already been reviewed",
			errorbank.WithDetail("status", cert.Status))
	}

	now := time.Now().UTC()
	cert.Status = status
	cert.VerifierID = verifierID
	cert.RejectionReason = reason
	cert.UpdatedAt = now
	if status == entity.CertStatusVerified {
		cert.VerifiedAt = now
	}

	if err := s.store.Update(ctx, cert); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "update failed")
		return nil, errorbank.Internal("failed to update certification", errorbank.WithCause(err))
	}

	s.notifyBestEffort(ctx, cert)
	return cert, nil
}

// ListByUser returns a user's certifications; buyers and sellers only see
// their own.
func (s *Service) ListByUser(ctx context.Context, actor auth.Actor, userID int64, q dto.PageQuery) ([]entity.Certification, int, error) {
	ctx, span := serviceTracer.Start(ctx, "CertificationService.ListByUser", trace.WithAttributes(attribute.Int64("user.id", userID)))
	defer span.End()

	if userID != actor.UserID && !actor.Admin() {
		return nil, 0, errorbank.Forbidden("cannot view another user's certifications")
	}

	q.Normalize()
	certs, total, err := s.store.ListByUser(ctx, userID, q.Offset(), q.Limit)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "store error")
		return nil, 0, errorbank.Internal("failed to list certifications", errorbank.WithCause(err))
	}
	return certs, total, nil
}

// Status reports a user's progress against the required certification set.
func (s *Service) Status(ctx context.Context, userID int64) (dto.CertificationStatusResponse, error) {
	ctx, span := serviceTracer.Start(ctx, "CertificationService.Status", trace.WithAttributes(attribute.Int64("user.id", userID)))
	defer span.End()

	verified, err := s.store.VerifiedTypes(ctx, userID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "store error")
		return dto.CertificationStatusResponse{}, errorbank.Internal("failed to check certifications", errorbank.WithCause(err))
	}

	held := make(map[string]bool, len(verified))
	for _, code := range verified {
		held[code] = true
	}

	status := dto.CertificationStatusResponse{
		UserID:        userID,
		TotalRequired: len(entity.RequiredCertificationTypes),
	}
	for _, code := range entity.RequiredCertificationTypes {
		if held[code] {
			status.VerifiedCount++
		} else {
			status.Missing = append(status.Missing, code)
		}
	}
	status.HasAllCertifications = status.VerifiedCount == status.TotalRequired
	return status, nil
}

// HasAllCertifications is the gate consulted before seller actions: it
// passes only when every required type code has a VERIFIED row.
func (s *Service) HasAllCertifications(ctx context.Context, userID int64) (bool, []string, error) {
	status, err := s.Status(ctx, userID)
	if err != nil {
		return false, nil, err
	}
	return status.HasAllCertifications, status.Missing, nil
}

func (s *Service) notifyBestEffort(ctx context.Context, cert *entity.Certification) {
	if s.notifier == nil {
		return
	}
	message := fmt.Sprintf("Your %s certification was %s", cert.TypeCode, cert.Status)
	if cert.Status == entity.CertStatusRejected && cert.RejectionReason != "" {
		message += ": " + cert.RejectionReason
	}
	if err := s.notifier.Notify(ctx, cert.UserID, entity.NotificationCertReviewed, "Certification reviewed", message); err != nil {
		s.logger.Warn("certification notification failed",
			zap.Int64("user_id", cert.UserID),
			zap.Error(err))
	}
}
