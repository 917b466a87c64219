package certification

import (
	"context"
	"database/sql"
	"errors"

	"github.com/uptrace/bun"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/agricoventas/platform/internal/database"
	"github.com/agricoventas/platform/internal/entity"
	svc "github.com/agricoventas/platform/internal/service/certification"
)

var repoTracer = otel.Tracer("github.com/agricoventas/platform/repository/certification")

var _ svc.Store = (*Repository)(nil)

// Repository persists seller certifications.
type Repository struct {
	writer *bun.DB
	reader *bun.DB
}

// NewRepository wires a repository backed by configured database connections.
func NewRepository(conns *database.Connections) *Repository {
	return &Repository{writer: conns.Writer, reader: conns.Reader}
}

// Insert persists a new certification submission.
func (r *Repository) Insert(ctx context.Context, cert *entity.Certification) error {
	if cert == nil {
		return errors.New("nil certification")
	}
	ctx, span := repoTracer.Start(ctx, "CertificationRepository.Insert", trace.WithAttributes(
		attribute.Int64("user.id", cert.UserID),
		attribute.String("certification.type", cert.TypeCode),
	))
	defer span.End()

	_, err := r.writer.NewInsert().Model(cert).Exec(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "insert failed")
	}
	return err
}

// GetByID fetches one certification row.
func (r *Repository) GetByID(ctx context.Context, certID int64) (*entity.Certification, error) {
	ctx, span := repoTracer.Start(ctx, "CertificationRepository.GetByID", trace.WithAttributes(attribute.Int64("certification.id", certID)))
	defer span.End()

	cert := new(entity.Certification)
	err := r.reader.NewSelect().Model(cert).Where("cert.id = ?", certID).Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		span.SetStatus(codes.Error, "not found")
		return nil, svc.ErrCertificationNotFound
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "select failed")
		return nil, err
	}
	return cert, nil
}

// ListByUser pages through a user's certifications, newest first.
func (r *Repository) ListByUser(ctx context.Context, userID int64, offset, limit int) ([]entity.Certification, int, error) {
	ctx, span := repoTracer.Start(ctx, "CertificationRepository.ListByUser", trace.WithAttributes(attribute.Int64("user.id", userID)))
	defer span.End()

	var certs []entity.Certification
	total, err := r.reader.NewSelect().Model(&certs).
		Where("cert.user_id = ?", userID).
		Order("cert.uploaded_at DESC").
		Offset(offset).Limit(limit).
		ScanAndCount(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "select failed")
		return nil, 0, err
	}
	return certs, total, nil
}

// VerifiedTypes returns the distinct type codes a user holds VERIFIED.
func (r *Repository) VerifiedTypes(ctx context.Context, userID int64) ([]string, error) {
	ctx, span := repoTracer.Start(ctx, "CertificationRepository.VerifiedTypes", trace.WithAttributes(attribute.Int64("user.id", userID)))
	defer span.End()

	var typeCodes []string
	err := r.reader.NewSelect().Model((*entity.Certification)(nil)).
		ColumnExpr("DISTINCT cert.type_code").
		Where("cert.user_id = ? AND cert.status = ?", userID, entity.CertStatusVerified).
		Scan(ctx, &typeCodes)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "select failed")
		return nil, err
	}
	return typeCodes, nil
}

// Update rewrites a certification row by primary key.
func (r *Repository) Update(ctx context.Context, cert *entity.Certification) error {
	if cert == nil {
		return errors.New("nil certification")
	}
	ctx, span := repoTracer.Start(ctx, "CertificationRepository.Update", trace.WithAttributes(attribute.Int64("certification.id", cert.ID)))
	defer span.End()

	_, err := r.writer.NewUpdate().Model(cert).WherePK().Exec(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "update failed")
	}
	return err
}

// HasOpenSubmission reports whether the user already has a pending or
// verified row for the type code.
func (r *Repository) HasOpenSubmission(ctx context.Context, userID int64, typeCode string) (bool, error) {
	ctx, span := repoTracer.Start(ctx, "CertificationRepository.HasOpenSubmission", trace.WithAttributes(
		attribute.Int64("user.id", userID),
		attribute.String("certification.type", typeCode),
	))
	defer span.End()

	exists, err := r.reader.NewSelect().Model((*entity.Certification)(nil)).
		Where("cert.user_id = ? AND cert.type_code = ?", userID, typeCode).
		Where("cert.status IN (?)", bun.In([]string{entity.CertStatusPending, entity.CertStatusVerified})).
		Exists(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "select failed")
		return false, err
	}
	return exists, nil
}
