package review

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
	"github.com/agricoventas/platform/internal/dto"
	"github.com/agricoventas/platform/internal/entity"
	svc "github.com/agricoventas/platform/internal/service/review"
)

var repoTracer = otel.Tracer("github.com/agricoventas/platform/repository/review")

// Repository encapsulates read/write access for reviews.
var _ svc.Store = (*Repository)(nil)

type Repository struct {
	writer *bun.DB
	reader *bun.DB
}

// NewRepository wires a repository backed by configured database connections.
func NewRepository(conns *database.Connections) *Repository {
	return &Repository{
		writer: conns.Writer,
		reader: conns.Reader,
	}
}

func (r *Repository) Insert(ctx context.Context, review *entity.Review) error {
	ctx, span := repoTracer.Start(ctx, "ReviewRepository.Insert")
	defer span.End()

	if _, err := r.writer.NewInsert().Model(review).Exec(ctx); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "insert failed")
		return err
	}
	return nil
}

func (r *Repository) GetByID(ctx context.Context, reviewID int64) (*entity.Review, error) {
	ctx, span := repoTracer.Start(ctx, "ReviewRepository.GetByID", trace.WithAttributes(attribute.Int64("review.id", reviewID)))
	defer span.End()

	review := new(entity.Review)
	err := r.reader.NewSelect().Model(review).
		Where("r.id = ?", reviewID).
		Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		span.SetStatus(codes.Error, "not found")
		return nil, svc.ErrReviewNotFound
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "select failed")
		return nil, err
	}
	return review, nil
}

// GetByProductUser reads on the writer: it backs the duplicate check during
// creation and must see the latest committed rows.
func (r *Repository) GetByProductUser(ctx context.Context, productID, userID int64) (*entity.Review, error) {
	ctx, span := repoTracer.Start(ctx, "ReviewRepository.GetByProductUser", trace.WithAttributes(
		attribute.Int64("product.id", productID),
		attribute.Int64("user.id", userID),
	))
	defer span.End()

	review := new(entity.Review)
	err := r.writer.NewSelect().Model(review).
		Where("r.product_id = ?", productID).
		Where("r.user_id = ?", userID).
		Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, svc.ErrReviewNotFound
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "select failed")
		return nil, err
	}
	return review, nil
}

func (r *Repository) ListByProduct(ctx context.Context, productID int64, offset, limit int) ([]entity.Review, int, error) {
	ctx, span := repoTracer.Start(ctx, "ReviewRepository.ListByProduct", trace.WithAttributes(attribute.Int64("product.id", productID)))
	defer span.End()

	var reviews []entity.Review
	total, err := r.reader.NewSelect().Model(&reviews).
		Where("r.product_id = ?", productID).
		Order("r.created_at DESC").
		Offset(offset).Limit(limit).
		ScanAndCount(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "select failed")
		return nil, 0, err
	}
	return reviews, total, nil
}

func (r *Repository) Update(ctx context.Context, review *entity.Review) error {
	ctx, span := repoTracer.Start(ctx, "ReviewRepository.Update", trace.WithAttributes(attribute.Int64("review.id", review.ID)))
	defer span.End()

	res, err := r.writer.NewUpdate().Model(review).WherePK().Exec(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "update failed")
		return err
	}
	if rows, err := res.RowsAffected(); err == nil && rows == 0 {
		return svc.ErrReviewNotFound
	}
	return nil
}

func (r *Repository) Delete(ctx context.Context, reviewID int64) error {
	ctx, span := repoTracer.Start(ctx, "ReviewRepository.Delete", trace.WithAttributes(attribute.Int64("review.id", reviewID)))
	defer span.End()

	res, err := r.writer.NewDelete().Model((*entity.Review)(nil)).
		Where("id = ?", reviewID).
		Exec(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "delete failed")
		return err
	}
	if rows, err := res.RowsAffected(); err == nil && rows == 0 {
		return svc.ErrReviewNotFound
	}
	return nil
}

// Summary aggregates rating stats for one product. No reviews yields zeros.
func (r *Repository) Summary(ctx context.Context, productID int64) (dto.ReviewSummary, error) {
	ctx, span := repoTracer.Start(ctx, "ReviewRepository.Summary", trace.WithAttributes(attribute.Int64("product.id", productID)))
	defer span.End()

	var row struct {
		Average sql.NullFloat64 `bun:"average"`
		Count   int             `bun:"count"`
	}
	err := r.reader.NewSelect().Model((*entity.Review)(nil)).
		ColumnExpr("AVG(r.rating) AS average").
		ColumnExpr("COUNT(*) AS count").
		Where("r.product_id = ?", productID).
		Scan(ctx, &row)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "select failed")
		return dto.ReviewSummary{}, err
	}
	return dto.ReviewSummary{
		AverageRating: row.Average.Float64,
		ReviewCount:   row.Count,
	}, nil
}

func (r *Repository) ProductSeller(ctx context.Context, productID int64) (int64, error) {
	ctx, span := repoTracer.Start(ctx, "ReviewRepository.ProductSeller", trace.WithAttributes(attribute.Int64("product.id", productID)))
	defer span.End()

	var sellerID int64
	err := r.reader.NewSelect().Model((*entity.Product)(nil)).
		Column("p.seller_id").
		Where("p.id = ?", productID).
		Scan(ctx, &sellerID)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, svc.ErrProductNotFound
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "select failed")
		return 0, err
	}
	return sellerID, nil
}
