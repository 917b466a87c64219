package history

import (
	"context"

	"github.com/uptrace/bun"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/agricoventas/platform/internal/database"
	"github.com/agricoventas/platform/internal/entity"
	svc "github.com/agricoventas/platform/internal/service/history"
)

var repoTracer = otel.Tracer("github.com/agricoventas/platform/repository/history")

var _ svc.Store = (*Repository)(nil)

// Repository persists the product audit trail.
type Repository struct {
	writer *bun.DB
	reader *bun.DB
}

// NewRepository wires a repository backed by configured database connections.
func NewRepository(conns *database.Connections) *Repository {
	return &Repository{writer: conns.Writer, reader: conns.Reader}
}

// InsertAll appends audit rows in one statement.
func (r *Repository) InsertAll(ctx context.Context, rows []entity.ProductHistory) error {
	if len(rows) == 0 {
		return nil
	}
	ctx, span := repoTracer.Start(ctx, "HistoryRepository.InsertAll", trace.WithAttributes(attribute.Int("history.rows", len(rows))))
	defer span.End()

	_, err := r.writer.NewInsert().Model(&rows).Exec(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "insert failed")
	}
	return err
}

// ListByProduct pages through a product's audit trail, newest first.
func (r *Repository) ListByProduct(ctx context.Context, productID int64, offset, limit int) ([]entity.ProductHistory, int, error) {
	ctx, span := repoTracer.Start(ctx, "HistoryRepository.ListByProduct", trace.WithAttributes(attribute.Int64("product.id", productID)))
	defer span.End()

	var rows []entity.ProductHistory
	total, err := r.reader.NewSelect().Model(&rows).
		Where("ph.product_id = ?", productID).
		Order("ph.created_at DESC", "ph.id DESC").
		Offset(offset).Limit(limit).
		ScanAndCount(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "select failed")
		return nil, 0, err
	}
	return rows, total, nil
}

// PriceRows returns basePrice audit rows, oldest first.
func (r *Repository) PriceRows(ctx context.Context, productID int64) ([]entity.ProductHistory, error) {
	ctx, span := repoTracer.Start(ctx, "HistoryRepository.PriceRows", trace.WithAttributes(attribute.Int64("product.id", productID)))
	defer span.End()

	var rows []entity.ProductHistory
	err := r.reader.NewSelect().Model(&rows).
		Where("ph.product_id = ? AND ph.field = ?", productID, svc.FieldBasePrice).
		Order("ph.created_at ASC", "ph.id ASC").
		Scan(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "select failed")
		return nil, err
	}
	return rows, nil
}
