package history

import (
	"context"
	"strconv"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/agricoventas/platform/internal/dto"
	"github.com/agricoventas/platform/internal/entity"
	"github.com/agricoventas/platform/pkg/errorbank"
)

var serviceTracer = otel.Tracer("github.com/agricoventas/platform/service/history")

// Audit field names, mirrored in stored rows.
const (
	FieldName           = "name"
	FieldDescription    = "description"
	FieldBasePrice      = "basePrice"
	FieldStockQuantity  = "stockQuantity"
	FieldUnitMeasure    = "unitMeasure"
	FieldIsFeatured     = "isFeatured"
	FieldIsActive       = "isActive"
	FieldCategoryID     = "categoryId"
	FieldOriginLocation = "originLocation"
)

// Store is the persistence boundary for the audit trail.
type Store interface {
	InsertAll(ctx context.Context, rows []entity.ProductHistory) error
	ListByProduct(ctx context.Context, productID int64, offset, limit int) ([]entity.ProductHistory, int, error)
	PriceRows(ctx context.Context, productID int64) ([]entity.ProductHistory, error)
}

// Recorder diffs product snapshots field by field and appends audit rows.
// Recording is best-effort by contract: failures are logged and swallowed so
// they never block the primary mutation.
type Recorder struct {
	store  Store
	logger *zap.Logger
}

// NewRecorder wires a Recorder instance.
func NewRecorder(store Store, logger *zap.Logger) *Recorder {
	return &Recorder{store: store, logger: logger}
}

// Record compares before and after snapshots and appends one row per changed
// field. A nil before treats every populated after-field as new; a nil after
// compares against the zero product.
func (r *Recorder) Record(ctx context.Context, actorID int64, changeType string, before, after *entity.Product) {
	ctx, span := serviceTracer.Start(ctx, "HistoryRecorder.Record", trace.WithAttributes(
		attribute.String("history.change_type", changeType),
	))
	defer span.End()

	if before == nil {
		before = &entity.Product{}
	}
	if after == nil {
		after = &entity.Product{}
	}

	productID := after.ID
	if productID == 0 {
		productID = before.ID
	}

	now := time.Now().UTC()
	var rows []entity.ProductHistory
	appendRow := func(field, oldValue, newValue string) {
		if oldValue == newValue {
			return
		}
		rows = append(rows, entity.ProductHistory{
			ProductID:  productID,
			UserID:     actorID,
			ChangeType: changeType,
			Field:      field,
			OldValue:   oldValue,
			NewValue:   newValue,
			CreatedAt:  now,
		})
	}

	appendRow(FieldName, before.Name, after.Name)
	appendRow(FieldDescription, before.Description, after.Description)
	appendRow(FieldBasePrice, formatPrice(before.BasePrice), formatPrice(after.BasePrice))
	appendRow(FieldStockQuantity, strconv.Itoa(before.StockQuantity), strconv.Itoa(after.StockQuantity))
	appendRow(FieldUnitMeasure, before.UnitMeasure, after.UnitMeasure)
	appendRow(FieldIsFeatured, strconv.FormatBool(before.IsFeatured), strconv.FormatBool(after.IsFeatured))
	appendRow(FieldIsActive, strconv.FormatBool(before.IsActive), strconv.FormatBool(after.IsActive))
	appendRow(FieldCategoryID, strconv.FormatInt(before.CategoryID, 10), strconv.FormatInt(after.CategoryID, 10))
	appendRow(FieldOriginLocation, before.OriginLocation, after.OriginLocation)

	if len(rows) == 0 {
		return
	}

	if err := r.store.InsertAll(ctx, rows); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "insert failed")
		r.logger.Warn("product history recording failed",
			zap.Int64("product_id", productID),
			zap.String("change_type", changeType),
			zap.Error(err))
	}
}

// List pages through a product's audit trail, newest first.
func (r *Recorder) List(ctx context.Context, productID int64, q dto.PageQuery) ([]entity.ProductHistory, int, error) {
	ctx, span := serviceTracer.Start(ctx, "HistoryRecorder.List", trace.WithAttributes(attribute.Int64("product.id", productID)))
	defer span.End()

	q.Normalize()
	rows, total, err := r.store.ListByProduct(ctx, productID, q.Offset(), q.Limit)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "store error")
		return nil, 0, errorbank.Internal("failed to list product history", errorbank.WithCause(err))
	}
	return rows, total, nil
}

// PriceTrend reconstructs a product's price trajectory from basePrice audit
// rows, oldest first. Only real history rows feed the trend.
func (r *Recorder) PriceTrend(ctx context.Context, productID int64, currentPrice float64) (dto.PriceTrendResponse, error) {
	ctx, span := serviceTracer.Start(ctx, "HistoryRecorder.PriceTrend", trace.WithAttributes(attribute.Int64("product.id", productID)))
	defer span.End()

	rows, err := r.store.PriceRows(ctx, productID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "store error")
		return dto.PriceTrendResponse{}, errorbank.Internal("failed to load price history", errorbank.WithCause(err))
	}

	points := make([]dto.PricePoint, 0, len(rows)+1)
	for _, row := range rows {
		price, err := strconv.ParseFloat(row.NewValue, 64)
		if err != nil {
			r.logger.Warn("unparseable price in history row",
				zap.Int64("row_id", row.ID),
				zap.String("value", row.NewValue))
			continue
		}
		points = append(points, dto.PricePoint{Price: price, RecordedAt: row.CreatedAt})
	}

	return dto.PriceTrendResponse{
		ProductID:    productID,
		CurrentPrice: currentPrice,
		Points:       points,
	}, nil
}

func formatPrice(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
