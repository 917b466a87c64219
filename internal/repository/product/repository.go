package product

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
	svc "github.com/agricoventas/platform/internal/service/product"
)

var repoTracer = otel.Tracer("github.com/agricoventas/platform/repository/product")

// Repository encapsulates read/write access for product listings.
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

func (r *Repository) Insert(ctx context.Context, product *entity.Product) error {
	ctx, span := repoTracer.Start(ctx, "ProductRepository.Insert")
	defer span.End()

	if _, err := r.writer.NewInsert().Model(product).Exec(ctx); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "insert failed")
		return err
	}
	return nil
}

func (r *Repository) GetByID(ctx context.Context, productID int64) (*entity.Product, error) {
	ctx, span := repoTracer.Start(ctx, "ProductRepository.GetByID", trace.WithAttributes(attribute.Int64("product.id", productID)))
	defer span.End()

	product := new(entity.Product)
	err := r.reader.NewSelect().Model(product).
		Where("p.id = ?", productID).
		Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		span.SetStatus(codes.Error, "not found")
		return nil, svc.ErrProductNotFound
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "select failed")
		return nil, err
	}
	return product, nil
}

// List applies the query's filters and returns one page plus the unpaged
// total, newest first.
func (r *Repository) List(ctx context.Context, q dto.ProductQuery) ([]entity.Product, int, error) {
	ctx, span := repoTracer.Start(ctx, "ProductRepository.List")
	defer span.End()

	var products []entity.Product
	sel := r.reader.NewSelect().Model(&products)
	if q.CategoryID != 0 {
		sel = sel.Where("p.category_id = ?", q.CategoryID)
	}
	if q.SellerID != 0 {
		sel = sel.Where("p.seller_id = ?", q.SellerID)
	}
	if q.Search != "" {
		pattern := "%" + q.Search + "%"
		sel = sel.WhereGroup(" AND ", func(g *bun.SelectQuery) *bun.SelectQuery {
			return g.Where("p.name LIKE ?", pattern).
				WhereOr("p.description LIKE ?", pattern)
		})
	}
	if q.Featured != nil {
		sel = sel.Where("p.is_featured = ?", *q.Featured)
	}
	if q.Active != nil {
		sel = sel.Where("p.is_active = ?", *q.Active)
	}
	if q.MinPrice != nil {
		sel = sel.Where("p.base_price >= ?", *q.MinPrice)
	}
	if q.MaxPrice != nil {
		sel = sel.Where("p.base_price <= ?", *q.MaxPrice)
	}

	total, err := sel.Order("p.created_at DESC").Offset(q.Offset()).Limit(q.Limit).ScanAndCount(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "select failed")
		return nil, 0, err
	}
	return products, total, nil
}

func (r *Repository) Update(ctx context.Context, product *entity.Product) error {
	ctx, span := repoTracer.Start(ctx, "ProductRepository.Update", trace.WithAttributes(attribute.Int64("product.id", product.ID)))
	defer span.End()

	res, err := r.writer.NewUpdate().Model(product).WherePK().Exec(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "update failed")
		return err
	}
	if rows, err := res.RowsAffected(); err == nil && rows == 0 {
		return svc.ErrProductNotFound
	}
	return nil
}

func (r *Repository) CategoryExists(ctx context.Context, categoryID int64) (bool, error) {
	ctx, span := repoTracer.Start(ctx, "ProductRepository.CategoryExists", trace.WithAttributes(attribute.Int64("category.id", categoryID)))
	defer span.End()

	exists, err := r.reader.NewSelect().Model((*entity.Category)(nil)).
		Where("c.id = ?", categoryID).
		Exists(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "select failed")
		return false, err
	}
	return exists, nil
}
