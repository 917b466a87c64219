package category

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
	svc "github.com/agricoventas/platform/internal/service/category"
)

var repoTracer = otel.Tracer("github.com/agricoventas/platform/repository/category")

// Repository encapsulates read/write access for categories.
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

func (r *Repository) Insert(ctx context.Context, category *entity.Category) error {
	ctx, span := repoTracer.Start(ctx, "CategoryRepository.Insert")
	defer span.End()

	if _, err := r.writer.NewInsert().Model(category).Exec(ctx); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "insert failed")
		return err
	}
	return nil
}

func (r *Repository) GetByID(ctx context.Context, categoryID int64) (*entity.Category, error) {
	ctx, span := repoTracer.Start(ctx, "CategoryRepository.GetByID", trace.WithAttributes(attribute.Int64("category.id", categoryID)))
	defer span.End()

	category := new(entity.Category)
	err := r.reader.NewSelect().Model(category).
		Where("c.id = ?", categoryID).
		Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		span.SetStatus(codes.Error, "not found")
		return nil, svc.ErrCategoryNotFound
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "select failed")
		return nil, err
	}
	return category, nil
}

func (r *Repository) GetBySlug(ctx context.Context, slug string) (*entity.Category, error) {
	ctx, span := repoTracer.Start(ctx, "CategoryRepository.GetBySlug", trace.WithAttributes(attribute.String("category.slug", slug)))
	defer span.End()

	category := new(entity.Category)
	err := r.reader.NewSelect().Model(category).
		Where("c.slug = ?", slug).
		Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		span.SetStatus(codes.Error, "not found")
		return nil, svc.ErrCategoryNotFound
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "select failed")
		return nil, err
	}
	return category, nil
}

func (r *Repository) List(ctx context.Context) ([]entity.Category, error) {
	ctx, span := repoTracer.Start(ctx, "CategoryRepository.List")
	defer span.End()

	var categories []entity.Category
	err := r.reader.NewSelect().Model(&categories).
		Order("c.name ASC").
		Scan(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "select failed")
		return nil, err
	}
	return categories, nil
}

func (r *Repository) Update(ctx context.Context, category *entity.Category) error {
	ctx, span := repoTracer.Start(ctx, "CategoryRepository.Update", trace.WithAttributes(attribute.Int64("category.id", category.ID)))
	defer span.End()

	res, err := r.writer.NewUpdate().Model(category).WherePK().Exec(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "update failed")
		return err
	}
	if rows, err := res.RowsAffected(); err == nil && rows == 0 {
		return svc.ErrCategoryNotFound
	}
	return nil
}

// Delete removes a category unless products still reference it.
func (r *Repository) Delete(ctx context.Context, categoryID int64) error {
	ctx, span := repoTracer.Start(ctx, "CategoryRepository.Delete", trace.WithAttributes(attribute.Int64("category.id", categoryID)))
	defer span.End()

	inUse, err := r.writer.NewSelect().Model((*entity.Product)(nil)).
		Where("p.category_id = ?", categoryID).
		Exists(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "select failed")
		return err
	}
	if inUse {
		return svc.ErrCategoryInUse
	}

	res, err := r.writer.NewDelete().Model((*entity.Category)(nil)).
		Where("id = ?", categoryID).
		Exec(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "delete failed")
		return err
	}
	if rows, err := res.RowsAffected(); err == nil && rows == 0 {
		return svc.ErrCategoryNotFound
	}
	return nil
}

func (r *Repository) SlugExists(ctx context.Context, slug string) (bool, error) {
	ctx, span := repoTracer.Start(ctx, "CategoryRepository.SlugExists")
	defer span.End()

	exists, err := r.reader.NewSelect().Model((*entity.Category)(nil)).
		Where("c.slug = ?", slug).
		Exists(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "select failed")
		return false, err
	}
	return exists, nil
}
