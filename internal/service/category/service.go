package category

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/agricoventas/platform/internal/dto"
	"github.com/agricoventas/platform/internal/entity"
	"github.com/agricoventas/platform/pkg/errorbank"
)

var serviceTracer = otel.Tracer("github.com/agricoventas/platform/service/category")

// Sentinel errors surfaced by Store implementations.
var (
	ErrCategoryNotFound = errors.New("category not found")
	ErrCategoryInUse    = errors.New("category has products")
)

// Store is the persistence boundary for categories.
type Store interface {
	Insert(ctx context.Context, category *entity.Category) error
	GetByID(ctx context.Context, categoryID int64) (*entity.Category, error)
	GetBySlug(ctx context.Context, slug string) (*entity.Category, error)
	List(ctx context.Context) ([]entity.Category, error)
	Update(ctx context.Context, category *entity.Category) error
	Delete(ctx context.Context, categoryID int64) error
	SlugExists(ctx context.Context, slug string) (bool, error)
}

// Service manages the browsing taxonomy. Mutations are admin-only at the
// transport layer.
type Service struct {
	store  Store
	logger *zap.Logger
}

// NewService wires a new Service instance.
func NewService(store Store, logger *zap.Logger) *Service {
	return &Service{store: store, logger: logger}
}

// Create adds a category, deriving a unique slug from the name.
func (s *Service) Create(ctx context.Context, req dto.CreateCategoryRequest) (*entity.Category, error) {
	ctx, span := serviceTracer.Start(ctx, "CategoryService.Create", trace.WithAttributes(
		attribute.String("category.name", req.Name),
	))
	defer span.End()

	slug, err := s.uniqueSlug(ctx, req.Name)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "slug generation failed")
		return nil, errorbank.Internal("failed to create category", errorbank.WithCause(err))
	}

	now := time.Now().UTC()
	category := &entity.Category{
		Name:        req.Name,
		Slug:        slug,
		Description: req.Description,
		ImageURL:    req.ImageURL,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.store.Insert(ctx, category); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "insert failed")
		return nil, errorbank.Internal("failed to create category", errorbank.WithCause(err))
	}
	return category, nil
}

// Update edits a category. Renames regenerate the slug.
func (s *Service) Update(ctx context.Context, categoryID int64, req dto.UpdateCategoryRequest) (*entity.Category, error) {
	ctx, span := serviceTracer.Start(ctx, "CategoryService.Update", trace.WithAttributes(attribute.Int64("category.id", categoryID)))
	defer span.End()

	category, err := s.load(ctx, span, categoryID)
	if err != nil {
		return nil, err
	}

	if req.Name != nil && *req.Name != category.Name {
		slug, err := s.uniqueSlug(ctx, *req.Name)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "slug generation failed")
			return nil, errorbank.Internal("failed to update category", errorbank.WithCause(err))
		}
		category.Name = *req.Name
		category.Slug = slug
	}
	if req.Description != nil {
		category.Description = *req.Description
	}
	if req.ImageURL != nil {
		category.ImageURL = *req.ImageURL
	}
	category.UpdatedAt = time.Now().UTC()

	if err := s.store.Update(ctx, category); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "update failed")
		return nil, errorbank.Internal("failed to update category", errorbank.WithCause(err))
	}
	return category, nil
}

// Delete removes an empty category. Categories that still have products are
// a conflict.
func (s *Service) Delete(ctx context.Context, categoryID int64) error {
	ctx, span := serviceTracer.Start(ctx, "CategoryService.Delete", trace.WithAttributes(attribute.Int64("category.id", categoryID)))
	defer span.End()

	err := s.store.Delete(ctx, categoryID)
	switch {
	case errors.Is(err, ErrCategoryNotFound):
		return errorbank.NotFound("category not found")
	case errors.Is(err, ErrCategoryInUse):
		return errorbank.Conflict("category still has products")
	case err != nil:
		span.RecordError(err)
		span.SetStatus(codes.Error, "delete failed")
		return errorbank.Internal("failed to delete category", errorbank.WithCause(err))
	}
	return nil
}

// Get loads one category by id.
func (s *Service) Get(ctx context.Context, categoryID int64) (*entity.Category, error) {
	ctx, span := serviceTracer.Start(ctx, "CategoryService.Get", trace.WithAttributes(attribute.Int64("category.id", categoryID)))
	defer span.End()
	return s.load(ctx, span, categoryID)
}

// GetBySlug loads one category by its URL slug.
func (s *Service) GetBySlug(ctx context.Context, slug string) (*entity.Category, error) {
	ctx, span := serviceTracer.Start(ctx, "CategoryService.GetBySlug", trace.WithAttributes(attribute.String("category.slug", slug)))
	defer span.End()

	category, err := s.store.GetBySlug(ctx, slug)
	if errors.Is(err, ErrCategoryNotFound) {
		return nil, errorbank.NotFound("category not found")
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "store error")
		return nil, errorbank.Internal("failed to load category", errorbank.WithCause(err))
	}
	return category, nil
}

// List returns every category, name order. The taxonomy is small enough
// that it is never paged.
func (s *Service) List(ctx context.Context) ([]entity.Category, error) {
	ctx, span := serviceTracer.Start(ctx, "CategoryService.List")
	defer span.End()

	categories, err := s.store.List(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "store error")
		return nil, errorbank.Internal("failed to list categories", errorbank.WithCause(err))
	}
	return categories, nil
}

func (s *Service) load(ctx context.Context, span trace.Span, categoryID int64) (*entity.Category, error) {
	category, err := s.store.GetByID(ctx, categoryID)
	if errors.Is(err, ErrCategoryNotFound) {
		return nil, errorbank.NotFound("category not found")
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "store error")
		return nil, errorbank.Internal("failed to load category", errorbank.WithCause(err))
	}
	return category, nil
}

// uniqueSlug slugifies name and appends a numeric suffix until the slug is
// free.
func (s *Service) uniqueSlug(ctx context.Context, name string) (string, error) {
	base := Slugify(name)
	slug := base
	for n := 2; ; n++ {
		taken, err := s.store.SlugExists(ctx, slug)
		if err != nil {
			return "", err
		}
		if !taken {
			return slug, nil
		}
		slug = fmt.Sprintf("%s-%d", base, n)
	}
}

// Slugify lowercases name and collapses every non-alphanumeric run into a
// single hyphen.
func Slugify(name string) string {
	var b strings.Builder
	lastHyphen := true
	for _, r := range strings.ToLower(name) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
			lastHyphen = false
			continue
		}
		if !lastHyphen {
			b.WriteByte('-')
			lastHyphen = true
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}
