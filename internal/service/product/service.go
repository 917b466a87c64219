package product

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/agricoventas/platform/internal/auth"
	"github.com/agricoventas/platform/internal/cache"
	"github.com/agricoventas/platform/internal/config"
	"github.com/agricoventas/platform/internal/dto"
	"github.com/agricoventas/platform/internal/entity"
	"github.com/agricoventas/platform/pkg/errorbank"
)

var serviceTracer = otel.Tracer("github.com/agricoventas/platform/service/product")

// Sentinel errors surfaced by Store implementations.
var (
	ErrProductNotFound  = errors.New("product not found")
	ErrCategoryNotFound = errors.New("category not found")
)

// Store is the persistence boundary for product listings.
type Store interface {
	Insert(ctx context.Context, product *entity.Product) error
	GetByID(ctx context.Context, productID int64) (*entity.Product, error)
	List(ctx context.Context, q dto.ProductQuery) ([]entity.Product, int, error)
	Update(ctx context.Context, product *entity.Product) error
	CategoryExists(ctx context.Context, categoryID int64) (bool, error)
}

// CertificationGate reports whether a seller holds every required
// certification. Sellers without full coverage may not publish listings.
type CertificationGate interface {
	HasAllCertifications(ctx context.Context, userID int64) (bool, []string, error)
}

// Auditor appends product change rows to the audit trail.
type Auditor interface {
	Record(ctx context.Context, actorID int64, changeType string, before, after *entity.Product)
}

// Service implements listing CRUD with the certification gate, soft
// deletion, and field-level audit recording.
type Service struct {
	store    Store
	gate     CertificationGate
	auditor  Auditor
	cache    cache.Store
	cacheTTL time.Duration
	logger   *zap.Logger
}

// Params defines dependencies for constructing Service.
type Params struct {
	fx.In

	Store   Store
	Gate    CertificationGate
	Auditor Auditor
	Cache   cache.Store
	Config  config.Config
	Logger  *zap.Logger
}

// NewService wires a new Service instance.
func NewService(p Params) *Service {
	return &Service{
		store:    p.Store,
		gate:     p.Gate,
		auditor:  p.Auditor,
		cache:    p.Cache,
		cacheTTL: p.Config.Cache.DefaultTTL,
		logger:   p.Logger,
	}
}

// Create publishes a new listing. Sellers must hold every required
// certification; admins bypass the gate.
func (s *Service) Create(ctx context.Context, actor auth.Actor, req dto.CreateProductRequest) (*entity.Product, error) {
	ctx, span := serviceTracer.Start(ctx, "ProductService.Create", trace.WithAttributes(
		attribute.Int64("seller.id", actor.UserID),
	))
	defer span.End()

	if !actor.Seller() && !actor.Admin() {
		return nil, errorbank.Forbidden("only sellers can publish listings")
	}
	if err := s.checkGate(ctx, actor); err != nil {
		return nil, err
	}

	exists, err := s.store.CategoryExists(ctx, req.CategoryID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "store error")
		return nil, errorbank.Internal("failed to verify category", errorbank.WithCause(err))
	}
	if !exists {
		return nil, errorbank.Unprocessable("category does not exist",
			errorbank.WithDetail("category_id", req.CategoryID))
	}

	now := time.Now().UTC()
	product := &entity.Product{
		SellerID:       actor.UserID,
		CategoryID:     req.CategoryID,
		Name:           req.Name,
		Description:    req.Description,
		BasePrice:      req.BasePrice,
		StockQuantity:  req.StockQuantity,
		UnitMeasure:    req.UnitMeasure,
		OriginLocation: req.OriginLocation,
		ImageURL:       req.ImageURL,
		IsFeatured:     req.IsFeatured,
		IsActive:       true,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if err := s.store.Insert(ctx, product); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "insert failed")
		return nil, errorbank.Internal("failed to create product", errorbank.WithCause(err))
	}

	s.auditor.Record(ctx, actor.UserID, entity.ChangeCreate, nil, product)
	return product, nil
}

// Update applies partial edits to a listing owned by the actor.
func (s *Service) Update(ctx context.Context, actor auth.Actor, productID int64, req dto.UpdateProductRequest) (*entity.Product, error) {
	ctx, span := serviceTracer.Start(ctx, "ProductService.Update", trace.WithAttributes(
		attribute.Int64("product.id", productID),
	))
	defer span.End()

	product, err := s.load(ctx, span, productID)
	if err != nil {
		return nil, err
	}
	if product.SellerID != actor.UserID && !actor.Admin() {
		return nil, errorbank.Forbidden("cannot edit another seller's listing")
	}

	if req.CategoryID != nil && *req.CategoryID != product.CategoryID {
		exists, err := s.store.CategoryExists(ctx, *req.CategoryID)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "store error")
			return nil, errorbank.Internal("failed to verify category", errorbank.WithCause(err))
		}
		if !exists {
			return nil, errorbank.Unprocessable("category does not exist",
				errorbank.WithDetail("category_id", *req.CategoryID))
		}
	}

	before := *product
	apply(product, req)
	product.UpdatedAt = time.Now().UTC()

	if err := s.store.Update(ctx, product); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "update failed")
		return nil, errorbank.Internal("failed to update product", errorbank.WithCause(err))
	}

	s.auditor.Record(ctx, actor.UserID, entity.ChangeUpdate, &before, product)
	s.dropFromCache(ctx, productID)
	return product, nil
}

// Delete deactivates a listing. Rows are kept so existing orders and the
// audit trail stay intact.
func (s *Service) Delete(ctx context.Context, actor auth.Actor, productID int64) error {
	ctx, span := serviceTracer.Start(ctx, "ProductService.Delete", trace.WithAttributes(
		attribute.Int64("product.id", productID),
	))
	defer span.End()

	product, err := s.load(ctx, span, productID)
	if err != nil {
		return err
	}
	if product.SellerID != actor.UserID && !actor.Admin() {
		return errorbank.Forbidden("cannot delete another seller's listing")
	}
	if !product.IsActive {
		return errorbank.Conflict("product is already deactivated")
	}

	before := *product
	product.IsActive = false
	product.UpdatedAt = time.Now().UTC()

	if err := s.store.Update(ctx, product); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "update failed")
		return errorbank.Internal("failed to delete product", errorbank.WithCause(err))
	}

	s.auditor.Record(ctx, actor.UserID, entity.ChangeDelete, &before, product)
	s.dropFromCache(ctx, productID)
	return nil
}

// Get retrieves a listing, consulting cache when available. Deactivated
// listings stay visible to their seller and to admins only.
func (s *Service) Get(ctx context.Context, actor auth.Actor, productID int64) (*entity.Product, error) {
	ctx, span := serviceTracer.Start(ctx, "ProductService.Get", trace.WithAttributes(attribute.Int64("product.id", productID)))
	defer span.End()

	if product, err := s.getFromCache(ctx, productID); err == nil {
		return s.authorize(actor, product)
	} else if !errors.Is(err, cache.ErrCacheMiss) {
		s.logger.Warn("products cache read failed", zap.Int64("id", productID), zap.Error(err))
	}

	product, err := s.load(ctx, span, productID)
	if err != nil {
		return nil, err
	}

	if err := s.storeInCache(ctx, product); err != nil {
		s.logger.Warn("products cache write failed", zap.Int64("id", productID), zap.Error(err))
	}

	return s.authorize(actor, product)
}

// List pages through listings with the query's filters applied. Callers
// without admin rights only see active listings unless they filter on
// their own seller id.
func (s *Service) List(ctx context.Context, actor auth.Actor, q dto.ProductQuery) ([]entity.Product, int, error) {
	ctx, span := serviceTracer.Start(ctx, "ProductService.List")
	defer span.End()

	q.Normalize()
	if q.MinPrice != nil && q.MaxPrice != nil && *q.MinPrice > *q.MaxPrice {
		return nil, 0, errorbank.BadRequest("min_price cannot exceed max_price")
	}

	ownListings := q.SellerID != 0 && q.SellerID == actor.UserID
	if !actor.Admin() && !ownListings {
		active := true
		q.Active = &active
	}

	products, total, err := s.store.List(ctx, q)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "store error")
		return nil, 0, errorbank.Internal("failed to list products", errorbank.WithCause(err))
	}
	return products, total, nil
}

func (s *Service) load(ctx context.Context, span trace.Span, productID int64) (*entity.Product, error) {
	product, err := s.store.GetByID(ctx, productID)
	if errors.Is(err, ErrProductNotFound) {
		return nil, errorbank.NotFound("product not found")
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "store error")
		return nil, errorbank.Internal("failed to load product", errorbank.WithCause(err))
	}
	return product, nil
}

func (s *Service) authorize(actor auth.Actor, product *entity.Product) (*entity.Product, error) {
	if product.IsActive || product.SellerID == actor.UserID || actor.Admin() {
		return product, nil
	}
	return nil, errorbank.NotFound("product not found")
}

func (s *Service) checkGate(ctx context.Context, actor auth.Actor) error {
	if actor.Admin() {
		return nil
	}
	ok, missing, err := s.gate.HasAllCertifications(ctx, actor.UserID)
	if err != nil {
		return err
	}
	if !ok {
		return errorbank.Forbidden("seller is missing required certifications",
			errorbank.WithDetail("missing", missing))
	}
	return nil
}

func apply(product *entity.Product, req dto.UpdateProductRequest) {
	if req.CategoryID != nil {
		product.CategoryID = *req.CategoryID
	}
	if req.Name != nil {
		product.Name = *req.Name
	}
	if req.Description != nil {
		product.Description = *req.Description
	}
	if req.BasePrice != nil {
		product.BasePrice = *req.BasePrice
	}
	if req.StockQuantity != nil {
		product.StockQuantity = *req.StockQuantity
	}
	if req.UnitMeasure != nil {
		product.UnitMeasure = *req.UnitMeasure
	}
	if req.OriginLocation != nil {
		product.OriginLocation = *req.OriginLocation
	}
	if req.ImageURL != nil {
		product.ImageURL = *req.ImageURL
	}
	if req.IsFeatured != nil {
		product.IsFeatured = *req.IsFeatured
	}
	if req.IsActive != nil {
		product.IsActive = *req.IsActive
	}
}

func (s *Service) cacheKey(id int64) string {
	return fmt.Sprintf("products:%d", id)
}

func (s *Service) getFromCache(ctx context.Context, id int64) (*entity.Product, error) {
	if s.cache == nil {
		return nil, cache.ErrCacheMiss
	}
	bytes, err := s.cache.Get(ctx, s.cacheKey(id))
	if err != nil {
		return nil, err
	}
	var product entity.Product
	if err := json.Unmarshal(bytes, &product); err != nil {
		return nil, err
	}
	return &product, nil
}

func (s *Service) storeInCache(ctx context.Context, product *entity.Product) error {
	if s.cache == nil || product == nil {
		return nil
	}
	bytes, err := json.Marshal(product)
	if err != nil {
		return err
	}
	return s.cache.Set(ctx, s.cacheKey(product.ID), bytes, s.cacheTTL)
}

func (s *Service) dropFromCache(ctx context.Context, id int64) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Delete(ctx, s.cacheKey(id)); err != nil {
		s.logger.Warn("products cache delete failed", zap.Int64("id", id), zap.Error(err))
	}
}
