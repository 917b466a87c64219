package review

import (
	"context"
	"errors"
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

var serviceTracer = otel.Tracer("github.com/agricoventas/platform/service/review")

// Sentinel errors surfaced by Store implementations.
var (
	ErrReviewNotFound  = errors.New("review not found")
	ErrProductNotFound = errors.New("product not found")
)

// Store is the persistence boundary for reviews.
type Store interface {
	Insert(ctx context.Context, review *entity.Review) error
	GetByID(ctx context.Context, reviewID int64) (*entity.Review, error)
	GetByProductUser(ctx context.Context, productID, userID int64) (*entity.Review, error)
	ListByProduct(ctx context.Context, productID int64, offset, limit int) ([]entity.Review, int, error)
	Update(ctx context.Context, review *entity.Review) error
	Delete(ctx context.Context, reviewID int64) error
	Summary(ctx context.Context, productID int64) (dto.ReviewSummary, error)
	ProductSeller(ctx context.Context, productID int64) (int64, error)
}

// Service implements product ratings. One review per (product, user);
// sellers cannot review their own listings.
type Service struct {
	store  Store
	logger *zap.Logger
}

// NewService wires a new Service instance.
func NewService(store Store, logger *zap.Logger) *Service {
	return &Service{store: store, logger: logger}
}

// Create adds the actor's review of a product.
func (s *Service) Create(ctx context.Context, actor auth.Actor, req dto.CreateReviewRequest) (*entity.Review, error) {
	ctx, span := serviceTracer.Start(ctx, "ReviewService.Create", trace.WithAttributes(
		attribute.Int64("product.id", req.ProductID),
		attribute.Int64("user.id", actor.UserID),
	))
	defer span.End()

	sellerID, err := s.store.ProductSeller(ctx, req.ProductID)
	if errors.Is(err, ErrProductNotFound) {
		return nil, errorbank.NotFound("product not found")
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "store error")
		return nil, errorbank.Internal("failed to create review", errorbank.WithCause(err))
	}
	if sellerID == actor.UserID {
		return nil, errorbank.Forbidden("cannot review your own listing")
	}

	existing, err := s.store.GetByProductUser(ctx, req.ProductID, actor.UserID)
	if err != nil && !errors.Is(err, ErrReviewNotFound) {
		span.RecordError(err)
		span.SetStatus(codes.Error, "store error")
		return nil, errorbank.Internal("failed to create review", errorbank.WithCause(err))
	}
	if existing != nil {
		return nil, errorbank.Conflict("you have already reviewed this product",
			errorbank.WithDetail("review_id", existing.ID))
	}

	now := time.Now().UTC()
	review := &entity.Review{
		ProductID: req.ProductID,
		UserID:    actor.UserID,
		Rating:    req.Rating,
		Comment:   req.Comment,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.store.Insert(ctx, review); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "insert failed")
		return nil, errorbank.Internal("failed to create review", errorbank.WithCause(err))
	}
	return review, nil
}

// Update edits the actor's own review.
func (s *Service) Update(ctx context.Context, actor auth.Actor, reviewID int64, req dto.UpdateReviewRequest) (*entity.Review, error) {
	ctx, span := serviceTracer.Start(ctx, "ReviewService.Update", trace.WithAttributes(attribute.Int64("review.id", reviewID)))
	defer span.End()

	review, err := s.load(ctx, span, reviewID)
	if err != nil {
		return nil, err
	}
	if review.UserID != actor.UserID {
		return nil, errorbank.Forbidden("cannot edit another user's review")
	}

	if req.Rating != nil {
		review.Rating = *req.Rating
	}
	if req.Comment != nil {
		review.Comment = *req.Comment
	}
	review.UpdatedAt = time.Now().UTC()

	if err := s.store.Update(ctx, review); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "update failed")
		return nil, errorbank.Internal("failed to update review", errorbank.WithCause(err))
	}
	return review, nil
}

// Delete removes a review. Owners delete their own; admins may moderate any.
func (s *Service) Delete(ctx context.Context, actor auth.Actor, reviewID int64) error {
	ctx, span := serviceTracer.Start(ctx, "ReviewService.Delete", trace.WithAttributes(attribute.Int64("review.id", reviewID)))
	defer span.End()

	review, err := s.load(ctx, span, reviewID)
	if err != nil {
		return err
	}
	if review.UserID != actor.UserID && !actor.Admin() {
		return errorbank.Forbidden("cannot delete another user's review")
	}

	if err := s.store.Delete(ctx, reviewID); err != nil {
		if errors.Is(err, ErrReviewNotFound) {
			return errorbank.NotFound("review not found")
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, "delete failed")
		return errorbank.Internal("failed to delete review", errorbank.WithCause(err))
	}
	return nil
}

// ListByProduct pages through a product's reviews, newest first.
func (s *Service) ListByProduct(ctx context.Context, productID int64, q dto.PageQuery) ([]entity.Review, int, error) {
	ctx, span := serviceTracer.Start(ctx, "ReviewService.ListByProduct", trace.WithAttributes(attribute.Int64("product.id", productID)))
	defer span.End()

	q.Normalize()
	reviews, total, err := s.store.ListByProduct(ctx, productID, q.Offset(), q.Limit)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "store error")
		return nil, 0, errorbank.Internal("failed to list reviews", errorbank.WithCause(err))
	}
	return reviews, total, nil
}

// Summary returns a product's average rating and review count.
func (s *Service) Summary(ctx context.Context, productID int64) (dto.ReviewSummary, error) {
	ctx, span := serviceTracer.Start(ctx, "ReviewService.Summary", trace.WithAttributes(attribute.Int64("product.id", productID)))
	defer span.End()

	summary, err := s.store.Summary(ctx, productID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "store error")
		return dto.ReviewSummary{}, errorbank.Internal("failed to summarise reviews", errorbank.WithCause(err))
	}
	return summary, nil
}

func (s *Service) load(ctx context.Context, span trace.Span, reviewID int64) (*entity.Review, error) {
	review, err := s.store.GetByID(ctx, reviewID)
	if errors.Is(err, ErrReviewNotFound) {
		return nil, errorbank.NotFound("review not found")
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "store error")
		return nil, errorbank.Internal("failed to load review", errorbank.WithCause(err))
	}
	return review, nil
}
