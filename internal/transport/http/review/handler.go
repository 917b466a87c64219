package review

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/agricoventas/platform/internal/dto"
	"github.com/agricoventas/platform/internal/entity"
	"github.com/agricoventas/platform/internal/presentation/http/response"
	service "github.com/agricoventas/platform/internal/service/review"
	"github.com/agricoventas/platform/internal/transport/http/middleware"
	"github.com/agricoventas/platform/pkg/errorbank"
)

var httpTracer = otel.Tracer("github.com/agricoventas/platform/transport/http/review")

// Handler exposes review endpoints over HTTP.
type Handler struct {
	svc *service.Service
}

// NewHandler constructs a review Handler.
func NewHandler(svc *service.Service) *Handler {
	return &Handler{svc: svc}
}

// Register routes with the provided Echo instance. Product-scoped reads are
// public; writes require authentication.
func Register(e *echo.Echo, h *Handler) {
	e.GET("/api/products/:id/reviews", h.listByProduct)
	e.GET("/api/products/:id/reviews/summary", h.summary)

	g := e.Group("/api/reviews", middleware.Require())
	g.POST("", h.create)
	g.PUT("/:id", h.update)
	g.DELETE("/:id", h.remove)
}

func (h *Handler) listByProduct(c echo.Context) error {
	b := response.New(c)

	productID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return b.WithError(errorbank.BadRequest("invalid id", errorbank.WithCause(err))).Build()
	}

	var q dto.PageQuery
	if err := c.Bind(&q); err != nil {
		return b.WithError(errorbank.BadRequest("invalid query", errorbank.WithCause(err))).Build()
	}

	ctx, span := httpTracer.Start(c.Request().Context(), "reviews.listByProduct", trace.WithAttributes(attribute.Int64("product.id", productID)))
	defer span.End()

	reviews, total, err := h.svc.ListByProduct(ctx, productID, q)
	if err != nil {
		return b.WithError(err).Build()
	}

	q.Normalize()
	out := make([]dto.ReviewResponse, 0, len(reviews))
	for i := range reviews {
		out = append(out, toDTO(&reviews[i]))
	}
	return b.WithData(out).WithPage(total, q).Build()
}

func (h *Handler) summary(c echo.Context) error {
	b := response.New(c)

	productID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return b.WithError(errorbank.BadRequest("invalid id", errorbank.WithCause(err))).Build()
	}

	ctx, span := httpTracer.Start(c.Request().Context(), "reviews.summary", trace.WithAttributes(attribute.Int64("product.id", productID)))
	defer span.End()

	summary, err := h.svc.Summary(ctx, productID)
	if err != nil {
		return b.WithError(err).Build()
	}
	return b.WithData(summary).Build()
}

func (h *Handler) create(c echo.Context) error {
	b := response.New(c)

	var req dto.CreateReviewRequest
	if err := c.Bind(&req); err != nil {
		return b.WithError(errorbank.BadRequest("invalid payload", errorbank.WithCause(err))).Build()
	}
	if err := c.Validate(&req); err != nil {
		return b.WithError(err).Build()
	}

	ctx, span := httpTracer.Start(c.Request().Context(), "reviews.create", trace.WithAttributes(attribute.Int64("product.id", req.ProductID)))
	defer span.End()

	review, err := h.svc.Create(ctx, middleware.MustActor(c), req)
	if err != nil {
		return b.WithError(err).Build()
	}
	return b.WithStatus(http.StatusCreated).WithData(toDTO(review)).Build()
}

func (h *Handler) update(c echo.Context) error {
	b := response.New(c)

	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return b.WithError(errorbank.BadRequest("invalid id", errorbank.WithCause(err))).Build()
	}

	var req dto.UpdateReviewRequest
	if err := c.Bind(&req); err != nil {
		return b.WithError(errorbank.BadRequest("invalid payload", errorbank.WithCause(err))).Build()
	}
	if err := c.Validate(&req); err != nil {
		return b.WithError(err).Build()
	}

	ctx, span := httpTracer.Start(c.Request().Context(), "reviews.update", trace.WithAttributes(attribute.Int64("review.id", id)))
	defer span.End()

	review, err := h.svc.Update(ctx, middleware.MustActor(c), id, req)
	if err != nil {
		return b.WithError(err).Build()
	}
	return b.WithData(toDTO(review)).Build()
}

func (h *Handler) remove(c echo.Context) error {
	b := response.New(c)

	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return b.WithError(errorbank.BadRequest("invalid id", errorbank.WithCause(err))).Build()
	}

	ctx, span := httpTracer.Start(c.Request().Context(), "reviews.delete", trace.WithAttributes(attribute.Int64("review.id", id)))
	defer span.End()

	if err := h.svc.Delete(ctx, middleware.MustActor(c), id); err != nil {
		return b.WithError(err).Build()
	}
	return b.WithStatus(http.StatusNoContent).Build()
}

func toDTO(review *entity.Review) dto.ReviewResponse {
	return dto.ReviewResponse{
		ID:        review.ID,
		ProductID: review.ProductID,
		UserID:    review.UserID,
		Rating:    review.Rating,
		Comment:   review.Comment,
		CreatedAt: review.CreatedAt,
		UpdatedAt: review.UpdatedAt,
	}
}
