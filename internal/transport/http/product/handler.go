package product

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
	"github.com/agricoventas/platform/internal/service/history"
	service "github.com/agricoventas/platform/internal/service/product"
	reviewsvc "github.com/agricoventas/platform/internal/service/review"
	"github.com/agricoventas/platform/internal/transport/http/middleware"
	"github.com/agricoventas/platform/pkg/errorbank"
)

var httpTracer = otel.Tracer("github.com/agricoventas/platform/transport/http/product")

// Handler exposes product listing endpoints over HTTP, including the audit
// trail and price trend views.
type Handler struct {
	svc     *service.Service
	history *history.Recorder
	reviews *reviewsvc.Service
}

// NewHandler constructs a product Handler.
func NewHandler(svc *service.Service, history *history.Recorder, reviews *reviewsvc.Service) *Handler {
	return &Handler{svc: svc, history: history, reviews: reviews}
}

// Register routes with the provided Echo instance.
func Register(e *echo.Echo, h *Handler) {
	// Price trends are public like the listing itself; the raw audit trail
	// below is restricted to the owning seller and admins.
	g := e.Group("/api/products")
	g.GET("", h.list)
	g.GET("/:id", h.getByID)
	g.GET("/:id/price-trends", h.priceTrend)

	sellers := e.Group("/api/products", middleware.RequireRoles(entity.RoleSeller, entity.RoleAdmin))
	sellers.POST("", h.create)
	sellers.PUT("/:id", h.update)
	sellers.DELETE("/:id", h.remove)
	sellers.GET("/:id/history", h.listHistory)
}

func (h *Handler) list(c echo.Context) error {
	b := response.New(c)

	var q dto.ProductQuery
	if err := c.Bind(&q); err != nil {
		return b.WithError(errorbank.BadRequest("invalid query", errorbank.WithCause(err))).Build()
	}
	if err := c.Validate(&q); err != nil {
		return b.WithError(err).Build()
	}

	ctx, span := httpTracer.Start(c.Request().Context(), "products.list")
	defer span.End()

	actor, _ := middleware.Actor(c)
	products, total, err := h.svc.List(ctx, actor, q)
	if err != nil {
		return b.WithError(err).Build()
	}

	q.Normalize()
	out := make([]dto.ProductResponse, 0, len(products))
	for i := range products {
		out = append(out, toDTO(&products[i]))
	}
	return b.WithData(out).WithPage(total, q.PageQuery).Build()
}

func (h *Handler) getByID(c echo.Context) error {
	b := response.New(c)

	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return b.WithError(errorbank.BadRequest("invalid id", errorbank.WithCause(err))).Build()
	}

	ctx, span := httpTracer.Start(c.Request().Context(), "products.getByID", trace.WithAttributes(attribute.Int64("product.id", id)))
	defer span.End()

	actor, _ := middleware.Actor(c)
	product, err := h.svc.Get(ctx, actor, id)
	if err != nil {
		return b.WithError(err).Build()
	}

	out := toDTO(product)
	if summary, err := h.reviews.Summary(ctx, id); err == nil {
		out.AverageRating = summary.AverageRating
		out.ReviewCount = summary.ReviewCount
	}
	return b.WithData(out).Build()
}

func (h *Handler) create(c echo.Context) error {
	b := response.New(c)

	var req dto.CreateProductRequest
	if err := c.Bind(&req); err != nil {
		return b.WithError(errorbank.BadRequest("invalid payload", errorbank.WithCause(err))).Build()
	}
	if err := c.Validate(&req); err != nil {
		return b.WithError(err).Build()
	}

	ctx, span := httpTracer.Start(c.Request().Context(), "products.create")
	defer span.End()

	product, err := h.svc.Create(ctx, middleware.MustActor(c), req)
	if err != nil {
		return b.WithError(err).Build()
	}
	return b.WithStatus(http.StatusCreated).WithData(toDTO(product)).Build()
}

func (h *Handler) update(c echo.Context) error {
	b := response.New(c)

	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return b.WithError(errorbank.BadRequest("invalid id", errorbank.WithCause(err))).Build()
	}

	var req dto.UpdateProductRequest
	if err := c.Bind(&req); err != nil {
		return b.WithError(errorbank.BadRequest("invalid payload", errorbank.WithCause(err))).Build()
	}
	if err := c.Validate(&req); err != nil {
		return b.WithError(err).Build()
	}

	ctx, span := httpTracer.Start(c.Request().Context(), "products.update", trace.WithAttributes(attribute.Int64("product.id", id)))
	defer span.End()

	product, err := h.svc.Update(ctx, middleware.MustActor(c), id, req)
	if err != nil {
		return b.WithError(err).Build()
	}
	return b.WithData(toDTO(product)).Build()
}

func (h *Handler) remove(c echo.Context) error {
	b := response.New(c)

	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return b.WithError(errorbank.BadRequest("invalid id", errorbank.WithCause(err))).Build()
	}

	ctx, span := httpTracer.Start(c.Request().Context(), "products.delete", trace.WithAttributes(attribute.Int64("product.id", id)))
	defer span.End()

	if err := h.svc.Delete(ctx, middleware.MustActor(c), id); err != nil {
		return b.WithError(err).Build()
	}
	return b.WithStatus(http.StatusNoContent).Build()
}

func (h *Handler) listHistory(c echo.Context) error {
	b := response.New(c)

	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return b.WithError(errorbank.BadRequest("invalid id", errorbank.WithCause(err))).Build()
	}

	var q dto.PageQuery
	if err := c.Bind(&q); err != nil {
		return b.WithError(errorbank.BadRequest("invalid query", errorbank.WithCause(err))).Build()
	}

	ctx, span := httpTracer.Start(c.Request().Context(), "products.history", trace.WithAttributes(attribute.Int64("product.id", id)))
	defer span.End()

	actor := middleware.MustActor(c)
	product, err := h.svc.Get(ctx, actor, id)
	if err != nil {
		return b.WithError(err).Build()
	}
	// The audit trail exposes stock and price movements; unlike the listing
	// itself it is never visible to other sellers.
	if product.SellerID != actor.UserID && !actor.Admin() {
		return b.WithError(errorbank.Forbidden("cannot view another seller's product history")).Build()
	}

	rows, total, err := h.history.List(ctx, id, q)
	if err != nil {
		return b.WithError(err).Build()
	}

	q.Normalize()
	out := make([]dto.HistoryResponse, 0, len(rows))
	for _, row := range rows {
		out = append(out, dto.HistoryResponse{
			ID:         row.ID,
			ProductID:  row.ProductID,
			UserID:     row.UserID,
			ChangeType: row.ChangeType,
			Field:      row.Field,
			OldValue:   row.OldValue,
			NewValue:   row.NewValue,
			CreatedAt:  row.CreatedAt,
		})
	}
	return b.WithData(out).WithPage(total, q).Build()
}

func (h *Handler) priceTrend(c echo.Context) error {
	b := response.New(c)

	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return b.WithError(errorbank.BadRequest("invalid id", errorbank.WithCause(err))).Build()
	}

	ctx, span := httpTracer.Start(c.Request().Context(), "products.priceTrend", trace.WithAttributes(attribute.Int64("product.id", id)))
	defer span.End()

	actor, _ := middleware.Actor(c)
	product, err := h.svc.Get(ctx, actor, id)
	if err != nil {
		return b.WithError(err).Build()
	}

	trend, err := h.history.PriceTrend(ctx, product.ID, product.BasePrice)
	if err != nil {
		return b.WithError(err).Build()
	}
	return b.WithData(trend).Build()
}

func toDTO(product *entity.Product) dto.ProductResponse {
	return dto.ProductResponse{
		ID:             product.ID,
		SellerID:       product.SellerID,
		CategoryID:     product.CategoryID,
		Name:           product.Name,
		Description:    product.Description,
		BasePrice:      product.BasePrice,
		StockQuantity:  product.StockQuantity,
		UnitMeasure:    product.UnitMeasure,
		OriginLocation: product.OriginLocation,
		ImageURL:       product.ImageURL,
		IsFeatured:     product.IsFeatured,
		IsActive:       product.IsActive,
		CreatedAt:      product.CreatedAt,
		UpdatedAt:      product.UpdatedAt,
	}
}
