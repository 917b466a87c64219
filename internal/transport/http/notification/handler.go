package notification

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
	service "github.com/agricoventas/platform/internal/service/notification"
	"github.com/agricoventas/platform/internal/transport/http/middleware"
	"github.com/agricoventas/platform/pkg/errorbank"
)

var httpTracer = otel.Tracer("github.com/agricoventas/platform/transport/http/notification")

// Handler exposes the caller's notification inbox over HTTP.
type Handler struct {
	svc *service.Service
}

// NewHandler constructs a notification Handler.
func NewHandler(svc *service.Service) *Handler {
	return &Handler{svc: svc}
}

// Register routes with the provided Echo instance.
func Register(e *echo.Echo, h *Handler) {
	g := e.Group("/api/notifications", middleware.Require())
	g.GET("", h.list)
	g.PUT("/:id/read", h.markRead)
	g.PUT("/read-all", h.markAllRead)
}

func (h *Handler) list(c echo.Context) error {
	b := response.New(c)

	var q dto.NotificationQuery
	if err := c.Bind(&q); err != nil {
		return b.WithError(errorbank.BadRequest("invalid query", errorbank.WithCause(err))).Build()
	}

	actor := middleware.MustActor(c)
	ctx, span := httpTracer.Start(c.Request().Context(), "notifications.list", trace.WithAttributes(attribute.Int64("user.id", actor.UserID)))
	defer span.End()

	notifications, total, err := h.svc.List(ctx, actor.UserID, q)
	if err != nil {
		return b.WithError(err).Build()
	}

	q.Normalize()
	out := make([]dto.NotificationResponse, 0, len(notifications))
	for i := range notifications {
		out = append(out, toDTO(&notifications[i]))
	}
	return b.WithData(out).WithPage(total, q.PageQuery).Build()
}

func (h *Handler) markRead(c echo.Context) error {
	b := response.New(c)

	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return b.WithError(errorbank.BadRequest("invalid id", errorbank.WithCause(err))).Build()
	}

	actor := middleware.MustActor(c)
	ctx, span := httpTracer.Start(c.Request().Context(), "notifications.markRead", trace.WithAttributes(attribute.Int64("notification.id", id)))
	defer span.End()

	if err := h.svc.MarkRead(ctx, actor.UserID, id); err != nil {
		return b.WithError(err).Build()
	}
	return b.WithStatus(http.StatusNoContent).Build()
}

func (h *Handler) markAllRead(c echo.Context) error {
	b := response.New(c)

	actor := middleware.MustActor(c)
	ctx, span := httpTracer.Start(c.Request().Context(), "notifications.markAllRead", trace.WithAttributes(attribute.Int64("user.id", actor.UserID)))
	defer span.End()

	updated, err := h.svc.MarkAllRead(ctx, actor.UserID)
	if err != nil {
		return b.WithError(err).Build()
	}
	return b.WithData(map[string]int64{"updated": updated}).Build()
}

func toDTO(n *entity.Notification) dto.NotificationResponse {
	return dto.NotificationResponse{
		ID:        n.ID,
		Type:      n.Type,
		Title:     n.Title,
		Message:   n.Message,
		IsRead:    n.IsRead,
		CreatedAt: n.CreatedAt,
	}
}
