package upload

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/agricoventas/platform/internal/entity"
	"github.com/agricoventas/platform/internal/presentation/http/response"
	service "github.com/agricoventas/platform/internal/service/upload"
	"github.com/agricoventas/platform/internal/transport/http/middleware"
	"github.com/agricoventas/platform/pkg/errorbank"
)

var httpTracer = otel.Tracer("github.com/agricoventas/platform/transport/http/upload")

// Handler exposes the image upload endpoint over HTTP.
type Handler struct {
	svc *service.Service
}

// NewHandler constructs an upload Handler.
func NewHandler(svc *service.Service) *Handler {
	return &Handler{svc: svc}
}

// Register routes with the provided Echo instance. Uploads are not tied to
// an owning user, so deletion is admin only.
func Register(e *echo.Echo, h *Handler) {
	g := e.Group("/api/uploads", middleware.Require())
	g.POST("", h.upload)

	admin := e.Group("/api/uploads", middleware.RequireRoles(entity.RoleAdmin))
	admin.DELETE("/:publicId", h.remove)
}

func (h *Handler) upload(c echo.Context) error {
	b := response.New(c)

	fileHeader, err := c.FormFile("image")
	if err != nil {
		return b.WithError(errorbank.BadRequest("multipart field 'image' is required", errorbank.WithCause(err))).Build()
	}

	src, err := fileHeader.Open()
	if err != nil {
		return b.WithError(errorbank.BadRequest("unreadable file", errorbank.WithCause(err))).Build()
	}
	defer src.Close()

	ctx, span := httpTracer.Start(c.Request().Context(), "uploads.upload", trace.WithAttributes(
		attribute.Int64("upload.size", fileHeader.Size),
	))
	defer span.End()

	result, err := h.svc.Upload(ctx, fileHeader.Filename, fileHeader.Size, src)
	if err != nil {
		return b.WithError(err).Build()
	}
	return b.WithStatus(http.StatusCreated).WithData(result).Build()
}

func (h *Handler) remove(c echo.Context) error {
	b := response.New(c)

	ctx, span := httpTracer.Start(c.Request().Context(), "uploads.delete")
	defer span.End()

	if err := h.svc.Delete(ctx, c.Param("publicId")); err != nil {
		return b.WithError(err).Build()
	}
	return b.WithStatus(http.StatusNoContent).Build()
}
