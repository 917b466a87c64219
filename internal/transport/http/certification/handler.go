package certification

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
	service "github.com/agricoventas/platform/internal/service/certification"
	"github.com/agricoventas/platform/internal/transport/http/middleware"
	"github.com/agricoventas/platform/pkg/errorbank"
)

var httpTracer = otel.Tracer("github.com/agricoventas/platform/transport/http/certification")

// Handler exposes certification endpoints over HTTP.
type Handler struct {
	svc *service.Service
}

// NewHandler constructs a certification Handler.
func NewHandler(svc *service.Service) *Handler {
	return &Handler{svc: svc}
}

// Register routes with the provided Echo instance.
func Register(e *echo.Echo, h *Handler) {
	g := e.Group("/api/certifications", middleware.Require())
	g.POST("", h.submit)
	g.GET("", h.listOwn)
	g.GET("/status", h.status)
	g.GET("/required", h.required)

	admin := e.Group("/api/certifications", middleware.RequireRoles(entity.RoleAdmin))
	admin.GET("/user/:id", h.listByUser)
	admin.GET("/status/:id", h.statusByUser)
	admin.PUT("/:id/verify", h.verify)
	admin.PUT("/:id/reject", h.reject)
}

func (h *Handler) submit(c echo.Context) error {
	b := response.New(c)

	var req dto.SubmitCertificationRequest
	if err := c.Bind(&req); err != nil {
		return b.WithError(errorbank.BadRequest("invalid payload", errorbank.WithCause(err))).Build()
	}
	if err := c.Validate(&req); err != nil {
		return b.WithError(err).Build()
	}

	ctx, span := httpTracer.Start(c.Request().Context(), "certifications.submit", trace.WithAttributes(
		attribute.String("certification.type", req.TypeCode),
	))
	defer span.End()

	cert, err := h.svc.Submit(ctx, middleware.MustActor(c), req)
	if err != nil {
		return b.WithError(err).Build()
	}
	return b.WithStatus(http.StatusCreated).WithData(toDTO(cert)).Build()
}

func (h *Handler) listOwn(c echo.Context) error {
	return h.list(c, middleware.MustActor(c).UserID)
}

func (h *Handler) listByUser(c echo.Context) error {
	b := response.New(c)

	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return b.WithError(errorbank.BadRequest("invalid id", errorbank.WithCause(err))).Build()
	}
	return h.list(c, id)
}

func (h *Handler) list(c echo.Context, userID int64) error {
	b := response.New(c)

	var q dto.PageQuery
	if err := c.Bind(&q); err != nil {
		return b.WithError(errorbank.BadRequest("invalid query", errorbank.WithCause(err))).Build()
	}

	ctx, span := httpTracer.Start(c.Request().Context(), "certifications.list", trace.WithAttributes(attribute.Int64("user.id", userID)))
	defer span.End()

	certs, total, err := h.svc.ListByUser(ctx, middleware.MustActor(c), userID, q)
	if err != nil {
		return b.WithError(err).Build()
	}

	q.Normalize()
	out := make([]dto.CertificationResponse, 0, len(certs))
	for i := range certs {
		out = append(out, toDTO(&certs[i]))
	}
	return b.WithData(out).WithPage(total, q).Build()
}

func (h *Handler) status(c echo.Context) error {
	b := response.New(c)
	actor := middleware.MustActor(c)

	ctx, span := httpTracer.Start(c.Request().Context(), "certifications.status", trace.WithAttributes(attribute.Int64("user.id", actor.UserID)))
	defer span.End()

	status, err := h.svc.Status(ctx, actor.UserID)
	if err != nil {
		return b.WithError(err).Build()
	}
	return b.WithData(status).Build()
}

func (h *Handler) statusByUser(c echo.Context) error {
	b := response.New(c)

	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return b.WithError(errorbank.BadRequest("invalid id", errorbank.WithCause(err))).Build()
	}

	ctx, span := httpTracer.Start(c.Request().Context(), "certifications.statusByUser", trace.WithAttributes(attribute.Int64("user.id", id)))
	defer span.End()

	status, err := h.svc.Status(ctx, id)
	if err != nil {
		return b.WithError(err).Build()
	}
	return b.WithData(status).Build()
}

func (h *Handler) required(c echo.Context) error {
	return response.New(c).WithData(entity.RequiredCertificationTypes).Build()
}

func (h *Handler) verify(c echo.Context) error {
	b := response.New(c)

	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return b.WithError(errorbank.BadRequest("invalid id", errorbank.WithCause(err))).Build()
	}

	ctx, span := httpTracer.Start(c.Request().Context(), "certifications.verify", trace.WithAttributes(attribute.Int64("certification.id", id)))
	defer span.End()

	cert, err := h.svc.Verify(ctx, middleware.MustActor(c).UserID, id)
	if err != nil {
		return b.WithError(err).Build()
	}
	return b.WithData(toDTO(cert)).Build()
}

func (h *Handler) reject(c echo.Context) error {
	b := response.New(c)

	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return b.WithError(errorbank.BadRequest("invalid id", errorbank.WithCause(err))).Build()
	}

	var req dto.RejectCertificationRequest
	if err := c.Bind(&req); err != nil {
		return b.WithError(errorbank.BadRequest("invalid payload", errorbank.WithCause(err))).Build()
	}
	if err := c.Validate(&req); err != nil {
		return b.WithError(err).Build()
	}

	ctx, span := httpTracer.Start(c.Request().Context(), "certifications.reject", trace.WithAttributes(attribute.Int64("certification.id", id)))
	defer span.End()

	cert, err := h.svc.Reject(ctx, middleware.MustActor(c).UserID, id, req.Reason)
	if err != nil {
		return b.WithError(err).Build()
	}
	return b.WithData(toDTO(cert)).Build()
}

func toDTO(cert *entity.Certification) dto.CertificationResponse {
	return dto.CertificationResponse{
		ID:              cert.ID,
		UserID:          cert.UserID,
		TypeCode:        cert.TypeCode,
		Name:            cert.Name,
		Status:          cert.Status,
		DocumentURL:     cert.DocumentURL,
		RejectionReason: cert.RejectionReason,
		VerifiedAt:      cert.VerifiedAt,
		UploadedAt:      cert.UploadedAt,
	}
}
