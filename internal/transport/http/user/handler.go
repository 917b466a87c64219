package user

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
	service "github.com/agricoventas/platform/internal/service/user"
	"github.com/agricoventas/platform/internal/transport/http/middleware"
	"github.com/agricoventas/platform/pkg/errorbank"
)

var httpTracer = otel.Tracer("github.com/agricoventas/platform/transport/http/user")

// Handler exposes account and authentication endpoints over HTTP.
type Handler struct {
	svc *service.Service
}

// NewHandler constructs a user Handler.
func NewHandler(svc *service.Service) *Handler {
	return &Handler{svc: svc}
}

// Register routes with the provided Echo instance.
func Register(e *echo.Echo, h *Handler) {
	a := e.Group("/api/auth")
	a.POST("/register", h.register)
	a.POST("/login", h.login)

	g := e.Group("/api/users", middleware.Require())
	g.GET("/me", h.me)
	g.PUT("/me", h.updateProfile)
	g.PUT("/me/password", h.changePassword)
	g.GET("/:id", h.getByID)

	admin := e.Group("/api/users", middleware.RequireRoles(entity.RoleAdmin))
	admin.GET("", h.list)
	admin.PUT("/:id/active", h.setActive)
}

func (h *Handler) register(c echo.Context) error {
	b := response.New(c)

	var req dto.RegisterRequest
	if err := c.Bind(&req); err != nil {
		return b.WithError(errorbank.BadRequest("invalid payload", errorbank.WithCause(err))).Build()
	}
	if err := c.Validate(&req); err != nil {
		return b.WithError(err).Build()
	}

	ctx, span := httpTracer.Start(c.Request().Context(), "users.register")
	defer span.End()

	authResp, err := h.svc.Register(ctx, req)
	if err != nil {
		return b.WithError(err).Build()
	}
	return b.WithStatus(http.StatusCreated).WithData(authResp).Build()
}

func (h *Handler) login(c echo.Context) error {
	b := response.New(c)

	var req dto.LoginRequest
	if err := c.Bind(&req); err != nil {
		return b.WithError(errorbank.BadRequest("invalid payload", errorbank.WithCause(err))).Build()
	}
	if err := c.Validate(&req); err != nil {
		return b.WithError(err).Build()
	}

	ctx, span := httpTracer.Start(c.Request().Context(), "users.login")
	defer span.End()

	authResp, err := h.svc.Login(ctx, req)
	if err != nil {
		return b.WithError(err).Build()
	}
	return b.WithData(authResp).Build()
}

func (h *Handler) me(c echo.Context) error {
	b := response.New(c)
	actor := middleware.MustActor(c)

	ctx, span := httpTracer.Start(c.Request().Context(), "users.me", trace.WithAttributes(attribute.Int64("user.id", actor.UserID)))
	defer span.End()

	account, err := h.svc.Get(ctx, actor, actor.UserID)
	if err != nil {
		return b.WithError(err).Build()
	}
	return b.WithData(service.Response(account)).Build()
}

func (h *Handler) getByID(c echo.Context) error {
	b := response.New(c)

	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return b.WithError(errorbank.BadRequest("invalid id", errorbank.WithCause(err))).Build()
	}

	ctx, span := httpTracer.Start(c.Request().Context(), "users.getByID", trace.WithAttributes(attribute.Int64("user.id", id)))
	defer span.End()

	account, err := h.svc.Get(ctx, middleware.MustActor(c), id)
	if err != nil {
		return b.WithError(err).Build()
	}
	return b.WithData(service.Response(account)).Build()
}

func (h *Handler) updateProfile(c echo.Context) error {
	b := response.New(c)

	var req dto.UpdateProfileRequest
	if err := c.Bind(&req); err != nil {
		return b.WithError(errorbank.BadRequest("invalid payload", errorbank.WithCause(err))).Build()
	}
	if err := c.Validate(&req); err != nil {
		return b.WithError(err).Build()
	}

	ctx, span := httpTracer.Start(c.Request().Context(), "users.updateProfile")
	defer span.End()

	account, err := h.svc.UpdateProfile(ctx, middleware.MustActor(c), req)
	if err != nil {
		return b.WithError(err).Build()
	}
	return b.WithData(service.Response(account)).Build()
}

func (h *Handler) changePassword(c echo.Context) error {
	b := response.New(c)

	var req dto.ChangePasswordRequest
	if err := c.Bind(&req); err != nil {
		return b.WithError(errorbank.BadRequest("invalid payload", errorbank.WithCause(err))).Build()
	}
	if err := c.Validate(&req); err != nil {
		return b.WithError(err).Build()
	}

	ctx, span := httpTracer.Start(c.Request().Context(), "users.changePassword")
	defer span.End()

	if err := h.svc.ChangePassword(ctx, middleware.MustActor(c), req); err != nil {
		return b.WithError(err).Build()
	}
	return b.WithStatus(http.StatusNoContent).Build()
}

func (h *Handler) list(c echo.Context) error {
	b := response.New(c)

	var q dto.PageQuery
	if err := c.Bind(&q); err != nil {
		return b.WithError(errorbank.BadRequest("invalid query", errorbank.WithCause(err))).Build()
	}
	role := c.QueryParam("role")

	ctx, span := httpTracer.Start(c.Request().Context(), "users.list")
	defer span.End()

	users, total, err := h.svc.List(ctx, middleware.MustActor(c), role, q)
	if err != nil {
		return b.WithError(err).Build()
	}

	q.Normalize()
	out := make([]dto.UserResponse, 0, len(users))
	for i := range users {
		out = append(out, service.Response(&users[i]))
	}
	return b.WithData(out).WithPage(total, q).Build()
}

func (h *Handler) setActive(c echo.Context) error {
	b := response.New(c)

	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return b.WithError(errorbank.BadRequest("invalid id", errorbank.WithCause(err))).Build()
	}

	var req struct {
		Active *bool `json:"active" validate:"required"`
	}
	if err := c.Bind(&req); err != nil {
		return b.WithError(errorbank.BadRequest("invalid payload", errorbank.WithCause(err))).Build()
	}
	if err := c.Validate(&req); err != nil {
		return b.WithError(err).Build()
	}

	ctx, span := httpTracer.Start(c.Request().Context(), "users.setActive", trace.WithAttributes(
		attribute.Int64("user.id", id),
		attribute.Bool("user.active", *req.Active),
	))
	defer span.End()

	account, err := h.svc.SetActive(ctx, middleware.MustActor(c), id, *req.Active)
	if err != nil {
		return b.WithError(err).Build()
	}
	return b.WithData(service.Response(account)).Build()
}
