package http

import (
	"github.com/labstack/echo/v4"
	"go.uber.org/fx"

	"github.com/agricoventas/platform/internal/auth"
	categorytransport "github.com/agricoventas/platform/internal/transport/http/category"
	certificationtransport "github.com/agricoventas/platform/internal/transport/http/certification"
	"github.com/agricoventas/platform/internal/transport/http/middleware"
	notificationtransport "github.com/agricoventas/platform/internal/transport/http/notification"
	ordertransport "github.com/agricoventas/platform/internal/transport/http/order"
	producttransport "github.com/agricoventas/platform/internal/transport/http/product"
	reviewtransport "github.com/agricoventas/platform/internal/transport/http/review"
	uploadtransport "github.com/agricoventas/platform/internal/transport/http/upload"
	usertransport "github.com/agricoventas/platform/internal/transport/http/user"
)

// Module aggregates all HTTP transport handlers. Request validation and
// bearer authentication are installed before any handler registers routes.
var Module = fx.Options(
	fx.Invoke(func(e *echo.Echo, tokens *auth.TokenManager) {
		e.Validator = newRequestValidator()
		e.Use(middleware.Authenticate(tokens))
	}),
	usertransport.Module,
	categorytransport.Module,
	producttransport.Module,
	ordertransport.Module,
	certificationtransport.Module,
	reviewtransport.Module,
	notificationtransport.Module,
	uploadtransport.Module,
)
