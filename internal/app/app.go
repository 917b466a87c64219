package app

import (
	"go.uber.org/fx"

	"github.com/agricoventas/platform/internal/auth"
	"github.com/agricoventas/platform/internal/cache"
	"github.com/agricoventas/platform/internal/config"
	"github.com/agricoventas/platform/internal/database"
	"github.com/agricoventas/platform/internal/logger"
	"github.com/agricoventas/platform/internal/messaging"
	"github.com/agricoventas/platform/internal/observability"
	repositorycategory "github.com/agricoventas/platform/internal/repository/category"
	repositorycertification "github.com/agricoventas/platform/internal/repository/certification"
	repositoryhistory "github.com/agricoventas/platform/internal/repository/history"
	repositorynotification "github.com/agricoventas/platform/internal/repository/notification"
	repositoryorder "github.com/agricoventas/platform/internal/repository/order"
	repositoryproduct "github.com/agricoventas/platform/internal/repository/product"
	repositoryreview "github.com/agricoventas/platform/internal/repository/review"
	repositoryuser "github.com/agricoventas/platform/internal/repository/user"
	httpserver "github.com/agricoventas/platform/internal/server/http"
	servicecategory "github.com/agricoventas/platform/internal/service/category"
	servicecertification "github.com/agricoventas/platform/internal/service/certification"
	servicehistory "github.com/agricoventas/platform/internal/service/history"
	servicenotification "github.com/agricoventas/platform/internal/service/notification"
	serviceorder "github.com/agricoventas/platform/internal/service/order"
	serviceproduct "github.com/agricoventas/platform/internal/service/product"
	servicereview "github.com/agricoventas/platform/internal/service/review"
	serviceupload "github.com/agricoventas/platform/internal/service/upload"
	serviceuser "github.com/agricoventas/platform/internal/service/user"
	"github.com/agricoventas/platform/internal/storage"
	transporthttp "github.com/agricoventas/platform/internal/transport/http"
	"github.com/agricoventas/platform/internal/worker"
	workerorder "github.com/agricoventas/platform/internal/worker/order"
)

// Core provides the foundational modules shared across executables.
var Core = fx.Options(
	config.Module,
	logger.Module,
	cache.Module,
	database.Module,
	messaging.Module,
	observability.Module,
	auth.Module,
	storage.Module,

	repositoryuser.Module,
	repositorycategory.Module,
	repositoryproduct.Module,
	repositoryorder.Module,
	repositorycertification.Module,
	repositoryreview.Module,
	repositorynotification.Module,
	repositoryhistory.Module,

	serviceuser.Module,
	servicecategory.Module,
	serviceproduct.Module,
	serviceorder.Module,
	servicecertification.Module,
	servicereview.Module,
	servicenotification.Module,
	servicehistory.Module,
	serviceupload.Module,
)

// HTTP wires the HTTP transport on top of the core modules.
var HTTP = fx.Options(
	Core,
	httpserver.Module,
	transporthttp.Module,
)

// Worker exposes background worker processing.
var Worker = fx.Options(
	Core,
	worker.Module,
	workerorder.Module,
)

// Module is the default application wiring (HTTP only).
var Module = HTTP
