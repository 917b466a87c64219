package category

import (
	"go.uber.org/fx"

	svc "github.com/agricoventas/platform/internal/service/category"
)

// Module provides the category repository to Fx as the service Store boundary.
var Module = fx.Provide(
	fx.Annotate(NewRepository, fx.As(new(svc.Store))),
)
