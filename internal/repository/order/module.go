package order

import (
	"go.uber.org/fx"

	svc "github.com/agricoventas/platform/internal/service/order"
)

// Module provides the order repository to Fx as the service Store boundary.
var Module = fx.Provide(
	fx.Annotate(NewRepository, fx.As(new(svc.Store))),
)
