package user

import (
	"go.uber.org/fx"

	svc "github.com/agricoventas/platform/internal/service/user"
)

// Module provides the user repository to Fx as the service Store boundary.
var Module = fx.Provide(
	fx.Annotate(NewRepository, fx.As(new(svc.Store))),
)
