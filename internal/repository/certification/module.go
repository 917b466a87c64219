package certification

import (
	"go.uber.org/fx"

	svc "github.com/agricoventas/platform/internal/service/certification"
)

// Module provides the certification repository to Fx as the service Store boundary.
var Module = fx.Provide(
	fx.Annotate(NewRepository, fx.As(new(svc.Store))),
)
