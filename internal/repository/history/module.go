package history

import (
	"go.uber.org/fx"

	svc "github.com/agricoventas/platform/internal/service/history"
)

// Module provides the history repository to Fx.
var Module = fx.Provide(
	fx.Annotate(NewRepository, fx.As(new(svc.Store))),
)
