package review

import (
	"go.uber.org/fx"

	svc "github.com/agricoventas/platform/internal/service/review"
)

// Module provides the review repository to Fx as the service Store boundary.
var Module = fx.Provide(
	fx.Annotate(NewRepository, fx.As(new(svc.Store))),
)
