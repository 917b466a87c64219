package notification

import (
	"go.uber.org/fx"

	svc "github.com/agricoventas/platform/internal/service/notification"
)

// Module provides the notification repository to Fx.
var Module = fx.Provide(
	fx.Annotate(NewRepository, fx.As(new(svc.Store))),
)
