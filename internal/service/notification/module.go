package notification

import (
	"go.uber.org/fx"

	certsvc "github.com/agricoventas/platform/internal/service/certification"
	ordersvc "github.com/agricoventas/platform/internal/service/order"
)

// Module provides the notification service and binds it as the notifier
// consumed by the order and certification services.
var Module = fx.Options(
	fx.Provide(NewService),
	fx.Provide(func(s *Service) ordersvc.Notifier { return s }),
	fx.Provide(func(s *Service) certsvc.Notifier { return s }),
)
