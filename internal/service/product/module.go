package product

import (
	"go.uber.org/fx"

	certsvc "github.com/agricoventas/platform/internal/service/certification"
	"github.com/agricoventas/platform/internal/service/history"
)

// Module provides the product service and binds the certification gate and
// audit recorder it depends on.
var Module = fx.Options(
	fx.Provide(NewService),
	fx.Provide(func(s *certsvc.Service) CertificationGate { return s }),
	fx.Provide(func(r *history.Recorder) Auditor { return r }),
)
