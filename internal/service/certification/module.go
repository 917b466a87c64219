package certification

import "go.uber.org/fx"

// Module provides the certification service to Fx.
var Module = fx.Provide(NewService)
