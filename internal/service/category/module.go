package category

import "go.uber.org/fx"

// Module provides the category service to Fx.
var Module = fx.Provide(NewService)
