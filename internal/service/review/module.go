package review

import "go.uber.org/fx"

// Module provides the review service to Fx.
var Module = fx.Provide(NewService)
