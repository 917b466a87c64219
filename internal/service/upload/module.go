package upload

import "go.uber.org/fx"

// Module provides the upload service to Fx.
var Module = fx.Provide(NewService)
