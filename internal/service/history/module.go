package history

import "go.uber.org/fx"

// Module provides the history recorder to Fx.
var Module = fx.Provide(NewRecorder)
