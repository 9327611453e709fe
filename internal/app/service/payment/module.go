package payment

import "go.uber.org/fx"

var Module = fx.Options(
	fx.Provide(NewEventLogger),
	fx.Provide(NewService),
)
