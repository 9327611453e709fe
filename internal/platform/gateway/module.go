package gateway

import "go.uber.org/fx"

// Module exposes both payment gateway clients via Fx.
var Module = fx.Options(
	fx.Provide(NewPayOSClient),
	fx.Provide(NewVNPayClient),
)
