package sweeper

import (
	"context"

	"go.uber.org/fx"
)

// Module wires the sweeper into the application lifecycle: the schedule
// starts after the app is up and stops before it exits.
var Module = fx.Options(
	fx.Provide(New),
	fx.Invoke(func(lc fx.Lifecycle, s *Sweeper) {
		lc.Append(fx.Hook{
			OnStart: func(ctx context.Context) error { return s.Start() },
			OnStop: func(ctx context.Context) error {
				s.Stop()
				return nil
			},
		})
	}),
)
