package config

import "go.uber.org/fx"

// Module wires application and dashboard configuration.
var Module = fx.Module("config",
	fx.Provide(
		Load,
		NewDashboardConfigHolder,
	),
)
