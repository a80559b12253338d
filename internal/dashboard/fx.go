package dashboard

import (
	"github.com/smallbiznis/revboard/internal/dashboard/service"
	"go.uber.org/fx"
)

var Module = fx.Module("dashboard",
	fx.Provide(service.NewService),
)
