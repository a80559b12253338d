package billingledger

import (
	"github.com/smallbiznis/revboard/internal/billingledger/service"
	"go.uber.org/fx"
)

var Module = fx.Module("billingledger",
	fx.Provide(service.NewService),
)
