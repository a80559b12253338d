package providers

import (
	"github.com/smallbiznis/revboard/internal/providers/lemonsqueezy"
	"github.com/smallbiznis/revboard/internal/providers/posthog"
	"go.uber.org/fx"
)

var Module = fx.Module("providers",
	fx.Provide(
		lemonsqueezy.NewClientFromConfig,
		posthog.NewClientFromConfig,
	),
)
