package snapshot

import (
	"github.com/smallbiznis/revboard/internal/snapshot/service"
	"go.uber.org/fx"
	"gorm.io/gorm"
)

var Module = fx.Module("snapshot",
	fx.Provide(service.NewService),
	fx.Invoke(func(db *gorm.DB) error {
		return service.Migrate(db)
	}),
)
