package migration

import (
	catalogdomain "github.com/vitalpath/vitalpath/internal/catalog/domain"
	"github.com/vitalpath/vitalpath/internal/config"
	guestsessiondomain "github.com/vitalpath/vitalpath/internal/guestsession/domain"
	purchasedomain "github.com/vitalpath/vitalpath/internal/purchase/domain"
	userdomain "github.com/vitalpath/vitalpath/internal/user/domain"
	"go.uber.org/fx"
	"gorm.io/gorm"
)

var Module = fx.Module("migrations",
	fx.Invoke(func(conn *gorm.DB, cfg config.Config) error {
		if cfg.DBType == "postgres" {
			sqlDB, err := conn.DB()
			if err != nil {
				return err
			}
			return RunMigrations(sqlDB)
		}

		// Non-postgres databases (sqlite in local runs and tests, mysql)
		// fall back to the model-driven schema.
		return conn.AutoMigrate(
			&catalogdomain.Product{},
			&userdomain.User{},
			&guestsessiondomain.GuestSession{},
			&purchasedomain.PurchaseRecord{},
		)
	}),
)
