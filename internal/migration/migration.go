// Package migration applies the schema for the tables this service owns.
package migration

import (
	consumptiondomain "github.com/SyedTahirHussan/codebuff-sub001/internal/consumption/domain"
	cycledomain "github.com/SyedTahirHussan/codebuff-sub001/internal/cycle/domain"
	delegationdomain "github.com/SyedTahirHussan/codebuff-sub001/internal/delegation/domain"
	grantdomain "github.com/SyedTahirHussan/codebuff-sub001/internal/grant/domain"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func Run(db *gorm.DB, log *zap.Logger) error {
	models := []any{
		&grantdomain.CreditGrant{},
		&consumptiondomain.UsageEvent{},
		&cycledomain.User{},
		&delegationdomain.OrgRepository{},
	}

	if err := db.AutoMigrate(models...); err != nil {
		return err
	}

	log.Info("migration complete", zap.Int("models", len(models)))
	return nil
}
