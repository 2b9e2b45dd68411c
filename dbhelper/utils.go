package dbhelper

import (
	"custemoapi/models"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

func SetupCleaner(db *gorm.DB) func() {
	return func() {
		db.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(&models.Order{})
		db.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(&models.SavedDesign{})
		db.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(&models.UserAccount{})
	}
}

func Migrate(db *gorm.DB, model interface{}) {
	if err := db.AutoMigrate(model); err != nil {
		log.Fatal().Err(err).Msgf("Error while migrating %T", model)
	}
}
