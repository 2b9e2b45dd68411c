package dbhelper

import (
	"time"

	"custemoapi/config"
	"custemoapi/models"
	"custemoapi/services"

	"github.com/rs/zerolog/log"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func SetupDB(cfg config.DBConfig) *gorm.DB {
	db, err := gorm.Open(postgres.Open(cfg.DSN()), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		log.Fatal().Err(err).Str("host", cfg.Host).Msg("[DB] failed to connect to database")
	}
	sqlDB, err := db.DB()
	if err != nil {
		log.Fatal().Err(err).Msg("[DB] failed to get connection pool")
	}
	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetMaxOpenConns(100)
	sqlDB.SetConnMaxLifetime(time.Minute * 5)

	Migrate(db, &models.UserAccount{})
	Migrate(db, &models.SavedDesign{})
	Migrate(db, &models.Order{})

	return db
}

func SetupTestDB() *gorm.DB {
	return SetupDB(config.DBConfig{
		Username: services.GetEnv("DB_USERNAME", "custemo"),
		Password: services.GetEnv("DB_PASSWORD", "custemo"),
		Host:     services.GetEnv("DB_HOST", "localhost"),
		Port:     services.GetEnv("DB_PORT", "5432"),
		Name:     services.GetEnv("DB_NAME", "custemo_test"),
	})
}
