package database

import (
	"strings"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"bookshelf/pkg/config"
	"bookshelf/pkg/models"
)

// Open connects to the SQL database selected by cfg.StoreDriver, retrying
// the connection up to cfg.DBConnectRetries times, and migrates the schema.
func Open(cfg *config.Config, logger *zap.Logger) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch cfg.StoreDriver {
	case config.DriverPostgres:
		logger.Info("Connecting to postgres",
			zap.String("host", cfg.DBHost),
			zap.String("port", cfg.DBPort),
			zap.String("database", cfg.DBName))
		dialector = postgres.Open(cfg.PostgresDSN())
	case config.DriverSQLite:
		logger.Info("Opening sqlite database", zap.String("path", cfg.SQLitePath))
		dialector = sqlite.Open(cfg.SQLitePath)
	default:
		return nil, errors.Errorf("store driver %q is not backed by a SQL database", cfg.StoreDriver)
	}

	var db *gorm.DB
	var err error
	for i := 0; i < cfg.DBConnectRetries; i++ {
		db, err = connect(dialector)
		if err == nil {
			break
		}
		logger.Warn("Database connection attempt failed",
			zap.Int("attempt", i+1),
			zap.Int("max_attempts", cfg.DBConnectRetries),
			zap.Error(err))
		if i < cfg.DBConnectRetries-1 {
			time.Sleep(cfg.DBRetryDelay)
		}
	}
	if err != nil {
		return nil, errors.Wrap(err, "failed to connect to database")
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, errors.Wrap(err, "failed to get database instance")
	}
	if cfg.StoreDriver == config.DriverSQLite && strings.Contains(cfg.SQLitePath, ":memory:") {
		// every new connection to an in-memory sqlite database is a fresh database
		sqlDB.SetMaxOpenConns(1)
	} else {
		sqlDB.SetMaxOpenConns(25)
		sqlDB.SetMaxIdleConns(10)
		sqlDB.SetConnMaxLifetime(5 * time.Minute)
	}

	if err := Migrate(db); err != nil {
		return nil, err
	}

	logger.Info("Database connection established successfully")
	return db, nil
}

// Migrate creates or updates the books table.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(&models.Book{}); err != nil {
		return errors.Wrap(err, "database migration failed")
	}
	return nil
}

func connect(dialector gorm.Dialector) (*gorm.DB, error) {
	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Warn),
	})
	if err != nil {
		return nil, err
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	if err := sqlDB.Ping(); err != nil {
		return nil, err
	}
	return db, nil
}
