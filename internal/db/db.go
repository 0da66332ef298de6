package db

import (
	"fmt"

	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/alihassan193/snooker-console/internal/config"
	"github.com/alihassan193/snooker-console/internal/repository/dao"
)

// Open connects to the console's local store and migrates its tables. A single terminal
// uses sqlite; terminals that share overrides point at postgres or mysql.
func Open(conf *config.StorageConfig) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch conf.Driver {
	case "sqlite":
		dialector = sqlite.Open(conf.DSN)
	case "postgres":
		dialector = postgres.Open(conf.DSN)
	case "mysql":
		dialector = mysql.Open(conf.DSN)
	default:
		return nil, fmt.Errorf("unsupported storage driver %q", conf.Driver)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("gorm.Open -> %w", err)
	}

	if err = dao.InitTables(db); err != nil {
		return nil, fmt.Errorf("dao.InitTables -> %w", err)
	}

	return db, nil
}

func Close(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("db.DB -> %w", err)
	}

	return sqlDB.Close()
}
