// SPDX-License-Identifier: MIT
package db

import (
	"fmt"

	"github.com/thatcatcamp/smartsvg/internal/models"
	"gorm.io/driver/mysql"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Open connects to the database and migrates all models
func Open(dbType, dsn string) (*gorm.DB, error) {
	var dialector gorm.Dialector

	switch dbType {
	case "sqlite":
		dialector = sqlite.Open(dsn)
	case "mysql", "mariadb":
		dialector = mysql.Open(dsn) // dsn is a MySQL DSN
	default:
		return nil, fmt.Errorf("unsupported database type: %s", dbType)
	}

	database, err := gorm.Open(dialector, &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if dbType == "sqlite" {
		// every connection to ":memory:" is a separate database
		sqlDB, err := database.DB()
		if err != nil {
			return nil, fmt.Errorf("failed to configure database: %w", err)
		}
		sqlDB.SetMaxOpenConns(1)
	}

	if err := Migrate(database); err != nil {
		return nil, err
	}
	return database, nil
}

// Migrate creates or updates the tables of all models
func Migrate(database *gorm.DB) error {
	if err := database.AutoMigrate(models.All()...); err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}
	return nil
}
