package dbmysql

import (
	"fmt"
	"time"

	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"cookinghub/internal/config"
)

// NewMySQL returns a GORM DB instance connected to MySQL with the hub
// schema migrated.
func NewMySQL(cnf *config.Config) (*gorm.DB, error) {
	db, err := Open(mysql.Open(cnf.DSN()), logger.Warn)
	if err != nil {
		return nil, fmt.Errorf("cannot connect to MySQL: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("sql.DB error: %w", err)
	}
	sqlDB.SetMaxOpenConns(cnf.Database.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cnf.Database.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(30 * time.Minute)

	if err := AutoMigrate(db); err != nil {
		_ = sqlDB.Close()
		return nil, err
	}
	return db, nil
}

// Open wraps gorm.Open with the settings every store depends on:
// TranslateError turns driver unique violations into gorm.ErrDuplicatedKey.
func Open(dialector gorm.Dialector, level logger.LogLevel) (*gorm.DB, error) {
	return gorm.Open(dialector, &gorm.Config{
		Logger:         logger.Default.LogMode(level),
		TranslateError: true,
	})
}

// AutoMigrate creates or updates the hub tables. On MySQL the tables use
// a binary collation: usernames and file ids compare case-sensitively.
func AutoMigrate(db *gorm.DB) error {
	if db.Dialector.Name() == "mysql" {
		db = db.Set("gorm:table_options", "ENGINE=InnoDB DEFAULT CHARSET=utf8mb4 COLLATE=utf8mb4_bin")
	}
	if err := db.AutoMigrate(Models()...); err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}
	return nil
}

func Models() []interface{} {
	return []interface{}{
		&User{},
		&MediaItem{},
		&Like{},
		&Comment{},
		&ChatMessage{},
		&Sequence{},
	}
}
