package database

import (
	"io/fs"
	"log"
	"os"
	"path"

	"taskpanel/config"
	"taskpanel/database/model"
	"taskpanel/util/crypto"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var db *gorm.DB

const (
	defaultUsername = "admin"
	defaultPassword = "admin"
)

func initModels() error {
	models := []any{
		&model.User{},
		&model.Role{},
		&model.Task{},
	}
	for _, m := range models {
		if err := db.AutoMigrate(m); err != nil {
			log.Printf("Error auto migrating model: %v", err)
			return err
		}
	}
	return nil
}

// initRoles ensures the three canonical roles exist. Idempotent; runs on
// every bring-up rather than being tied to a migration event.
func initRoles() error {
	for _, name := range model.CanonicalRoles {
		role := model.Role{Name: name}
		if err := db.Where("name = ?", name).FirstOrCreate(&role).Error; err != nil {
			return err
		}
	}
	return nil
}

// initUser creates the bootstrap SuperAdmin account when the users table is
// empty so a fresh install is reachable.
func initUser() error {
	empty, err := isTableEmpty("users")
	if err != nil {
		log.Printf("Error checking if users table is empty: %v", err)
		return err
	}
	if !empty {
		return nil
	}

	hash, err := crypto.HashPasswordAsBcrypt(defaultPassword)
	if err != nil {
		return err
	}
	var superAdmin model.Role
	if err := db.Where("name = ?", model.RoleSuperAdmin).First(&superAdmin).Error; err != nil {
		return err
	}
	user := &model.User{
		Username: defaultUsername,
		Password: hash,
		IsActive: true,
		Roles:    []model.Role{superAdmin},
	}
	return db.Create(user).Error
}

func isTableEmpty(tableName string) (bool, error) {
	var count int64
	err := db.Table(tableName).Count(&count).Error
	return count == 0, err
}

// InitDB opens a SQLite database at dbPath and runs bring-up. Used by the
// CLI and by tests.
func InitDB(dbPath string) error {
	cfg := &config.DatabaseConfig{
		Type:   config.DatabaseTypeSQLite,
		SQLite: config.SQLiteConfig{Path: dbPath},
	}
	return InitDBFromConfig(cfg)
}

// InitDBFromConfig opens the configured database (SQLite or PostgreSQL),
// migrates the schema, seeds roles and creates the bootstrap user.
func InitDBFromConfig(cfg *config.DatabaseConfig) error {
	if err := cfg.ValidateConfig(); err != nil {
		return err
	}

	var gormLogger logger.Interface
	if config.IsDebug() {
		gormLogger = logger.Default
	} else {
		gormLogger = logger.Discard
	}

	c := &gorm.Config{
		Logger:                 gormLogger,
		SkipDefaultTransaction: true,
		PrepareStmt:            true,
	}

	var err error
	if cfg.IsPostgreSQL() {
		db, err = gorm.Open(postgres.Open(cfg.GetDSN()), c)
		if err != nil {
			return err
		}
	} else {
		dir := path.Dir(cfg.SQLite.Path)
		if err = os.MkdirAll(dir, fs.ModePerm); err != nil {
			return err
		}
		dsn := cfg.SQLite.Path + "?cache=shared&_journal_mode=WAL&_synchronous=NORMAL"
		db, err = gorm.Open(sqlite.Open(dsn), c)
		if err != nil {
			return err
		}

		sqlDB, err := db.DB()
		if err != nil {
			return err
		}
		for _, pragma := range []string{
			"PRAGMA cache_size = -64000;",
			"PRAGMA temp_store = MEMORY;",
			"PRAGMA foreign_keys = ON;",
		} {
			if _, err = sqlDB.Exec(pragma); err != nil {
				return err
			}
		}
	}

	if err := initModels(); err != nil {
		return err
	}
	if err := initRoles(); err != nil {
		return err
	}
	if err := initUser(); err != nil {
		return err
	}

	return nil
}

func CloseDB() error {
	if db != nil {
		sqlDB, err := db.DB()
		if err != nil {
			return err
		}
		return sqlDB.Close()
	}
	return nil
}

func GetDB() *gorm.DB {
	return db
}

func IsNotFound(err error) bool {
	return err == gorm.ErrRecordNotFound
}
