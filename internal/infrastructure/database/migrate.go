package database

import (
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"fire-alert-service/internal/domain/models"
	"fire-alert-service/internal/infrastructure/config"
	"fire-alert-service/pkg/logger"
)

// Migration modes accepted by Migrate
const (
	MigrationAuto = "auto"
	MigrationDrop = "drop"
)

func allModels() []interface{} {
	return []interface{}{
		&models.User{},
		&models.FireEvent{},
	}
}

// Migrate brings the schema up to date. "auto" only adds tables and columns;
// "drop" removes every table first.
func Migrate(db *gorm.DB, mode string) error {
	switch mode {
	case MigrationDrop:
		logger.Warning("running in drop mode, every table will be rebuilt")
		return dropAndRecreateTables(db)
	case MigrationAuto, "":
		return autoMigrate(db)
	default:
		return fmt.Errorf("unknown migration mode %q", mode)
	}
}

func autoMigrate(db *gorm.DB) error {
	if err := db.AutoMigrate(allModels()...); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}

	logger.Info("database migration completed")
	return nil
}

func dropAndRecreateTables(db *gorm.DB) error {
	for _, m := range allModels() {
		if err := db.Migrator().DropTable(m); err != nil {
			logger.Error("drop table failed: %v", err)
		}
	}

	return autoMigrate(db)
}

// EnsureAdminExists creates the default admin when no admin account exists.
// It returns true when an account was created.
func EnsureAdminExists(db *gorm.DB, cfg *config.Config) (bool, error) {
	var count int64
	if err := db.Model(&models.User{}).Where("role = ?", models.RoleAdmin).Count(&count).Error; err != nil {
		return false, fmt.Errorf("count admins: %w", err)
	}
	if count > 0 {
		return false, nil
	}

	var existing models.User
	err := db.Where("email = ?", cfg.DefaultAdminEmail).First(&existing).Error
	if err == nil {
		// promote the account holding the default email instead of colliding with it
		if err := db.Model(&existing).Update("role", models.RoleAdmin).Error; err != nil {
			return false, fmt.Errorf("promote default admin: %w", err)
		}
		logger.Info("promoted %s to admin", cfg.DefaultAdminEmail)
		return true, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return false, fmt.Errorf("look up default admin: %w", err)
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(cfg.DefaultAdminPassword), bcrypt.DefaultCost)
	if err != nil {
		return false, fmt.Errorf("hash admin password: %w", err)
	}

	admin := models.User{
		Username: cfg.DefaultAdminUsername,
		Email:    cfg.DefaultAdminEmail,
		Password: string(hashedPassword),
		Role:     models.RoleAdmin,
	}
	if err := db.Create(&admin).Error; err != nil {
		return false, fmt.Errorf("create default admin: %w", err)
	}

	logger.Info("created default admin account %s", admin.Email)
	return true, nil
}
