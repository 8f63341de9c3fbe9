package database

import (
	"errors"
	"fmt"

	"thai-travel-portal/internal/config"
	"thai-travel-portal/internal/models"
	"thai-travel-portal/internal/util"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// AutoMigrate runs database schema migrations for all models.
func AutoMigrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&models.User{},
		&models.Session{},
		&models.Destination{},
		&models.MusicTrack{},
		&models.News{},
		&models.NewsWidget{},
		&models.BlogCategory{},
		&models.BlogPost{},
		&models.PartnerNotification{},
		&models.HomeSettings{},
		&models.HeroSlide{},
		&models.CultureVideo{},
		&models.AuditLog{},
		&models.Backup{},
	); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}
	return ensureSingletons(db)
}

// ensureSingletons creates the home settings and culture video rows.
func ensureSingletons(db *gorm.DB) error {
	home := models.HomeSettings{ID: 1, ShowMusic: true, ShowNews: true, ShowDestinations: true}
	if err := db.FirstOrCreate(&home, models.HomeSettings{ID: 1}).Error; err != nil {
		return fmt.Errorf("seed home settings: %w", err)
	}
	video := models.CultureVideo{ID: 1}
	if err := db.FirstOrCreate(&video, models.CultureVideo{ID: 1}).Error; err != nil {
		return fmt.Errorf("seed culture video: %w", err)
	}
	return nil
}

// SeedAdmin creates the configured admin account when no admin exists yet.
func SeedAdmin(db *gorm.DB, seed config.AdminSeed, bcryptCost int, log *zap.Logger) error {
	if seed.Username == "" || seed.Password == "" {
		return nil
	}

	var existing models.User
	err := db.Where("role = ?", models.RoleAdmin).First(&existing).Error
	if err == nil {
		return nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("query admin: %w", err)
	}

	hash, err := util.HashPassword(seed.Password, bcryptCost)
	if err != nil {
		return fmt.Errorf("hash admin password: %w", err)
	}
	admin := models.User{
		Username:         seed.Username,
		PasswordHash:     hash,
		Role:             models.RoleAdmin,
		SecurityQuestion: seed.SecurityQuestion,
	}
	if seed.SecurityAnswer != "" {
		answer, err := util.HashPassword(util.NormalizeAnswer(seed.SecurityAnswer), bcryptCost)
		if err != nil {
			return fmt.Errorf("hash admin answer: %w", err)
		}
		admin.SecurityAnswerHash = answer
	}
	if err := db.Create(&admin).Error; err != nil {
		return fmt.Errorf("create admin: %w", err)
	}

	log.Info("seeded admin account", zap.String("username", admin.Username))
	return nil
}
