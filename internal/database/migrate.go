package database

import (
	"fmt"

	"github.com/franciscosanchezn/gin-phrasebook-api/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// DefaultLangs are seeded on every migration; existing keys are left untouched
var DefaultLangs = []models.Lang{
	{Key: "en", Codes: " en en_UK en_US English english eng "},
	{Key: "ru", Codes: " ru ru_RU Russian russian rus "},
}

// Migrate creates or updates the schema and seeds the language table
func Migrate(db *gorm.DB) error {
	log.Info("Migrating database schema")
	err := db.AutoMigrate(
		&models.User{},
		&models.Consumer{},
		&models.Auth{},
		&models.Lang{},
		&models.Phrasebook{},
		&models.Phrase{},
		&models.PhrasebookPhrase{},
	)
	if err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}

	langs := make([]models.Lang, len(DefaultLangs))
	copy(langs, DefaultLangs)
	if err := db.Clauses(clause.OnConflict{DoNothing: true}).Create(&langs).Error; err != nil {
		return fmt.Errorf("seed langs: %w", err)
	}
	log.WithField("langs", len(langs)).Info("Database schema ready")
	return nil
}
