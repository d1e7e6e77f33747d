package db

import (
	"courtside/internal/models"
)

func AutoMigrate(db *DB) error {
	if db == nil || db.Gorm == nil || db.SQL == nil {
		return nil
	}

	return db.Gorm.AutoMigrate(
		&models.Game{},
		&models.UserProfile{},
		&models.Bet{},
		&models.BankrollTransaction{},
		&models.RiskLimit{},
		&models.AlertPreference{},
		&models.Notification{},
		&models.SettlementReview{},
	)
}
