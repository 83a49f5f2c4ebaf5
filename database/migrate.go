package database

import (
	"time"

	"github.com/Bhavnish15/taskoPro/models"

	"gorm.io/gorm"
)

// revokedToken backs the DB fallback of the jti blacklist when Redis is not configured.
type revokedToken struct {
	ID        string    `gorm:"primaryKey;size:191"`
	RevokedAt time.Time `gorm:"index"`
}

func (revokedToken) TableName() string { return "revoked_tokens" }

// Migrate runs schema auto-migration for all models.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.User{},
		&models.Task{},
		&models.VIPLevel{},
		&models.TaskCompletion{},
		&models.Transaction{},
		&models.VIPPayment{},
		&models.SystemStats{},
		&models.RefreshToken{},
		&models.Setting{},
		&revokedToken{},
	)
}
