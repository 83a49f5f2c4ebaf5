package database

import (
	"log"

	"github.com/Bhavnish15/taskoPro/models"
	"github.com/Bhavnish15/taskoPro/vip"

	"gorm.io/gorm"
)

// Seed fills empty tables with the stock data set: the five VIP tiers, a
// starter task catalog, the global settings row and the stats row. Existing
// rows are never touched, so re-running on a live database is safe.
func Seed(db *gorm.DB) error {
	if err := seedVIPLevels(db); err != nil {
		return err
	}
	if err := seedTasks(db); err != nil {
		return err
	}
	if err := seedSettings(db); err != nil {
		return err
	}
	return seedStats(db)
}

func seedVIPLevels(db *gorm.DB) error {
	var count int64
	if err := db.Model(&models.VIPLevel{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}
	tiers := vip.Defaults()
	if err := db.Create(&tiers).Error; err != nil {
		return err
	}
	log.Printf("[seed] inserted %d VIP levels", len(tiers))
	return nil
}

func seedTasks(db *gorm.DB) error {
	var count int64
	if err := db.Model(&models.Task{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}
	tasks := []models.Task{
		{Title: "Server Health Check", Description: "Run the automated server diagnostics job.", Category: "server", BaseDuration: 300, Reward: 5, IsActive: true, RequiredVIPLevel: 1},
		{Title: "Watch Promo Video", Description: "Watch the full sponsor video to the end.", Category: "video", BaseDuration: 180, Reward: 3, IsActive: true, RequiredVIPLevel: 1},
		{Title: "Daily Survey", Description: "Complete the short daily opinion survey.", Category: "survey", BaseDuration: 240, Reward: 4, IsActive: true, RequiredVIPLevel: 1},
		{Title: "Social Boost", Description: "Share the campaign post on your social feed.", Category: "social", BaseDuration: 120, Reward: 2, IsActive: true, RequiredVIPLevel: 1},
		{Title: "Crypto Mining Session", Description: "Keep the mining session alive for the full window.", Category: "mining", BaseDuration: 600, Reward: 12, IsActive: true, RequiredVIPLevel: 2},
		{Title: "App Install Trial", Description: "Install the partner app and run the onboarding flow.", Category: "app", BaseDuration: 360, Reward: 8, IsActive: true, RequiredVIPLevel: 2},
		{Title: "Market Data Review", Description: "Review and confirm the daily trading signals.", Category: "trading", BaseDuration: 900, Reward: 20, IsActive: true, RequiredVIPLevel: 3},
		{Title: "Premium Server Audit", Description: "Run the extended audit suite on the premium cluster.", Category: "server", BaseDuration: 1200, Reward: 30, IsActive: true, RequiredVIPLevel: 4},
	}
	if err := db.Create(&tasks).Error; err != nil {
		return err
	}
	log.Printf("[seed] inserted %d tasks", len(tasks))
	return nil
}

func seedSettings(db *gorm.DB) error {
	var count int64
	if err := db.Model(&models.Setting{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}
	setting := models.Setting{
		ID:           1,
		Name:         "TaskoPro",
		Company:      "TaskoPro",
		SupportEmail: "support@taskopro.app",
	}
	return db.Create(&setting).Error
}

func seedStats(db *gorm.DB) error {
	var count int64
	if err := db.Model(&models.SystemStats{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}
	return db.Create(&models.SystemStats{ID: 1}).Error
}
