package models

import "time"

// Task categories mirror the catalog filters exposed to clients.
var TaskCategories = []string{"server", "mining", "trading", "social", "survey", "video", "app", "other"}

type Task struct {
	ID               uint      `gorm:"primaryKey" json:"id"`
	Title            string    `gorm:"size:100;not null" json:"title"`
	Description      string    `gorm:"type:text" json:"description"`
	Category         string    `gorm:"size:20;not null;default:'other'" json:"category"`
	BaseDuration     int       `gorm:"not null" json:"base_duration"` // seconds
	Reward           int64     `gorm:"not null" json:"reward"`
	IsActive         bool      `gorm:"not null;default:true" json:"is_active"`
	RequiredVIPLevel int       `gorm:"column:required_vip_level;not null;default:1" json:"required_vip_level"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

func (Task) TableName() string {
	return "tasks"
}

func ValidTaskCategory(c string) bool {
	for _, v := range TaskCategories {
		if v == c {
			return true
		}
	}
	return false
}
