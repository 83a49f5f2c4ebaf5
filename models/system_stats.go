package models

import "time"

// SystemStats is a single global counter row (id = 1). It is incremented
// inside the settlement transaction; derived aggregates (user counts, average
// VIP level, leaderboard) are computed on demand instead of being stored.
type SystemStats struct {
	ID                      uint      `gorm:"primaryKey" json:"-"`
	TotalCreditsDistributed int64     `gorm:"not null;default:0" json:"total_credits_distributed"`
	LastUpdated             time.Time `json:"last_updated"`
}

func (SystemStats) TableName() string {
	return "system_stats"
}

// StatsOverview is the on-demand aggregate served to dashboards.
type StatsOverview struct {
	TotalUsers              int64   `json:"total_users"`
	ActiveToday             int64   `json:"active_today"`
	TotalCreditsDistributed int64   `json:"total_credits_distributed"`
	AverageVIPLevel         float64 `json:"average_vip_level"`
	TopUsers                []User  `json:"top_users"`
}
