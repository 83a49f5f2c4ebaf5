package models

import "time"

type User struct {
	ID                  uint      `gorm:"primaryKey" json:"id"`
	Email               string    `gorm:"size:191;uniqueIndex;not null" json:"email"`
	DisplayName         string    `gorm:"size:100;not null" json:"display_name"`
	Password            string    `gorm:"size:255;not null" json:"-"`
	Wallet              int64     `gorm:"not null;default:0" json:"wallet"`
	VIPLevel            int       `gorm:"column:vip_level;not null;default:1" json:"vip_level"`
	TasksToday          int       `gorm:"not null;default:0" json:"tasks_today"`
	LastTaskDate        string    `gorm:"size:10" json:"last_task_date"`
	TotalTasksCompleted int64     `gorm:"not null;default:0" json:"total_tasks_completed"`
	TotalCreditsEarned  int64     `gorm:"not null;default:0" json:"total_credits_earned"`
	IsAdmin             bool      `gorm:"not null;default:false" json:"is_admin"`
	LastLoginAt         time.Time `json:"-"`
	CreatedAt           time.Time `json:"-"`
	UpdatedAt           time.Time `json:"-"`
}

func (User) TableName() string {
	return "users"
}

// TasksOn returns the daily counter as seen on the given calendar day.
// The stored counter is only meaningful while last_task_date matches today;
// settlement resets it lazily on the next completion.
func (u *User) TasksOn(day string) int {
	if u.LastTaskDate != day {
		return 0
	}
	return u.TasksToday
}
