package models

import "time"

// TaskCompletion is the immutable audit record persisted when a task attempt
// is settled. Rows are append-only and never updated; AttemptKey makes
// settlement retries idempotent at the storage layer.
type TaskCompletion struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	UserID      uint      `gorm:"not null;index" json:"user_id"`
	TaskID      uint      `gorm:"not null;index" json:"task_id"`
	Reward      int64     `gorm:"not null" json:"reward"`
	AttemptKey  string    `gorm:"size:191;uniqueIndex;not null" json:"-"`
	Date        string    `gorm:"size:10;index" json:"date"`
	CompletedAt time.Time `json:"completed_at"`
}

func (TaskCompletion) TableName() string {
	return "task_completions"
}
