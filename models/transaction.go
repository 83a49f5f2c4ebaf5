package models

import "time"

// Transaction is the wallet ledger. Every credit mutation (task reward,
// upgrade purchase, admin grant) leaves one row here next to the balance
// change itself.
type Transaction struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"not null;index" json:"user_id"`
	Amount    int64     `gorm:"not null" json:"amount"`
	OrderID   string    `gorm:"size:191;not null;uniqueIndex" json:"order_id"`
	Flow      string    `gorm:"size:10;not null" json:"flow"` // credit | debit
	Type      string    `gorm:"size:50;not null" json:"type"` // reward | upgrade | grant
	Message   *string   `gorm:"type:text" json:"message,omitempty"`
	Status    string    `gorm:"size:20;not null;default:'Success'" json:"status"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"-"`
}

func (Transaction) TableName() string {
	return "transactions"
}
