package models

import "time"

// VIPPayment records a payment-proof submission for a VIP upgrade. The record
// is append-only; submitting one never changes the user's VIP level. A
// separate admin approval applies TargetLevel to the user.
type VIPPayment struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	UserID      uint      `gorm:"not null;index" json:"user_id"`
	Email       string    `gorm:"size:191;not null" json:"email"`
	Country     string    `gorm:"size:50" json:"country"`
	Currency    string    `gorm:"size:10" json:"currency"`
	Amount      int64     `gorm:"not null" json:"amount"`
	Method      string    `gorm:"size:50" json:"method"`
	ProofURL    string    `gorm:"size:512;not null" json:"proof_url"`
	TargetLevel int       `gorm:"not null" json:"target_level"`
	Status      string    `gorm:"size:20;not null;default:'Pending'" json:"status"` // Pending | Approved | Rejected
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"-"`
}

func (VIPPayment) TableName() string {
	return "vip_payments"
}
