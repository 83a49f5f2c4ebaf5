package models

import (
	"encoding/json"
	"time"
)

// VIPLevel is one row of the tier table. Multiplier scales task durations
// (1 = no speedup) and Cost is the credit price of the tier.
type VIPLevel struct {
	ID         uint      `gorm:"primaryKey" json:"-"`
	Level      int       `gorm:"uniqueIndex;not null" json:"level"`
	Name       string    `gorm:"size:50;not null" json:"name"`
	Cost       int64     `gorm:"not null" json:"cost"`
	Multiplier float64   `gorm:"not null;default:1" json:"multiplier"`
	Benefits   string    `gorm:"type:text" json:"-"`
	CreatedAt  time.Time `json:"-"`
	UpdatedAt  time.Time `json:"-"`
}

func (VIPLevel) TableName() string {
	return "vip_levels"
}

// BenefitList decodes the stored JSON benefit strings. A malformed or empty
// column yields an empty list rather than an error; benefits are display-only.
func (v *VIPLevel) BenefitList() []string {
	out := []string{}
	if v.Benefits == "" {
		return out
	}
	_ = json.Unmarshal([]byte(v.Benefits), &out)
	return out
}

func (v *VIPLevel) SetBenefits(benefits []string) {
	b, err := json.Marshal(benefits)
	if err != nil {
		v.Benefits = "[]"
		return
	}
	v.Benefits = string(b)
}
