package models

// Setting is the single global configuration row managed from the admin
// console.
type Setting struct {
	ID             int    `gorm:"primaryKey" json:"id"`
	Name           string `gorm:"size:100" json:"name"`
	Company        string `gorm:"size:100" json:"company"`
	Logo           string `gorm:"size:255" json:"logo"`
	Maintenance    bool   `gorm:"not null;default:false" json:"maintenance"`
	ClosedRegister bool   `gorm:"not null;default:false" json:"closed_register"`
	AutoClaim      bool   `gorm:"not null;default:false" json:"auto_claim"`
	SupportEmail   string `gorm:"size:191" json:"support_email"`
	LinkApp        string `gorm:"size:255" json:"link_app"`
}

func (Setting) TableName() string {
	return "settings"
}
