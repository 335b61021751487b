package model

import (
	"time"

	"gorm.io/gorm"
)

// OTP purposes. Only password changes use OTPs today.
const (
	OTPPurposePasswordChange = "password_change"
)

// PasswordOTP is a short-lived one-time code mailed to the user for a
// password change. Codes are single-use and expire after a few minutes.
type PasswordOTP struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	UserID    uint           `gorm:"index;not null" json:"user_id"`
	Code      string         `gorm:"type:varchar(6);not null;index" json:"-"`
	Purpose   string         `gorm:"type:varchar(30);not null" json:"purpose"`
	ExpiresAt time.Time      `gorm:"index;not null" json:"expires_at"`
	UsedAt    *time.Time     `json:"used_at,omitempty"`
	CreatedAt time.Time      `json:"created_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	User User `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
}

// TableName specifies the table name for PasswordOTP
func (PasswordOTP) TableName() string {
	return "password_otps"
}

// IsExpired checks if the code has expired.
func (o *PasswordOTP) IsExpired() bool {
	return time.Now().After(o.ExpiresAt)
}

// IsUsed checks if the code has already been consumed.
func (o *PasswordOTP) IsUsed() bool {
	return o.UsedAt != nil
}

// MarkAsUsed consumes the code.
func (o *PasswordOTP) MarkAsUsed() {
	now := time.Now()
	o.UsedAt = &now
}
