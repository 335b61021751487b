package model

import (
	"time"

	"gorm.io/gorm"
)

// EmailVerificationToken confirms ownership of a student's email address
// after self-service registration.
type EmailVerificationToken struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	UserID    uint           `gorm:"index;not null" json:"user_id"`
	Token     string         `gorm:"uniqueIndex;not null;type:varchar(100)" json:"-"`
	ExpiresAt time.Time      `gorm:"index;not null" json:"expires_at"`
	UsedAt    *time.Time     `json:"used_at,omitempty"`
	CreatedAt time.Time      `json:"created_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	User User `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
}

// TableName specifies the table name for EmailVerificationToken
func (EmailVerificationToken) TableName() string {
	return "email_verification_tokens"
}

// IsExpired checks if the verification token has expired.
func (t *EmailVerificationToken) IsExpired() bool {
	return time.Now().After(t.ExpiresAt)
}

// IsUsed checks if the token has already been consumed.
func (t *EmailVerificationToken) IsUsed() bool {
	return t.UsedAt != nil
}

// MarkAsUsed consumes the token.
func (t *EmailVerificationToken) MarkAsUsed() {
	now := time.Now()
	t.UsedAt = &now
}
