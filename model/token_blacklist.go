package model

import (
	"time"
)

// RevokedToken stores the JTI of a JWT revoked before its natural expiry,
// typically by logout. Rows past their expiry are purged by a cron job.
type RevokedToken struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	JTI       string    `gorm:"uniqueIndex;not null;type:varchar(64)" json:"jti"`
	UserID    uint      `gorm:"index" json:"user_id"`
	Reason    string    `gorm:"type:varchar(50)" json:"reason"` // logout, security
	ExpiresAt time.Time `gorm:"index;not null" json:"expires_at"`
	CreatedAt time.Time `json:"created_at"`
}

// TableName specifies the table name for RevokedToken
func (RevokedToken) TableName() string {
	return "revoked_tokens"
}
