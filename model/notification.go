package model

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// NotificationType represents the severity of a notification
type NotificationType string

const (
	NotificationTypeInfo    NotificationType = "info"
	NotificationTypeSuccess NotificationType = "success"
	NotificationTypeWarning NotificationType = "warning"
	NotificationTypeError   NotificationType = "error"
)

// NotificationCategory represents what area of the system produced it
type NotificationCategory string

const (
	NotificationCategoryDecision NotificationCategory = "request_decision"
	NotificationCategoryAccount  NotificationCategory = "account"
	NotificationCategoryGeneral  NotificationCategory = "general"
)

// UserNotification is an in-app notice, primarily "your request was
// approved/rejected" messages for students.
type UserNotification struct {
	ID        uint                 `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time            `json:"created_at"`
	UpdatedAt time.Time            `json:"updated_at"`
	DeletedAt gorm.DeletedAt       `gorm:"index" json:"-"`
	UserID    uint                 `gorm:"index;not null" json:"user_id"`
	Type      NotificationType     `gorm:"type:varchar(20);not null" json:"type"`
	Category  NotificationCategory `gorm:"type:varchar(30);not null" json:"category"`
	Title     string               `gorm:"type:varchar(255);not null" json:"title"`
	Message   string               `gorm:"type:text" json:"message"`
	Read      bool                 `gorm:"default:false" json:"read"`
	RequestID *uint                `gorm:"index" json:"request_id,omitempty"`
	Metadata  datatypes.JSON       `gorm:"type:jsonb" json:"metadata,omitempty"`

	User    User     `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
	Request *Request `gorm:"foreignKey:RequestID;constraint:OnDelete:SET NULL" json:"-"`
}

// TableName specifies the table name for UserNotification
func (UserNotification) TableName() string {
	return "user_notifications"
}
