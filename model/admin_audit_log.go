package model

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// AdminAuditLog records every mutating admin action (teacher management,
// settings). Old and new values are stored as JSONB snapshots.
type AdminAuditLog struct {
	ID          uint           `gorm:"primaryKey" json:"id"`
	AdminID     uint           `gorm:"not null;index" json:"admin_id"`
	Action      string         `gorm:"type:varchar(100);not null" json:"action"`   // e.g. teacher_create, teacher_delete
	Resource    string         `gorm:"type:varchar(100);not null" json:"resource"` // e.g. teachers
	ResourceID  uint           `json:"resource_id"`
	OldValue    datatypes.JSON `gorm:"type:jsonb" json:"old_value,omitempty"`
	NewValue    datatypes.JSON `gorm:"type:jsonb" json:"new_value,omitempty"`
	IPAddress   string         `gorm:"type:varchar(45)" json:"ip_address"`
	UserAgent   string         `gorm:"type:text" json:"user_agent"`
	Description string         `gorm:"type:text" json:"description"`
	CreatedAt   time.Time      `json:"created_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`

	Admin User `gorm:"foreignKey:AdminID;constraint:OnDelete:CASCADE" json:"admin,omitempty"`
}

// TableName specifies the table name for AdminAuditLog
func (AdminAuditLog) TableName() string {
	return "admin_audit_logs"
}
