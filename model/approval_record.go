package model

import (
	"time"
)

// ApprovalRecord is one entry in a request's append-only audit trail. The
// teacher identity is snapshotted so the trail survives later profile edits
// or teacher deletion.
type ApprovalRecord struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	RequestID uint      `gorm:"index;not null" json:"request_id"`

	TeacherID          uint   `gorm:"index" json:"teacher_id"`
	TeacherName        string `gorm:"type:varchar(120);not null" json:"teacher_name"`
	TeacherDesignation string `gorm:"type:varchar(100)" json:"teacher_designation"`
	TeacherDepartment  string `gorm:"type:varchar(100)" json:"teacher_department"`
	Level              string `gorm:"type:varchar(20);not null" json:"level"`

	Action    string    `gorm:"type:varchar(20);not null" json:"action"` // approved, rejected
	Remarks   string    `gorm:"type:text" json:"remarks,omitempty"`
	DecidedAt time.Time `gorm:"not null" json:"decided_at"`
}

// TableName specifies the table name for ApprovalRecord
func (ApprovalRecord) TableName() string {
	return "approval_records"
}
