package model

import (
	"time"

	"gorm.io/gorm"
)

// Roles recognised by the system. Every account lives in the same users
// table; the role column decides which profile fields are meaningful and
// which API surface the account may reach.
const (
	RoleStudent = "student"
	RoleTeacher = "teacher"
	RoleAdmin   = "admin"
)

// Approval levels a teacher can hold. A request is reviewed by teachers of
// the department it belongs to, at the level the flow currently requires.
const (
	LevelMentor    = "mentor"
	LevelHOD       = "hod"
	LevelPrincipal = "principal"
)

// User represents a registered account: student, teacher or admin.
type User struct {
	ID            uint           `gorm:"primaryKey" json:"id"`
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`
	DeletedAt     gorm.DeletedAt `gorm:"index" json:"-"`
	Email         string         `gorm:"uniqueIndex;not null" json:"email"`
	PasswordHash  string         `gorm:"not null" json:"-"`
	FullName      string         `gorm:"not null" json:"full_name"`
	Role          string         `gorm:"type:varchar(20);not null;default:'student';index" json:"role"`
	EmailVerified bool           `gorm:"default:false" json:"email_verified"`
	TokenVersion  int            `gorm:"default:0" json:"-"` // Increment to invalidate all user tokens

	// Student profile
	RegisterNumber string `gorm:"type:varchar(30);index" json:"register_number,omitempty"`
	Department     string `gorm:"type:varchar(100);index" json:"department,omitempty"`
	Year           int    `json:"year,omitempty"`
	Section        string `gorm:"type:varchar(10)" json:"section,omitempty"`

	// Teacher profile. Department is shared with the student profile above.
	EmployeeID    string `gorm:"type:varchar(30)" json:"employee_id,omitempty"`
	Designation   string `gorm:"type:varchar(100)" json:"designation,omitempty"`
	ApprovalLevel string `gorm:"type:varchar(20);index" json:"approval_level,omitempty"`
	IsActive      bool   `gorm:"default:true" json:"is_active"`

	// Admin profile
	AdminLevel string `gorm:"type:varchar(20)" json:"admin_level,omitempty"`

	// Relationships
	Requests      []Request          `gorm:"foreignKey:StudentID;constraint:OnDelete:CASCADE" json:"-"`
	Notifications []UserNotification `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
}

// IsReviewer reports whether the account is a teacher allowed to act on
// review endpoints. Deactivated teachers keep their rows but lose access.
func (u *User) IsReviewer() bool {
	return u.Role == RoleTeacher && u.IsActive
}
