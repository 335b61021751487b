package model

import (
	"encoding/json"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Request kinds. Duty requests carry event details and a mandatory
// invitation document; leave requests carry a reason and date range only.
const (
	RequestTypeDuty  = "duty"
	RequestTypeLeave = "leave"
)

// Lifecycle states. Approved and rejected are terminal and absorbing.
const (
	StatusPending     = "pending"
	StatusUnderReview = "under_review"
	StatusApproved    = "approved"
	StatusRejected    = "rejected"
)

// StudentSnapshot is the student's identity as it stood at submission.
// It is deliberately never resynchronised with the live user record.
type StudentSnapshot struct {
	FullName       string `gorm:"type:varchar(120);not null" json:"full_name"`
	RegisterNumber string `gorm:"type:varchar(30);not null" json:"register_number"`
	Department     string `gorm:"type:varchar(100);not null;index" json:"department"`
	Year           int    `json:"year"`
	Section        string `gorm:"type:varchar(10)" json:"section"`
}

// EventDetails describes the activity the student wants to be excused for.
// For leave requests only Title, StartDate, EndDate and Reason are set.
type EventDetails struct {
	Title     string    `gorm:"type:varchar(200);not null" json:"title"`
	EventType string    `gorm:"type:varchar(50)" json:"event_type,omitempty"`
	Organizer string    `gorm:"type:varchar(200)" json:"organizer,omitempty"`
	Location  string    `gorm:"type:varchar(200)" json:"location,omitempty"`
	StartDate time.Time `gorm:"not null" json:"start_date"`
	EndDate   time.Time `gorm:"not null" json:"end_date"`
	Reason    string    `gorm:"type:text" json:"reason,omitempty"`
}

// AcademicDetails records what the student will miss and their undertaking.
type AcademicDetails struct {
	SubjectsMissed      datatypes.JSON `gorm:"type:jsonb" json:"subjects_missed,omitempty"`
	Undertaking         string         `gorm:"type:text" json:"undertaking,omitempty"`
	DeclarationAccepted bool           `gorm:"not null;default:false" json:"declaration_accepted"`
}

// DocumentRef points at an uploaded file in the object store. Only metadata
// lives in the row; the bytes belong to the storage service.
type DocumentRef struct {
	Kind        string `json:"kind"` // invitation, permission_letter, travel_proof, additional
	Key         string `json:"key"`
	URL         string `json:"url"`
	FileName    string `json:"file_name"`
	ContentType string `json:"content_type"`
	Size        int64  `json:"size"`
}

// ApprovalSlot is the most recent decision on the request. Earlier decisions
// live in the append-only history; the slot is what dashboards read.
type ApprovalSlot struct {
	TeacherID          *uint      `json:"teacher_id,omitempty"`
	TeacherName        string     `gorm:"type:varchar(120)" json:"teacher_name,omitempty"`
	TeacherDesignation string     `gorm:"type:varchar(100)" json:"teacher_designation,omitempty"`
	TeacherDepartment  string     `gorm:"type:varchar(100)" json:"teacher_department,omitempty"`
	Level              string     `gorm:"type:varchar(20)" json:"level,omitempty"`
	Status             string     `gorm:"type:varchar(20);not null;default:'pending'" json:"status"`
	Remarks            string     `gorm:"type:text" json:"remarks,omitempty"`
	DecidedAt          *time.Time `json:"decided_at,omitempty"`
}

// Request is an on-duty or leave petition owned by exactly one student.
type Request struct {
	ID          uint           `gorm:"primaryKey" json:"id"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`
	StudentID   uint           `gorm:"index;not null" json:"student_id"`
	RequestType string         `gorm:"type:varchar(10);not null;index" json:"request_type"`

	Student  StudentSnapshot `gorm:"embedded;embeddedPrefix:student_" json:"student_info"`
	Event    EventDetails    `gorm:"embedded;embeddedPrefix:event_" json:"event_details"`
	Academic AcademicDetails `gorm:"embedded;embeddedPrefix:academic_" json:"academic_details"`

	Documents datatypes.JSON `gorm:"type:jsonb" json:"documents,omitempty"`

	Approval      ApprovalSlot `gorm:"embedded;embeddedPrefix:approval_" json:"approval"`
	OverallStatus string       `gorm:"type:varchar(20);not null;default:'pending';index" json:"overall_status"`

	// Version guards the review mutation against concurrent writers.
	Version int `gorm:"not null;default:1" json:"-"`

	History []ApprovalRecord `gorm:"foreignKey:RequestID;constraint:OnDelete:CASCADE" json:"approval_history,omitempty"`
	Owner   User             `gorm:"foreignKey:StudentID;constraint:OnDelete:CASCADE" json:"-"`
}

// TableName specifies the table name for Request
func (Request) TableName() string {
	return "requests"
}

// IsTerminal reports whether the request has reached a final state.
func (r *Request) IsTerminal() bool {
	return r.OverallStatus == StatusApproved || r.OverallStatus == StatusRejected
}

// SetDocuments serialises the document references into the JSONB column.
func (r *Request) SetDocuments(refs []DocumentRef) error {
	raw, err := json.Marshal(refs)
	if err != nil {
		return err
	}
	r.Documents = datatypes.JSON(raw)
	return nil
}

// DocumentRefs decodes the JSONB column back into document references.
func (r *Request) DocumentRefs() ([]DocumentRef, error) {
	if len(r.Documents) == 0 {
		return nil, nil
	}
	var refs []DocumentRef
	if err := json.Unmarshal(r.Documents, &refs); err != nil {
		return nil, err
	}
	return refs, nil
}
