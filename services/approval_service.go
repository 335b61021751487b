package services

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/klncollege/od-provider/model"
	"gorm.io/gorm"
)

// ApprovalService owns the review state machine: it decides whether a
// teacher may act on a request, applies the transition atomically and keeps
// the audit trail.
type ApprovalService struct {
	db            *gorm.DB
	mode          FlowMode
	notifications *NotificationService
	email         *EmailService
}

// NewApprovalService creates a new approval service
func NewApprovalService(db *gorm.DB, mode FlowMode, notifications *NotificationService, email *EmailService) *ApprovalService {
	return &ApprovalService{
		db:            db,
		mode:          mode,
		notifications: notifications,
		email:         email,
	}
}

// Mode returns the configured approval flow mode.
func (s *ApprovalService) Mode() FlowMode {
	return s.mode
}

// ReviewInput is a teacher's decision on a request.
type ReviewInput struct {
	Action    string `json:"action" validate:"required,oneof=approved rejected"`
	Remarks   string `json:"remarks"`
	LevelHint string `json:"approval_level,omitempty"`
}

var nonTerminalStatuses = []string{model.StatusPending, model.StatusUnderReview}

// Review applies a teacher's decision to a request. The update is guarded
// by the request's version column: if a concurrent reviewer got there
// first, the losing writer gets ErrReviewConflict instead of silently
// overwriting the earlier decision.
func (s *ApprovalService) Review(ctx context.Context, requestID uint, teacher *model.User, in ReviewInput) (*model.Request, error) {
	if in.Action != ActionApproved && in.Action != ActionRejected {
		return nil, ErrInvalidAction
	}

	var request model.Request
	if err := s.db.WithContext(ctx).First(&request, requestID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, ErrRequestNotFound
		}
		return nil, err
	}

	if err := CheckEligibility(s.mode, &request, teacher, in.LevelHint); err != nil {
		return nil, err
	}

	now := time.Now()
	newStatus := NextOverallStatus(s.mode, in.Action, teacher.ApprovalLevel)

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&model.Request{}).
			Where("id = ? AND version = ? AND overall_status IN ?", request.ID, request.Version, nonTerminalStatuses).
			Updates(map[string]interface{}{
				"approval_teacher_id":          teacher.ID,
				"approval_teacher_name":        teacher.FullName,
				"approval_teacher_designation": teacher.Designation,
				"approval_teacher_department":  teacher.Department,
				"approval_level":               teacher.ApprovalLevel,
				"approval_status":              in.Action,
				"approval_remarks":             in.Remarks,
				"approval_decided_at":          now,
				"overall_status":               newStatus,
				"version":                      gorm.Expr("version + 1"),
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrReviewConflict
		}

		record := model.ApprovalRecord{
			RequestID:          request.ID,
			TeacherID:          teacher.ID,
			TeacherName:        teacher.FullName,
			TeacherDesignation: teacher.Designation,
			TeacherDepartment:  teacher.Department,
			Level:              teacher.ApprovalLevel,
			Action:             in.Action,
			Remarks:            in.Remarks,
			DecidedAt:          now,
		}
		return tx.Create(&record).Error
	})
	if err != nil {
		return nil, err
	}

	var updated model.Request
	if err := s.db.WithContext(ctx).Preload("History").First(&updated, request.ID).Error; err != nil {
		return nil, err
	}

	// Notify the student outside the transaction; delivery failures must
	// not roll back the decision.
	if updated.IsTerminal() {
		go s.notifyDecision(&updated)
	}

	return &updated, nil
}

func (s *ApprovalService) notifyDecision(r *model.Request) {
	title := fmt.Sprintf("Request %s", r.OverallStatus)
	message := fmt.Sprintf("Your %s request %q was %s by %s (%s).",
		r.RequestType, r.Event.Title, r.OverallStatus, r.Approval.TeacherName, r.Approval.TeacherDesignation)

	if s.notifications != nil {
		if err := s.notifications.NotifyDecision(context.Background(), r, title, message); err != nil {
			log.Printf("Failed to create decision notification for request %d: %v", r.ID, err)
		}
	}

	if s.email != nil {
		var student model.User
		if err := s.db.First(&student, r.StudentID).Error; err != nil {
			log.Printf("Failed to load student %d for decision email: %v", r.StudentID, err)
			return
		}
		if err := s.email.SendDecisionEmail(student.Email, student.FullName, r.Event.Title, r.OverallStatus, r.Approval.Remarks); err != nil {
			log.Printf("Failed to send decision email to %s: %v", student.Email, err)
		}
	}
}

// queueConditions narrows a query to the requests a teacher may act on in
// the current flow mode.
func (s *ApprovalService) queueConditions(q *gorm.DB, teacher *model.User) *gorm.DB {
	// The principal's queue spans every department.
	if teacher.ApprovalLevel != model.LevelPrincipal {
		q = q.Where("student_department = ?", teacher.Department)
	}

	if s.mode == FlowSingle {
		return q.Where("overall_status IN ?", nonTerminalStatuses)
	}

	switch teacher.ApprovalLevel {
	case model.LevelMentor:
		return q.Where("overall_status = ?", model.StatusPending)
	case model.LevelHOD:
		return q.Where("overall_status = ? AND approval_level = ?", model.StatusUnderReview, model.LevelMentor)
	case model.LevelPrincipal:
		return q.Where("overall_status = ? AND approval_level = ?", model.StatusUnderReview, model.LevelHOD)
	default:
		// Unknown level sees nothing.
		return q.Where("1 = 0")
	}
}

// ListPendingFor returns the teacher's review queue, oldest submission
// first, with the total matching count for pagination.
func (s *ApprovalService) ListPendingFor(ctx context.Context, teacher *model.User, page, limit int) ([]model.Request, int64, error) {
	if !teacher.IsReviewer() {
		return nil, 0, ErrNotEligible
	}
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}

	query := s.queueConditions(s.db.WithContext(ctx).Model(&model.Request{}), teacher)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var requests []model.Request
	if err := query.
		Order("created_at ASC").
		Limit(limit).
		Offset((page - 1) * limit).
		Find(&requests).Error; err != nil {
		return nil, 0, err
	}

	return requests, total, nil
}

// CountPendingObligations counts non-terminal requests whose required
// reviewer currently resolves to this teacher. Used by the delete guard.
func (s *ApprovalService) CountPendingObligations(ctx context.Context, teacher *model.User) (int64, error) {
	var count int64
	err := s.queueConditions(s.db.WithContext(ctx).Model(&model.Request{}), teacher).Count(&count).Error
	return count, err
}
