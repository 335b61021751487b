package services

import (
	"errors"

	"github.com/klncollege/od-provider/model"
)

// FlowMode selects how many sign-offs a request needs.
type FlowMode string

const (
	// FlowSingle finalises a request on the first eligible teacher's decision.
	FlowSingle FlowMode = "single"
	// FlowSequential requires mentor, then HOD, then principal. Any
	// rejection is final; only the principal's approval finalises.
	FlowSequential FlowMode = "sequential"
)

// Review actions a teacher may take.
const (
	ActionApproved = "approved"
	ActionRejected = "rejected"
)

var (
	ErrRequestNotFound = errors.New("request not found")
	ErrAlreadyReviewed = errors.New("request has already been reviewed")
	ErrNotEligible     = errors.New("teacher is not eligible to review this request")
	ErrLevelMismatch   = errors.New("approval level does not match the teacher's designation")
	ErrInactiveAccount = errors.New("teacher account is deactivated")
	ErrReviewConflict  = errors.New("request was modified by another reviewer")
	ErrInvalidAction   = errors.New("action must be approved or rejected")
)

// ParseFlowMode maps a config string to a flow mode, defaulting to single.
func ParseFlowMode(s string) FlowMode {
	if s == string(FlowSequential) {
		return FlowSequential
	}
	return FlowSingle
}

// RequiredLevel returns the approval level that must act on the request
// next. The empty string means any level qualifies (single mode). Terminal
// requests have no required level.
func RequiredLevel(mode FlowMode, r *model.Request) string {
	if r.IsTerminal() {
		return ""
	}
	if mode == FlowSingle {
		return ""
	}
	switch r.OverallStatus {
	case model.StatusPending:
		return model.LevelMentor
	case model.StatusUnderReview:
		// The slot holds the last approval; the next tier is up.
		switch r.Approval.Level {
		case model.LevelMentor:
			return model.LevelHOD
		case model.LevelHOD:
			return model.LevelPrincipal
		}
	}
	return model.LevelMentor
}

// NextOverallStatus computes the request's lifecycle state after a decision
// at the given level.
func NextOverallStatus(mode FlowMode, action, level string) string {
	if action == ActionRejected {
		return model.StatusRejected
	}
	if mode == FlowSingle || level == model.LevelPrincipal {
		return model.StatusApproved
	}
	return model.StatusUnderReview
}

// CheckEligibility decides whether the teacher may review the request right
// now. levelHint is the optional level the caller claims to act at; when
// present it must match the teacher's own designation.
func CheckEligibility(mode FlowMode, r *model.Request, teacher *model.User, levelHint string) error {
	if teacher.Role != model.RoleTeacher {
		return ErrNotEligible
	}
	if !teacher.IsActive {
		return ErrInactiveAccount
	}
	if r.IsTerminal() {
		return ErrAlreadyReviewed
	}
	// The principal acts college-wide; mentors and HODs only review
	// their own department.
	if teacher.ApprovalLevel != model.LevelPrincipal && teacher.Department != r.Student.Department {
		return ErrNotEligible
	}
	if levelHint != "" && levelHint != teacher.ApprovalLevel {
		return ErrLevelMismatch
	}
	if required := RequiredLevel(mode, r); required != "" && required != teacher.ApprovalLevel {
		return ErrNotEligible
	}
	return nil
}
