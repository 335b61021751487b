package services

import (
	"errors"
	"testing"

	"github.com/klncollege/od-provider/model"
)

func pendingRequest(department string) *model.Request {
	return &model.Request{
		StudentID:     1,
		RequestType:   model.RequestTypeDuty,
		Student:       model.StudentSnapshot{FullName: "A Student", RegisterNumber: "R1", Department: department, Year: 2, Section: "A"},
		Approval:      model.ApprovalSlot{Status: model.StatusPending},
		OverallStatus: model.StatusPending,
		Version:       1,
	}
}

func activeTeacher(department, level string) *model.User {
	return &model.User{
		Role:          model.RoleTeacher,
		Department:    department,
		ApprovalLevel: level,
		IsActive:      true,
	}
}

func TestParseFlowMode(t *testing.T) {
	if got := ParseFlowMode("sequential"); got != FlowSequential {
		t.Errorf("ParseFlowMode(sequential) = %v", got)
	}
	if got := ParseFlowMode("single"); got != FlowSingle {
		t.Errorf("ParseFlowMode(single) = %v", got)
	}
	// Unknown values fall back to single
	if got := ParseFlowMode("whatever"); got != FlowSingle {
		t.Errorf("ParseFlowMode(whatever) = %v", got)
	}
	if got := ParseFlowMode(""); got != FlowSingle {
		t.Errorf("ParseFlowMode(empty) = %v", got)
	}
}

func TestRequiredLevelSequential(t *testing.T) {
	r := pendingRequest("CSE")
	if got := RequiredLevel(FlowSequential, r); got != model.LevelMentor {
		t.Errorf("pending request requires %q, want mentor", got)
	}

	r.OverallStatus = model.StatusUnderReview
	r.Approval.Level = model.LevelMentor
	if got := RequiredLevel(FlowSequential, r); got != model.LevelHOD {
		t.Errorf("after mentor approval requires %q, want hod", got)
	}

	r.Approval.Level = model.LevelHOD
	if got := RequiredLevel(FlowSequential, r); got != model.LevelPrincipal {
		t.Errorf("after hod approval requires %q, want principal", got)
	}
}

func TestRequiredLevelTerminalAndSingle(t *testing.T) {
	r := pendingRequest("CSE")
	if got := RequiredLevel(FlowSingle, r); got != "" {
		t.Errorf("single mode requires %q, want empty", got)
	}

	r.OverallStatus = model.StatusApproved
	if got := RequiredLevel(FlowSequential, r); got != "" {
		t.Errorf("terminal request requires %q, want empty", got)
	}
}

func TestNextOverallStatus(t *testing.T) {
	tests := []struct {
		name   string
		mode   FlowMode
		action string
		level  string
		want   string
	}{
		{"rejection is always final", FlowSequential, ActionRejected, model.LevelMentor, model.StatusRejected},
		{"single approval finalises", FlowSingle, ActionApproved, model.LevelMentor, model.StatusApproved},
		{"mentor approval keeps it open", FlowSequential, ActionApproved, model.LevelMentor, model.StatusUnderReview},
		{"hod approval keeps it open", FlowSequential, ActionApproved, model.LevelHOD, model.StatusUnderReview},
		{"principal approval finalises", FlowSequential, ActionApproved, model.LevelPrincipal, model.StatusApproved},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NextOverallStatus(tt.mode, tt.action, tt.level); got != tt.want {
				t.Errorf("NextOverallStatus(%v, %s, %s) = %s, want %s", tt.mode, tt.action, tt.level, got, tt.want)
			}
		})
	}
}

func TestCheckEligibility(t *testing.T) {
	t.Run("eligible teacher in single mode", func(t *testing.T) {
		err := CheckEligibility(FlowSingle, pendingRequest("CSE"), activeTeacher("CSE", model.LevelMentor), "")
		if err != nil {
			t.Errorf("unexpected error: %v", err)
		}
	})

	t.Run("students cannot review", func(t *testing.T) {
		student := &model.User{Role: model.RoleStudent, Department: "CSE"}
		err := CheckEligibility(FlowSingle, pendingRequest("CSE"), student, "")
		if !errors.Is(err, ErrNotEligible) {
			t.Errorf("got %v, want ErrNotEligible", err)
		}
	})

	t.Run("deactivated teacher is rejected", func(t *testing.T) {
		teacher := activeTeacher("CSE", model.LevelMentor)
		teacher.IsActive = false
		err := CheckEligibility(FlowSingle, pendingRequest("CSE"), teacher, "")
		if !errors.Is(err, ErrInactiveAccount) {
			t.Errorf("got %v, want ErrInactiveAccount", err)
		}
	})

	t.Run("terminal request cannot be reviewed again", func(t *testing.T) {
		r := pendingRequest("CSE")
		r.OverallStatus = model.StatusRejected
		err := CheckEligibility(FlowSingle, r, activeTeacher("CSE", model.LevelMentor), "")
		if !errors.Is(err, ErrAlreadyReviewed) {
			t.Errorf("got %v, want ErrAlreadyReviewed", err)
		}
	})

	t.Run("department mismatch", func(t *testing.T) {
		err := CheckEligibility(FlowSingle, pendingRequest("CSE"), activeTeacher("ECE", model.LevelMentor), "")
		if !errors.Is(err, ErrNotEligible) {
			t.Errorf("got %v, want ErrNotEligible", err)
		}
	})

	t.Run("level hint must match designation", func(t *testing.T) {
		err := CheckEligibility(FlowSingle, pendingRequest("CSE"), activeTeacher("CSE", model.LevelMentor), model.LevelHOD)
		if !errors.Is(err, ErrLevelMismatch) {
			t.Errorf("got %v, want ErrLevelMismatch", err)
		}
	})

	t.Run("sequential mode gates on required level", func(t *testing.T) {
		// A fresh request needs the mentor; the HOD must wait
		err := CheckEligibility(FlowSequential, pendingRequest("CSE"), activeTeacher("CSE", model.LevelHOD), "")
		if !errors.Is(err, ErrNotEligible) {
			t.Errorf("got %v, want ErrNotEligible", err)
		}

		err = CheckEligibility(FlowSequential, pendingRequest("CSE"), activeTeacher("CSE", model.LevelMentor), "")
		if err != nil {
			t.Errorf("mentor should be eligible, got %v", err)
		}
	})

	t.Run("principal reviews across departments", func(t *testing.T) {
		// Principals are not tied to a department. The seeded principal
		// has none at all and must still be able to finalise.
		r := pendingRequest("CSE")
		r.OverallStatus = model.StatusUnderReview
		r.Approval.Level = model.LevelHOD
		r.Approval.Status = model.StatusApproved

		principal := activeTeacher("", model.LevelPrincipal)
		if err := CheckEligibility(FlowSequential, r, principal, ""); err != nil {
			t.Errorf("principal without department: got %v, want eligible", err)
		}

		principal = activeTeacher("MECH", model.LevelPrincipal)
		if err := CheckEligibility(FlowSequential, r, principal, ""); err != nil {
			t.Errorf("principal of another department: got %v, want eligible", err)
		}

		if err := CheckEligibility(FlowSingle, pendingRequest("ECE"), activeTeacher("", model.LevelPrincipal), ""); err != nil {
			t.Errorf("principal in single mode: got %v, want eligible", err)
		}
	})

	t.Run("sequential mode advances to hod after mentor approval", func(t *testing.T) {
		r := pendingRequest("CSE")
		r.OverallStatus = model.StatusUnderReview
		r.Approval.Level = model.LevelMentor
		r.Approval.Status = model.StatusApproved

		if err := CheckEligibility(FlowSequential, r, activeTeacher("CSE", model.LevelHOD), ""); err != nil {
			t.Errorf("hod should be eligible, got %v", err)
		}
		if err := CheckEligibility(FlowSequential, r, activeTeacher("CSE", model.LevelMentor), ""); !errors.Is(err, ErrNotEligible) {
			t.Errorf("mentor acting twice: got %v, want ErrNotEligible", err)
		}
	})
}
