package services

import (
	"context"
	"errors"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/klncollege/od-provider/database"
	"github.com/klncollege/od-provider/model"
	"github.com/klncollege/od-provider/utils/auth"
	"gorm.io/gorm"
)

// TestApprovalLifecycle exercises the full request lifecycle against a real
// database: submission, review, terminal immutability and the teacher
// delete guard.
//
// Requires a running PostgreSQL configured through the usual DB_* variables.
func TestApprovalLifecycle(t *testing.T) {
	if os.Getenv("RUN_INTEGRATION_TESTS") != "true" {
		t.Skip("Skipping integration test. Set RUN_INTEGRATION_TESTS=true to run")
	}

	store, err := database.StartGORM()
	if err != nil {
		t.Fatalf("failed to connect to database: %v", err)
	}
	defer store.Close()

	if err := store.Init(); err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}

	db := store.GetDB().(*gorm.DB)
	ctx := context.Background()

	suffix := time.Now().UnixNano()
	student := seedUser(t, db, model.User{
		Email:        fmt.Sprintf("student-%d@college.edu", suffix),
		FullName:     "Integration Student",
		Role:         model.RoleStudent,
		Department:   "CSE",
		Year:         3,
		Section:      "A",
	})
	mentor := seedUser(t, db, model.User{
		Email:         fmt.Sprintf("mentor-%d@college.edu", suffix),
		FullName:      "Integration Mentor",
		Role:          model.RoleTeacher,
		Department:    "CSE",
		ApprovalLevel: model.LevelMentor,
		IsActive:      true,
	})
	defer db.Unscoped().Delete(&model.User{}, []uint{student.ID, mentor.ID})

	email := NewEmailService()
	notifications := NewNotificationService(db)
	approvals := NewApprovalService(db, FlowSingle, notifications, email)
	requests := NewRequestService(db, nil)

	in := SubmitInput{
		RequestType:         model.RequestTypeLeave,
		FullName:            student.FullName,
		RegisterNumber:      "INT-1",
		Department:          "CSE",
		Year:                3,
		Section:             "A",
		EventTitle:          "Medical leave",
		StartDate:           time.Now().AddDate(0, 0, 1),
		EndDate:             time.Now().AddDate(0, 0, 2),
		Reason:              "Doctor appointment",
		DeclarationAccepted: true,
	}

	submitted, err := requests.Submit(ctx, student, in, nil)
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	defer db.Unscoped().Delete(&model.Request{}, submitted.ID)

	if submitted.OverallStatus != model.StatusPending {
		t.Fatalf("new request status = %s, want pending", submitted.OverallStatus)
	}

	// The snapshot taken at submission must read back verbatim, even after
	// the live profile changes.
	if err := db.Model(student).Update("full_name", "Renamed Later").Error; err != nil {
		t.Fatalf("rename student: %v", err)
	}
	fetched, err := requests.Get(ctx, submitted.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	snap := fetched.Student
	if snap.FullName != in.FullName || snap.RegisterNumber != in.RegisterNumber ||
		snap.Department != in.Department || snap.Year != in.Year || snap.Section != in.Section {
		t.Errorf("student snapshot = %+v, want the submitted values", snap)
	}
	if fetched.Event.Title != in.EventTitle || fetched.Event.Reason != in.Reason {
		t.Errorf("event round-trip: got title %q reason %q", fetched.Event.Title, fetched.Event.Reason)
	}
	if !fetched.Academic.DeclarationAccepted {
		t.Error("declaration flag lost on round-trip")
	}

	// Mentor is in the queue
	queue, _, err := approvals.ListPendingFor(ctx, mentor, 1, 50)
	if err != nil {
		t.Fatalf("ListPendingFor: %v", err)
	}
	if !containsRequest(queue, submitted.ID) {
		t.Fatal("submitted request missing from mentor queue")
	}

	reviewed, err := approvals.Review(ctx, submitted.ID, mentor, ReviewInput{
		Action:  ActionApproved,
		Remarks: "Looks fine",
	})
	if err != nil {
		t.Fatalf("Review: %v", err)
	}
	if reviewed.OverallStatus != model.StatusApproved {
		t.Errorf("status after approval = %s, want approved", reviewed.OverallStatus)
	}
	if len(reviewed.History) != 1 {
		t.Errorf("history length = %d, want 1", len(reviewed.History))
	}

	// Approved requests are immutable
	if _, err := approvals.Review(ctx, submitted.ID, mentor, ReviewInput{Action: ActionRejected}); !errors.Is(err, ErrAlreadyReviewed) {
		t.Errorf("second review: got %v, want ErrAlreadyReviewed", err)
	}

	// Students cannot delete decided requests
	if err := requests.DeleteOwned(ctx, student, submitted.ID); !errors.Is(err, ErrRequestNotPending) {
		t.Errorf("delete after decision: got %v, want ErrRequestNotPending", err)
	}

	// The decision notification is written by a background goroutine;
	// poll briefly instead of asserting immediately.
	var notes []model.UserNotification
	deadline := time.Now().Add(3 * time.Second)
	for {
		notes, _, err = notifications.ListForUser(ctx, student.ID, false, 1, 10)
		if err != nil {
			t.Fatalf("ListForUser: %v", err)
		}
		if len(notes) > 0 || time.Now().After(deadline) {
			break
		}
		time.Sleep(50 * time.Millisecond)
	}
	if len(notes) == 0 {
		t.Error("expected a decision notification for the student")
	}
}

// TestTeacherDeleteGuard verifies a teacher with a pending obligation cannot
// be deleted until the request is resolved.
func TestTeacherDeleteGuard(t *testing.T) {
	if os.Getenv("RUN_INTEGRATION_TESTS") != "true" {
		t.Skip("Skipping integration test. Set RUN_INTEGRATION_TESTS=true to run")
	}

	store, err := database.StartGORM()
	if err != nil {
		t.Fatalf("failed to connect to database: %v", err)
	}
	defer store.Close()

	db := store.GetDB().(*gorm.DB)
	ctx := context.Background()

	suffix := time.Now().UnixNano()
	student := seedUser(t, db, model.User{
		Email:      fmt.Sprintf("guard-student-%d@college.edu", suffix),
		FullName:   "Guard Student",
		Role:       model.RoleStudent,
		Department: "ECE",
	})
	teacher := seedUser(t, db, model.User{
		Email:         fmt.Sprintf("guard-teacher-%d@college.edu", suffix),
		FullName:      "Guard Teacher",
		Role:          model.RoleTeacher,
		Department:    "ECE",
		ApprovalLevel: model.LevelMentor,
		IsActive:      true,
	})
	defer db.Unscoped().Delete(&model.User{}, []uint{student.ID, teacher.ID})

	email := NewEmailService()
	approvals := NewApprovalService(db, FlowSingle, NewNotificationService(db), email)
	requests := NewRequestService(db, nil)
	teachers := NewTeacherService(db, approvals, email)

	submitted, err := requests.Submit(ctx, student, SubmitInput{
		RequestType:         model.RequestTypeLeave,
		FullName:            student.FullName,
		RegisterNumber:      "INT-2",
		Department:          "ECE",
		Year:                2,
		Section:             "B",
		EventTitle:          "Leave",
		StartDate:           time.Now().AddDate(0, 0, 1),
		EndDate:             time.Now().AddDate(0, 0, 1),
		Reason:              "Personal",
		DeclarationAccepted: true,
	}, nil)
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	defer db.Unscoped().Delete(&model.Request{}, submitted.ID)

	if err := teachers.Delete(ctx, teacher.ID); !errors.Is(err, ErrTeacherHasPending) {
		t.Fatalf("delete with pending obligation: got %v, want ErrTeacherHasPending", err)
	}

	if _, err := approvals.Review(ctx, submitted.ID, teacher, ReviewInput{Action: ActionRejected, Remarks: "No"}); err != nil {
		t.Fatalf("Review: %v", err)
	}

	if err := teachers.Delete(ctx, teacher.ID); err != nil {
		t.Fatalf("delete after resolution: %v", err)
	}
}

func seedUser(t *testing.T, db *gorm.DB, u model.User) *model.User {
	t.Helper()
	hash, err := auth.HashPassword("integration-pass")
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}
	u.PasswordHash = hash
	u.EmailVerified = true
	if err := db.Create(&u).Error; err != nil {
		t.Fatalf("failed to seed user: %v", err)
	}
	return &u
}

func containsRequest(requests []model.Request, id uint) bool {
	for _, r := range requests {
		if r.ID == id {
			return true
		}
	}
	return false
}
