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

// TestToggleTeacherActive verifies deactivation revokes live sessions and
// that a double toggle restores the original state.
func TestToggleTeacherActive(t *testing.T) {
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

	teacher := seedUser(t, db, model.User{
		Email:         fmt.Sprintf("toggle-teacher-%d@college.edu", time.Now().UnixNano()),
		FullName:      "Toggle Teacher",
		Role:          model.RoleTeacher,
		Department:    "CSE",
		ApprovalLevel: model.LevelMentor,
		IsActive:      true,
	})
	defer db.Unscoped().Delete(&model.User{}, teacher.ID)

	teachers := NewTeacherService(db, NewApprovalService(db, FlowSingle, nil, nil), NewEmailService())

	deactivated, err := teachers.ToggleActive(ctx, teacher.ID)
	if err != nil {
		t.Fatalf("first toggle: %v", err)
	}
	if deactivated.IsActive {
		t.Error("teacher still active after first toggle")
	}
	if deactivated.TokenVersion != teacher.TokenVersion+1 {
		t.Errorf("token_version = %d, want %d; deactivation must revoke sessions",
			deactivated.TokenVersion, teacher.TokenVersion+1)
	}

	restored, err := teachers.ToggleActive(ctx, teacher.ID)
	if err != nil {
		t.Fatalf("second toggle: %v", err)
	}
	if !restored.IsActive {
		t.Error("teacher not active again after double toggle")
	}
	if restored.TokenVersion != deactivated.TokenVersion {
		t.Errorf("reactivation changed token_version from %d to %d",
			deactivated.TokenVersion, restored.TokenVersion)
	}
}

// TestCreateTeacherExplicitPassword verifies an admin-supplied password is
// stored hashed and never echoed back when no invite mail was requested.
func TestCreateTeacherExplicitPassword(t *testing.T) {
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

	teachers := NewTeacherService(db, NewApprovalService(db, FlowSingle, nil, nil), NewEmailService())

	in := CreateTeacherInput{
		Email:         fmt.Sprintf("create-teacher-%d@college.edu", time.Now().UnixNano()),
		FullName:      "Created Teacher",
		Department:    "ECE",
		Designation:   "Assistant Professor",
		ApprovalLevel: model.LevelHOD,
		Password:      "Expl1cit-Passw0rd",
		SendInvite:    false,
	}
	created, err := teachers.Create(ctx, in)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	defer db.Unscoped().Delete(&model.User{}, created.Teacher.ID)

	if created.TempPassword != "" {
		t.Errorf("explicit password echoed back as temp password %q", created.TempPassword)
	}
	if err := auth.VerifyPassword(created.Teacher.PasswordHash, in.Password); err != nil {
		t.Errorf("stored hash does not verify against the supplied password: %v", err)
	}
	if !created.Teacher.IsActive || !created.Teacher.EmailVerified {
		t.Error("admin-created teacher should start active and verified")
	}

	// Same address again trips the uniqueness guard.
	if _, err := teachers.Create(ctx, in); !errors.Is(err, ErrEmailTaken) {
		t.Errorf("duplicate create: got %v, want ErrEmailTaken", err)
	}
}
