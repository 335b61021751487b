package model

import "testing"

func TestCapabilitiesFor(t *testing.T) {
	student := CapabilitiesFor(RoleStudent)
	if !student.CanSubmitRequest || student.CanReview || student.CanManageTeachers {
		t.Errorf("student capabilities wrong: %+v", student)
	}

	teacher := CapabilitiesFor(RoleTeacher)
	if teacher.CanSubmitRequest || !teacher.CanReview || teacher.CanManageTeachers {
		t.Errorf("teacher capabilities wrong: %+v", teacher)
	}

	admin := CapabilitiesFor(RoleAdmin)
	if admin.CanSubmitRequest || admin.CanReview || !admin.CanManageTeachers {
		t.Errorf("admin capabilities wrong: %+v", admin)
	}

	// Unknown roles can do nothing
	unknown := CapabilitiesFor("superuser")
	if unknown.CanSubmitRequest || unknown.CanReview || unknown.CanManageTeachers {
		t.Errorf("unknown role should have no capabilities: %+v", unknown)
	}
}

func TestValidRole(t *testing.T) {
	for _, role := range []string{RoleStudent, RoleTeacher, RoleAdmin} {
		if !ValidRole(role) {
			t.Errorf("ValidRole(%s) = false", role)
		}
	}
	if ValidRole("hod") {
		t.Error("hod is an approval level, not a role")
	}
	if ValidRole("") {
		t.Error("empty role should be invalid")
	}
}

func TestValidApprovalLevel(t *testing.T) {
	for _, level := range []string{LevelMentor, LevelHOD, LevelPrincipal} {
		if !ValidApprovalLevel(level) {
			t.Errorf("ValidApprovalLevel(%s) = false", level)
		}
	}
	if ValidApprovalLevel("teacher") {
		t.Error("teacher is a role, not an approval level")
	}
}

func TestIsReviewer(t *testing.T) {
	active := &User{Role: RoleTeacher, IsActive: true}
	if !active.IsReviewer() {
		t.Error("active teacher should be a reviewer")
	}

	inactive := &User{Role: RoleTeacher, IsActive: false}
	if inactive.IsReviewer() {
		t.Error("deactivated teacher should not be a reviewer")
	}

	admin := &User{Role: RoleAdmin, IsActive: true}
	if admin.IsReviewer() {
		t.Error("admin should not be a reviewer")
	}
}
