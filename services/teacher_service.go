package services

import (
	"context"
	"errors"
	"log"
	"strings"

	"github.com/klncollege/od-provider/model"
	"github.com/klncollege/od-provider/utils/auth"
	"github.com/klncollege/od-provider/utils/random"
	"gorm.io/gorm"
)

var (
	ErrTeacherNotFound   = errors.New("teacher not found")
	ErrEmailTaken        = errors.New("an account with this email already exists")
	ErrTeacherHasPending = errors.New("cannot delete: teacher has pending approvals")
	ErrInvalidLevel      = errors.New("approval level must be mentor, hod or principal")
)

// TeacherService is the admin-facing CRUD over teacher accounts.
type TeacherService struct {
	db        *gorm.DB
	approvals *ApprovalService
	email     *EmailService
}

// NewTeacherService creates a new teacher service
func NewTeacherService(db *gorm.DB, approvals *ApprovalService, email *EmailService) *TeacherService {
	return &TeacherService{db: db, approvals: approvals, email: email}
}

// CreateTeacherInput is the admin payload for a new teacher account.
type CreateTeacherInput struct {
	FullName      string `json:"full_name" validate:"required,min=2"`
	Email         string `json:"email" validate:"required,email"`
	EmployeeID    string `json:"employee_id" validate:"required"`
	Designation   string `json:"designation" validate:"required"`
	Department    string `json:"department" validate:"required"`
	ApprovalLevel string `json:"approval_level" validate:"required,oneof=mentor hod principal"`
	Password      string `json:"password,omitempty"`
	SendInvite    bool   `json:"send_invite"`
}

// CreatedTeacher is the creation result. TempPassword is set exactly once,
// and only when no invite email was requested.
type CreatedTeacher struct {
	Teacher      *model.User `json:"teacher"`
	TempPassword string      `json:"temp_password,omitempty"`
}

// Create registers a teacher account. When no password is supplied one is
// generated; when send_invite is set the credentials go out by email,
// otherwise the plaintext password is returned once for manual handover.
func (s *TeacherService) Create(ctx context.Context, in CreateTeacherInput) (*CreatedTeacher, error) {
	if !model.ValidApprovalLevel(in.ApprovalLevel) {
		return nil, ErrInvalidLevel
	}

	email := strings.ToLower(strings.TrimSpace(in.Email))

	var existing model.User
	if err := s.db.WithContext(ctx).Where("email = ?", email).First(&existing).Error; err == nil {
		return nil, ErrEmailTaken
	}

	password := in.Password
	generated := false
	if password == "" {
		var err error
		password, err = random.TempPassword(random.TempPasswordLength)
		if err != nil {
			return nil, err
		}
		generated = true
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return nil, err
	}

	teacher := model.User{
		Email:         email,
		PasswordHash:  hash,
		FullName:      in.FullName,
		Role:          model.RoleTeacher,
		EmailVerified: true, // admin-created accounts skip self-verification
		EmployeeID:    in.EmployeeID,
		Designation:   in.Designation,
		Department:    in.Department,
		ApprovalLevel: in.ApprovalLevel,
		IsActive:      true,
	}
	if err := s.db.WithContext(ctx).Create(&teacher).Error; err != nil {
		// A concurrent insert can slip past the lookup above; the unique
		// index still reports it.
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrEmailTaken
		}
		return nil, err
	}

	result := &CreatedTeacher{Teacher: &teacher}
	if in.SendInvite {
		go func() {
			if err := s.email.SendTeacherInvite(teacher.Email, teacher.FullName, password); err != nil {
				log.Printf("Failed to send teacher invite to %s: %v", teacher.Email, err)
			}
		}()
	} else if generated {
		result.TempPassword = password
	}
	return result, nil
}

// Get loads one teacher by id.
func (s *TeacherService) Get(ctx context.Context, id uint) (*model.User, error) {
	var teacher model.User
	if err := s.db.WithContext(ctx).Where("role = ?", model.RoleTeacher).First(&teacher, id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, ErrTeacherNotFound
		}
		return nil, err
	}
	return &teacher, nil
}

// List returns teachers, optionally filtered by department, alphabetically.
func (s *TeacherService) List(ctx context.Context, department string, page, limit int) ([]model.User, int64, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}

	query := s.db.WithContext(ctx).Model(&model.User{}).Where("role = ?", model.RoleTeacher)
	if department != "" {
		query = query.Where("department = ?", department)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var teachers []model.User
	if err := query.
		Order("full_name ASC").
		Limit(limit).
		Offset((page - 1) * limit).
		Find(&teachers).Error; err != nil {
		return nil, 0, err
	}
	return teachers, total, nil
}

// UpdateTeacherInput carries the mutable teacher profile fields.
type UpdateTeacherInput struct {
	FullName      string `json:"full_name,omitempty"`
	EmployeeID    string `json:"employee_id,omitempty"`
	Designation   string `json:"designation,omitempty"`
	Department    string `json:"department,omitempty"`
	ApprovalLevel string `json:"approval_level,omitempty"`
}

// Update edits a teacher's profile.
func (s *TeacherService) Update(ctx context.Context, id uint, in UpdateTeacherInput) (*model.User, error) {
	teacher, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if in.ApprovalLevel != "" && !model.ValidApprovalLevel(in.ApprovalLevel) {
		return nil, ErrInvalidLevel
	}

	updates := map[string]interface{}{}
	if in.FullName != "" {
		updates["full_name"] = in.FullName
	}
	if in.EmployeeID != "" {
		updates["employee_id"] = in.EmployeeID
	}
	if in.Designation != "" {
		updates["designation"] = in.Designation
	}
	if in.Department != "" {
		updates["department"] = in.Department
	}
	if in.ApprovalLevel != "" {
		updates["approval_level"] = in.ApprovalLevel
	}
	if len(updates) > 0 {
		if err := s.db.WithContext(ctx).Model(teacher).Updates(updates).Error; err != nil {
			return nil, err
		}
	}
	return s.Get(ctx, id)
}

// Delete hard-removes a teacher, refusing while any non-terminal request's
// required reviewer still resolves to them.
func (s *TeacherService) Delete(ctx context.Context, id uint) error {
	teacher, err := s.Get(ctx, id)
	if err != nil {
		return err
	}

	pending, err := s.approvals.CountPendingObligations(ctx, teacher)
	if err != nil {
		return err
	}
	if pending > 0 {
		return ErrTeacherHasPending
	}

	return s.db.WithContext(ctx).Unscoped().Delete(&model.User{}, id).Error
}

// ToggleActive flips the teacher's active flag and returns the new state.
// Inactive teachers cannot log in and drop out of review queues.
func (s *TeacherService) ToggleActive(ctx context.Context, id uint) (*model.User, error) {
	teacher, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	newState := !teacher.IsActive
	updates := map[string]interface{}{"is_active": newState}
	if !newState {
		// Deactivation also invalidates live sessions.
		updates["token_version"] = gorm.Expr("token_version + 1")
	}
	if err := s.db.WithContext(ctx).Model(teacher).Updates(updates).Error; err != nil {
		return nil, err
	}
	return s.Get(ctx, id)
}
