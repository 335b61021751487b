package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"mime/multipart"
	"time"

	"github.com/klncollege/od-provider/model"
	"github.com/klncollege/od-provider/services/storage"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Document kinds accepted on submission.
const (
	DocKindInvitation       = "invitation"
	DocKindPermissionLetter = "permission_letter"
	DocKindTravelProof      = "travel_proof"
	DocKindAdditional       = "additional"
)

var (
	ErrNotRequestOwner   = errors.New("request belongs to another student")
	ErrRequestNotPending = errors.New("only pending requests can be deleted")
	ErrNotStudent        = errors.New("only students can submit requests")
)

// ValidationFailedError carries per-field messages for a rejected payload.
type ValidationFailedError struct {
	Fields map[string]string
}

func (e *ValidationFailedError) Error() string {
	return fmt.Sprintf("validation failed for %d field(s)", len(e.Fields))
}

// SubmitInput is the parsed form payload for a new duty or leave request.
type SubmitInput struct {
	RequestType string `json:"request_type" validate:"required,oneof=duty leave"`

	FullName       string `json:"full_name" validate:"required,min=2"`
	RegisterNumber string `json:"register_number" validate:"required"`
	Department     string `json:"department" validate:"required"`
	Year           int    `json:"year" validate:"required,gte=1,lte=6"`
	Section        string `json:"section" validate:"required"`

	EventTitle string    `json:"event_title" validate:"required"`
	EventType  string    `json:"event_type"`
	Organizer  string    `json:"organizer"`
	Location   string    `json:"location"`
	StartDate  time.Time `json:"start_date" validate:"required"`
	EndDate    time.Time `json:"end_date" validate:"required"`
	Reason     string    `json:"reason"`

	SubjectsMissed      []string `json:"subjects_missed"`
	Undertaking         string   `json:"undertaking"`
	DeclarationAccepted bool     `json:"declaration_accepted"`
}

// UploadedFile pairs a document kind with its multipart header.
type UploadedFile struct {
	Kind   string
	Header *multipart.FileHeader
}

// ValidateSubmit applies the submission rules that validator tags cannot
// express. hasInvitation tells whether an invitation file accompanied the
// form; duty requests cannot go in without one.
func ValidateSubmit(in SubmitInput, hasInvitation bool) map[string]string {
	fieldErrors := make(map[string]string)

	if in.RequestType != model.RequestTypeDuty && in.RequestType != model.RequestTypeLeave {
		fieldErrors["request_type"] = "request_type must be duty or leave"
	}
	if in.FullName == "" {
		fieldErrors["full_name"] = "Full name is required"
	}
	if in.RegisterNumber == "" {
		fieldErrors["register_number"] = "Register number is required"
	}
	if in.Department == "" {
		fieldErrors["department"] = "Department is required"
	}
	if in.Year < 1 || in.Year > 6 {
		fieldErrors["year"] = "Year must be between 1 and 6"
	}
	if in.Section == "" {
		fieldErrors["section"] = "Section is required"
	}
	if in.EventTitle == "" {
		fieldErrors["event_title"] = "Title is required"
	}
	if in.StartDate.IsZero() {
		fieldErrors["start_date"] = "Start date is required"
	}
	if in.EndDate.IsZero() {
		fieldErrors["end_date"] = "End date is required"
	}
	if !in.StartDate.IsZero() && !in.EndDate.IsZero() && in.EndDate.Before(in.StartDate) {
		fieldErrors["end_date"] = "End date cannot be before start date"
	}
	if !in.DeclarationAccepted {
		fieldErrors["declaration_accepted"] = "The declaration must be accepted"
	}
	if in.RequestType == model.RequestTypeDuty && !hasInvitation {
		fieldErrors["invitation"] = "An invitation document is required for duty requests"
	}
	if in.RequestType == model.RequestTypeLeave && in.Reason == "" {
		fieldErrors["reason"] = "A reason is required for leave requests"
	}

	return fieldErrors
}

// RequestService validates and persists student requests.
type RequestService struct {
	db    *gorm.DB
	store *storage.Client
}

// NewRequestService creates a new request service
func NewRequestService(db *gorm.DB, store *storage.Client) *RequestService {
	return &RequestService{db: db, store: store}
}

// Submit validates the payload, uploads the attached documents and creates
// the request in its initial pending state.
func (s *RequestService) Submit(ctx context.Context, student *model.User, in SubmitInput, files []UploadedFile) (*model.Request, error) {
	if student.Role != model.RoleStudent {
		return nil, ErrNotStudent
	}

	hasInvitation := false
	for _, f := range files {
		if f.Kind == DocKindInvitation {
			hasInvitation = true
		}
	}
	if fieldErrors := ValidateSubmit(in, hasInvitation); len(fieldErrors) > 0 {
		return nil, &ValidationFailedError{Fields: fieldErrors}
	}

	refs, err := s.uploadDocuments(ctx, student.ID, files)
	if err != nil {
		return nil, err
	}

	subjects, err := json.Marshal(in.SubjectsMissed)
	if err != nil {
		return nil, err
	}

	request := model.Request{
		StudentID:   student.ID,
		RequestType: in.RequestType,
		Student: model.StudentSnapshot{
			FullName:       in.FullName,
			RegisterNumber: in.RegisterNumber,
			Department:     in.Department,
			Year:           in.Year,
			Section:        in.Section,
		},
		Event: model.EventDetails{
			Title:     in.EventTitle,
			EventType: in.EventType,
			Organizer: in.Organizer,
			Location:  in.Location,
			StartDate: in.StartDate,
			EndDate:   in.EndDate,
			Reason:    in.Reason,
		},
		Academic: model.AcademicDetails{
			SubjectsMissed:      datatypes.JSON(subjects),
			Undertaking:         in.Undertaking,
			DeclarationAccepted: in.DeclarationAccepted,
		},
		Approval:      model.ApprovalSlot{Status: model.StatusPending},
		OverallStatus: model.StatusPending,
		Version:       1,
	}
	if err := request.SetDocuments(refs); err != nil {
		return nil, err
	}

	if err := s.db.WithContext(ctx).Create(&request).Error; err != nil {
		return nil, err
	}
	return &request, nil
}

func (s *RequestService) uploadDocuments(ctx context.Context, studentID uint, files []UploadedFile) ([]model.DocumentRef, error) {
	refs := make([]model.DocumentRef, 0, len(files))
	for _, f := range files {
		key := storage.GenerateKey(studentID, f.Kind, f.Header.Filename)
		contentType := storage.ContentType(f.Header.Filename)

		url := ""
		if s.store != nil {
			src, err := f.Header.Open()
			if err != nil {
				return nil, fmt.Errorf("failed to open upload %s: %w", f.Header.Filename, err)
			}
			url, err = s.store.Upload(ctx, key, src, contentType)
			src.Close()
			if err != nil {
				return nil, err
			}
		} else {
			log.Printf("Object store not configured; keeping metadata only for %s", f.Header.Filename)
		}

		refs = append(refs, model.DocumentRef{
			Kind:        f.Kind,
			Key:         key,
			URL:         url,
			FileName:    f.Header.Filename,
			ContentType: contentType,
			Size:        f.Header.Size,
		})
	}
	return refs, nil
}

// Get loads a request with its history.
func (s *RequestService) Get(ctx context.Context, id uint) (*model.Request, error) {
	var request model.Request
	if err := s.db.WithContext(ctx).Preload("History").First(&request, id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, ErrRequestNotFound
		}
		return nil, err
	}
	return &request, nil
}

// ListFilter narrows request listings.
type ListFilter struct {
	Status      string
	RequestType string
	Department  string
	Page        int
	Limit       int
}

// ListForStudent returns the student's own requests, newest first.
func (s *RequestService) ListForStudent(ctx context.Context, studentID uint, filter ListFilter) ([]model.Request, int64, error) {
	query := s.db.WithContext(ctx).Model(&model.Request{}).Where("student_id = ?", studentID)
	return s.list(query, filter, "created_at DESC")
}

// ListAll returns every request matching the filter, for admins.
func (s *RequestService) ListAll(ctx context.Context, filter ListFilter) ([]model.Request, int64, error) {
	query := s.db.WithContext(ctx).Model(&model.Request{})
	if filter.Department != "" {
		query = query.Where("student_department = ?", filter.Department)
	}
	return s.list(query, filter, "created_at DESC")
}

func (s *RequestService) list(query *gorm.DB, filter ListFilter, order string) ([]model.Request, int64, error) {
	if filter.Status != "" {
		query = query.Where("overall_status = ?", filter.Status)
	}
	if filter.RequestType != "" {
		query = query.Where("request_type = ?", filter.RequestType)
	}

	page := filter.Page
	limit := filter.Limit
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var requests []model.Request
	if err := query.
		Order(order).
		Limit(limit).
		Offset((page - 1) * limit).
		Find(&requests).Error; err != nil {
		return nil, 0, err
	}
	return requests, total, nil
}

// DeleteOwned removes a student's own request while it is still pending.
// Stored documents are cleaned up best-effort after the row is gone.
func (s *RequestService) DeleteOwned(ctx context.Context, student *model.User, id uint) error {
	request, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if request.StudentID != student.ID {
		return ErrNotRequestOwner
	}
	if request.OverallStatus != model.StatusPending {
		return ErrRequestNotPending
	}

	if err := s.db.WithContext(ctx).Delete(&model.Request{}, id).Error; err != nil {
		return err
	}

	if s.store != nil {
		refs, err := request.DocumentRefs()
		if err != nil {
			log.Printf("Failed to decode documents for deleted request %d: %v", id, err)
			return nil
		}
		go func() {
			for _, ref := range refs {
				if err := s.store.Delete(context.Background(), ref.Key); err != nil {
					log.Printf("Failed to delete stored document %s: %v", ref.Key, err)
				}
			}
		}()
	}
	return nil
}
