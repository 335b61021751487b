package services

import (
	"context"

	"github.com/klncollege/od-provider/model"
	"gorm.io/gorm"
)

// NotificationService manages in-app notifications.
type NotificationService struct {
	db *gorm.DB
}

// NewNotificationService creates a new notification service
func NewNotificationService(db *gorm.DB) *NotificationService {
	return &NotificationService{db: db}
}

// NotifyDecision records a "request decided" notice for the owning student.
func (s *NotificationService) NotifyDecision(ctx context.Context, r *model.Request, title, message string) error {
	kind := model.NotificationTypeSuccess
	if r.OverallStatus == model.StatusRejected {
		kind = model.NotificationTypeWarning
	}

	requestID := r.ID
	notification := model.UserNotification{
		UserID:    r.StudentID,
		Type:      kind,
		Category:  model.NotificationCategoryDecision,
		Title:     title,
		Message:   message,
		RequestID: &requestID,
	}
	return s.db.WithContext(ctx).Create(&notification).Error
}

// ListForUser returns a user's notifications, newest first.
func (s *NotificationService) ListForUser(ctx context.Context, userID uint, unreadOnly bool, page, limit int) ([]model.UserNotification, int64, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}

	query := s.db.WithContext(ctx).Model(&model.UserNotification{}).Where("user_id = ?", userID)
	if unreadOnly {
		query = query.Where("read = ?", false)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var notifications []model.UserNotification
	if err := query.
		Order("created_at DESC").
		Limit(limit).
		Offset((page - 1) * limit).
		Find(&notifications).Error; err != nil {
		return nil, 0, err
	}
	return notifications, total, nil
}

// MarkRead flags a notification as read. Users can only touch their own.
func (s *NotificationService) MarkRead(ctx context.Context, userID, notificationID uint) error {
	res := s.db.WithContext(ctx).
		Model(&model.UserNotification{}).
		Where("id = ? AND user_id = ?", notificationID, userID).
		Update("read", true)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
