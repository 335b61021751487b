package services

import (
	"context"

	"github.com/klncollege/od-provider/model"
	"gorm.io/gorm"
)

// StatsService produces the aggregate counts behind the admin dashboard.
type StatsService struct {
	db *gorm.DB
}

// NewStatsService creates a new stats service
func NewStatsService(db *gorm.DB) *StatsService {
	return &StatsService{db: db}
}

// DepartmentCount is a per-department request tally.
type DepartmentCount struct {
	Department string `json:"department"`
	Count      int64  `json:"count"`
}

// DashboardStats is the admin dashboard payload. Counts only; no row data.
type DashboardStats struct {
	TotalRequests  int64             `json:"total_requests"`
	Pending        int64             `json:"pending"`
	UnderReview    int64             `json:"under_review"`
	Approved       int64             `json:"approved"`
	Rejected       int64             `json:"rejected"`
	DutyRequests   int64             `json:"duty_requests"`
	LeaveRequests  int64             `json:"leave_requests"`
	Students       int64             `json:"students"`
	Teachers       int64             `json:"teachers"`
	ActiveTeachers int64             `json:"active_teachers"`
	ByDepartment   []DepartmentCount `json:"by_department"`
}

// Dashboard gathers the aggregate counts.
func (s *StatsService) Dashboard(ctx context.Context) (*DashboardStats, error) {
	db := s.db.WithContext(ctx)
	stats := &DashboardStats{}

	requests := func() *gorm.DB { return db.Model(&model.Request{}) }
	users := func() *gorm.DB { return db.Model(&model.User{}) }

	if err := requests().Count(&stats.TotalRequests).Error; err != nil {
		return nil, err
	}

	statusCounts := map[string]*int64{
		model.StatusPending:     &stats.Pending,
		model.StatusUnderReview: &stats.UnderReview,
		model.StatusApproved:    &stats.Approved,
		model.StatusRejected:    &stats.Rejected,
	}
	for status, dest := range statusCounts {
		if err := requests().Where("overall_status = ?", status).Count(dest).Error; err != nil {
			return nil, err
		}
	}

	if err := requests().Where("request_type = ?", model.RequestTypeDuty).Count(&stats.DutyRequests).Error; err != nil {
		return nil, err
	}
	if err := requests().Where("request_type = ?", model.RequestTypeLeave).Count(&stats.LeaveRequests).Error; err != nil {
		return nil, err
	}

	if err := users().Where("role = ?", model.RoleStudent).Count(&stats.Students).Error; err != nil {
		return nil, err
	}
	if err := users().Where("role = ?", model.RoleTeacher).Count(&stats.Teachers).Error; err != nil {
		return nil, err
	}
	if err := users().Where("role = ? AND is_active = ?", model.RoleTeacher, true).Count(&stats.ActiveTeachers).Error; err != nil {
		return nil, err
	}

	if err := requests().
		Select("student_department AS department, COUNT(*) AS count").
		Group("student_department").
		Order("count DESC").
		Scan(&stats.ByDepartment).Error; err != nil {
		return nil, err
	}

	return stats, nil
}
