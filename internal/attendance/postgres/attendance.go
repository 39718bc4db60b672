package postgres

import (
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/yakey01/dokterku-sub009/internal/attendance"
)

// AttendanceRepository implements attendance.Repository using GORM.
type AttendanceRepository struct {
	db *gorm.DB
}

func NewAttendanceRepository(db *gorm.DB) *AttendanceRepository {
	return &AttendanceRepository{db: db}
}

func (r *AttendanceRepository) CreateAttendance(a *attendance.Attendance) error {
	return r.db.Create(a).Error
}

func (r *AttendanceRepository) UpdateAttendance(a *attendance.Attendance) error {
	a.UpdatedAt = time.Now()
	return r.db.Save(a).Error
}

func (r *AttendanceRepository) GetAttendanceForDate(userID int64, date time.Time) (*attendance.Attendance, error) {
	var a attendance.Attendance
	err := r.db.Where("user_id = ? AND date = ?", userID, date).First(&a).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &a, nil
}

func (r *AttendanceRepository) GetAttendanceHistory(userID int64, limit, offset int) ([]*attendance.Attendance, error) {
	var records []*attendance.Attendance
	err := r.db.Where("user_id = ?", userID).
		Order("date DESC").
		Limit(limit).
		Offset(offset).
		Find(&records).Error
	return records, err
}

func (r *AttendanceRepository) CreateWorkLocation(w *attendance.WorkLocation) error {
	return r.db.Create(w).Error
}

func (r *AttendanceRepository) GetWorkLocationByID(id int64) (*attendance.WorkLocation, error) {
	var w attendance.WorkLocation
	err := r.db.Where("id = ?", id).First(&w).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, attendance.ErrWorkLocationNotFound
		}
		return nil, err
	}
	return &w, nil
}

func (r *AttendanceRepository) GetAllWorkLocations() ([]*attendance.WorkLocation, error) {
	var locations []*attendance.WorkLocation
	err := r.db.Order("name ASC").Find(&locations).Error
	return locations, err
}

func (r *AttendanceRepository) UpdateWorkLocation(w *attendance.WorkLocation) error {
	w.UpdatedAt = time.Now()
	return r.db.Save(w).Error
}

func (r *AttendanceRepository) DeleteWorkLocation(id int64) error {
	return r.db.Delete(&attendance.WorkLocation{}, id).Error
}

func (r *AttendanceRepository) CreateToleranceRule(rule *attendance.ToleranceRule) error {
	return r.db.Create(rule).Error
}

func (r *AttendanceRepository) GetToleranceRuleByID(id int64) (*attendance.ToleranceRule, error) {
	var rule attendance.ToleranceRule
	err := r.db.Where("id = ?", id).First(&rule).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, attendance.ErrToleranceRuleNotFound
		}
		return nil, err
	}
	return &rule, nil
}

func (r *AttendanceRepository) GetAllToleranceRules() ([]*attendance.ToleranceRule, error) {
	var rules []*attendance.ToleranceRule
	err := r.db.Order("priority ASC").Find(&rules).Error
	return rules, err
}

func (r *AttendanceRepository) GetActiveToleranceRules() ([]*attendance.ToleranceRule, error) {
	var rules []*attendance.ToleranceRule
	err := r.db.Where("is_active = ?", true).Order("priority ASC").Find(&rules).Error
	return rules, err
}

func (r *AttendanceRepository) UpdateToleranceRule(rule *attendance.ToleranceRule) error {
	rule.UpdatedAt = time.Now()
	return r.db.Save(rule).Error
}

func (r *AttendanceRepository) DeleteToleranceRule(id int64) error {
	return r.db.Delete(&attendance.ToleranceRule{}, id).Error
}
