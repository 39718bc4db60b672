package attendance

import (
	"time"

	"gorm.io/gorm"

	internalerrors "github.com/yakey01/dokterku-sub009/internal"
)

// WorkLocation is a registered site with a geofence and a working window.
type WorkLocation struct {
	ID                        int64          `json:"id" gorm:"primaryKey"`
	Name                      string         `json:"name" gorm:"not null"`
	Address                   string         `json:"address"`
	Latitude                  float64        `json:"latitude" gorm:"not null"`
	Longitude                 float64        `json:"longitude" gorm:"not null"`
	RadiusMeters              float64        `json:"radius_meters" gorm:"column:radius_meters;default:100"`
	GPSAccuracyRequiredMeters float64        `json:"gps_accuracy_required_meters" gorm:"column:gps_accuracy_required_meters;default:50"`
	LocationType              string         `json:"location_type" gorm:"column:location_type"`
	ShiftStart                string         `json:"shift_start" gorm:"column:shift_start"`
	ShiftEnd                  string         `json:"shift_end" gorm:"column:shift_end"`
	CheckinToleranceMinutes   int            `json:"checkin_tolerance_minutes" gorm:"column:checkin_tolerance_minutes;default:15"`
	CheckoutToleranceMinutes  int            `json:"checkout_tolerance_minutes" gorm:"column:checkout_tolerance_minutes;default:15"`
	IsActive                  bool           `json:"is_active"`
	CreatedAt                 time.Time      `json:"created_at"`
	UpdatedAt                 time.Time      `json:"updated_at"`
	DeletedAt                 gorm.DeletedAt `json:"-" gorm:"index"`
}

func (WorkLocation) TableName() string {
	return "work_locations"
}

// Attendance statuses.
const (
	StatusHadir       = "hadir"
	StatusTerlambat   = "terlambat"
	StatusPulangCepat = "pulang_cepat"
	StatusTepatWaktu  = "tepat_waktu"
)

// Attendance is one user's presence record for one day at one location.
// The resolved shift window is snapshotted so later rule edits do not
// retroactively change recorded classifications.
type Attendance struct {
	ID              int64      `json:"id" gorm:"primaryKey"`
	UserID          int64      `json:"user_id" gorm:"column:user_id;not null"`
	WorkLocationID  int64      `json:"work_location_id" gorm:"column:work_location_id;not null"`
	Date            time.Time  `json:"date" gorm:"column:date;type:date;not null"`
	TimeIn          time.Time  `json:"time_in" gorm:"column:time_in"`
	TimeOut         *time.Time `json:"time_out,omitempty" gorm:"column:time_out"`
	LatitudeIn      float64    `json:"latitude_in" gorm:"column:latitude_in"`
	LongitudeIn     float64    `json:"longitude_in" gorm:"column:longitude_in"`
	AccuracyIn      float64    `json:"accuracy_in" gorm:"column:accuracy_in"`
	DistanceIn      float64    `json:"distance_in_meters" gorm:"column:distance_in_meters"`
	LatitudeOut     *float64   `json:"latitude_out,omitempty" gorm:"column:latitude_out"`
	LongitudeOut    *float64   `json:"longitude_out,omitempty" gorm:"column:longitude_out"`
	DistanceOut     *float64   `json:"distance_out_meters,omitempty" gorm:"column:distance_out_meters"`
	LocationValid   bool       `json:"location_valid" gorm:"column:location_valid"`
	Status          string     `json:"status" gorm:"column:status"`
	CheckoutStatus  string     `json:"checkout_status,omitempty" gorm:"column:checkout_status"`
	ShiftStart      string     `json:"shift_start" gorm:"column:shift_start"`
	ShiftEnd        string     `json:"shift_end" gorm:"column:shift_end"`
	ToleranceRuleID *int64     `json:"tolerance_rule_id,omitempty" gorm:"column:tolerance_rule_id"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
}

func (Attendance) TableName() string {
	return "attendances"
}

func (a *Attendance) CheckedOut() bool {
	return a.TimeOut != nil
}

// Domain errors.
var (
	ErrWorkLocationNotFound  = internalerrors.ErrWorkLocationNotFound
	ErrToleranceRuleNotFound = internalerrors.ErrToleranceRuleNotFound

	ErrOutsideGeofence    = internalerrors.NewValidationError("position is outside the work location geofence", internalerrors.ErrCodeOutsideGeofence)
	ErrAccuracyTooLow     = internalerrors.NewValidationError("GPS accuracy is below the required threshold", internalerrors.ErrCodeAccuracyTooLow)
	ErrOutsideShiftWindow = internalerrors.NewValidationError("check-in attempted outside the allowed shift window", internalerrors.ErrCodeOutsideShiftWindow)
	ErrAlreadyCheckedIn   = internalerrors.NewConflictError("already checked in today", internalerrors.ErrCodeAlreadyCheckedIn)
	ErrNotCheckedIn       = internalerrors.NewValidationError("no open check-in found for today", internalerrors.ErrCodeNotCheckedIn)
)
