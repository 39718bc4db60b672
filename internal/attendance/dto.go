package attendance

import (
	"github.com/go-playground/validator/v10"

	internalerrors "github.com/yakey01/dokterku-sub009/internal"
)

var validate = validator.New()

// CheckInDTO is the reported position at check-in time.
type CheckInDTO struct {
	WorkLocationID int64   `json:"work_location_id" validate:"required,gt=0"`
	Latitude       float64 `json:"latitude" validate:"latitude"`
	Longitude      float64 `json:"longitude" validate:"longitude"`
	Accuracy       float64 `json:"accuracy" validate:"gte=0"`
	Emergency      bool    `json:"emergency,omitempty"`
}

func (dto CheckInDTO) Validate() error {
	if err := validate.Struct(dto); err != nil {
		return coordinateError(err)
	}
	return nil
}

// CheckOutDTO is the reported position at check-out time.
type CheckOutDTO struct {
	Latitude  float64 `json:"latitude" validate:"latitude"`
	Longitude float64 `json:"longitude" validate:"longitude"`
	Accuracy  float64 `json:"accuracy" validate:"gte=0"`
}

func (dto CheckOutDTO) Validate() error {
	if err := validate.Struct(dto); err != nil {
		return coordinateError(err)
	}
	return nil
}

func coordinateError(err error) error {
	if fieldErrs, ok := err.(validator.ValidationErrors); ok && len(fieldErrs) > 0 {
		return internalerrors.NewValidationFieldError(
			fieldErrs[0].Field(),
			"invalid coordinate payload",
			internalerrors.ErrCodeInvalidCoordinat,
		)
	}
	return internalerrors.NewValidationError("invalid coordinate payload", internalerrors.ErrCodeInvalidCoordinat)
}

// WorkLocationDTO creates or replaces a work location.
type WorkLocationDTO struct {
	Name                      string  `json:"name" validate:"required,max=150"`
	Address                   string  `json:"address" validate:"max=500"`
	Latitude                  float64 `json:"latitude" validate:"latitude"`
	Longitude                 float64 `json:"longitude" validate:"longitude"`
	RadiusMeters              float64 `json:"radius_meters" validate:"gt=0,lte=5000"`
	GPSAccuracyRequiredMeters float64 `json:"gps_accuracy_required_meters" validate:"gte=0,lte=1000"`
	LocationType              string  `json:"location_type" validate:"omitempty,oneof=main_office branch_office project_site mobile_location clinic"`
	ShiftStart                string  `json:"shift_start" validate:"omitempty,datetime=15:04"`
	ShiftEnd                  string  `json:"shift_end" validate:"omitempty,datetime=15:04"`
	CheckinToleranceMinutes   int     `json:"checkin_tolerance_minutes" validate:"gte=0,lte=180"`
	CheckoutToleranceMinutes  int     `json:"checkout_tolerance_minutes" validate:"gte=0,lte=180"`
	IsActive                  *bool   `json:"is_active,omitempty"`
}

func (dto WorkLocationDTO) Validate() error {
	if err := validate.Struct(dto); err != nil {
		return coordinateError(err)
	}
	return nil
}

// ToleranceRuleDTO creates or replaces a tolerance rule.
type ToleranceRuleDTO struct {
	Name       string  `json:"name" validate:"required,max=150"`
	ScopeType  string  `json:"scope_type" validate:"required,oneof=global role user location"`
	ScopeValue *string `json:"scope_value,omitempty"`
	Priority   int     `json:"priority" validate:"gte=0,lte=1000"`

	CheckinEarlyToleranceMinutes int  `json:"checkin_early_tolerance_minutes" validate:"gte=0,lte=480"`
	CheckinLateToleranceMinutes  int  `json:"checkin_late_tolerance_minutes" validate:"gte=0,lte=480"`
	CheckinToleranceEnabled      bool `json:"checkin_tolerance_enabled"`

	CheckoutEarlyToleranceMinutes int  `json:"checkout_early_tolerance_minutes" validate:"gte=0,lte=480"`
	CheckoutLateToleranceMinutes  int  `json:"checkout_late_tolerance_minutes" validate:"gte=0,lte=480"`
	CheckoutToleranceEnabled      bool `json:"checkout_tolerance_enabled"`

	WeekendLateToleranceMinutes int  `json:"weekend_late_tolerance_minutes" validate:"gte=0,lte=480"`
	WeekendToleranceEnabled     bool `json:"weekend_tolerance_enabled"`
	HolidayLateToleranceMinutes int  `json:"holiday_late_tolerance_minutes" validate:"gte=0,lte=480"`
	HolidayToleranceEnabled     bool `json:"holiday_tolerance_enabled"`

	EmergencyOverrideAllowed         bool   `json:"emergency_override_allowed"`
	EmergencyAllowedRoles            string `json:"emergency_allowed_roles,omitempty"`
	EmergencyOverrideDurationMinutes int    `json:"emergency_override_duration_minutes" validate:"gte=0,lte=1440"`

	IsActive *bool `json:"is_active,omitempty"`
}

func (dto ToleranceRuleDTO) Validate() error {
	if err := validate.Struct(dto); err != nil {
		return coordinateError(err)
	}
	if dto.ScopeType != ScopeGlobal && (dto.ScopeValue == nil || *dto.ScopeValue == "") {
		return internalerrors.NewValidationFieldError("scope_value", "scope_value is required for scoped rules", internalerrors.ErrCodeValidationFailed)
	}
	return nil
}
