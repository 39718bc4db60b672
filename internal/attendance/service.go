package attendance

import (
	"context"
	"log/slog"
	"time"

	"github.com/yakey01/dokterku-sub009/internal/core/events"
)

// Repository defines the data access methods for attendance and its
// configuration entities.
type Repository interface {
	CreateAttendance(a *Attendance) error
	UpdateAttendance(a *Attendance) error
	GetAttendanceForDate(userID int64, date time.Time) (*Attendance, error)
	GetAttendanceHistory(userID int64, limit, offset int) ([]*Attendance, error)

	CreateWorkLocation(w *WorkLocation) error
	GetWorkLocationByID(id int64) (*WorkLocation, error)
	GetAllWorkLocations() ([]*WorkLocation, error)
	UpdateWorkLocation(w *WorkLocation) error
	DeleteWorkLocation(id int64) error

	CreateToleranceRule(r *ToleranceRule) error
	GetToleranceRuleByID(id int64) (*ToleranceRule, error)
	GetAllToleranceRules() ([]*ToleranceRule, error)
	GetActiveToleranceRules() ([]*ToleranceRule, error)
	UpdateToleranceRule(r *ToleranceRule) error
	DeleteToleranceRule(id int64) error
}

// HolidayChecker tells the service whether a date is a public holiday so the
// tolerance resolver can pick holiday overrides.
type HolidayChecker interface {
	IsHoliday(t time.Time) bool
}

// NoHolidays is the default checker when no holiday calendar is configured.
type NoHolidays struct{}

func (NoHolidays) IsHoliday(time.Time) bool { return false }

// EventPublisher emits attendance events best-effort.
type EventPublisher interface {
	Publish(ctx context.Context, event events.Event) error
}

// Service handles geofenced check-in/check-out and the admin configuration
// of work locations and tolerance rules.
type Service struct {
	repo      Repository
	holidays  HolidayChecker
	publisher EventPublisher
	logger    *slog.Logger
	now       func() time.Time
}

func NewService(repo Repository, holidays HolidayChecker, publisher EventPublisher, logger *slog.Logger) *Service {
	if holidays == nil {
		holidays = NoHolidays{}
	}
	return &Service{
		repo:      repo,
		holidays:  holidays,
		publisher: publisher,
		logger:    logger,
		now:       time.Now,
	}
}

// SetClock overrides the service time source; tests pin it to make shift
// window classification deterministic.
func (s *Service) SetClock(now func() time.Time) {
	s.now = now
}

// CheckIn validates the reported position against the location geofence and
// accuracy requirement, applies the resolved tolerance window, and records
// the attendance with its classification.
func (s *Service) CheckIn(ctx context.Context, userID int64, role string, dto CheckInDTO) (*Attendance, error) {
	if err := dto.Validate(); err != nil {
		s.logger.Error("check-in validation failed", "error", err, "user_id", userID)
		return nil, err
	}

	location, err := s.repo.GetWorkLocationByID(dto.WorkLocationID)
	if err != nil {
		s.logger.Error("work location not found for check-in", "error", err, "work_location_id", dto.WorkLocationID)
		return nil, ErrWorkLocationNotFound
	}
	if !location.IsActive {
		return nil, ErrWorkLocationNotFound
	}

	if !location.MeetsAccuracy(dto.Accuracy) {
		s.logger.Warn("check-in rejected: GPS accuracy too low",
			"user_id", userID,
			"accuracy", dto.Accuracy,
			"required", location.GPSAccuracyRequiredMeters)
		return nil, ErrAccuracyTooLow
	}

	within, distance := location.IsWithinGeofence(dto.Latitude, dto.Longitude)
	if !within {
		s.logger.Warn("check-in rejected: outside geofence",
			"user_id", userID,
			"work_location_id", location.ID,
			"distance_meters", distance,
			"radius_meters", location.RadiusMeters)
		return nil, ErrOutsideGeofence
	}

	now := s.now()
	today := dateOnly(now)

	if existing, err := s.repo.GetAttendanceForDate(userID, today); err == nil && existing != nil {
		return nil, ErrAlreadyCheckedIn
	}

	tolerance, ruleID := s.resolveTolerance(userID, role, location, now, dto.Emergency)

	shiftStart, ok := atTimeOfDay(now, location.ShiftStart)
	if !ok {
		shiftStart = now
	}

	earliest := shiftStart.Add(-time.Duration(tolerance.CheckinEarly) * time.Minute)
	if now.Before(earliest) {
		s.logger.Warn("check-in rejected: before shift window",
			"user_id", userID,
			"earliest", earliest,
			"attempted", now)
		return nil, ErrOutsideShiftWindow
	}

	status := StatusHadir
	latest := shiftStart.Add(time.Duration(tolerance.CheckinLate) * time.Minute)
	if now.After(latest) {
		status = StatusTerlambat
	}

	a := &Attendance{
		UserID:          userID,
		WorkLocationID:  location.ID,
		Date:            today,
		TimeIn:          now,
		LatitudeIn:      dto.Latitude,
		LongitudeIn:     dto.Longitude,
		AccuracyIn:      dto.Accuracy,
		DistanceIn:      distance,
		LocationValid:   true,
		Status:          status,
		ShiftStart:      location.ShiftStart,
		ShiftEnd:        location.ShiftEnd,
		ToleranceRuleID: ruleID,
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	if err := s.repo.CreateAttendance(a); err != nil {
		s.logger.Error("failed to record check-in", "error", err, "user_id", userID)
		return nil, err
	}

	event := events.NewAttendanceRecordedEvent(a.ID, userID, "check_in", status, true, distance)
	if err := s.publisher.Publish(ctx, event); err != nil {
		s.logger.Error("failed to emit attendance event", "attendance_id", a.ID, "error", err)
	}

	s.logger.Info("check-in recorded",
		"attendance_id", a.ID,
		"user_id", userID,
		"status", status,
		"distance_meters", distance)

	return a, nil
}

// CheckOut closes today's open attendance, classifying early leave against
// the resolved check-out tolerance.
func (s *Service) CheckOut(ctx context.Context, userID int64, role string, dto CheckOutDTO) (*Attendance, error) {
	if err := dto.Validate(); err != nil {
		s.logger.Error("check-out validation failed", "error", err, "user_id", userID)
		return nil, err
	}

	now := s.now()
	a, err := s.repo.GetAttendanceForDate(userID, dateOnly(now))
	if err != nil || a == nil {
		return nil, ErrNotCheckedIn
	}
	if a.CheckedOut() {
		return nil, ErrNotCheckedIn
	}

	location, err := s.repo.GetWorkLocationByID(a.WorkLocationID)
	if err != nil {
		return nil, ErrWorkLocationNotFound
	}

	distance := location.DistanceTo(dto.Latitude, dto.Longitude)
	tolerance, _ := s.resolveTolerance(userID, role, location, now, false)

	checkoutStatus := StatusTepatWaktu
	if shiftEnd, ok := atTimeOfDay(now, a.ShiftEnd); ok {
		earliestLeave := shiftEnd.Add(-time.Duration(tolerance.CheckoutEarly) * time.Minute)
		if now.Before(earliestLeave) {
			checkoutStatus = StatusPulangCepat
		}
	}

	a.TimeOut = &now
	a.LatitudeOut = &dto.Latitude
	a.LongitudeOut = &dto.Longitude
	a.DistanceOut = &distance
	a.CheckoutStatus = checkoutStatus
	a.UpdatedAt = now

	if err := s.repo.UpdateAttendance(a); err != nil {
		s.logger.Error("failed to record check-out", "error", err, "attendance_id", a.ID)
		return nil, err
	}

	event := events.NewAttendanceRecordedEvent(a.ID, userID, "check_out", checkoutStatus, true, distance)
	if err := s.publisher.Publish(ctx, event); err != nil {
		s.logger.Error("failed to emit attendance event", "attendance_id", a.ID, "error", err)
	}

	s.logger.Info("check-out recorded",
		"attendance_id", a.ID,
		"user_id", userID,
		"checkout_status", checkoutStatus)

	return a, nil
}

// Today returns the caller's attendance record for the current date, nil
// when none exists yet.
func (s *Service) Today(userID int64) (*Attendance, error) {
	return s.repo.GetAttendanceForDate(userID, dateOnly(s.now()))
}

func (s *Service) History(userID int64, limit, offset int) ([]*Attendance, error) {
	return s.repo.GetAttendanceHistory(userID, limit, offset)
}

// resolveTolerance loads the active rules and picks the effective window.
// An emergency claim extends the late window when the winning rule allows
// the caller's role.
func (s *Service) resolveTolerance(userID int64, role string, location *WorkLocation, at time.Time, emergency bool) (ResolvedTolerance, *int64) {
	rules, err := s.repo.GetActiveToleranceRules()
	if err != nil {
		s.logger.Error("failed to load tolerance rules, using location defaults", "error", err)
		rules = nil
	}

	day := DayKindFor(at, s.holidays.IsHoliday(at))
	resolved := ResolveTolerance(rules, userID, role, location, day)

	if emergency && resolved.RuleID != nil {
		for _, r := range rules {
			if r.ID == *resolved.RuleID && r.AllowsEmergencyOverride(role) {
				resolved.CheckinLate += r.EmergencyOverrideDurationMinutes
				s.logger.Info("emergency override applied",
					"rule_id", r.ID,
					"user_id", userID,
					"extra_minutes", r.EmergencyOverrideDurationMinutes)
				break
			}
		}
	}

	return resolved, resolved.RuleID
}

// Work location CRUD (admin only, enforced at the route level).

func (s *Service) CreateWorkLocation(dto WorkLocationDTO) (*WorkLocation, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	now := time.Now()
	w := &WorkLocation{
		Name:                      dto.Name,
		Address:                   dto.Address,
		Latitude:                  dto.Latitude,
		Longitude:                 dto.Longitude,
		RadiusMeters:              dto.RadiusMeters,
		GPSAccuracyRequiredMeters: dto.GPSAccuracyRequiredMeters,
		LocationType:              dto.LocationType,
		ShiftStart:                dto.ShiftStart,
		ShiftEnd:                  dto.ShiftEnd,
		CheckinToleranceMinutes:   dto.CheckinToleranceMinutes,
		CheckoutToleranceMinutes:  dto.CheckoutToleranceMinutes,
		IsActive:                  true,
		CreatedAt:                 now,
		UpdatedAt:                 now,
	}
	if dto.IsActive != nil {
		w.IsActive = *dto.IsActive
	}

	if err := s.repo.CreateWorkLocation(w); err != nil {
		s.logger.Error("failed to create work location", "error", err)
		return nil, err
	}

	s.logger.Info("work location created", "work_location_id", w.ID, "name", w.Name)
	return w, nil
}

func (s *Service) GetWorkLocation(id int64) (*WorkLocation, error) {
	return s.repo.GetWorkLocationByID(id)
}

func (s *Service) ListWorkLocations() ([]*WorkLocation, error) {
	return s.repo.GetAllWorkLocations()
}

func (s *Service) UpdateWorkLocation(id int64, dto WorkLocationDTO) (*WorkLocation, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	w, err := s.repo.GetWorkLocationByID(id)
	if err != nil {
		return nil, ErrWorkLocationNotFound
	}

	w.Name = dto.Name
	w.Address = dto.Address
	w.Latitude = dto.Latitude
	w.Longitude = dto.Longitude
	w.RadiusMeters = dto.RadiusMeters
	w.GPSAccuracyRequiredMeters = dto.GPSAccuracyRequiredMeters
	w.LocationType = dto.LocationType
	w.ShiftStart = dto.ShiftStart
	w.ShiftEnd = dto.ShiftEnd
	w.CheckinToleranceMinutes = dto.CheckinToleranceMinutes
	w.CheckoutToleranceMinutes = dto.CheckoutToleranceMinutes
	if dto.IsActive != nil {
		w.IsActive = *dto.IsActive
	}
	w.UpdatedAt = time.Now()

	if err := s.repo.UpdateWorkLocation(w); err != nil {
		s.logger.Error("failed to update work location", "error", err, "work_location_id", id)
		return nil, err
	}
	return w, nil
}

func (s *Service) DeleteWorkLocation(id int64) error {
	if _, err := s.repo.GetWorkLocationByID(id); err != nil {
		return ErrWorkLocationNotFound
	}
	return s.repo.DeleteWorkLocation(id)
}

// Tolerance rule CRUD (admin only, enforced at the route level).

func (s *Service) CreateToleranceRule(dto ToleranceRuleDTO) (*ToleranceRule, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	now := time.Now()
	r := ruleFromDTO(dto)
	r.CreatedAt = now
	r.UpdatedAt = now

	if err := s.repo.CreateToleranceRule(r); err != nil {
		s.logger.Error("failed to create tolerance rule", "error", err)
		return nil, err
	}

	s.logger.Info("tolerance rule created", "rule_id", r.ID, "scope_type", r.ScopeType, "priority", r.Priority)
	return r, nil
}

func (s *Service) GetToleranceRule(id int64) (*ToleranceRule, error) {
	return s.repo.GetToleranceRuleByID(id)
}

func (s *Service) ListToleranceRules() ([]*ToleranceRule, error) {
	return s.repo.GetAllToleranceRules()
}

func (s *Service) UpdateToleranceRule(id int64, dto ToleranceRuleDTO) (*ToleranceRule, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	existing, err := s.repo.GetToleranceRuleByID(id)
	if err != nil {
		return nil, ErrToleranceRuleNotFound
	}

	updated := ruleFromDTO(dto)
	updated.ID = existing.ID
	updated.CreatedAt = existing.CreatedAt
	updated.UpdatedAt = time.Now()
	if dto.IsActive == nil {
		updated.IsActive = existing.IsActive
	}

	if err := s.repo.UpdateToleranceRule(updated); err != nil {
		s.logger.Error("failed to update tolerance rule", "error", err, "rule_id", id)
		return nil, err
	}
	return updated, nil
}

func (s *Service) DeleteToleranceRule(id int64) error {
	if _, err := s.repo.GetToleranceRuleByID(id); err != nil {
		return ErrToleranceRuleNotFound
	}
	return s.repo.DeleteToleranceRule(id)
}

func ruleFromDTO(dto ToleranceRuleDTO) *ToleranceRule {
	r := &ToleranceRule{
		Name:       dto.Name,
		ScopeType:  dto.ScopeType,
		ScopeValue: dto.ScopeValue,
		Priority:   dto.Priority,

		CheckinEarlyToleranceMinutes: dto.CheckinEarlyToleranceMinutes,
		CheckinLateToleranceMinutes:  dto.CheckinLateToleranceMinutes,
		CheckinToleranceEnabled:      dto.CheckinToleranceEnabled,

		CheckoutEarlyToleranceMinutes: dto.CheckoutEarlyToleranceMinutes,
		CheckoutLateToleranceMinutes:  dto.CheckoutLateToleranceMinutes,
		CheckoutToleranceEnabled:      dto.CheckoutToleranceEnabled,

		WeekendLateToleranceMinutes: dto.WeekendLateToleranceMinutes,
		WeekendToleranceEnabled:     dto.WeekendToleranceEnabled,
		HolidayLateToleranceMinutes: dto.HolidayLateToleranceMinutes,
		HolidayToleranceEnabled:     dto.HolidayToleranceEnabled,

		EmergencyOverrideAllowed:         dto.EmergencyOverrideAllowed,
		EmergencyAllowedRoles:            dto.EmergencyAllowedRoles,
		EmergencyOverrideDurationMinutes: dto.EmergencyOverrideDurationMinutes,

		IsActive: true,
	}
	if dto.IsActive != nil {
		r.IsActive = *dto.IsActive
	}
	return r
}

func dateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// atTimeOfDay anchors an "HH:MM" clock string on the given date.
func atTimeOfDay(date time.Time, clock string) (time.Time, bool) {
	parsed, err := time.Parse("15:04", clock)
	if err != nil {
		return time.Time{}, false
	}
	return time.Date(date.Year(), date.Month(), date.Day(),
		parsed.Hour(), parsed.Minute(), 0, 0, date.Location()), true
}
