package attendance

import (
	"sort"
	"strconv"
	"strings"
	"time"

	"gorm.io/gorm"
)

// Tolerance rule scopes, from least to most specific.
const (
	ScopeGlobal   = "global"
	ScopeRole     = "role"
	ScopeLocation = "location"
	ScopeUser     = "user"
)

// DayKind classifies the attendance day for override selection.
type DayKind string

const (
	DayWeekday DayKind = "weekday"
	DayWeekend DayKind = "weekend"
	DayHoliday DayKind = "holiday"
)

// ToleranceRule configures how far off the shift window a check-in or
// check-out may be before it is classified late or early-leave. Rules are
// scoped; lower priority wins, more specific scope breaks ties.
type ToleranceRule struct {
	ID         int64   `json:"id" gorm:"primaryKey"`
	Name       string  `json:"name" gorm:"not null"`
	ScopeType  string  `json:"scope_type" gorm:"column:scope_type;default:global"`
	ScopeValue *string `json:"scope_value,omitempty" gorm:"column:scope_value"`
	Priority   int     `json:"priority" gorm:"default:100"`

	CheckinEarlyToleranceMinutes int  `json:"checkin_early_tolerance_minutes" gorm:"column:checkin_early_tolerance_minutes;default:30"`
	CheckinLateToleranceMinutes  int  `json:"checkin_late_tolerance_minutes" gorm:"column:checkin_late_tolerance_minutes;default:15"`
	CheckinToleranceEnabled      bool `json:"checkin_tolerance_enabled" gorm:"column:checkin_tolerance_enabled"`

	CheckoutEarlyToleranceMinutes int  `json:"checkout_early_tolerance_minutes" gorm:"column:checkout_early_tolerance_minutes;default:15"`
	CheckoutLateToleranceMinutes  int  `json:"checkout_late_tolerance_minutes" gorm:"column:checkout_late_tolerance_minutes;default:60"`
	CheckoutToleranceEnabled      bool `json:"checkout_tolerance_enabled" gorm:"column:checkout_tolerance_enabled"`

	WeekendLateToleranceMinutes int  `json:"weekend_late_tolerance_minutes" gorm:"column:weekend_late_tolerance_minutes"`
	WeekendToleranceEnabled     bool `json:"weekend_tolerance_enabled" gorm:"column:weekend_tolerance_enabled"`
	HolidayLateToleranceMinutes int  `json:"holiday_late_tolerance_minutes" gorm:"column:holiday_late_tolerance_minutes"`
	HolidayToleranceEnabled     bool `json:"holiday_tolerance_enabled" gorm:"column:holiday_tolerance_enabled"`

	EmergencyOverrideAllowed         bool   `json:"emergency_override_allowed" gorm:"column:emergency_override_allowed"`
	EmergencyAllowedRoles            string `json:"emergency_allowed_roles,omitempty" gorm:"column:emergency_allowed_roles"`
	EmergencyOverrideDurationMinutes int    `json:"emergency_override_duration_minutes" gorm:"column:emergency_override_duration_minutes"`

	// No gorm default tag: GORM would omit an explicit false from the
	// INSERT and the rule could never be created disabled.
	IsActive  bool           `json:"is_active"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`
}

func (ToleranceRule) TableName() string {
	return "tolerance_rules"
}

// AllowsEmergencyOverride reports whether the role may claim the emergency
// extension this rule configures.
func (r *ToleranceRule) AllowsEmergencyOverride(role string) bool {
	if !r.EmergencyOverrideAllowed {
		return false
	}
	for _, allowed := range strings.Split(r.EmergencyAllowedRoles, ",") {
		if strings.TrimSpace(allowed) == role {
			return true
		}
	}
	return false
}

func scopeSpecificity(scopeType string) int {
	switch scopeType {
	case ScopeUser:
		return 3
	case ScopeLocation:
		return 2
	case ScopeRole:
		return 1
	default:
		return 0
	}
}

// matches reports whether the rule applies to the given subject. Global
// rules always match; scoped rules require a scope_value match.
func (r *ToleranceRule) matches(userID int64, role string, locationID *int64) bool {
	if !r.IsActive {
		return false
	}
	switch r.ScopeType {
	case ScopeGlobal:
		return true
	case ScopeRole:
		return r.ScopeValue != nil && *r.ScopeValue == role
	case ScopeUser:
		return r.ScopeValue != nil && *r.ScopeValue == strconv.FormatInt(userID, 10)
	case ScopeLocation:
		return r.ScopeValue != nil && locationID != nil && *r.ScopeValue == strconv.FormatInt(*locationID, 10)
	}
	return false
}

// ResolvedTolerance is the effective window for one attendance event after
// rule selection and day-kind overrides.
type ResolvedTolerance struct {
	RuleID        *int64 `json:"rule_id,omitempty"`
	CheckinEarly  int    `json:"checkin_early_minutes"`
	CheckinLate   int    `json:"checkin_late_minutes"`
	CheckoutEarly int    `json:"checkout_early_minutes"`
	CheckoutLate  int    `json:"checkout_late_minutes"`
}

// defaultTolerance applies when no rule matches; the location's own
// tolerance columns take over, or the column defaults when there is no
// location either.
func defaultTolerance(location *WorkLocation) ResolvedTolerance {
	resolved := ResolvedTolerance{
		CheckinEarly:  30,
		CheckinLate:   15,
		CheckoutEarly: 15,
		CheckoutLate:  60,
	}
	if location != nil {
		resolved.CheckinLate = location.CheckinToleranceMinutes
		resolved.CheckoutEarly = location.CheckoutToleranceMinutes
	}
	return resolved
}

// ResolveTolerance selects the winning rule for a subject and day. Matching
// rules are ordered by priority ascending; on equal priority the more
// specific scope wins (user > location > role > global). Weekend and holiday
// late-tolerance overrides replace the check-in late window when enabled on
// the winning rule.
func ResolveTolerance(rules []*ToleranceRule, userID int64, role string, location *WorkLocation, day DayKind) ResolvedTolerance {
	var locationID *int64
	if location != nil {
		locationID = &location.ID
	}

	var matching []*ToleranceRule
	for _, r := range rules {
		if r.matches(userID, role, locationID) {
			matching = append(matching, r)
		}
	}

	if len(matching) == 0 {
		return defaultTolerance(location)
	}

	sort.SliceStable(matching, func(i, j int) bool {
		if matching[i].Priority != matching[j].Priority {
			return matching[i].Priority < matching[j].Priority
		}
		return scopeSpecificity(matching[i].ScopeType) > scopeSpecificity(matching[j].ScopeType)
	})

	winner := matching[0]
	resolved := ResolvedTolerance{
		RuleID:        &winner.ID,
		CheckoutEarly: winner.CheckoutEarlyToleranceMinutes,
		CheckoutLate:  winner.CheckoutLateToleranceMinutes,
	}
	if winner.CheckinToleranceEnabled {
		resolved.CheckinEarly = winner.CheckinEarlyToleranceMinutes
		resolved.CheckinLate = winner.CheckinLateToleranceMinutes
	}
	if !winner.CheckoutToleranceEnabled {
		resolved.CheckoutEarly = 0
		resolved.CheckoutLate = 0
	}

	switch day {
	case DayWeekend:
		if winner.WeekendToleranceEnabled {
			resolved.CheckinLate = winner.WeekendLateToleranceMinutes
		}
	case DayHoliday:
		if winner.HolidayToleranceEnabled {
			resolved.CheckinLate = winner.HolidayLateToleranceMinutes
		}
	}

	return resolved
}

// DayKindFor classifies a date; holiday detection is delegated to the
// caller's holiday source.
func DayKindFor(t time.Time, isHoliday bool) DayKind {
	if isHoliday {
		return DayHoliday
	}
	switch t.Weekday() {
	case time.Saturday, time.Sunday:
		return DayWeekend
	}
	return DayWeekday
}
