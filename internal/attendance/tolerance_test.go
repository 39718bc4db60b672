package attendance_test

import (
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/yakey01/dokterku-sub009/internal/attendance"
)

func strPtr(s string) *string { return &s }

var _ = Describe("ToleranceRule resolver", func() {
	location := &attendance.WorkLocation{
		ID:                       5,
		CheckinToleranceMinutes:  15,
		CheckoutToleranceMinutes: 10,
	}

	rule := func(id int64, scopeType string, scopeValue *string, priority, lateMinutes int) *attendance.ToleranceRule {
		return &attendance.ToleranceRule{
			ID:                            id,
			Name:                          scopeType,
			ScopeType:                     scopeType,
			ScopeValue:                    scopeValue,
			Priority:                      priority,
			CheckinEarlyToleranceMinutes:  30,
			CheckinLateToleranceMinutes:   lateMinutes,
			CheckinToleranceEnabled:       true,
			CheckoutEarlyToleranceMinutes: 15,
			CheckoutLateToleranceMinutes:  60,
			CheckoutToleranceEnabled:      true,
			IsActive:                      true,
		}
	}

	It("falls back to the location's own tolerance when no rule matches", func() {
		resolved := attendance.ResolveTolerance(nil, 7, "paramedis", location, attendance.DayWeekday)

		Expect(resolved.RuleID).To(BeNil())
		Expect(resolved.CheckinLate).To(Equal(15))
		Expect(resolved.CheckoutEarly).To(Equal(10))
	})

	It("resolves built-in defaults when there is no location either", func() {
		resolved := attendance.ResolveTolerance(nil, 7, "paramedis", nil, attendance.DayWeekday)

		Expect(resolved.RuleID).To(BeNil())
		Expect(resolved.CheckinEarly).To(Equal(30))
		Expect(resolved.CheckinLate).To(Equal(15))
		Expect(resolved.CheckoutEarly).To(Equal(15))
		Expect(resolved.CheckoutLate).To(Equal(60))
	})

	It("picks the lowest priority number among matching rules", func() {
		rules := []*attendance.ToleranceRule{
			rule(1, attendance.ScopeGlobal, nil, 100, 10),
			rule(2, attendance.ScopeRole, strPtr("paramedis"), 50, 20),
		}

		resolved := attendance.ResolveTolerance(rules, 7, "paramedis", location, attendance.DayWeekday)

		Expect(*resolved.RuleID).To(Equal(int64(2)))
		Expect(resolved.CheckinLate).To(Equal(20))
	})

	It("ignores rules scoped to another role or user", func() {
		rules := []*attendance.ToleranceRule{
			rule(1, attendance.ScopeGlobal, nil, 100, 10),
			rule(2, attendance.ScopeRole, strPtr("dokter"), 10, 45),
			rule(3, attendance.ScopeUser, strPtr("99"), 5, 60),
		}

		resolved := attendance.ResolveTolerance(rules, 7, "paramedis", location, attendance.DayWeekday)

		Expect(*resolved.RuleID).To(Equal(int64(1)))
		Expect(resolved.CheckinLate).To(Equal(10))
	})

	It("breaks priority ties by scope specificity: user > location > role > global", func() {
		rules := []*attendance.ToleranceRule{
			rule(1, attendance.ScopeGlobal, nil, 50, 10),
			rule(2, attendance.ScopeRole, strPtr("paramedis"), 50, 20),
			rule(3, attendance.ScopeLocation, strPtr("5"), 50, 25),
			rule(4, attendance.ScopeUser, strPtr("7"), 50, 30),
		}

		resolved := attendance.ResolveTolerance(rules, 7, "paramedis", location, attendance.DayWeekday)

		Expect(*resolved.RuleID).To(Equal(int64(4)))
		Expect(resolved.CheckinLate).To(Equal(30))
	})

	It("ignores inactive rules", func() {
		inactive := rule(1, attendance.ScopeUser, strPtr("7"), 1, 60)
		inactive.IsActive = false
		rules := []*attendance.ToleranceRule{
			inactive,
			rule(2, attendance.ScopeGlobal, nil, 100, 10),
		}

		resolved := attendance.ResolveTolerance(rules, 7, "paramedis", location, attendance.DayWeekday)

		Expect(*resolved.RuleID).To(Equal(int64(2)))
	})

	It("applies the weekend override when enabled on the winning rule", func() {
		weekend := rule(1, attendance.ScopeGlobal, nil, 10, 15)
		weekend.WeekendToleranceEnabled = true
		weekend.WeekendLateToleranceMinutes = 45

		resolved := attendance.ResolveTolerance([]*attendance.ToleranceRule{weekend}, 7, "paramedis", location, attendance.DayWeekend)

		Expect(resolved.CheckinLate).To(Equal(45))
	})

	It("does not apply a disabled weekend override", func() {
		weekend := rule(1, attendance.ScopeGlobal, nil, 10, 15)
		weekend.WeekendLateToleranceMinutes = 45

		resolved := attendance.ResolveTolerance([]*attendance.ToleranceRule{weekend}, 7, "paramedis", location, attendance.DayWeekend)

		Expect(resolved.CheckinLate).To(Equal(15))
	})

	It("applies the holiday override when enabled", func() {
		holiday := rule(1, attendance.ScopeGlobal, nil, 10, 15)
		holiday.HolidayToleranceEnabled = true
		holiday.HolidayLateToleranceMinutes = 90

		resolved := attendance.ResolveTolerance([]*attendance.ToleranceRule{holiday}, 7, "paramedis", location, attendance.DayHoliday)

		Expect(resolved.CheckinLate).To(Equal(90))
	})

	It("zeroes the check-in window when check-in tolerance is disabled", func() {
		disabled := rule(1, attendance.ScopeGlobal, nil, 10, 15)
		disabled.CheckinToleranceEnabled = false

		resolved := attendance.ResolveTolerance([]*attendance.ToleranceRule{disabled}, 7, "paramedis", location, attendance.DayWeekday)

		Expect(resolved.CheckinEarly).To(Equal(0))
		Expect(resolved.CheckinLate).To(Equal(0))
	})

	Describe("AllowsEmergencyOverride", func() {
		It("matches roles in the comma-separated list", func() {
			r := &attendance.ToleranceRule{
				EmergencyOverrideAllowed: true,
				EmergencyAllowedRoles:    "dokter, paramedis",
			}
			Expect(r.AllowsEmergencyOverride("paramedis")).To(BeTrue())
			Expect(r.AllowsEmergencyOverride("petugas")).To(BeFalse())
		})

		It("never allows when the override is off", func() {
			r := &attendance.ToleranceRule{EmergencyAllowedRoles: "dokter"}
			Expect(r.AllowsEmergencyOverride("dokter")).To(BeFalse())
		})
	})

	Describe("DayKindFor", func() {
		It("classifies weekdays, weekends and holidays", func() {
			monday := time.Date(2024, 8, 19, 8, 0, 0, 0, time.UTC)
			saturday := time.Date(2024, 8, 24, 8, 0, 0, 0, time.UTC)

			Expect(attendance.DayKindFor(monday, false)).To(Equal(attendance.DayWeekday))
			Expect(attendance.DayKindFor(saturday, false)).To(Equal(attendance.DayWeekend))
			Expect(attendance.DayKindFor(monday, true)).To(Equal(attendance.DayHoliday))
		})
	})
})
