package attendance_test

import (
	"context"
	"log/slog"
	"os"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/yakey01/dokterku-sub009/internal/attendance"
	"github.com/yakey01/dokterku-sub009/internal/core/events"
)

// Mock repository for testing
type mockAttendanceRepository struct {
	attendances map[int64]*attendance.Attendance
	locations   map[int64]*attendance.WorkLocation
	rules       []*attendance.ToleranceRule
	nextID      int64
}

func newMockAttendanceRepository() *mockAttendanceRepository {
	return &mockAttendanceRepository{
		attendances: make(map[int64]*attendance.Attendance),
		locations:   make(map[int64]*attendance.WorkLocation),
		nextID:      1,
	}
}

func (m *mockAttendanceRepository) CreateAttendance(a *attendance.Attendance) error {
	a.ID = m.nextID
	m.nextID++
	m.attendances[a.ID] = a
	return nil
}

func (m *mockAttendanceRepository) UpdateAttendance(a *attendance.Attendance) error {
	m.attendances[a.ID] = a
	return nil
}

func (m *mockAttendanceRepository) GetAttendanceForDate(userID int64, date time.Time) (*attendance.Attendance, error) {
	for _, a := range m.attendances {
		if a.UserID == userID && a.Date.Equal(date) {
			return a, nil
		}
	}
	return nil, nil
}

func (m *mockAttendanceRepository) GetAttendanceHistory(userID int64, limit, offset int) ([]*attendance.Attendance, error) {
	var out []*attendance.Attendance
	for _, a := range m.attendances {
		if a.UserID == userID {
			out = append(out, a)
		}
	}
	return out, nil
}

func (m *mockAttendanceRepository) CreateWorkLocation(w *attendance.WorkLocation) error {
	w.ID = m.nextID
	m.nextID++
	m.locations[w.ID] = w
	return nil
}

func (m *mockAttendanceRepository) GetWorkLocationByID(id int64) (*attendance.WorkLocation, error) {
	w, exists := m.locations[id]
	if !exists {
		return nil, attendance.ErrWorkLocationNotFound
	}
	return w, nil
}

func (m *mockAttendanceRepository) GetAllWorkLocations() ([]*attendance.WorkLocation, error) {
	var out []*attendance.WorkLocation
	for _, w := range m.locations {
		out = append(out, w)
	}
	return out, nil
}

func (m *mockAttendanceRepository) UpdateWorkLocation(w *attendance.WorkLocation) error {
	m.locations[w.ID] = w
	return nil
}

func (m *mockAttendanceRepository) DeleteWorkLocation(id int64) error {
	delete(m.locations, id)
	return nil
}

func (m *mockAttendanceRepository) CreateToleranceRule(r *attendance.ToleranceRule) error {
	r.ID = m.nextID
	m.nextID++
	m.rules = append(m.rules, r)
	return nil
}

func (m *mockAttendanceRepository) GetToleranceRuleByID(id int64) (*attendance.ToleranceRule, error) {
	for _, r := range m.rules {
		if r.ID == id {
			return r, nil
		}
	}
	return nil, attendance.ErrToleranceRuleNotFound
}

func (m *mockAttendanceRepository) GetAllToleranceRules() ([]*attendance.ToleranceRule, error) {
	return m.rules, nil
}

func (m *mockAttendanceRepository) GetActiveToleranceRules() ([]*attendance.ToleranceRule, error) {
	var out []*attendance.ToleranceRule
	for _, r := range m.rules {
		if r.IsActive {
			out = append(out, r)
		}
	}
	return out, nil
}

func (m *mockAttendanceRepository) UpdateToleranceRule(r *attendance.ToleranceRule) error {
	for i, existing := range m.rules {
		if existing.ID == r.ID {
			m.rules[i] = r
		}
	}
	return nil
}

func (m *mockAttendanceRepository) DeleteToleranceRule(id int64) error {
	for i, r := range m.rules {
		if r.ID == id {
			m.rules = append(m.rules[:i], m.rules[i+1:]...)
			return nil
		}
	}
	return nil
}

// Mock event publisher for testing
type mockAttendancePublisher struct {
	published []events.Event
}

func (m *mockAttendancePublisher) Publish(ctx context.Context, event events.Event) error {
	m.published = append(m.published, event)
	return nil
}

var _ = Describe("AttendanceService", func() {
	var (
		service   *attendance.Service
		mockRepo  *mockAttendanceRepository
		publisher *mockAttendancePublisher
		ctx       context.Context
		clinic    *attendance.WorkLocation
	)

	userID := int64(7)
	role := "paramedis"

	// Tuesday 08:10 local; shift windows below are relative to this instant
	now := time.Date(2024, 8, 20, 8, 10, 0, 0, time.Local)

	shiftStartingAgo := func(ago time.Duration) string {
		return now.Add(-ago).Format("15:04")
	}

	BeforeEach(func() {
		mockRepo = newMockAttendanceRepository()
		publisher = &mockAttendancePublisher{}
		logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
		ctx = context.Background()

		clinic = &attendance.WorkLocation{
			Name:                      "Klinik Utama",
			Latitude:                  -7.7956,
			Longitude:                 110.3695,
			RadiusMeters:              100,
			GPSAccuracyRequiredMeters: 50,
			ShiftStart:                shiftStartingAgo(10 * time.Minute),
			ShiftEnd:                  now.Add(8 * time.Hour).Format("15:04"),
			CheckinToleranceMinutes:   15,
			CheckoutToleranceMinutes:  15,
			IsActive:                  true,
		}
		Expect(mockRepo.CreateWorkLocation(clinic)).To(Succeed())

		service = attendance.NewService(mockRepo, nil, publisher, logger)
		service.SetClock(func() time.Time { return now })
	})

	insideDTO := func() attendance.CheckInDTO {
		return attendance.CheckInDTO{
			WorkLocationID: clinic.ID,
			Latitude:       -7.7956,
			Longitude:      110.3695,
			Accuracy:       10,
		}
	}

	Describe("CheckIn", func() {
		It("records an on-time check-in inside the geofence", func() {
			a, err := service.CheckIn(ctx, userID, role, insideDTO())

			Expect(err).ToNot(HaveOccurred())
			Expect(a.Status).To(Equal(attendance.StatusHadir))
			Expect(a.LocationValid).To(BeTrue())
			Expect(a.DistanceIn).To(BeNumerically("<", 1))
			Expect(publisher.published).To(HaveLen(1))
		})

		It("classifies a check-in past the late tolerance as terlambat", func() {
			clinic.ShiftStart = shiftStartingAgo(40 * time.Minute)
			Expect(mockRepo.UpdateWorkLocation(clinic)).To(Succeed())

			a, err := service.CheckIn(ctx, userID, role, insideDTO())

			Expect(err).ToNot(HaveOccurred())
			Expect(a.Status).To(Equal(attendance.StatusTerlambat))
		})

		It("rejects a position outside the geofence", func() {
			dto := insideDTO()
			dto.Latitude = -7.8014
			dto.Longitude = 110.3644

			_, err := service.CheckIn(ctx, userID, role, dto)
			Expect(err).To(Equal(attendance.ErrOutsideGeofence))
		})

		It("rejects a degraded GPS fix", func() {
			dto := insideDTO()
			dto.Accuracy = 120

			_, err := service.CheckIn(ctx, userID, role, dto)
			Expect(err).To(Equal(attendance.ErrAccuracyTooLow))
		})

		It("rejects a second check-in on the same day", func() {
			_, err := service.CheckIn(ctx, userID, role, insideDTO())
			Expect(err).ToNot(HaveOccurred())

			_, err = service.CheckIn(ctx, userID, role, insideDTO())
			Expect(err).To(Equal(attendance.ErrAlreadyCheckedIn))
		})

		It("rejects a check-in far before the shift window opens", func() {
			clinic.ShiftStart = now.Add(3 * time.Hour).Format("15:04")
			Expect(mockRepo.UpdateWorkLocation(clinic)).To(Succeed())

			_, err := service.CheckIn(ctx, userID, role, insideDTO())
			Expect(err).To(Equal(attendance.ErrOutsideShiftWindow))
		})

		It("uses a matching tolerance rule's late window", func() {
			clinic.ShiftStart = shiftStartingAgo(40 * time.Minute)
			Expect(mockRepo.UpdateWorkLocation(clinic)).To(Succeed())

			// a role rule with a generous late window keeps this on time
			roleValue := role
			Expect(mockRepo.CreateToleranceRule(&attendance.ToleranceRule{
				Name:                         "paramedis longgar",
				ScopeType:                    attendance.ScopeRole,
				ScopeValue:                   &roleValue,
				Priority:                     10,
				CheckinEarlyToleranceMinutes: 60,
				CheckinLateToleranceMinutes:  60,
				CheckinToleranceEnabled:      true,
				IsActive:                     true,
			})).To(Succeed())

			a, err := service.CheckIn(ctx, userID, role, insideDTO())

			Expect(err).ToNot(HaveOccurred())
			Expect(a.Status).To(Equal(attendance.StatusHadir))
			Expect(a.ToleranceRuleID).ToNot(BeNil())
		})
	})

	Describe("CheckOut", func() {
		It("flags leaving before the early-leave window as pulang cepat", func() {
			_, err := service.CheckIn(ctx, userID, role, insideDTO())
			Expect(err).ToNot(HaveOccurred())

			a, err := service.CheckOut(ctx, userID, role, attendance.CheckOutDTO{
				Latitude:  -7.7956,
				Longitude: 110.3695,
				Accuracy:  10,
			})

			Expect(err).ToNot(HaveOccurred())
			Expect(a.CheckedOut()).To(BeTrue())
			Expect(a.CheckoutStatus).To(Equal(attendance.StatusPulangCepat))
		})

		It("rejects check-out without an open check-in", func() {
			_, err := service.CheckOut(ctx, userID, role, attendance.CheckOutDTO{
				Latitude:  -7.7956,
				Longitude: 110.3695,
			})
			Expect(err).To(Equal(attendance.ErrNotCheckedIn))
		})
	})

	Describe("Today", func() {
		It("returns nil when nothing is recorded yet", func() {
			a, err := service.Today(userID)
			Expect(err).ToNot(HaveOccurred())
			Expect(a).To(BeNil())
		})

		It("returns today's record after check-in", func() {
			created, err := service.CheckIn(ctx, userID, role, insideDTO())
			Expect(err).ToNot(HaveOccurred())

			a, err := service.Today(userID)
			Expect(err).ToNot(HaveOccurred())
			Expect(a).ToNot(BeNil())
			Expect(a.ID).To(Equal(created.ID))
		})
	})
})
