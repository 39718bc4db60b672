package postgres_test

import (
	"testing"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/yakey01/dokterku-sub009/internal/attendance"
	attendancePostgres "github.com/yakey01/dokterku-sub009/internal/attendance/postgres"
)

func TestAttendancePostgres(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Attendance Postgres Suite")
}

var _ = Describe("Attendance Repository", func() {
	var (
		db   *gorm.DB
		repo *attendancePostgres.AttendanceRepository
	)

	BeforeEach(func() {
		var err error
		db, err = gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
			Logger: logger.Default.LogMode(logger.Silent),
		})
		Expect(err).NotTo(HaveOccurred())

		err = db.AutoMigrate(&attendance.Attendance{}, &attendance.WorkLocation{}, &attendance.ToleranceRule{})
		Expect(err).NotTo(HaveOccurred())

		repo = attendancePostgres.NewAttendanceRepository(db)
	})

	Describe("Attendance records", func() {
		day := time.Date(2024, 8, 20, 0, 0, 0, 0, time.UTC)

		It("finds the record for a user and date", func() {
			a := &attendance.Attendance{
				UserID:         7,
				WorkLocationID: 1,
				Date:           day,
				TimeIn:         day.Add(7 * time.Hour),
				Status:         attendance.StatusHadir,
			}
			Expect(repo.CreateAttendance(a)).To(Succeed())

			found, err := repo.GetAttendanceForDate(7, day)
			Expect(err).NotTo(HaveOccurred())
			Expect(found).NotTo(BeNil())
			Expect(found.Status).To(Equal(attendance.StatusHadir))
		})

		It("returns nil without error when nothing matches", func() {
			found, err := repo.GetAttendanceForDate(7, day)
			Expect(err).NotTo(HaveOccurred())
			Expect(found).To(BeNil())
		})

		It("persists a check-out on update", func() {
			a := &attendance.Attendance{
				UserID:         7,
				WorkLocationID: 1,
				Date:           day,
				TimeIn:         day.Add(7 * time.Hour),
				Status:         attendance.StatusHadir,
			}
			Expect(repo.CreateAttendance(a)).To(Succeed())

			out := day.Add(15 * time.Hour)
			a.TimeOut = &out
			a.CheckoutStatus = attendance.StatusTepatWaktu
			Expect(repo.UpdateAttendance(a)).To(Succeed())

			found, err := repo.GetAttendanceForDate(7, day)
			Expect(err).NotTo(HaveOccurred())
			Expect(found.TimeOut).NotTo(BeNil())
			Expect(found.CheckoutStatus).To(Equal(attendance.StatusTepatWaktu))
		})

		It("orders history newest first", func() {
			earlier := day.AddDate(0, 0, -1)
			Expect(repo.CreateAttendance(&attendance.Attendance{UserID: 7, WorkLocationID: 1, Date: earlier, TimeIn: earlier.Add(7 * time.Hour)})).To(Succeed())
			Expect(repo.CreateAttendance(&attendance.Attendance{UserID: 7, WorkLocationID: 1, Date: day, TimeIn: day.Add(7 * time.Hour)})).To(Succeed())

			history, err := repo.GetAttendanceHistory(7, 10, 0)
			Expect(err).NotTo(HaveOccurred())
			Expect(history).To(HaveLen(2))
			Expect(history[0].Date.Equal(day)).To(BeTrue())
		})
	})

	Describe("Work locations", func() {
		It("round-trips a location and soft-deletes it", func() {
			loc := &attendance.WorkLocation{
				Name:         "Klinik Dokterku Pusat",
				Latitude:     -7.7956,
				Longitude:    110.3695,
				RadiusMeters: 100,
				IsActive:     true,
			}
			Expect(repo.CreateWorkLocation(loc)).To(Succeed())

			loaded, err := repo.GetWorkLocationByID(loc.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(loaded.Name).To(Equal("Klinik Dokterku Pusat"))

			Expect(repo.DeleteWorkLocation(loc.ID)).To(Succeed())

			_, err = repo.GetWorkLocationByID(loc.ID)
			Expect(err).To(MatchError(attendance.ErrWorkLocationNotFound))

			var total int64
			Expect(db.Unscoped().Model(&attendance.WorkLocation{}).Count(&total).Error).To(Succeed())
			Expect(total).To(Equal(int64(1)))
		})

		It("keeps a location created inactive inactive", func() {
			loc := &attendance.WorkLocation{
				Name:      "Cabang Ditutup",
				Latitude:  -7.8,
				Longitude: 110.4,
				IsActive:  false,
			}
			Expect(repo.CreateWorkLocation(loc)).To(Succeed())

			loaded, err := repo.GetWorkLocationByID(loc.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(loaded.IsActive).To(BeFalse())
		})
	})

	Describe("Tolerance rules", func() {
		It("returns only active rules ordered by priority", func() {
			Expect(repo.CreateToleranceRule(&attendance.ToleranceRule{Name: "late", Priority: 50, IsActive: true})).To(Succeed())
			Expect(repo.CreateToleranceRule(&attendance.ToleranceRule{Name: "early", Priority: 10, IsActive: true})).To(Succeed())
			Expect(repo.CreateToleranceRule(&attendance.ToleranceRule{Name: "off", Priority: 1, IsActive: false})).To(Succeed())

			rules, err := repo.GetActiveToleranceRules()
			Expect(err).NotTo(HaveOccurred())
			Expect(rules).To(HaveLen(2))
			Expect(rules[0].Name).To(Equal("early"))
		})

		It("persists disabled flags instead of resurrecting them as true", func() {
			Expect(repo.CreateToleranceRule(&attendance.ToleranceRule{
				Name:                     "dormant",
				Priority:                 5,
				CheckinToleranceEnabled:  false,
				CheckoutToleranceEnabled: false,
				IsActive:                 false,
			})).To(Succeed())

			var stored attendance.ToleranceRule
			Expect(db.First(&stored, "name = ?", "dormant").Error).NotTo(HaveOccurred())
			Expect(stored.IsActive).To(BeFalse())
			Expect(stored.CheckinToleranceEnabled).To(BeFalse())
			Expect(stored.CheckoutToleranceEnabled).To(BeFalse())
		})

		It("returns the sentinel for a missing rule", func() {
			_, err := repo.GetToleranceRuleByID(9999)
			Expect(err).To(MatchError(attendance.ErrToleranceRuleNotFound))
		})
	})
})
