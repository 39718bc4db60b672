package attendance_test

import (
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/yakey01/dokterku-sub009/internal/attendance"
)

func TestAttendance(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Attendance Suite")
}

var _ = Describe("Geofence", func() {
	// Klinik Dokterku, Yogyakarta
	clinic := &attendance.WorkLocation{
		Name:                      "Klinik Utama",
		Latitude:                  -7.7956,
		Longitude:                 110.3695,
		RadiusMeters:              100,
		GPSAccuracyRequiredMeters: 50,
		IsActive:                  true,
	}

	Describe("DistanceMeters", func() {
		It("is zero for identical coordinates", func() {
			d := attendance.DistanceMeters(-7.7956, 110.3695, -7.7956, 110.3695)
			Expect(d).To(BeNumerically("~", 0, 0.001))
		})

		It("measures roughly 111km per degree of latitude", func() {
			d := attendance.DistanceMeters(0, 110, 1, 110)
			Expect(d).To(BeNumerically("~", 111195, 200))
		})

		It("is symmetric", func() {
			a := attendance.DistanceMeters(-7.7956, 110.3695, -7.8014, 110.3644)
			b := attendance.DistanceMeters(-7.8014, 110.3644, -7.7956, 110.3695)
			Expect(a).To(BeNumerically("~", b, 0.001))
		})
	})

	Describe("IsWithinGeofence", func() {
		It("accepts a position at the center", func() {
			within, distance := clinic.IsWithinGeofence(-7.7956, 110.3695)
			Expect(within).To(BeTrue())
			Expect(distance).To(BeNumerically("<", 1))
		})

		It("accepts a position just inside the radius", func() {
			// ~55m east of center
			within, distance := clinic.IsWithinGeofence(-7.7956, 110.3700)
			Expect(within).To(BeTrue())
			Expect(distance).To(BeNumerically("<", 100))
		})

		It("rejects a position outside the radius", func() {
			// ~780m away
			within, distance := clinic.IsWithinGeofence(-7.8014, 110.3644)
			Expect(within).To(BeFalse())
			Expect(distance).To(BeNumerically(">", 100))
		})
	})

	Describe("MeetsAccuracy", func() {
		It("accepts accuracy at or under the threshold", func() {
			Expect(clinic.MeetsAccuracy(50)).To(BeTrue())
			Expect(clinic.MeetsAccuracy(10)).To(BeTrue())
		})

		It("rejects accuracy over the threshold", func() {
			Expect(clinic.MeetsAccuracy(80)).To(BeFalse())
		})

		It("disables the check when no threshold is configured", func() {
			open := &attendance.WorkLocation{GPSAccuracyRequiredMeters: 0}
			Expect(open.MeetsAccuracy(500)).To(BeTrue())
		})
	})
})
