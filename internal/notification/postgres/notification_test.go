package postgres_test

import (
	"testing"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/yakey01/dokterku-sub009/internal/notification"
	notificationPostgres "github.com/yakey01/dokterku-sub009/internal/notification/postgres"
)

func TestNotificationPostgres(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Notification Postgres Suite")
}

var _ = Describe("Notification Repository", func() {
	var (
		db   *gorm.DB
		repo *notificationPostgres.NotificationRepository
	)

	BeforeEach(func() {
		var err error
		db, err = gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
			Logger: logger.Default.LogMode(logger.Silent),
		})
		Expect(err).NotTo(HaveOccurred())

		Expect(db.AutoMigrate(&notification.Notification{})).To(Succeed())

		repo = notificationPostgres.NewNotificationRepository(db)
	})

	Describe("GetForRecipient", func() {
		It("returns role-wide and directly addressed notifications", func() {
			userID := int64(3)
			otherID := int64(9)

			Expect(repo.Create(&notification.Notification{RecipientRole: "bendahara", Title: "role wide"})).To(Succeed())
			Expect(repo.Create(&notification.Notification{RecipientUserID: &userID, Title: "direct"})).To(Succeed())
			Expect(repo.Create(&notification.Notification{RecipientUserID: &otherID, Title: "someone else"})).To(Succeed())
			Expect(repo.Create(&notification.Notification{RecipientRole: "petugas", Title: "other role"})).To(Succeed())

			got, err := repo.GetForRecipient(userID, "bendahara", 10, 0)

			Expect(err).NotTo(HaveOccurred())
			Expect(got).To(HaveLen(2))
		})
	})

	Describe("CountUnread and MarkRead", func() {
		It("counts only unread notifications for the recipient", func() {
			userID := int64(3)
			n := &notification.Notification{RecipientUserID: &userID, Title: "direct"}
			Expect(repo.Create(n)).To(Succeed())
			Expect(repo.Create(&notification.Notification{RecipientRole: "bendahara", Title: "role wide"})).To(Succeed())

			count, err := repo.CountUnread(userID, "bendahara")
			Expect(err).NotTo(HaveOccurred())
			Expect(count).To(Equal(int64(2)))

			Expect(repo.MarkRead(n.ID, time.Now())).To(Succeed())

			count, err = repo.CountUnread(userID, "bendahara")
			Expect(err).NotTo(HaveOccurred())
			Expect(count).To(Equal(int64(1)))

			read, err := repo.GetByID(n.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(read.IsRead).To(BeTrue())
			Expect(read.ReadAt).NotTo(BeNil())
		})
	})

	Describe("GetByID", func() {
		It("returns the sentinel for a missing notification", func() {
			_, err := repo.GetByID(9999)
			Expect(err).To(MatchError(notification.ErrNotificationNotFound))
		})
	})
})
