package user

import (
	"errors"
	"testing"
	"time"

	"github.com/onsi/ginkgo/v2"
	"github.com/onsi/gomega"
)

func TestUser(t *testing.T) {
	gomega.RegisterFailHandler(ginkgo.Fail)
	ginkgo.RunSpecs(t, "User Module Suite")
}

type mockUserRepo struct {
	users map[int64]*User
	perms map[int64][]string
	err   error
}

func (m *mockUserRepo) GetByID(userID int64) (*User, error) {
	if m.err != nil {
		return nil, m.err
	}
	u, ok := m.users[userID]
	if !ok {
		return nil, ErrNotFound
	}
	copied := *u
	return &copied, nil
}

func (m *mockUserRepo) GetPermissions(userID int64) ([]string, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.perms[userID], nil
}

var _ = ginkgo.Describe("User Service", func() {
	var (
		service  *Service
		mockRepo *mockUserRepo
		now      time.Time
	)

	ginkgo.BeforeEach(func() {
		now = time.Date(2024, 8, 20, 12, 0, 0, 0, time.UTC)
		mockRepo = &mockUserRepo{
			users: map[int64]*User{},
			perms: map[int64][]string{},
		}
		service = NewService(mockRepo)
		service.now = func() time.Time { return now }
	})

	ginkgo.Describe("GetByID", func() {
		ginkgo.It("attaches permissions to the returned user", func() {
			mockRepo.users[1] = &User{ID: 1, Email: "petugas@dokterku.id", Name: "Siti Petugas"}
			mockRepo.perms[1] = []string{"input_tindakan"}

			u, err := service.GetByID(1)

			gomega.Expect(err).ToNot(gomega.HaveOccurred())
			gomega.Expect(u.Permissions).To(gomega.Equal([]string{"input_tindakan"}))
		})

		ginkgo.It("wraps repository errors", func() {
			mockRepo.err = errors.New("db down")

			_, err := service.GetByID(1)
			gomega.Expect(err).To(gomega.HaveOccurred())
		})
	})

	ginkgo.Describe("SecurityScore", func() {
		ginkgo.It("starts from the base score", func() {
			created := now.Add(-10 * 24 * time.Hour)
			gomega.Expect(SecurityScore(nil, created, now)).To(gomega.Equal(80))
		})

		ginkgo.It("adds the recent-login bonus", func() {
			created := now.Add(-10 * 24 * time.Hour)
			lastLogin := now.Add(-2 * 24 * time.Hour)
			gomega.Expect(SecurityScore(&lastLogin, created, now)).To(gomega.Equal(90))
		})

		ginkgo.It("ignores a stale login", func() {
			created := now.Add(-10 * 24 * time.Hour)
			lastLogin := now.Add(-60 * 24 * time.Hour)
			gomega.Expect(SecurityScore(&lastLogin, created, now)).To(gomega.Equal(80))
		})

		ginkgo.It("adds the established-account bonus", func() {
			created := now.Add(-365 * 24 * time.Hour)
			gomega.Expect(SecurityScore(nil, created, now)).To(gomega.Equal(90))
		})

		ginkgo.It("clamps the combined score at 100", func() {
			created := now.Add(-365 * 24 * time.Hour)
			lastLogin := now.Add(-time.Hour)
			gomega.Expect(SecurityScore(&lastLogin, created, now)).To(gomega.Equal(100))
		})

		ginkgo.It("treats a zero creation time as no age bonus", func() {
			gomega.Expect(SecurityScore(nil, time.Time{}, now)).To(gomega.Equal(80))
		})
	})

	ginkgo.Describe("GetSecuritySummary", func() {
		ginkgo.It("builds the summary from the stored profile", func() {
			lastLogin := now.Add(-24 * time.Hour)
			mockRepo.users[2] = &User{
				ID:          2,
				CreatedAt:   now.Add(-200 * 24 * time.Hour),
				LastLoginAt: &lastLogin,
			}

			summary, err := service.GetSecuritySummary(2)

			gomega.Expect(err).ToNot(gomega.HaveOccurred())
			gomega.Expect(summary.Score).To(gomega.Equal(100))
			gomega.Expect(summary.LastLoginAt).ToNot(gomega.BeNil())
		})
	})
})
