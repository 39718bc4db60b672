package user

import (
	"fmt"
	"time"
)

type Repository interface {
	GetByID(userID int64) (*User, error)
	GetPermissions(userID int64) ([]string, error)
}

type Service struct {
	repo Repository
	now  func() time.Time
}

func NewService(repo Repository) *Service {
	return &Service{
		repo: repo,
		now:  time.Now,
	}
}

func (s *Service) GetByID(userID int64) (*User, error) {
	u, err := s.repo.GetByID(userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get user by id: %w", err)
	}

	perms, err := s.repo.GetPermissions(userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get user permissions: %w", err)
	}
	u.Permissions = perms

	return u, nil
}

// GetSecuritySummary returns the account security heuristic for a profile page.
func (s *Service) GetSecuritySummary(userID int64) (*SecuritySummary, error) {
	u, err := s.repo.GetByID(userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get user by id: %w", err)
	}

	return &SecuritySummary{
		Score:       SecurityScore(u.LastLoginAt, u.CreatedAt, s.now()),
		LastLoginAt: u.LastLoginAt,
		MemberSince: u.CreatedAt,
	}, nil
}
