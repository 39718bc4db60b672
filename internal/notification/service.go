package notification

import (
	"log/slog"
	"time"

	internalerrors "github.com/yakey01/dokterku-sub009/internal"
)

// Repository defines the data access methods for notifications.
type Repository interface {
	Create(n *Notification) error
	GetByID(id int64) (*Notification, error)
	GetForRecipient(userID int64, role string, limit, offset int) ([]*Notification, error)
	CountUnread(userID int64, role string) (int64, error)
	MarkRead(id int64, readAt time.Time) error
}

// Service handles notification listing, read tracking and creation from
// domain events.
type Service struct {
	repo   Repository
	logger *slog.Logger
}

func NewService(repo Repository, logger *slog.Logger) *Service {
	return &Service{
		repo:   repo,
		logger: logger,
	}
}

func (s *Service) Notify(n *Notification) error {
	now := time.Now()
	n.CreatedAt = now
	n.UpdatedAt = now

	if err := s.repo.Create(n); err != nil {
		s.logger.Error("failed to persist notification",
			"error", err,
			"title", n.Title,
			"recipient_role", n.RecipientRole)
		return err
	}

	s.logger.Info("notification created",
		"notification_id", n.ID,
		"level", n.Level,
		"recipient_role", n.RecipientRole,
		"source_entity_type", n.SourceEntityType,
		"source_entity_id", n.SourceEntityID)
	return nil
}

func (s *Service) ListForUser(userID int64, role string, limit, offset int) ([]*Notification, error) {
	notifications, err := s.repo.GetForRecipient(userID, role, limit, offset)
	if err != nil {
		s.logger.Error("failed to list notifications", "error", err, "user_id", userID)
		return nil, err
	}
	return notifications, nil
}

func (s *Service) UnreadCount(userID int64, role string) (int64, error) {
	return s.repo.CountUnread(userID, role)
}

// MarkRead marks a notification read; only its addressee may do so.
func (s *Service) MarkRead(id, userID int64, role string) (*Notification, error) {
	n, err := s.repo.GetByID(id)
	if err != nil {
		return nil, ErrNotificationNotFound
	}

	if !n.ForUser(userID, role) {
		s.logger.Warn("unauthorized notification read attempt", "notification_id", id, "user_id", userID)
		return nil, internalerrors.ErrUnauthorizedAccess
	}

	if n.IsRead {
		return n, nil
	}

	now := time.Now()
	if err := s.repo.MarkRead(id, now); err != nil {
		s.logger.Error("failed to mark notification read", "error", err, "notification_id", id)
		return nil, err
	}

	n.IsRead = true
	n.ReadAt = &now
	return n, nil
}
