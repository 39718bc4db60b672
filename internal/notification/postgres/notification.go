package postgres

import (
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/yakey01/dokterku-sub009/internal/notification"
)

// NotificationRepository implements notification.Repository using GORM.
type NotificationRepository struct {
	db *gorm.DB
}

func NewNotificationRepository(db *gorm.DB) *NotificationRepository {
	return &NotificationRepository{db: db}
}

func (r *NotificationRepository) Create(n *notification.Notification) error {
	return r.db.Create(n).Error
}

func (r *NotificationRepository) GetByID(id int64) (*notification.Notification, error) {
	var n notification.Notification
	err := r.db.Where("id = ?", id).First(&n).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, notification.ErrNotificationNotFound
		}
		return nil, err
	}
	return &n, nil
}

func (r *NotificationRepository) GetForRecipient(userID int64, role string, limit, offset int) ([]*notification.Notification, error) {
	var notifications []*notification.Notification
	err := r.db.
		Where("recipient_user_id = ? OR (recipient_user_id IS NULL AND recipient_role = ?)", userID, role).
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&notifications).Error
	return notifications, err
}

func (r *NotificationRepository) CountUnread(userID int64, role string) (int64, error) {
	var count int64
	err := r.db.Model(&notification.Notification{}).
		Where("is_read = ?", false).
		Where("recipient_user_id = ? OR (recipient_user_id IS NULL AND recipient_role = ?)", userID, role).
		Count(&count).Error
	return count, err
}

func (r *NotificationRepository) MarkRead(id int64, readAt time.Time) error {
	return r.db.Model(&notification.Notification{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"is_read":    true,
			"read_at":    readAt,
			"updated_at": time.Now(),
		}).Error
}
