package notification

import (
	"time"

	internalerrors "github.com/yakey01/dokterku-sub009/internal"
)

// Notification levels.
const (
	LevelInfo    = "info"
	LevelWarning = "warning"
)

// Notification is a persistent in-app message targeted at a role or a
// specific user. Role-targeted notifications reach every user holding the
// role.
type Notification struct {
	ID               int64      `json:"id" gorm:"primaryKey"`
	RecipientRole    string     `json:"recipient_role,omitempty" gorm:"column:recipient_role"`
	RecipientUserID  *int64     `json:"recipient_user_id,omitempty" gorm:"column:recipient_user_id"`
	Level            string     `json:"level" gorm:"default:info"`
	Title            string     `json:"title" gorm:"not null"`
	Body             string     `json:"body"`
	SourceEntityType string     `json:"source_entity_type,omitempty" gorm:"column:source_entity_type"`
	SourceEntityID   int64      `json:"source_entity_id,omitempty" gorm:"column:source_entity_id"`
	IsRead           bool       `json:"is_read" gorm:"column:is_read;default:false"`
	ReadAt           *time.Time `json:"read_at,omitempty" gorm:"column:read_at"`
	CreatedAt        time.Time  `json:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at"`
}

func (Notification) TableName() string {
	return "notifications"
}

// ForUser reports whether the notification is addressed to the given user,
// either directly or through their role.
func (n *Notification) ForUser(userID int64, role string) bool {
	if n.RecipientUserID != nil {
		return *n.RecipientUserID == userID
	}
	return n.RecipientRole != "" && n.RecipientRole == role
}

var ErrNotificationNotFound = internalerrors.ErrNotificationNotFound
