package notification

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Notification rows are addressed to a user account. Delivery is
// fire-and-forget: nothing in the system waits on a notification write.
type Notification struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	CreatedAt time.Time `gorm:"autoCreateTime;index" json:"created_at"`

	UserID  uuid.UUID `gorm:"column:user_id;type:uuid;not null;index" json:"user_id"`
	Message string    `gorm:"column:message;type:text;not null" json:"message"`
	IsRead  bool      `gorm:"column:is_read;default:false;index" json:"is_read"`
}

func (Notification) TableName() string {
	return "notifications"
}

func (n *Notification) BeforeCreate(tx *gorm.DB) error {
	if n.ID == uuid.Nil {
		n.ID = uuid.New()
	}
	return nil
}
