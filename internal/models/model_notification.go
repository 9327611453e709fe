package models

import (
	"time"

	"gorm.io/datatypes"

	"github.com/inkwell-labs/inkwell/pkg/types"
)

// Notification is a user-facing record written by the notification emitter
// when a plan or payment transition happens. Only the read flag mutates after
// creation.
type Notification struct {
	ID        string                 `gorm:"column:id;type:uuid;primary_key" json:"id"`
	UserID    string                 `gorm:"column:user_id;type:uuid;not null;index:idx_notification_user_created,priority:1;index:idx_notification_user_unread,priority:1" json:"user_id"`
	Type      types.NotificationType `gorm:"column:type;type:varchar(64);not null;index" json:"type"`
	Title     string                 `gorm:"column:title;type:varchar(200);not null" json:"title"`
	Message   string                 `gorm:"column:message;type:text;not null" json:"message"`
	Data      datatypes.JSONMap      `gorm:"column:data;type:jsonb;default:'{}'" json:"data"`
	IsRead    bool                   `gorm:"column:is_read;not null;default:false;index:idx_notification_user_unread,priority:2" json:"is_read"`
	ReadAt    *time.Time             `gorm:"column:read_at;default:null" json:"read_at"`
	CreatedAt time.Time              `gorm:"index:idx_notification_user_created,priority:2" json:"created_at"`
}

func (Notification) TableName() string { return "notification" }
