package domain

import (
	"time"

	"github.com/google/uuid"
)

// Message belongs to exactly one chat. MessageID is the opaque token handed
// to clients; display order is created_at descending, served off the
// (chat_id, created_at) index.
type Message struct {
	ID        uuid.UUID   `gorm:"type:uuid;primaryKey" json:"id"`
	MessageID string      `gorm:"type:text;not null;uniqueIndex:idx_messages_message_id" json:"message_id"`
	ChatID    uuid.UUID   `gorm:"type:uuid;not null;index:idx_messages_chat_created,priority:1" json:"chat_id"`
	SenderID  uuid.UUID   `gorm:"type:uuid;not null" json:"sender_id"`
	Content   string      `gorm:"type:text;not null" json:"content"`
	Type      MessageType `gorm:"type:text;not null;default:'text'" json:"type"`
	MediaURL  *string     `gorm:"type:text" json:"media_url,omitempty"`
	CreatedAt time.Time   `gorm:"default:CURRENT_TIMESTAMP;index:idx_messages_chat_created,priority:2,sort:desc" json:"created_at"`
	UpdatedAt time.Time   `gorm:"default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// Media links a non-text message to its binary asset. ObjectKey is the S3
// key when the asset lives in our bucket; the row is deleted with its
// owning message.
type Media struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	MessageID   uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_media_message_id" json:"message_id"`
	URL         string    `gorm:"type:text;not null" json:"url"`
	ObjectKey   *string   `gorm:"type:text" json:"object_key,omitempty"`
	ContentType string    `gorm:"type:text" json:"content_type,omitempty"`
	SizeBytes   int64     `gorm:"default:0" json:"size_bytes,omitempty"`
	CreatedAt   time.Time `gorm:"default:CURRENT_TIMESTAMP" json:"created_at"`
}
