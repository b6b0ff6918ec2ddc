package domain

import (
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Chat maps a set of participants to a conversation. ChatID is the opaque
// token handed to clients; LastMessageID is a denormalized pointer to the
// most recent message and is maintained by the message ledger.
//
// ParticipantKey is the canonical sorted join of participant user ids. It is
// set for private chats only and carries a unique index, so at most one
// private chat can exist per unordered participant pair regardless of
// concurrent creators.
type Chat struct {
	ID             uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	ChatID         string     `gorm:"type:text;not null;uniqueIndex:idx_chats_chat_id" json:"chat_id"`
	SenderID       uuid.UUID  `gorm:"type:uuid;not null" json:"sender_id"`
	Type           ChatType   `gorm:"type:text;not null" json:"type"`
	ParticipantKey *string    `gorm:"type:text;uniqueIndex:idx_chats_participant_key" json:"-"`
	LastMessageID  *uuid.UUID `gorm:"type:uuid" json:"last_message_id,omitempty"`
	CreatedAt      time.Time  `gorm:"default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt      time.Time  `gorm:"default:CURRENT_TIMESTAMP" json:"updated_at"`

	// Relations
	Participants []ChatParticipant `gorm:"foreignKey:ChatID;constraint:OnDelete:CASCADE" json:"participants,omitempty"`
}

type ChatParticipant struct {
	ChatID   uuid.UUID `gorm:"type:uuid;primaryKey" json:"chat_id"`
	UserID   uuid.UUID `gorm:"type:uuid;primaryKey;index:idx_chat_participants_user" json:"user_id"`
	JoinedAt time.Time `gorm:"default:CURRENT_TIMESTAMP" json:"joined_at"`

	// Relations
	User User `gorm:"foreignKey:UserID" json:"user,omitempty"`
}

// ParticipantIDs returns the user ids of the chat's participant rows.
func (c *Chat) ParticipantIDs() []uuid.UUID {
	ids := make([]uuid.UUID, 0, len(c.Participants))
	for _, p := range c.Participants {
		ids = append(ids, p.UserID)
	}
	return ids
}

// ParticipantKeyFor canonicalizes a participant set: ids are sorted by their
// string form and joined, so the key is independent of argument order.
func ParticipantKeyFor(ids []uuid.UUID) string {
	parts := make([]string, 0, len(ids))
	for _, id := range ids {
		parts = append(parts, id.String())
	}
	sort.Strings(parts)
	return strings.Join(parts, ":")
}
