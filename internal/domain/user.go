package domain

import (
	"time"

	"github.com/google/uuid"
)

// ProfileDetails is stored as a single jsonb column; only the fields the
// client supplied are present.
type ProfileDetails struct {
	Email   *string  `json:"email,omitempty"`
	Picture *string  `json:"picture,omitempty"`
	Height  *float64 `json:"height,omitempty"`
	Weight  *float64 `json:"weight,omitempty"`
}

func (p ProfileDetails) Empty() bool {
	return p.Email == nil && p.Picture == nil && p.Height == nil && p.Weight == nil
}

// User maps an external identity to a profile document. ExternalID is the
// `userId` of the wire contract and comes from the identity provider; ID is
// the internal reference other documents point at.
type User struct {
	ID             uuid.UUID       `gorm:"type:uuid;primaryKey" json:"id"`
	ExternalID     string          `gorm:"type:text;not null;uniqueIndex:idx_users_external_id" json:"user_id"`
	Role           Role            `gorm:"type:text;not null;default:'user'" json:"role"`
	Name           string          `gorm:"type:text;not null" json:"name"`
	ProfileDetails *ProfileDetails `gorm:"type:jsonb;serializer:json" json:"profile_details,omitempty"`
	CreatedAt      time.Time       `gorm:"default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt      time.Time       `gorm:"default:CURRENT_TIMESTAMP" json:"updated_at"`
}
