package repository

import (
	"context"

	"pocketchat/internal/domain"

	"github.com/google/uuid"
)

type UserRepository interface {
	Create(ctx context.Context, u *domain.User) error
	GetByExternalID(ctx context.Context, externalID string) (domain.User, error)
	GetByID(ctx context.Context, id uuid.UUID) (domain.User, error)
	GetByIDs(ctx context.Context, ids []uuid.UUID) ([]domain.User, error)
	Update(ctx context.Context, u domain.User) error
	Search(ctx context.Context, term, excludeExternalID string, limit int) ([]domain.User, error)
}

type ChatRepository interface {
	Create(ctx context.Context, c *domain.Chat) error
	GetByChatID(ctx context.Context, chatID string) (domain.Chat, error)
	GetByID(ctx context.Context, id uuid.UUID) (domain.Chat, error)
	GetByParticipantKey(ctx context.Context, key string) (domain.Chat, error)
	GetUserChats(ctx context.Context, userID uuid.UUID) ([]domain.Chat, error)
	GetByType(ctx context.Context, t domain.ChatType) ([]domain.Chat, error)
	AddParticipant(ctx context.Context, p *domain.ChatParticipant) error
	SetLastMessage(ctx context.Context, chatID uuid.UUID, messageID *uuid.UUID) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type MessageRepository interface {
	Create(ctx context.Context, m *domain.Message) error
	GetByMessageID(ctx context.Context, messageID string) (domain.Message, error)
	GetByID(ctx context.Context, id uuid.UUID) (domain.Message, error)
	GetChatMessages(ctx context.Context, chatID uuid.UUID, limit, offset int) ([]domain.Message, error)
	GetLatest(ctx context.Context, chatID uuid.UUID) (domain.Message, error)
	GetMediaMessages(ctx context.Context, chatID uuid.UUID) ([]domain.Message, error)
	Delete(ctx context.Context, id uuid.UUID) error
	DeleteByChat(ctx context.Context, chatID uuid.UUID) error
}

type MediaRepository interface {
	Create(ctx context.Context, m *domain.Media) error
	GetByMessageID(ctx context.Context, messageID uuid.UUID) (domain.Media, error)
	DeleteByMessageID(ctx context.Context, messageID uuid.UUID) error
}
