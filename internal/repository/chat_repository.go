package repository

import (
	"context"
	"errors"
	"time"

	"pocketchat/internal/domain"
	chat_errors "pocketchat/pkg/errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type PostgresChatRepository struct {
	db *gorm.DB
}

func NewChatRepository(db *gorm.DB) ChatRepository {
	return &PostgresChatRepository{db: db}
}

// Create inserts the chat together with its participant rows. A unique
// violation on the participant key surfaces as ErrAlreadyExists so the
// caller can fetch the chat that won the race.
func (r *PostgresChatRepository) Create(ctx context.Context, c *domain.Chat) error {
	res := r.db.WithContext(ctx).Create(c)
	if res.Error != nil {
		if isUniqueViolation(res.Error) {
			return chat_errors.ErrAlreadyExists
		}
		return res.Error
	}
	return nil
}

func (r *PostgresChatRepository) GetByChatID(ctx context.Context, chatID string) (domain.Chat, error) {
	var c domain.Chat
	err := r.db.WithContext(ctx).
		Preload("Participants").
		Where("chat_id = ?", chatID).
		First(&c).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.Chat{}, chat_errors.ErrNotFound
		}
		return domain.Chat{}, err
	}
	return c, nil
}

func (r *PostgresChatRepository) GetByID(ctx context.Context, id uuid.UUID) (domain.Chat, error) {
	var c domain.Chat
	err := r.db.WithContext(ctx).
		Preload("Participants").
		Where("id = ?", id).
		First(&c).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.Chat{}, chat_errors.ErrNotFound
		}
		return domain.Chat{}, err
	}
	return c, nil
}

func (r *PostgresChatRepository) GetByParticipantKey(ctx context.Context, key string) (domain.Chat, error) {
	var c domain.Chat
	err := r.db.WithContext(ctx).
		Preload("Participants").
		Where("participant_key = ?", key).
		First(&c).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.Chat{}, chat_errors.ErrNotFound
		}
		return domain.Chat{}, err
	}
	return c, nil
}

func (r *PostgresChatRepository) GetUserChats(ctx context.Context, userID uuid.UUID) ([]domain.Chat, error) {
	var chats []domain.Chat

	subQuery := r.db.Model(&domain.ChatParticipant{}).
		Select("chat_id").
		Where("user_id = ?", userID)

	err := r.db.WithContext(ctx).
		Preload("Participants").
		Where("id IN (?)", subQuery).
		Order("updated_at DESC").
		Find(&chats).Error
	if err != nil {
		return nil, err
	}
	return chats, nil
}

func (r *PostgresChatRepository) GetByType(ctx context.Context, t domain.ChatType) ([]domain.Chat, error) {
	var chats []domain.Chat
	err := r.db.WithContext(ctx).
		Preload("Participants").
		Where("type = ?", t).
		Find(&chats).Error
	if err != nil {
		return nil, err
	}
	return chats, nil
}

func (r *PostgresChatRepository) AddParticipant(ctx context.Context, p *domain.ChatParticipant) error {
	res := r.db.WithContext(ctx).Create(p)
	if res.Error != nil {
		if isUniqueViolation(res.Error) {
			return chat_errors.ErrAlreadyExists
		}
		return res.Error
	}
	return nil
}

func (r *PostgresChatRepository) SetLastMessage(ctx context.Context, chatID uuid.UUID, messageID *uuid.UUID) error {
	res := r.db.WithContext(ctx).
		Model(&domain.Chat{}).
		Where("id = ?", chatID).
		Updates(map[string]interface{}{
			"last_message_id": messageID,
			"updated_at":      time.Now(),
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return chat_errors.ErrNotFound
	}
	return nil
}

func (r *PostgresChatRepository) Delete(ctx context.Context, id uuid.UUID) error {
	if err := r.db.WithContext(ctx).
		Delete(&domain.ChatParticipant{}, "chat_id = ?", id).Error; err != nil {
		return err
	}
	res := r.db.WithContext(ctx).Delete(&domain.Chat{}, "id = ?", id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return chat_errors.ErrNotFound
	}
	return nil
}
