package repository

import (
	"context"
	"errors"

	"pocketchat/internal/domain"
	chat_errors "pocketchat/pkg/errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type PostgresMessageRepository struct {
	db *gorm.DB
}

func NewMessageRepository(db *gorm.DB) MessageRepository {
	return &PostgresMessageRepository{db: db}
}

func (r *PostgresMessageRepository) Create(ctx context.Context, m *domain.Message) error {
	res := r.db.WithContext(ctx).Create(m)
	if res.Error != nil {
		if isUniqueViolation(res.Error) {
			return chat_errors.ErrAlreadyExists
		}
		return res.Error
	}
	return nil
}

func (r *PostgresMessageRepository) GetByMessageID(ctx context.Context, messageID string) (domain.Message, error) {
	var m domain.Message
	err := r.db.WithContext(ctx).
		Where("message_id = ?", messageID).
		First(&m).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.Message{}, chat_errors.ErrNotFound
		}
		return domain.Message{}, err
	}
	return m, nil
}

func (r *PostgresMessageRepository) GetByID(ctx context.Context, id uuid.UUID) (domain.Message, error) {
	var m domain.Message
	err := r.db.WithContext(ctx).
		Where("id = ?", id).
		First(&m).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.Message{}, chat_errors.ErrNotFound
		}
		return domain.Message{}, err
	}
	return m, nil
}

// GetChatMessages pages through a chat's history newest-first off the
// (chat_id, created_at) index.
func (r *PostgresMessageRepository) GetChatMessages(ctx context.Context, chatID uuid.UUID, limit, offset int) ([]domain.Message, error) {
	var messages []domain.Message
	err := r.db.WithContext(ctx).
		Where("chat_id = ?", chatID).
		Order("created_at DESC").
		Offset(offset).
		Limit(limit).
		Find(&messages).Error
	if err != nil {
		return nil, err
	}
	return messages, nil
}

func (r *PostgresMessageRepository) GetLatest(ctx context.Context, chatID uuid.UUID) (domain.Message, error) {
	var m domain.Message
	err := r.db.WithContext(ctx).
		Where("chat_id = ?", chatID).
		Order("created_at DESC").
		First(&m).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.Message{}, chat_errors.ErrNotFound
		}
		return domain.Message{}, err
	}
	return m, nil
}

// GetMediaMessages returns the chat's non-text messages that carry a media
// URL, for cascading media cleanup.
func (r *PostgresMessageRepository) GetMediaMessages(ctx context.Context, chatID uuid.UUID) ([]domain.Message, error) {
	var messages []domain.Message
	err := r.db.WithContext(ctx).
		Where("chat_id = ? AND type <> ? AND media_url IS NOT NULL", chatID, domain.MessageTypeText).
		Find(&messages).Error
	if err != nil {
		return nil, err
	}
	return messages, nil
}

func (r *PostgresMessageRepository) Delete(ctx context.Context, id uuid.UUID) error {
	res := r.db.WithContext(ctx).Delete(&domain.Message{}, "id = ?", id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return chat_errors.ErrNotFound
	}
	return nil
}

func (r *PostgresMessageRepository) DeleteByChat(ctx context.Context, chatID uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&domain.Message{}, "chat_id = ?", chatID).Error
}
