package repository

import (
	"context"
	"errors"

	"pocketchat/internal/domain"
	chat_errors "pocketchat/pkg/errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type PostgresMediaRepository struct {
	db *gorm.DB
}

func NewMediaRepository(db *gorm.DB) MediaRepository {
	return &PostgresMediaRepository{db: db}
}

func (r *PostgresMediaRepository) Create(ctx context.Context, m *domain.Media) error {
	res := r.db.WithContext(ctx).Create(m)
	if res.Error != nil {
		if isUniqueViolation(res.Error) {
			return chat_errors.ErrAlreadyExists
		}
		return res.Error
	}
	return nil
}

func (r *PostgresMediaRepository) GetByMessageID(ctx context.Context, messageID uuid.UUID) (domain.Media, error) {
	var m domain.Media
	err := r.db.WithContext(ctx).
		Where("message_id = ?", messageID).
		First(&m).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.Media{}, chat_errors.ErrNotFound
		}
		return domain.Media{}, err
	}
	return m, nil
}

func (r *PostgresMediaRepository) DeleteByMessageID(ctx context.Context, messageID uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&domain.Media{}, "message_id = ?", messageID).Error
}
