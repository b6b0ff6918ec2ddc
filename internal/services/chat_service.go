package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"pocketchat/internal/domain"
	"pocketchat/internal/repository"
	chat_errors "pocketchat/pkg/errors"
	"pocketchat/pkg/logger"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ObjectStore deletes stored media objects. A nil store skips object
// cleanup.
type ObjectStore interface {
	DeleteObject(ctx context.Context, key string) error
}

type ChatService struct {
	db          *gorm.DB
	chatRepo    repository.ChatRepository
	userRepo    repository.UserRepository
	messageRepo repository.MessageRepository
	mediaRepo   repository.MediaRepository
	storage     ObjectStore
	log         *logger.Logger
}

func NewChatService(db *gorm.DB, chatRepo repository.ChatRepository, userRepo repository.UserRepository, messageRepo repository.MessageRepository, mediaRepo repository.MediaRepository, storage ObjectStore, log *logger.Logger) *ChatService {
	return &ChatService{
		db:          db,
		chatRepo:    chatRepo,
		userRepo:    userRepo,
		messageRepo: messageRepo,
		mediaRepo:   mediaRepo,
		storage:     storage,
		log:         log,
	}
}

type ParticipantSummary struct {
	ID     uuid.UUID `json:"id"`
	UserID string    `json:"user_id"`
	Name   string    `json:"name,omitempty"`
}

type LastMessageSummary struct {
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
	SenderID  uuid.UUID `json:"sender_id"`
}

// ChatView is a chat enriched with resolved participant summaries and the
// denormalized last message, as served to list endpoints.
type ChatView struct {
	ChatID       string               `json:"chat_id"`
	Type         domain.ChatType      `json:"type"`
	SenderID     uuid.UUID            `json:"sender_id"`
	Participants []ParticipantSummary `json:"participants"`
	LastMessage  *LastMessageSummary  `json:"last_message"`
	CreatedAt    time.Time            `json:"created_at"`
	UpdatedAt    time.Time            `json:"updated_at"`
}

// resolveParticipantSet resolves every external id and unions the result
// with the sender. Any unresolved id aborts with not-found.
func (s *ChatService) resolveParticipantSet(ctx context.Context, senderExternalID string, participantExternalIDs []string) (domain.User, []uuid.UUID, error) {
	sender, err := s.userRepo.GetByExternalID(ctx, senderExternalID)
	if err != nil {
		return domain.User{}, nil, fmt.Errorf("sender %s: %w", senderExternalID, err)
	}

	seen := map[uuid.UUID]struct{}{}
	var ids []uuid.UUID
	for _, externalID := range participantExternalIDs {
		u, err := s.userRepo.GetByExternalID(ctx, externalID)
		if err != nil {
			return domain.User{}, nil, fmt.Errorf("participant %s: %w", externalID, err)
		}
		if _, ok := seen[u.ID]; !ok {
			seen[u.ID] = struct{}{}
			ids = append(ids, u.ID)
		}
	}
	if _, ok := seen[sender.ID]; !ok {
		ids = append(ids, sender.ID)
	}
	return sender, ids, nil
}

// CreateChat inserts a chat for the computed participant set. Private chats
// carry the canonical participant key; losing the unique-index race there
// returns the chat that already exists for the pair.
func (s *ChatService) CreateChat(ctx context.Context, senderExternalID string, participantExternalIDs []string, chatType domain.ChatType) (domain.Chat, error) {
	if !chatType.Valid() {
		return domain.Chat{}, fmt.Errorf("%w: unknown chat type %q", chat_errors.ErrInvalidInput, chatType)
	}
	sender, participantIDs, err := s.resolveParticipantSet(ctx, senderExternalID, participantExternalIDs)
	if err != nil {
		return domain.Chat{}, err
	}
	return s.createWithParticipants(ctx, sender, participantIDs, chatType)
}

func (s *ChatService) createWithParticipants(ctx context.Context, sender domain.User, participantIDs []uuid.UUID, chatType domain.ChatType) (domain.Chat, error) {
	if chatType == domain.ChatTypePrivate && len(participantIDs) != 2 {
		return domain.Chat{}, fmt.Errorf("%w: private chats must have exactly 2 participants", chat_errors.ErrInvalidInput)
	}

	now := time.Now()
	chat := domain.Chat{
		ID:        uuid.New(),
		ChatID:    uuid.NewString(),
		SenderID:  sender.ID,
		Type:      chatType,
		CreatedAt: now,
		UpdatedAt: now,
	}
	var key string
	if chatType == domain.ChatTypePrivate {
		key = domain.ParticipantKeyFor(participantIDs)
		chat.ParticipantKey = &key
	}
	for _, id := range participantIDs {
		chat.Participants = append(chat.Participants, domain.ChatParticipant{
			ChatID:   chat.ID,
			UserID:   id,
			JoinedAt: now,
		})
	}

	err := s.withTx(ctx, func(chatRepo repository.ChatRepository) error {
		return chatRepo.Create(ctx, &chat)
	})
	if err != nil {
		if chatType == domain.ChatTypePrivate && errors.Is(err, chat_errors.ErrAlreadyExists) {
			return s.chatRepo.GetByParticipantKey(ctx, key)
		}
		return domain.Chat{}, err
	}
	return chat, nil
}

// GetOrCreateChat returns the existing chat whose participant set is
// set-equal to the computed one, creating it when none exists. Equality is
// order-insensitive for both private and group chats.
func (s *ChatService) GetOrCreateChat(ctx context.Context, senderExternalID string, participantExternalIDs []string, chatType domain.ChatType) (domain.Chat, error) {
	if !chatType.Valid() {
		return domain.Chat{}, fmt.Errorf("%w: unknown chat type %q", chat_errors.ErrInvalidInput, chatType)
	}
	sender, participantIDs, err := s.resolveParticipantSet(ctx, senderExternalID, participantExternalIDs)
	if err != nil {
		return domain.Chat{}, err
	}

	if chatType == domain.ChatTypePrivate {
		existing, err := s.chatRepo.GetByParticipantKey(ctx, domain.ParticipantKeyFor(participantIDs))
		if err == nil {
			return existing, nil
		}
		if !errors.Is(err, chat_errors.ErrNotFound) {
			return domain.Chat{}, err
		}
	} else {
		// Group membership has no canonical key; scan candidates of the
		// same type for a set-equal participant list.
		candidates, err := s.chatRepo.GetByType(ctx, chatType)
		if err != nil {
			return domain.Chat{}, err
		}
		for _, c := range candidates {
			if sameParticipantSet(c.ParticipantIDs(), participantIDs) {
				return c, nil
			}
		}
	}

	return s.createWithParticipants(ctx, sender, participantIDs, chatType)
}

func sameParticipantSet(a, b []uuid.UUID) bool {
	if len(a) != len(b) {
		return false
	}
	set := make(map[uuid.UUID]struct{}, len(a))
	for _, id := range a {
		set[id] = struct{}{}
	}
	for _, id := range b {
		if _, ok := set[id]; !ok {
			return false
		}
	}
	return true
}

// GetChats lists the user's chats enriched with participant summaries and
// the last message. Participants that no longer resolve are dropped.
func (s *ChatService) GetChats(ctx context.Context, userExternalID string) ([]ChatView, error) {
	user, err := s.userRepo.GetByExternalID(ctx, userExternalID)
	if err != nil {
		return nil, err
	}
	chats, err := s.chatRepo.GetUserChats(ctx, user.ID)
	if err != nil {
		return nil, err
	}

	views := make([]ChatView, 0, len(chats))
	for _, chat := range chats {
		participants, err := s.userRepo.GetByIDs(ctx, chat.ParticipantIDs())
		if err != nil {
			return nil, err
		}
		summaries := make([]ParticipantSummary, 0, len(participants))
		for _, p := range participants {
			summaries = append(summaries, ParticipantSummary{
				ID:     p.ID,
				UserID: p.ExternalID,
				Name:   p.Name,
			})
		}

		view := ChatView{
			ChatID:       chat.ChatID,
			Type:         chat.Type,
			SenderID:     chat.SenderID,
			Participants: summaries,
			CreatedAt:    chat.CreatedAt,
			UpdatedAt:    chat.UpdatedAt,
		}
		if chat.LastMessageID != nil {
			if last, err := s.messageRepo.GetByID(ctx, *chat.LastMessageID); err == nil {
				view.LastMessage = &LastMessageSummary{
					Content:   last.Content,
					CreatedAt: last.CreatedAt,
					SenderID:  last.SenderID,
				}
			} else if !errors.Is(err, chat_errors.ErrNotFound) {
				return nil, err
			}
		}
		views = append(views, view)
	}
	return views, nil
}

// DeleteChat cascades: media rows (and their stored objects, best effort),
// then messages, then the chat itself. A failure mid-cascade is surfaced
// as-is; there is no rollback across the steps.
func (s *ChatService) DeleteChat(ctx context.Context, chatID string) error {
	chat, err := s.chatRepo.GetByChatID(ctx, chatID)
	if err != nil {
		return err
	}

	mediaMessages, err := s.messageRepo.GetMediaMessages(ctx, chat.ID)
	if err != nil {
		return err
	}
	for _, msg := range mediaMessages {
		media, err := s.mediaRepo.GetByMessageID(ctx, msg.ID)
		if err != nil {
			if errors.Is(err, chat_errors.ErrNotFound) {
				continue
			}
			return err
		}
		s.deleteObject(ctx, media)
		if err := s.mediaRepo.DeleteByMessageID(ctx, msg.ID); err != nil {
			return err
		}
	}

	if err := s.messageRepo.DeleteByChat(ctx, chat.ID); err != nil {
		return err
	}
	return s.chatRepo.Delete(ctx, chat.ID)
}

// AddUserToChat creates the user if missing and appends it to the chat's
// participant set when not already present.
func (s *ChatService) AddUserToChat(ctx context.Context, externalID, name, chatID string, role domain.Role, createdAt int64) error {
	user, err := s.userRepo.GetByExternalID(ctx, externalID)
	if errors.Is(err, chat_errors.ErrNotFound) {
		when := time.Now()
		if createdAt > 0 {
			when = time.UnixMilli(createdAt)
		}
		user = domain.User{
			ID:         uuid.New(),
			ExternalID: externalID,
			Role:       role,
			Name:       name,
			CreatedAt:  when,
			UpdatedAt:  when,
		}
		if err := s.userRepo.Create(ctx, &user); err != nil {
			if !errors.Is(err, chat_errors.ErrAlreadyExists) {
				return err
			}
			if user, err = s.userRepo.GetByExternalID(ctx, externalID); err != nil {
				return err
			}
		}
	} else if err != nil {
		return err
	}

	chat, err := s.chatRepo.GetByChatID(ctx, chatID)
	if err != nil {
		return err
	}
	for _, p := range chat.Participants {
		if p.UserID == user.ID {
			return nil
		}
	}
	err = s.chatRepo.AddParticipant(ctx, &domain.ChatParticipant{
		ChatID:   chat.ID,
		UserID:   user.ID,
		JoinedAt: time.Now(),
	})
	if errors.Is(err, chat_errors.ErrAlreadyExists) {
		return nil
	}
	return err
}

func (s *ChatService) withTx(ctx context.Context, fn func(chatRepo repository.ChatRepository) error) error {
	if s.db == nil {
		return fn(s.chatRepo)
	}
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(repository.NewChatRepository(tx))
	})
}

func (s *ChatService) deleteObject(ctx context.Context, media domain.Media) {
	if s.storage == nil || media.ObjectKey == nil {
		return
	}
	if err := s.storage.DeleteObject(ctx, *media.ObjectKey); err != nil && s.log != nil {
		s.log.Warnf("delete media object %s: %v", *media.ObjectKey, err)
	}
}
