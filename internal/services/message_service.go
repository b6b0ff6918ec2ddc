package services

import (
	"context"
	"encoding/json"
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

const defaultMessageLimit = 50

// EventPublisher fans out ledger events to interested subscribers (the
// websocket bridge). A nil publisher disables fan-out.
type EventPublisher interface {
	Publish(ctx context.Context, channel string, payload []byte) error
}

// ChatEvent is the payload published on a chat's channel.
type ChatEvent struct {
	Type      string      `json:"type"`
	ChatID    string      `json:"chat_id"`
	Payload   interface{} `json:"payload,omitempty"`
	Timestamp time.Time   `json:"timestamp"`
}

type MessageService struct {
	db          *gorm.DB
	messageRepo repository.MessageRepository
	chatRepo    repository.ChatRepository
	userRepo    repository.UserRepository
	mediaRepo   repository.MediaRepository
	publisher   EventPublisher
	storage     ObjectStore
	log         *logger.Logger
}

func NewMessageService(db *gorm.DB, messageRepo repository.MessageRepository, chatRepo repository.ChatRepository, userRepo repository.UserRepository, mediaRepo repository.MediaRepository, publisher EventPublisher, storage ObjectStore, log *logger.Logger) *MessageService {
	return &MessageService{
		db:          db,
		messageRepo: messageRepo,
		chatRepo:    chatRepo,
		userRepo:    userRepo,
		mediaRepo:   mediaRepo,
		publisher:   publisher,
		storage:     storage,
		log:         log,
	}
}

type SendMessageInput struct {
	ChatID   string
	SenderID string // external user id
	Content  string
	Type     domain.MessageType
	MediaURL *string
}

// SendMessage inserts the message and patches the chat's last-message
// pointer in one transaction, so the pointer can never be observed
// referencing a missing message.
func (s *MessageService) SendMessage(ctx context.Context, input SendMessageInput) (domain.Message, error) {
	if !input.Type.Valid() {
		return domain.Message{}, fmt.Errorf("%w: unknown message type %q", chat_errors.ErrInvalidInput, input.Type)
	}

	sender, err := s.userRepo.GetByExternalID(ctx, input.SenderID)
	if err != nil {
		return domain.Message{}, fmt.Errorf("sender %s: %w", input.SenderID, err)
	}
	chat, err := s.chatRepo.GetByChatID(ctx, input.ChatID)
	if err != nil {
		return domain.Message{}, fmt.Errorf("chat %s: %w", input.ChatID, err)
	}

	if input.MediaURL != nil {
		if err := validateURL(*input.MediaURL); err != nil {
			return domain.Message{}, err
		}
	}

	now := time.Now()
	msg := domain.Message{
		ID:        uuid.New(),
		MessageID: uuid.NewString(),
		ChatID:    chat.ID,
		SenderID:  sender.ID,
		Content:   input.Content,
		Type:      input.Type,
		MediaURL:  input.MediaURL,
		CreatedAt: now,
		UpdatedAt: now,
	}

	err = s.withTx(ctx, func(msgRepo repository.MessageRepository, mediaRepo repository.MediaRepository, chatRepo repository.ChatRepository) error {
		if err := msgRepo.Create(ctx, &msg); err != nil {
			return err
		}
		if input.Type != domain.MessageTypeText && input.MediaURL != nil {
			media := domain.Media{
				ID:        uuid.New(),
				MessageID: msg.ID,
				URL:       *input.MediaURL,
				CreatedAt: now,
			}
			if keyer, ok := s.storage.(interface{ KeyFromURL(string) string }); ok {
				if key := keyer.KeyFromURL(*input.MediaURL); key != "" {
					media.ObjectKey = &key
				}
			}
			if err := mediaRepo.Create(ctx, &media); err != nil {
				return err
			}
		}
		return chatRepo.SetLastMessage(ctx, chat.ID, &msg.ID)
	})
	if err != nil {
		return domain.Message{}, err
	}

	s.publish(ctx, chat.ChatID, ChatEvent{
		Type:      "message.new",
		ChatID:    chat.ChatID,
		Payload:   msg,
		Timestamp: now,
	})
	return msg, nil
}

// GetMessages pages a chat's ledger newest-first.
func (s *MessageService) GetMessages(ctx context.Context, chatID string, limit, offset int) ([]domain.Message, error) {
	chat, err := s.chatRepo.GetByChatID(ctx, chatID)
	if err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = defaultMessageLimit
	}
	if offset < 0 {
		offset = 0
	}
	messages, err := s.messageRepo.GetChatMessages(ctx, chat.ID, limit, offset)
	if err != nil {
		return nil, err
	}
	if messages == nil {
		messages = []domain.Message{}
	}
	return messages, nil
}

// DeleteMessage removes the message (and its media document). When it was
// the chat's most recent, the last-message pointer is repointed to the
// next-most-recent remaining message inside the same transaction, or
// cleared when none remain.
func (s *MessageService) DeleteMessage(ctx context.Context, messageID, chatID string) error {
	msg, err := s.messageRepo.GetByMessageID(ctx, messageID)
	if err != nil {
		return fmt.Errorf("message %s: %w", messageID, err)
	}
	chat, err := s.chatRepo.GetByChatID(ctx, chatID)
	if err != nil {
		return fmt.Errorf("chat %s: %w", chatID, err)
	}

	var media *domain.Media
	if m, err := s.mediaRepo.GetByMessageID(ctx, msg.ID); err == nil {
		media = &m
	} else if !errors.Is(err, chat_errors.ErrNotFound) {
		return err
	}

	err = s.withTx(ctx, func(msgRepo repository.MessageRepository, mediaRepo repository.MediaRepository, chatRepo repository.ChatRepository) error {
		if media != nil {
			if err := mediaRepo.DeleteByMessageID(ctx, msg.ID); err != nil {
				return err
			}
		}
		if err := msgRepo.Delete(ctx, msg.ID); err != nil {
			return err
		}
		if chat.LastMessageID == nil || *chat.LastMessageID != msg.ID {
			return nil
		}
		next, err := msgRepo.GetLatest(ctx, chat.ID)
		if err != nil {
			if errors.Is(err, chat_errors.ErrNotFound) {
				return chatRepo.SetLastMessage(ctx, chat.ID, nil)
			}
			return err
		}
		return chatRepo.SetLastMessage(ctx, chat.ID, &next.ID)
	})
	if err != nil {
		return err
	}

	if media != nil && media.ObjectKey != nil && s.storage != nil {
		if err := s.storage.DeleteObject(ctx, *media.ObjectKey); err != nil && s.log != nil {
			s.log.Warnf("delete media object %s: %v", *media.ObjectKey, err)
		}
	}

	s.publish(ctx, chat.ChatID, ChatEvent{
		Type:      "message.deleted",
		ChatID:    chat.ChatID,
		Payload:   map[string]string{"message_id": messageID},
		Timestamp: time.Now(),
	})
	return nil
}

// RecentChatMessage pairs a chat token with its last-message summary.
type RecentChatMessage struct {
	ChatID      string              `json:"chat_id"`
	LastMessage *LastMessageSummary `json:"last_message"`
}

func (s *MessageService) GetRecentMessagesByUser(ctx context.Context, userExternalID string) ([]RecentChatMessage, error) {
	user, err := s.userRepo.GetByExternalID(ctx, userExternalID)
	if err != nil {
		return nil, err
	}
	chats, err := s.chatRepo.GetUserChats(ctx, user.ID)
	if err != nil {
		return nil, err
	}

	results := make([]RecentChatMessage, 0, len(chats))
	for _, chat := range chats {
		entry := RecentChatMessage{ChatID: chat.ChatID}
		if chat.LastMessageID != nil {
			if last, err := s.messageRepo.GetByID(ctx, *chat.LastMessageID); err == nil {
				entry.LastMessage = &LastMessageSummary{
					Content:   last.Content,
					CreatedAt: last.CreatedAt,
					SenderID:  last.SenderID,
				}
			} else if !errors.Is(err, chat_errors.ErrNotFound) {
				return nil, err
			}
		}
		results = append(results, entry)
	}
	return results, nil
}

func (s *MessageService) withTx(ctx context.Context, fn func(msgRepo repository.MessageRepository, mediaRepo repository.MediaRepository, chatRepo repository.ChatRepository) error) error {
	if s.db == nil {
		return fn(s.messageRepo, s.mediaRepo, s.chatRepo)
	}
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(repository.NewMessageRepository(tx), repository.NewMediaRepository(tx), repository.NewChatRepository(tx))
	})
}

func (s *MessageService) publish(ctx context.Context, chatID string, event ChatEvent) {
	if s.publisher == nil {
		return
	}
	payload, err := json.Marshal(event)
	if err != nil {
		return
	}
	if err := s.publisher.Publish(ctx, "chat:"+chatID, payload); err != nil && s.log != nil {
		s.log.Warnf("publish %s event for chat %s: %v", event.Type, chatID, err)
	}
}
