package services

import (
	"context"
	"sort"
	"strings"
	"time"

	"pocketchat/internal/domain"
	chat_errors "pocketchat/pkg/errors"

	"github.com/google/uuid"
)

// In-memory repository stubs backing the service tests. Services are
// constructed with a nil *gorm.DB so the transactional helpers fall
// through to these directly.

type stubUserRepo struct {
	users map[string]domain.User // keyed by external id
}

func newStubUserRepo() *stubUserRepo {
	return &stubUserRepo{users: make(map[string]domain.User)}
}

func (r *stubUserRepo) Create(_ context.Context, u *domain.User) error {
	if _, ok := r.users[u.ExternalID]; ok {
		return chat_errors.ErrAlreadyExists
	}
	r.users[u.ExternalID] = *u
	return nil
}

func (r *stubUserRepo) GetByExternalID(_ context.Context, externalID string) (domain.User, error) {
	u, ok := r.users[externalID]
	if !ok {
		return domain.User{}, chat_errors.ErrNotFound
	}
	return u, nil
}

func (r *stubUserRepo) GetByID(_ context.Context, id uuid.UUID) (domain.User, error) {
	for _, u := range r.users {
		if u.ID == id {
			return u, nil
		}
	}
	return domain.User{}, chat_errors.ErrNotFound
}

func (r *stubUserRepo) GetByIDs(_ context.Context, ids []uuid.UUID) ([]domain.User, error) {
	var out []domain.User
	for _, id := range ids {
		for _, u := range r.users {
			if u.ID == id {
				out = append(out, u)
				break
			}
		}
	}
	return out, nil
}

func (r *stubUserRepo) Update(_ context.Context, u domain.User) error {
	if _, ok := r.users[u.ExternalID]; !ok {
		return chat_errors.ErrNotFound
	}
	r.users[u.ExternalID] = u
	return nil
}

func (r *stubUserRepo) Search(_ context.Context, term, excludeExternalID string, limit int) ([]domain.User, error) {
	needle := strings.ToLower(term)
	var out []domain.User
	for _, u := range r.users {
		if u.ExternalID == excludeExternalID {
			continue
		}
		email := ""
		if u.ProfileDetails != nil && u.ProfileDetails.Email != nil {
			email = strings.ToLower(*u.ProfileDetails.Email)
		}
		if strings.Contains(strings.ToLower(u.Name), needle) || strings.Contains(email, needle) {
			out = append(out, u)
		}
		if len(out) == limit {
			break
		}
	}
	return out, nil
}

type stubChatRepo struct {
	chats map[uuid.UUID]domain.Chat
}

func newStubChatRepo() *stubChatRepo {
	return &stubChatRepo{chats: make(map[uuid.UUID]domain.Chat)}
}

func (r *stubChatRepo) Create(_ context.Context, c *domain.Chat) error {
	if c.ParticipantKey != nil {
		for _, existing := range r.chats {
			if existing.ParticipantKey != nil && *existing.ParticipantKey == *c.ParticipantKey {
				return chat_errors.ErrAlreadyExists
			}
		}
	}
	r.chats[c.ID] = *c
	return nil
}

func (r *stubChatRepo) GetByChatID(_ context.Context, chatID string) (domain.Chat, error) {
	for _, c := range r.chats {
		if c.ChatID == chatID {
			return c, nil
		}
	}
	return domain.Chat{}, chat_errors.ErrNotFound
}

func (r *stubChatRepo) GetByID(_ context.Context, id uuid.UUID) (domain.Chat, error) {
	c, ok := r.chats[id]
	if !ok {
		return domain.Chat{}, chat_errors.ErrNotFound
	}
	return c, nil
}

func (r *stubChatRepo) GetByParticipantKey(_ context.Context, key string) (domain.Chat, error) {
	for _, c := range r.chats {
		if c.ParticipantKey != nil && *c.ParticipantKey == key {
			return c, nil
		}
	}
	return domain.Chat{}, chat_errors.ErrNotFound
}

func (r *stubChatRepo) GetUserChats(_ context.Context, userID uuid.UUID) ([]domain.Chat, error) {
	var out []domain.Chat
	for _, c := range r.chats {
		for _, p := range c.Participants {
			if p.UserID == userID {
				out = append(out, c)
				break
			}
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UpdatedAt.After(out[j].UpdatedAt) })
	return out, nil
}

func (r *stubChatRepo) GetByType(_ context.Context, t domain.ChatType) ([]domain.Chat, error) {
	var out []domain.Chat
	for _, c := range r.chats {
		if c.Type == t {
			out = append(out, c)
		}
	}
	return out, nil
}

func (r *stubChatRepo) AddParticipant(_ context.Context, p *domain.ChatParticipant) error {
	c, ok := r.chats[p.ChatID]
	if !ok {
		return chat_errors.ErrNotFound
	}
	for _, existing := range c.Participants {
		if existing.UserID == p.UserID {
			return chat_errors.ErrAlreadyExists
		}
	}
	c.Participants = append(c.Participants, *p)
	r.chats[p.ChatID] = c
	return nil
}

func (r *stubChatRepo) SetLastMessage(_ context.Context, chatID uuid.UUID, messageID *uuid.UUID) error {
	c, ok := r.chats[chatID]
	if !ok {
		return chat_errors.ErrNotFound
	}
	c.LastMessageID = messageID
	c.UpdatedAt = time.Now()
	r.chats[chatID] = c
	return nil
}

func (r *stubChatRepo) Delete(_ context.Context, id uuid.UUID) error {
	if _, ok := r.chats[id]; !ok {
		return chat_errors.ErrNotFound
	}
	delete(r.chats, id)
	return nil
}

type stubMessageRepo struct {
	messages map[uuid.UUID]domain.Message
}

func newStubMessageRepo() *stubMessageRepo {
	return &stubMessageRepo{messages: make(map[uuid.UUID]domain.Message)}
}

func (r *stubMessageRepo) Create(_ context.Context, m *domain.Message) error {
	r.messages[m.ID] = *m
	return nil
}

func (r *stubMessageRepo) GetByMessageID(_ context.Context, messageID string) (domain.Message, error) {
	for _, m := range r.messages {
		if m.MessageID == messageID {
			return m, nil
		}
	}
	return domain.Message{}, chat_errors.ErrNotFound
}

func (r *stubMessageRepo) GetByID(_ context.Context, id uuid.UUID) (domain.Message, error) {
	m, ok := r.messages[id]
	if !ok {
		return domain.Message{}, chat_errors.ErrNotFound
	}
	return m, nil
}

func (r *stubMessageRepo) chatMessagesDesc(chatID uuid.UUID) []domain.Message {
	var out []domain.Message
	for _, m := range r.messages {
		if m.ChatID == chatID {
			out = append(out, m)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out
}

func (r *stubMessageRepo) GetChatMessages(_ context.Context, chatID uuid.UUID, limit, offset int) ([]domain.Message, error) {
	all := r.chatMessagesDesc(chatID)
	if offset >= len(all) {
		return nil, nil
	}
	all = all[offset:]
	if len(all) > limit {
		all = all[:limit]
	}
	return all, nil
}

func (r *stubMessageRepo) GetLatest(_ context.Context, chatID uuid.UUID) (domain.Message, error) {
	all := r.chatMessagesDesc(chatID)
	if len(all) == 0 {
		return domain.Message{}, chat_errors.ErrNotFound
	}
	return all[0], nil
}

func (r *stubMessageRepo) GetMediaMessages(_ context.Context, chatID uuid.UUID) ([]domain.Message, error) {
	var out []domain.Message
	for _, m := range r.messages {
		if m.ChatID == chatID && m.Type != domain.MessageTypeText && m.MediaURL != nil {
			out = append(out, m)
		}
	}
	return out, nil
}

func (r *stubMessageRepo) Delete(_ context.Context, id uuid.UUID) error {
	if _, ok := r.messages[id]; !ok {
		return chat_errors.ErrNotFound
	}
	delete(r.messages, id)
	return nil
}

func (r *stubMessageRepo) DeleteByChat(_ context.Context, chatID uuid.UUID) error {
	for id, m := range r.messages {
		if m.ChatID == chatID {
			delete(r.messages, id)
		}
	}
	return nil
}

type stubMediaRepo struct {
	media map[uuid.UUID]domain.Media // keyed by message id
}

func newStubMediaRepo() *stubMediaRepo {
	return &stubMediaRepo{media: make(map[uuid.UUID]domain.Media)}
}

func (r *stubMediaRepo) Create(_ context.Context, m *domain.Media) error {
	r.media[m.MessageID] = *m
	return nil
}

func (r *stubMediaRepo) GetByMessageID(_ context.Context, messageID uuid.UUID) (domain.Media, error) {
	m, ok := r.media[messageID]
	if !ok {
		return domain.Media{}, chat_errors.ErrNotFound
	}
	return m, nil
}

func (r *stubMediaRepo) DeleteByMessageID(_ context.Context, messageID uuid.UUID) error {
	delete(r.media, messageID)
	return nil
}

// recordingPublisher captures published events for assertions.
type recordingPublisher struct {
	channels []string
	payloads [][]byte
}

func (p *recordingPublisher) Publish(_ context.Context, channel string, payload []byte) error {
	p.channels = append(p.channels, channel)
	p.payloads = append(p.payloads, payload)
	return nil
}

// recordingStore captures deleted object keys.
type recordingStore struct {
	deleted []string
}

func (s *recordingStore) DeleteObject(_ context.Context, key string) error {
	s.deleted = append(s.deleted, key)
	return nil
}

func seedUser(repo *stubUserRepo, externalID, name string) domain.User {
	u := domain.User{
		ID:         uuid.New(),
		ExternalID: externalID,
		Role:       domain.RoleUser,
		Name:       name,
		CreatedAt:  time.Now(),
		UpdatedAt:  time.Now(),
	}
	repo.users[externalID] = u
	return u
}
