package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"pocketchat/internal/domain"
	chat_errors "pocketchat/pkg/errors"

	"github.com/google/uuid"
)

type chatFixture struct {
	users    *stubUserRepo
	chats    *stubChatRepo
	messages *stubMessageRepo
	media    *stubMediaRepo
	store    *recordingStore
	svc      *ChatService
}

func newChatFixture() *chatFixture {
	f := &chatFixture{
		users:    newStubUserRepo(),
		chats:    newStubChatRepo(),
		messages: newStubMessageRepo(),
		media:    newStubMediaRepo(),
		store:    &recordingStore{},
	}
	f.svc = NewChatService(nil, f.chats, f.users, f.messages, f.media, f.store, nil)
	return f
}

func TestCreateChatPrivateRequiresTwoParticipants(t *testing.T) {
	f := newChatFixture()
	seedUser(f.users, "a", "Alice")
	seedUser(f.users, "b", "Bob")
	seedUser(f.users, "c", "Carol")

	_, err := f.svc.CreateChat(context.Background(), "a", []string{"b", "c"}, domain.ChatTypePrivate)
	if !errors.Is(err, chat_errors.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for 3-way private chat, got %v", err)
	}
}

func TestCreateChatUnknownParticipant(t *testing.T) {
	f := newChatFixture()
	seedUser(f.users, "a", "Alice")

	_, err := f.svc.CreateChat(context.Background(), "a", []string{"ghost"}, domain.ChatTypePrivate)
	if !errors.Is(err, chat_errors.ErrNotFound) {
		t.Fatalf("expected ErrNotFound for unknown participant, got %v", err)
	}
}

func TestCreateChatIncludesSender(t *testing.T) {
	f := newChatFixture()
	alice := seedUser(f.users, "a", "Alice")
	bob := seedUser(f.users, "b", "Bob")

	chat, err := f.svc.CreateChat(context.Background(), "a", []string{"b"}, domain.ChatTypePrivate)
	if err != nil {
		t.Fatalf("CreateChat failed: %v", err)
	}
	if !sameParticipantSet(chat.ParticipantIDs(), []uuid.UUID{alice.ID, bob.ID}) {
		t.Fatalf("expected participants {alice, bob}, got %v", chat.ParticipantIDs())
	}
	if chat.ParticipantKey == nil {
		t.Fatal("private chat should carry a participant key")
	}
}

func TestGetOrCreateChatIsOrderInsensitive(t *testing.T) {
	f := newChatFixture()
	seedUser(f.users, "a", "Alice")
	seedUser(f.users, "b", "Bob")
	ctx := context.Background()

	first, err := f.svc.GetOrCreateChat(ctx, "a", []string{"b"}, domain.ChatTypePrivate)
	if err != nil {
		t.Fatalf("first GetOrCreateChat failed: %v", err)
	}
	// Same pair, opposite direction.
	second, err := f.svc.GetOrCreateChat(ctx, "b", []string{"a"}, domain.ChatTypePrivate)
	if err != nil {
		t.Fatalf("second GetOrCreateChat failed: %v", err)
	}
	if second.ChatID != first.ChatID {
		t.Fatalf("expected the same chat for both directions, got %s and %s", first.ChatID, second.ChatID)
	}
	if len(f.chats.chats) != 1 {
		t.Fatalf("expected 1 stored chat, got %d", len(f.chats.chats))
	}
}

func TestGetOrCreateChatGroupSetEquality(t *testing.T) {
	f := newChatFixture()
	seedUser(f.users, "a", "Alice")
	seedUser(f.users, "b", "Bob")
	seedUser(f.users, "c", "Carol")
	ctx := context.Background()

	first, err := f.svc.GetOrCreateChat(ctx, "a", []string{"b", "c"}, domain.ChatTypeGroup)
	if err != nil {
		t.Fatalf("group create failed: %v", err)
	}
	same, err := f.svc.GetOrCreateChat(ctx, "c", []string{"a", "b"}, domain.ChatTypeGroup)
	if err != nil {
		t.Fatalf("group lookup failed: %v", err)
	}
	if same.ChatID != first.ChatID {
		t.Fatalf("set-equal group should be reused, got %s vs %s", same.ChatID, first.ChatID)
	}

	other, err := f.svc.GetOrCreateChat(ctx, "a", []string{"b"}, domain.ChatTypeGroup)
	if err != nil {
		t.Fatalf("smaller group create failed: %v", err)
	}
	if other.ChatID == first.ChatID {
		t.Fatal("a strict subset must produce a distinct group chat")
	}
}

func TestCreateChatDuplicatePrivateReturnsExisting(t *testing.T) {
	f := newChatFixture()
	seedUser(f.users, "a", "Alice")
	seedUser(f.users, "b", "Bob")
	ctx := context.Background()

	first, err := f.svc.CreateChat(ctx, "a", []string{"b"}, domain.ChatTypePrivate)
	if err != nil {
		t.Fatalf("CreateChat failed: %v", err)
	}
	// Second insert for the same pair loses the unique-index race.
	second, err := f.svc.CreateChat(ctx, "b", []string{"a"}, domain.ChatTypePrivate)
	if err != nil {
		t.Fatalf("duplicate CreateChat should resolve to the existing chat: %v", err)
	}
	if second.ChatID != first.ChatID {
		t.Fatalf("expected existing chat back, got %s and %s", first.ChatID, second.ChatID)
	}
}

func TestGetChatsEnrichment(t *testing.T) {
	f := newChatFixture()
	alice := seedUser(f.users, "a", "Alice")
	bob := seedUser(f.users, "b", "Bob")
	ctx := context.Background()

	chat, err := f.svc.CreateChat(ctx, "a", []string{"b"}, domain.ChatTypePrivate)
	if err != nil {
		t.Fatalf("CreateChat failed: %v", err)
	}
	last := domain.Message{
		ID:        uuid.New(),
		MessageID: uuid.NewString(),
		ChatID:    chat.ID,
		SenderID:  bob.ID,
		Content:   "hey",
		Type:      domain.MessageTypeText,
		CreatedAt: time.Now(),
	}
	f.messages.messages[last.ID] = last
	if err := f.chats.SetLastMessage(ctx, chat.ID, &last.ID); err != nil {
		t.Fatalf("SetLastMessage failed: %v", err)
	}

	views, err := f.svc.GetChats(ctx, "a")
	if err != nil {
		t.Fatalf("GetChats failed: %v", err)
	}
	if len(views) != 1 {
		t.Fatalf("expected 1 chat, got %d", len(views))
	}
	view := views[0]
	if len(view.Participants) != 2 {
		t.Fatalf("expected 2 participant summaries, got %d", len(view.Participants))
	}
	found := map[string]bool{}
	for _, p := range view.Participants {
		found[p.UserID] = true
	}
	if !found[alice.ExternalID] || !found[bob.ExternalID] {
		t.Fatalf("expected summaries for both users, got %+v", view.Participants)
	}
	if view.LastMessage == nil || view.LastMessage.Content != "hey" {
		t.Fatalf("expected last message enrichment, got %+v", view.LastMessage)
	}
	if view.LastMessage.SenderID != bob.ID {
		t.Fatalf("expected last message sender %s, got %s", bob.ID, view.LastMessage.SenderID)
	}
}

func TestDeleteChatCascades(t *testing.T) {
	f := newChatFixture()
	alice := seedUser(f.users, "a", "Alice")
	seedUser(f.users, "b", "Bob")
	ctx := context.Background()

	chat, err := f.svc.CreateChat(ctx, "a", []string{"b"}, domain.ChatTypePrivate)
	if err != nil {
		t.Fatalf("CreateChat failed: %v", err)
	}

	text := domain.Message{ID: uuid.New(), MessageID: uuid.NewString(), ChatID: chat.ID, SenderID: alice.ID, Content: "hi", Type: domain.MessageTypeText, CreatedAt: time.Now()}
	url := "https://cdn.example.com/bucket/photo.png"
	image := domain.Message{ID: uuid.New(), MessageID: uuid.NewString(), ChatID: chat.ID, SenderID: alice.ID, Type: domain.MessageTypeImage, MediaURL: &url, CreatedAt: time.Now()}
	f.messages.messages[text.ID] = text
	f.messages.messages[image.ID] = image
	key := "photo.png"
	f.media.media[image.ID] = domain.Media{ID: uuid.New(), MessageID: image.ID, URL: url, ObjectKey: &key}

	if err := f.svc.DeleteChat(ctx, chat.ChatID); err != nil {
		t.Fatalf("DeleteChat failed: %v", err)
	}
	if len(f.messages.messages) != 0 {
		t.Fatalf("expected all messages removed, %d remain", len(f.messages.messages))
	}
	if len(f.media.media) != 0 {
		t.Fatalf("expected media rows removed, %d remain", len(f.media.media))
	}
	if len(f.chats.chats) != 0 {
		t.Fatalf("expected chat removed, %d remain", len(f.chats.chats))
	}
	if len(f.store.deleted) != 1 || f.store.deleted[0] != "photo.png" {
		t.Fatalf("expected stored object cleanup, got %v", f.store.deleted)
	}
}

func TestDeleteChatUnknown(t *testing.T) {
	f := newChatFixture()
	if err := f.svc.DeleteChat(context.Background(), "missing"); !errors.Is(err, chat_errors.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestAddUserToChatCreatesMissingUser(t *testing.T) {
	f := newChatFixture()
	seedUser(f.users, "a", "Alice")
	seedUser(f.users, "b", "Bob")
	ctx := context.Background()

	chat, err := f.svc.CreateChat(ctx, "a", []string{"b"}, domain.ChatTypeGroup)
	if err != nil {
		t.Fatalf("CreateChat failed: %v", err)
	}

	if err := f.svc.AddUserToChat(ctx, "new-ext", "Newcomer", chat.ChatID, domain.RoleUser, 0); err != nil {
		t.Fatalf("AddUserToChat failed: %v", err)
	}
	newcomer, err := f.users.GetByExternalID(ctx, "new-ext")
	if err != nil {
		t.Fatalf("expected the user to be created: %v", err)
	}
	stored, _ := f.chats.GetByChatID(ctx, chat.ChatID)
	joined := false
	for _, p := range stored.Participants {
		if p.UserID == newcomer.ID {
			joined = true
		}
	}
	if !joined {
		t.Fatal("expected newcomer in the participant set")
	}

	// Re-adding is a no-op.
	if err := f.svc.AddUserToChat(ctx, "new-ext", "Newcomer", chat.ChatID, domain.RoleUser, 0); err != nil {
		t.Fatalf("re-adding an existing participant should succeed: %v", err)
	}
}
