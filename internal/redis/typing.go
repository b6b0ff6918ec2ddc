package redis

import (
	"context"
	"strconv"
	"time"

	goredis "github.com/redis/go-redis/v9"
)

// Typing state keys:
// - typing:{chat_id} - sorted set of external user ids currently typing,
//   scored by last-asserted time; entries decay after the TTL window.

const typingKeyPrefix = "typing:"

// TypingStore tracks ephemeral typing indicators per chat.
type TypingStore struct {
	client *goredis.Client
	ttl    time.Duration
}

func NewTypingStore(client *goredis.Client, ttl time.Duration) *TypingStore {
	if ttl == 0 {
		ttl = 6 * time.Second
	}
	return &TypingStore{client: client, ttl: ttl}
}

// SetTyping marks userID as typing in the chat. The indicator decays after
// the store's TTL unless re-asserted.
func (t *TypingStore) SetTyping(ctx context.Context, chatID, userID string) error {
	key := typingKeyPrefix + chatID

	pipe := t.client.Pipeline()
	pipe.ZAdd(ctx, key, goredis.Z{
		Score:  float64(time.Now().UnixMilli()),
		Member: userID,
	})
	pipe.Expire(ctx, key, t.ttl)
	_, err := pipe.Exec(ctx)
	return err
}

// ClearTyping removes the user's typing indicator immediately.
func (t *TypingStore) ClearTyping(ctx context.Context, chatID, userID string) error {
	return t.client.ZRem(ctx, typingKeyPrefix+chatID, userID).Err()
}

// GetTyping returns the external ids of users whose indicator is still
// within the TTL window.
func (t *TypingStore) GetTyping(ctx context.Context, chatID string) ([]string, error) {
	key := typingKeyPrefix + chatID
	cutoff := time.Now().Add(-t.ttl).UnixMilli()

	// Drop entries that have aged out before reading.
	if err := t.client.ZRemRangeByScore(ctx, key, "0", strconv.FormatInt(cutoff, 10)).Err(); err != nil {
		return nil, err
	}
	return t.client.ZRange(ctx, key, 0, -1).Result()
}
