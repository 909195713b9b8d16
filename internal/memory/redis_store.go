package memory

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/workmate-ai/intake/internal/clarify"
)

// RedisStore implements Store using Redis
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration // Session TTL (time to live)
}

// NewRedisStore creates a new Redis-backed store
func NewRedisStore(redisURL string, ttl time.Duration) (*RedisStore, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
	}

	client := redis.NewClient(opt)

	// Test connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &RedisStore{
		client: client,
		ttl:    ttl,
	}, nil
}

func (r *RedisStore) pendingKey(tenantID, sessionID string) string {
	return fmt.Sprintf("pending_request:%s:%s", tenantID, sessionID)
}

func (r *RedisStore) historyKey(tenantID, sessionID string) string {
	return fmt.Sprintf("chat_history:%s:%s", tenantID, sessionID)
}

// GetPending loads the pending request from Redis, or nil if none exists.
func (r *RedisStore) GetPending(ctx context.Context, tenantID, sessionID string) (*clarify.PendingRequest, error) {
	data, err := r.client.Get(ctx, r.pendingKey(tenantID, sessionID)).Result()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load pending request: %w", err)
	}

	var pending clarify.PendingRequest
	if err := json.Unmarshal([]byte(data), &pending); err != nil {
		return nil, fmt.Errorf("failed to parse pending request: %w", err)
	}
	return &pending, nil
}

// SetPending stores the pending request with a refreshed TTL.
func (r *RedisStore) SetPending(ctx context.Context, tenantID, sessionID string, pending *clarify.PendingRequest) error {
	data, err := json.Marshal(pending)
	if err != nil {
		return fmt.Errorf("failed to marshal pending request: %w", err)
	}

	key := r.pendingKey(tenantID, sessionID)
	if err := r.client.Set(ctx, key, data, r.ttl).Err(); err != nil {
		return fmt.Errorf("failed to save pending request: %w", err)
	}
	return nil
}

// ClearPending removes the pending request from Redis.
func (r *RedisStore) ClearPending(ctx context.Context, tenantID, sessionID string) error {
	if err := r.client.Del(ctx, r.pendingKey(tenantID, sessionID)).Err(); err != nil {
		return fmt.Errorf("failed to clear pending request: %w", err)
	}
	return nil
}

// AppendMessage appends one history entry and refreshes the list's TTL.
func (r *RedisStore) AppendMessage(ctx context.Context, tenantID, sessionID, role, content string) error {
	item, err := json.Marshal(Message{Role: role, Content: content})
	if err != nil {
		return fmt.Errorf("failed to marshal message: %w", err)
	}

	key := r.historyKey(tenantID, sessionID)
	if err := r.client.RPush(ctx, key, item).Err(); err != nil {
		return fmt.Errorf("failed to append message: %w", err)
	}
	if err := r.client.Expire(ctx, key, r.ttl).Err(); err != nil {
		return fmt.Errorf("failed to refresh history TTL: %w", err)
	}
	return nil
}

// History returns all history entries for a session in order.
func (r *RedisStore) History(ctx context.Context, tenantID, sessionID string) ([]Message, error) {
	items, err := r.client.LRange(ctx, r.historyKey(tenantID, sessionID), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to load history: %w", err)
	}

	messages := make([]Message, 0, len(items))
	for _, item := range items {
		var msg Message
		if err := json.Unmarshal([]byte(item), &msg); err != nil {
			return nil, fmt.Errorf("failed to parse history entry: %w", err)
		}
		messages = append(messages, msg)
	}
	return messages, nil
}

// Close closes the Redis connection
func (r *RedisStore) Close() error {
	return r.client.Close()
}

// Ping verifies the Redis connection is alive
func (r *RedisStore) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}
