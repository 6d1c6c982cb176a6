package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"roofchat_backend/internal/chat/domain"
	"roofchat_backend/platform/logger"
)

const sessionKeyPrefix = "chat:session:"

// RedisStore keeps each conversation as a single JSON value with a sliding
// TTL, so idle sessions expire on their own.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
	logger *logger.Logger
}

func NewRedisStore(client *redis.Client, ttl time.Duration, log *logger.Logger) *RedisStore {
	return &RedisStore{client: client, ttl: ttl, logger: log}
}

func (s *RedisStore) Get(ctx context.Context, sessionID string) (*domain.Conversation, bool, error) {
	raw, err := s.client.Get(ctx, sessionKey(sessionID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("load session %s: %w", sessionID, err)
	}

	var conv domain.Conversation
	if err := json.Unmarshal(raw, &conv); err != nil {
		// A corrupt record is unrecoverable; treat it as a fresh session
		// rather than wedging the widget.
		s.logger.StoreError("unmarshal", sessionID, err)
		return nil, false, nil
	}
	return &conv, true, nil
}

func (s *RedisStore) Save(ctx context.Context, conv *domain.Conversation) error {
	raw, err := json.Marshal(conv)
	if err != nil {
		return fmt.Errorf("marshal session %s: %w", conv.SessionID, err)
	}
	if err := s.client.Set(ctx, sessionKey(conv.SessionID), raw, s.ttl).Err(); err != nil {
		return fmt.Errorf("save session %s: %w", conv.SessionID, err)
	}
	return nil
}

func (s *RedisStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

func sessionKey(sessionID string) string {
	return sessionKeyPrefix + sessionID
}
