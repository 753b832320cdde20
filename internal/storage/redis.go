package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/converseworks/convkit/internal/connector"
	errx "github.com/converseworks/convkit/internal/core/error"
	"github.com/converseworks/convkit/internal/dialogue"
	"github.com/converseworks/convkit/internal/participant"
	logx "github.com/converseworks/convkit/pkg/logger"
)

// RedisStore keeps each participant pair's dialogues in a Redis list, one
// JSON record per dialogue, with an optional TTL refreshed on every export.
type RedisStore struct {
	rdb redis.Cmdable
	ttl time.Duration
}

// NewRedisStore creates a Redis-backed dialogue store. A zero ttl disables
// expiry.
func NewRedisStore(rdb redis.Cmdable, ttl time.Duration) *RedisStore {
	return &RedisStore{rdb: rdb, ttl: ttl}
}

func (s *RedisStore) pairKey(agentID, userID string) string {
	return fmt.Sprintf("dialogue:%s:%s", agentID, userID)
}

// Export appends the dialogue to the pair's list.
func (s *RedisStore) Export(d *dialogue.Dialogue, agent, user participant.Info) error {
	ctx := context.Background()
	b, err := json.Marshal(dialogueToRecord(d, agent, user))
	if err != nil {
		logx.Error().Err(err).Str("conversation_id", d.ConversationID()).Msg("failed to marshal dialogue")
		return errx.Fatal(err, "marshal dialogue")
	}
	key := s.pairKey(d.AgentID(), d.UserID())

	if err := s.rdb.RPush(ctx, key, b).Err(); err != nil {
		logx.Error().Err(err).Str("key", key).Msg("failed to push dialogue to redis")
		return errx.WrapRedis(err)
	}
	// extend TTL on touch
	if s.ttl > 0 {
		if ok, err := s.rdb.Expire(ctx, key, s.ttl).Result(); err != nil {
			logx.Error().Err(err).Str("key", key).Msg("failed to set expire")
			return errx.WrapRedis(err)
		} else if !ok {
			logx.Warn().Str("key", key).Dur("ttl", s.ttl).Msg("failed to set TTL on dialogue key")
		}
	}
	return nil
}

// Load reads every dialogue stored for the participant pair. An absent key
// yields an empty slice.
func (s *RedisStore) Load(ctx context.Context, agentID, userID string) ([]*dialogue.Dialogue, error) {
	key := s.pairKey(agentID, userID)

	rows, err := s.rdb.LRange(ctx, key, 0, -1).Result()
	if err != nil {
		if err == redis.Nil {
			return nil, nil
		}
		logx.Error().Err(err).Str("key", key).Msg("failed to load dialogues from redis")
		return nil, errx.WrapRedis(err)
	}

	dialogues := make([]*dialogue.Dialogue, 0, len(rows))
	for i, row := range rows {
		var rec map[string]any
		if err := json.Unmarshal([]byte(row), &rec); err != nil {
			logx.Error().Err(err).Str("key", key).Int("index", i).Msg("failed to unmarshal dialogue")
			return nil, fmt.Errorf("unmarshal dialogue at index %d: %w", i, err)
		}
		d, err := recordToDialogue(rec)
		if err != nil {
			return nil, fmt.Errorf("dialogue at index %d: %w", i, err)
		}
		dialogues = append(dialogues, d)
	}
	return dialogues, nil
}

// Clear removes every dialogue stored for the participant pair.
func (s *RedisStore) Clear(ctx context.Context, agentID, userID string) error {
	key := s.pairKey(agentID, userID)
	if err := s.rdb.Del(ctx, key).Err(); err != nil {
		logx.Error().Err(err).Str("key", key).Msg("failed to delete dialogues from redis")
		return errx.WrapRedis(err)
	}
	return nil
}

// Count returns the number of dialogues stored for the participant pair.
func (s *RedisStore) Count(ctx context.Context, agentID, userID string) (int, error) {
	key := s.pairKey(agentID, userID)
	n, err := s.rdb.LLen(ctx, key).Result()
	if err != nil {
		if err == redis.Nil {
			return 0, nil
		}
		logx.Error().Err(err).Str("key", key).Msg("failed to count dialogues in redis")
		return 0, errx.WrapRedis(err)
	}
	return int(n), nil
}

var _ connector.Store = (*RedisStore)(nil)
