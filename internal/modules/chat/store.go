package chat

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"yourhelpa/internal/modules/intent"
)

// Store persists chat sessions and their display history.
type Store interface {
	Load(ctx context.Context, id string) (*Session, error)
	Save(ctx context.Context, id string, s *Session) error
	Append(ctx context.Context, id string, msgs ...intent.Message) error
	History(ctx context.Context, id string) ([]intent.Message, error)
	Delete(ctx context.Context, id string) error
}

// RedisStore keeps one JSON document and one capped list per session, both
// expiring after ttl of inactivity.
type RedisStore struct {
	rdb        *redis.Client
	ttl        time.Duration
	historyCap int64
}

func NewRedisStore(rdb *redis.Client, ttl time.Duration, historyCap int) *RedisStore {
	if historyCap <= 0 {
		historyCap = 50
	}
	return &RedisStore{rdb: rdb, ttl: ttl, historyCap: int64(historyCap)}
}

func sessionKey(id string) string { return "chat:session:" + id }
func historyKey(id string) string { return "chat:history:" + id }

// Load returns the stored session, or a fresh idle one when none exists.
func (s *RedisStore) Load(ctx context.Context, id string) (*Session, error) {
	raw, err := s.rdb.Get(ctx, sessionKey(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return &Session{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load session: %w", err)
	}
	var sess Session
	if err := json.Unmarshal(raw, &sess); err != nil {
		return nil, fmt.Errorf("decode session: %w", err)
	}
	return &sess, nil
}

func (s *RedisStore) Save(ctx context.Context, id string, sess *Session) error {
	raw, err := json.Marshal(sess)
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}
	if err := s.rdb.Set(ctx, sessionKey(id), raw, s.ttl).Err(); err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	return nil
}

// Append pushes msgs onto the history list and trims it to the newest
// historyCap entries.
func (s *RedisStore) Append(ctx context.Context, id string, msgs ...intent.Message) error {
	if len(msgs) == 0 {
		return nil
	}
	values := make([]any, 0, len(msgs))
	for _, m := range msgs {
		raw, err := json.Marshal(m)
		if err != nil {
			return fmt.Errorf("encode message: %w", err)
		}
		values = append(values, raw)
	}
	key := historyKey(id)
	_, err := s.rdb.TxPipelined(ctx, func(p redis.Pipeliner) error {
		p.RPush(ctx, key, values...)
		p.LTrim(ctx, key, -s.historyCap, -1)
		if s.ttl > 0 {
			p.Expire(ctx, key, s.ttl)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("append history: %w", err)
	}
	return nil
}

func (s *RedisStore) History(ctx context.Context, id string) ([]intent.Message, error) {
	raws, err := s.rdb.LRange(ctx, historyKey(id), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("load history: %w", err)
	}
	out := make([]intent.Message, 0, len(raws))
	for _, raw := range raws {
		var m intent.Message
		if err := json.Unmarshal([]byte(raw), &m); err != nil {
			return nil, fmt.Errorf("decode message: %w", err)
		}
		out = append(out, m)
	}
	return out, nil
}

func (s *RedisStore) Delete(ctx context.Context, id string) error {
	if err := s.rdb.Del(ctx, sessionKey(id), historyKey(id)).Err(); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}
