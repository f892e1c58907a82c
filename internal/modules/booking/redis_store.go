// README: Booking store backed by Redis; keys expire with the session TTL.
package booking

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	bookingKeyPrefix = "booking:%s"
	sessionKeyPrefix = "booking:session:%s"
)

type redisRecord struct {
	Session string   `json:"session"`
	Booking *Booking `json:"booking"`
}

type RedisStore struct {
	redis *redis.Client
	ttl   time.Duration
}

func NewRedisStore(client *redis.Client, ttl time.Duration) *RedisStore {
	return &RedisStore{redis: client, ttl: ttl}
}

func bookingKey(id string) string        { return fmt.Sprintf(bookingKeyPrefix, id) }
func sessionKey(sessionID string) string { return fmt.Sprintf(sessionKeyPrefix, sessionID) }

func (s *RedisStore) Create(ctx context.Context, sessionID string, b *Booking) error {
	raw, err := json.Marshal(redisRecord{Session: sessionID, Booking: b})
	if err != nil {
		return err
	}
	ok, err := s.redis.SetNX(ctx, bookingKey(b.ID), raw, s.ttl).Result()
	if err != nil {
		return err
	}
	if !ok {
		return ErrConflict
	}

	if err := s.redis.LPush(ctx, sessionKey(sessionID), b.ID).Err(); err != nil {
		return err
	}
	return s.touch(ctx, sessionID)
}

func (s *RedisStore) Get(ctx context.Context, id string) (*Booking, error) {
	raw, err := s.redis.Get(ctx, bookingKey(id)).Bytes()
	if err == redis.Nil {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return decodeRecord(raw)
}

func (s *RedisStore) ListBySession(ctx context.Context, sessionID string) ([]*Booking, error) {
	ids, err := s.redis.LRange(ctx, sessionKey(sessionID), 0, -1).Result()
	if err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return []*Booking{}, nil
	}
	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = bookingKey(id)
	}
	vals, err := s.redis.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, err
	}
	out := make([]*Booking, 0, len(vals))
	for _, v := range vals {
		str, ok := v.(string)
		if !ok {
			// expired between LRANGE and MGET
			continue
		}
		b, err := decodeRecord([]byte(str))
		if err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, nil
}

func (s *RedisStore) Update(ctx context.Context, b *Booking, prevVersion int) (bool, error) {
	key := bookingKey(b.ID)
	updated := false
	var session string
	err := s.redis.Watch(ctx, func(tx *redis.Tx) error {
		raw, err := tx.Get(ctx, key).Bytes()
		if err == redis.Nil {
			return ErrNotFound
		}
		if err != nil {
			return err
		}
		var rec redisRecord
		if err := json.Unmarshal(raw, &rec); err != nil {
			return err
		}
		if rec.Booking == nil || rec.Booking.StatusVersion != prevVersion {
			return nil
		}
		next, err := json.Marshal(redisRecord{Session: rec.Session, Booking: b})
		if err != nil {
			return err
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, next, s.ttl)
			return nil
		})
		if err == nil {
			updated = true
			session = rec.Session
		}
		return err
	}, key)
	if errors.Is(err, redis.TxFailedErr) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if updated {
		// the write landed; a failed TTL refresh only shortens the session
		_ = s.touch(ctx, session)
	}
	return updated, nil
}

// touch extends the session index and every booking it lists.
func (s *RedisStore) touch(ctx context.Context, sessionID string) error {
	ids, err := s.redis.LRange(ctx, sessionKey(sessionID), 0, -1).Result()
	if err != nil {
		return err
	}
	pipe := s.redis.Pipeline()
	pipe.Expire(ctx, sessionKey(sessionID), s.ttl)
	for _, id := range ids {
		pipe.Expire(ctx, bookingKey(id), s.ttl)
	}
	_, err = pipe.Exec(ctx)
	return err
}

func decodeRecord(raw []byte) (*Booking, error) {
	var rec redisRecord
	if err := json.Unmarshal(raw, &rec); err != nil {
		return nil, fmt.Errorf("decode booking: %w", err)
	}
	if rec.Booking == nil {
		return nil, ErrNotFound
	}
	rec.Booking.SessionID = rec.Session
	return rec.Booking, nil
}
