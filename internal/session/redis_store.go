package session

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/go-redis/redis/v8"
)

const (
	redisKeyPrefix   = "kidsvids:session:"
	fieldParentID    = "parent_id"
	fieldSelectedKid = "selected_kid_id"
)

// RedisStore persists each session as a hash
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisStore creates a store. A zero ttl keeps sessions until logout.
func NewRedisStore(client *redis.Client, ttl time.Duration) *RedisStore {
	return &RedisStore{client: client, ttl: ttl}
}

func (r *RedisStore) Load(ctx context.Context, key string) (State, error) {
	fields, err := r.client.HGetAll(ctx, redisKeyPrefix+key).Result()
	if err != nil {
		return State{}, fmt.Errorf("failed to load session from redis: %w", err)
	}

	var st State
	if st.ParentID, err = parseField(fields, fieldParentID); err != nil {
		return State{}, err
	}
	if st.SelectedKidID, err = parseField(fields, fieldSelectedKid); err != nil {
		return State{}, err
	}
	return st, nil
}

func (r *RedisStore) Save(ctx context.Context, key string, state State) error {
	redisKey := redisKeyPrefix + key
	values := map[string]interface{}{}
	if state.ParentID != nil {
		values[fieldParentID] = *state.ParentID
	}
	if state.SelectedKidID != nil {
		values[fieldSelectedKid] = *state.SelectedKidID
	}

	pipe := r.client.TxPipeline()
	pipe.Del(ctx, redisKey)
	if len(values) > 0 {
		pipe.HSet(ctx, redisKey, values)
		if r.ttl > 0 {
			pipe.Expire(ctx, redisKey, r.ttl)
		}
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to save session to redis: %w", err)
	}
	return nil
}

func (r *RedisStore) Clear(ctx context.Context, key string) error {
	if err := r.client.Del(ctx, redisKeyPrefix+key).Err(); err != nil {
		return fmt.Errorf("failed to clear session in redis: %w", err)
	}
	return nil
}

func parseField(fields map[string]string, name string) (*int64, error) {
	raw, ok := fields[name]
	if !ok || raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid %s in redis session: %w", name, err)
	}
	return &v, nil
}
