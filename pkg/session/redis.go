package session

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	errs "github.com/matzehuels/tuigraph/pkg/errors"
)

// RedisConfig configures [NewRedisStore].
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
	// Prefix namespaces keys; defaults to "tuigraph:".
	Prefix string
}

// RedisStore keeps each session payload under "<prefix>session:<id>" and
// indexes ids in a sorted set scored by update time.
type RedisStore struct {
	client *redis.Client
	prefix string
}

// NewRedisStore connects and pings the server.
func NewRedisStore(ctx context.Context, cfg RedisConfig) (*RedisStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, errs.Wrap(errs.ErrCodeIO, err, "connect to redis at %s", cfg.Addr)
	}
	return newRedisStore(client, cfg.Prefix), nil
}

func newRedisStore(client *redis.Client, prefix string) *RedisStore {
	if prefix == "" {
		prefix = "tuigraph:"
	}
	return &RedisStore{client: client, prefix: prefix}
}

func (s *RedisStore) key(id string) string { return s.prefix + "session:" + id }
func (s *RedisStore) indexKey() string     { return s.prefix + "sessions" }

func (s *RedisStore) Get(ctx context.Context, id string) (*Session, error) {
	if err := ValidateID(id); err != nil {
		return nil, err
	}
	data, err := s.client.Get(ctx, s.key(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, notFound(id)
	}
	if err != nil {
		return nil, errs.Wrap(errs.ErrCodeIO, err, "redis get %s", id)
	}
	return Decode(data)
}

func (s *RedisStore) Set(ctx context.Context, sess *Session) error {
	data, err := Encode(sess)
	if err != nil {
		return err
	}
	_, err = s.client.TxPipelined(ctx, func(p redis.Pipeliner) error {
		p.Set(ctx, s.key(sess.ID), data, 0)
		p.ZAdd(ctx, s.indexKey(), redis.Z{
			Score:  float64(sess.UpdatedAt.UnixMilli()),
			Member: sess.ID,
		})
		return nil
	})
	if err != nil {
		return errs.Wrap(errs.ErrCodeIO, err, "redis set %s", sess.ID)
	}
	return nil
}

func (s *RedisStore) Delete(ctx context.Context, id string) error {
	if err := ValidateID(id); err != nil {
		return err
	}
	_, err := s.client.TxPipelined(ctx, func(p redis.Pipeliner) error {
		p.Del(ctx, s.key(id))
		p.ZRem(ctx, s.indexKey(), id)
		return nil
	})
	if err != nil {
		return errs.Wrap(errs.ErrCodeIO, err, "redis delete %s", id)
	}
	return nil
}

// List drops index entries whose payload has expired or been removed.
func (s *RedisStore) List(ctx context.Context) ([]Summary, error) {
	ids, err := s.client.ZRevRange(ctx, s.indexKey(), 0, -1).Result()
	if err != nil {
		return nil, errs.Wrap(errs.ErrCodeIO, err, "redis list")
	}
	if len(ids) == 0 {
		return nil, nil
	}
	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = s.key(id)
	}
	vals, err := s.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, errs.Wrap(errs.ErrCodeIO, err, "redis mget")
	}

	var out, stale = []Summary{}, []any{}
	for i, v := range vals {
		str, ok := v.(string)
		if !ok {
			stale = append(stale, ids[i])
			continue
		}
		sess, err := Decode([]byte(str))
		if err != nil {
			continue
		}
		out = append(out, sess.Summary())
	}
	if len(stale) > 0 {
		if err := s.client.ZRem(ctx, s.indexKey(), stale...).Err(); err != nil {
			return nil, errs.Wrap(errs.ErrCodeIO, err, "redis prune index")
		}
	}
	sortSummaries(out)
	return out, nil
}

func (s *RedisStore) Close() error {
	if err := s.client.Close(); err != nil {
		return fmt.Errorf("close redis: %w", err)
	}
	return nil
}

var _ Store = (*RedisStore)(nil)
