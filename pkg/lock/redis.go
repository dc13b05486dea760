package lock

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/noah-isme/roster-etl/pkg/config"
)

// ErrHeld is returned when another run owns the lock.
var ErrHeld = errors.New("lock held by another run")

const releaseScript = `if redis.call("GET", KEYS[1]) == ARGV[1] then return redis.call("DEL", KEYS[1]) else return 0 end`

type client interface {
	SetNX(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.BoolCmd
	Eval(ctx context.Context, script string, keys []string, args ...interface{}) *redis.Cmd
}

// NewRedis returns a configured Redis client.
func NewRedis(ctx context.Context, cfg config.RedisConfig) (*redis.Client, error) {
	addr := fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)

	c := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := c.Ping(pingCtx).Err(); err != nil {
		_ = c.Close()
		return nil, err
	}

	return c, nil
}

// RunLock is a single-holder lock stored under one redis key. The value is a
// random token so only the holder can release it.
type RunLock struct {
	client client
	key    string
	ttl    time.Duration
	token  string
}

// NewRunLock builds a lock on key that expires after ttl if never released.
func NewRunLock(c client, key string, ttl time.Duration) *RunLock {
	return &RunLock{client: c, key: key, ttl: ttl, token: uuid.NewString()}
}

// Acquire takes the lock or returns ErrHeld.
func (l *RunLock) Acquire(ctx context.Context) error {
	ok, err := l.client.SetNX(ctx, l.key, l.token, l.ttl).Result()
	if err != nil {
		return fmt.Errorf("acquire lock %s: %w", l.key, err)
	}
	if !ok {
		return ErrHeld
	}
	return nil
}

// Release frees the lock if this holder still owns it.
func (l *RunLock) Release(ctx context.Context) error {
	if err := l.client.Eval(ctx, releaseScript, []string{l.key}, l.token).Err(); err != nil {
		return fmt.Errorf("release lock %s: %w", l.key, err)
	}
	return nil
}
