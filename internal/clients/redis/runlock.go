package redis

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"

	"github.com/devjourney/feature-engine/internal/platform/envutil"
	"github.com/devjourney/feature-engine/internal/platform/logger"
)

// RunLock is a SETNX-based mutex keeping two overlapping batch runs (e.g. a
// slow scheduled run plus a manual one) from computing the same users twice.
// The TTL bounds how long a crashed holder can block the next run.
type RunLock struct {
	log   *logger.Logger
	rdb   *goredis.Client
	key   string
	ttl   time.Duration
	token string
}

func NewRunLock(log *logger.Logger) (*RunLock, error) {
	if log == nil {
		return nil, fmt.Errorf("logger required")
	}

	addr := strings.TrimSpace(os.Getenv("REDIS_ADDR"))
	if addr == "" {
		return nil, fmt.Errorf("missing REDIS_ADDR")
	}
	key := envutil.String("RUN_LOCK_KEY", "feature-engine:run-lock")
	ttl := envutil.DurationMS("RUN_LOCK_TTL_MS", 2*time.Hour)

	rdb := goredis.NewClient(&goredis.Options{
		Addr:        addr,
		DialTimeout: 5 * time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}

	return &RunLock{
		log: log.With("service", "RunLock"),
		rdb: rdb,
		key: key,
		ttl: ttl,
	}, nil
}

func (l *RunLock) Acquire(ctx context.Context) (bool, error) {
	token := uuid.NewString()
	ok, err := l.rdb.SetNX(ctx, l.key, token, l.ttl).Result()
	if err != nil {
		return false, fmt.Errorf("acquire run lock: %w", err)
	}
	if ok {
		l.token = token
	}
	return ok, nil
}

// Release deletes the lock only when this process still holds it, so a lock
// that expired and was re-acquired elsewhere is left alone.
func (l *RunLock) Release(ctx context.Context) error {
	if l.token == "" {
		return nil
	}
	const script = `
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0`
	err := l.rdb.Eval(ctx, script, []string{l.key}, l.token).Err()
	l.token = ""
	if err != nil && err != goredis.Nil {
		return fmt.Errorf("release run lock: %w", err)
	}
	return nil
}

func (l *RunLock) Close() error {
	return l.rdb.Close()
}
