package redislock

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

var (
	// ErrNotAcquired ключ занят дольше, чем позволяет ожидание
	ErrNotAcquired = errors.New("redislock: lock not acquired")
)

// Освобождение только своим токеном, чтобы не снять чужой лок после истечения TTL
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// Options параметры блокировки
type Options struct {
	Prefix     string        // префикс ключей, например "lesson-booking:slot:"
	TTL        time.Duration // время жизни лока
	RetryDelay time.Duration // пауза между попытками
	MaxWait    time.Duration // сколько ждать занятый ключ
}

// Locker распределённая блокировка по ключу на Redis (SET NX PX)
type Locker struct {
	client *redis.Client
	opts   Options
}

// New создает Locker
func New(client *redis.Client, opts Options) *Locker {
	if opts.TTL <= 0 {
		opts.TTL = 10 * time.Second
	}
	if opts.RetryDelay <= 0 {
		opts.RetryDelay = 50 * time.Millisecond
	}
	if opts.MaxWait <= 0 {
		opts.MaxWait = 3 * time.Second
	}
	return &Locker{client: client, opts: opts}
}

// IsContention ключ занят другим владельцем или ожидание прервано контекстом.
// Остальные ошибки Acquire означают недоступность Redis.
func IsContention(err error) bool {
	return errors.Is(err, ErrNotAcquired) ||
		errors.Is(err, context.DeadlineExceeded) ||
		errors.Is(err, context.Canceled)
}

// Acquire захватывает ключ и возвращает функцию освобождения
func (l *Locker) Acquire(ctx context.Context, key string) (func(), error) {
	fullKey := l.opts.Prefix + key
	token := uuid.NewString()
	deadline := time.Now().Add(l.opts.MaxWait)

	for {
		ok, err := l.client.SetNX(ctx, fullKey, token, l.opts.TTL).Result()
		if err != nil {
			return nil, fmt.Errorf("redislock: set %s: %w", fullKey, err)
		}
		if ok {
			break
		}

		if time.Now().After(deadline) {
			return nil, fmt.Errorf("%w: %s", ErrNotAcquired, fullKey)
		}

		timer := time.NewTimer(l.opts.RetryDelay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, ctx.Err()
		case <-timer.C:
		}
	}

	return func() {
		// Освобождаем даже если контекст запроса уже отменён
		releaseCtx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		_ = releaseScript.Run(releaseCtx, l.client, []string{fullKey}, token).Err()
	}, nil
}
