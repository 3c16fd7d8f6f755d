package rediscache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"bakeshop/internal/config"
)

const (
	attemptKeyPrefix = "signin_attempts:"
	tokenKeyPrefix   = "reset_token:"
)

func Connect(ctx context.Context, cfg config.RedisConfig) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to ping redis: %w", err)
	}

	return client, nil
}

// countAttemptScript bumps the counter and starts the window atomically on
// the first attempt.
var countAttemptScript = redis.NewScript(`
local n = redis.call('INCR', KEYS[1])
if n == 1 then
	redis.call('EXPIRE', KEYS[1], ARGV[1])
end
return n
`)

// Limiter counts sign-in attempts per key within a rolling window.
type Limiter struct {
	client *redis.Client
	max    int
	window time.Duration
}

func NewLimiter(client *redis.Client, max int, window time.Duration) *Limiter {
	return &Limiter{client: client, max: max, window: window}
}

// Allow records one attempt and reports whether it stays inside the budget.
func (l *Limiter) Allow(ctx context.Context, key string) (bool, error) {
	n, err := countAttemptScript.Run(ctx, l.client, []string{attemptKeyPrefix + key}, l.windowSeconds()).Int()
	if err != nil {
		return false, fmt.Errorf("failed to count attempt: %w", err)
	}

	return n <= l.max, nil
}

// windowSeconds clamps the window to at least one second. EXPIRE with 0
// deletes the key outright, which would disable the limiter entirely.
func (l *Limiter) windowSeconds() int {
	seconds := int(l.window / time.Second)
	if seconds < 1 {
		return 1
	}
	return seconds
}

// Reset clears the window, e.g. after a successful sign-in.
func (l *Limiter) Reset(ctx context.Context, key string) error {
	return l.client.Del(ctx, attemptKeyPrefix+key).Err()
}

var ErrTokenNotFound = errors.New("token not found or expired")

// TokenStore holds single-use password-reset tokens with a TTL.
type TokenStore struct {
	client *redis.Client
	ttl    time.Duration
}

func NewTokenStore(client *redis.Client, ttl time.Duration) *TokenStore {
	return &TokenStore{client: client, ttl: ttl}
}

func (s *TokenStore) Put(ctx context.Context, token, userID string) error {
	return s.client.Set(ctx, tokenKeyPrefix+token, userID, s.ttl).Err()
}

// Consume redeems the token exactly once and returns the user it was issued
// for.
func (s *TokenStore) Consume(ctx context.Context, token string) (string, error) {
	userID, err := s.client.GetDel(ctx, tokenKeyPrefix+token).Result()
	if errors.Is(err, redis.Nil) {
		return "", ErrTokenNotFound
	}
	if err != nil {
		return "", fmt.Errorf("failed to redeem token: %w", err)
	}
	return userID, nil
}
