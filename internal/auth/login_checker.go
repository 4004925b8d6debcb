package auth

import (
	"context"
	"errors"
	"time"

	"github.com/go-redis/redis/v8"
)

type LoginChecker struct {
	ttl         time.Duration
	redisClient *redis.Client
}

func NewLoginChecker(ttl time.Duration, redisClient *redis.Client) *LoginChecker {
	return &LoginChecker{
		ttl:         ttl,
		redisClient: redisClient,
	}
}

func (lc *LoginChecker) UserID(ctx context.Context, token string) (int, bool, error) {
	cmd := lc.redisClient.Get(ctx, sessionKey(token))
	if err := cmd.Err(); err != nil {
		if errors.Is(err, redis.Nil) {
			return 0, false, nil
		}
		return 0, false, err
	}

	userID, createdAt, err := decodeSession(cmd.Val())
	if err != nil {
		return 0, false, err
	}

	if time.Since(createdAt) > lc.ttl {
		return 0, false, nil
	}

	return userID, true, nil
}
