package store

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// Redis is the connection the audit queue runs on.
type Redis struct {
	Client *redis.Client
}

// NewRedis dials addr with short timeouts; queue operations that block
// (BRPOP) manage their own deadlines.
func NewRedis(addr string) *Redis {
	return &Redis{Client: redis.NewClient(&redis.Options{
		Addr:         addr,
		DialTimeout:  2 * time.Second,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 2 * time.Second,
	})}
}

// Healthy reports whether redis answers a ping.
func (r *Redis) Healthy(ctx context.Context) bool {
	if r == nil || r.Client == nil {
		return false
	}
	return r.Client.Ping(ctx).Err() == nil
}
