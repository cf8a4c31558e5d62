package bootstrap

import (
	"context"
	"fmt"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"github.com/mira-tracker/mira-backend/config"
)

// MemoryRedisAddr selects an in-process redis for sessions.
const MemoryRedisAddr = "memory"

// OpenRedis connects to the session store. With Addr "memory" it starts an
// embedded server that lives until the returned close func runs.
func OpenRedis(ctx context.Context, cfg config.RedisConfig) (*redis.Client, func(), error) {
	addr := cfg.Addr
	var embedded *miniredis.Miniredis
	if addr == MemoryRedisAddr {
		mr, err := miniredis.Run()
		if err != nil {
			return nil, nil, fmt.Errorf("start embedded redis: %w", err)
		}
		embedded = mr
		addr = mr.Addr()
	}

	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	pctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := client.Ping(pctx).Err(); err != nil {
		client.Close()
		if embedded != nil {
			embedded.Close()
		}
		return nil, nil, fmt.Errorf("redis ping: %w", err)
	}

	closeFn := func() {
		client.Close()
		if embedded != nil {
			embedded.Close()
		}
	}
	return client, closeFn, nil
}
