package store

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/pbaille/studytrack/internal/logger"
)

const redisOpTimeout = 3 * time.Second

// Redis is a KeyStore kept in a Redis server. Every key is namespaced
// under prefix so several trackers can share one database.
type Redis struct {
	rdb    *goredis.Client
	prefix string
	log    *logger.Logger
}

// NewRedis connects to addr and verifies the connection with a ping.
func NewRedis(addr, prefix string, log *logger.Logger) (*Redis, error) {
	if log == nil {
		log = logger.NewNop()
	}
	addr = strings.TrimSpace(addr)
	if addr == "" {
		return nil, fmt.Errorf("missing redis address")
	}

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

	return &Redis{
		rdb:    rdb,
		prefix: prefix,
		log:    log.With("store", "redis"),
	}, nil
}

func (r *Redis) Close() error {
	return r.rdb.Close()
}

func (r *Redis) Get(key string) (string, bool) {
	ctx, cancel := context.WithTimeout(context.Background(), redisOpTimeout)
	defer cancel()
	v, err := r.rdb.Get(ctx, r.prefix+key).Result()
	if err == nil {
		return v, true
	}
	if !errors.Is(err, goredis.Nil) {
		r.log.Error("get key", "key", key, "error", err)
	}
	return "", false
}

func (r *Redis) Set(key, value string) {
	ctx, cancel := context.WithTimeout(context.Background(), redisOpTimeout)
	defer cancel()
	if err := r.rdb.Set(ctx, r.prefix+key, value, 0).Err(); err != nil {
		r.log.Error("set key", "key", key, "error", err)
	}
}

func (r *Redis) Remove(key string) {
	ctx, cancel := context.WithTimeout(context.Background(), redisOpTimeout)
	defer cancel()
	if err := r.rdb.Del(ctx, r.prefix+key).Err(); err != nil {
		r.log.Error("remove key", "key", key, "error", err)
	}
}
