// Package storage wraps the redis mirror of presence metadata. The live
// registry stays in process memory; redis only carries what must outlive a
// connection, currently the last-seen instant per user.
package storage

import (
	"context"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

var (
	redisOnce sync.Once
	rdb       *redis.Client
)

type Config struct {
	Addr     string
	Password string
	DB       int
}

// InitRedis connects the process-wide client. Safe to call more than once;
// only the first call dials.
func InitRedis(c Config) error {
	var initErr error
	redisOnce.Do(func() {
		client := redis.NewClient(&redis.Options{
			Addr:     c.Addr,
			Password: c.Password,
			DB:       c.DB,
		})
		ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		if err := client.Ping(ctx).Err(); err != nil {
			initErr = err
			return
		}
		rdb = client
	})
	return initErr
}

func GetRedis() *redis.Client {
	return rdb
}

func CloseRedis() error {
	if rdb != nil {
		return rdb.Close()
	}
	return nil
}
