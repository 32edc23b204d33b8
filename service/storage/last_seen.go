package storage

import (
	"context"
	"time"

	"chatline/logger"

	"github.com/redis/go-redis/v9"
)

// last-seen key: chat:last_seen:<user>
// Value: RFC3339 instant of the user's most recent disconnect.
func lastSeenKey(user string) string { return "chat:last_seen:" + user }

const lastSeenTTL = 30 * 24 * time.Hour

// LastSeenStore records disconnect instants in redis so profile reads can
// answer "last seen" after a restart.
type LastSeenStore struct {
	client *redis.Client
}

func NewLastSeenStore(client *redis.Client) *LastSeenStore {
	return &LastSeenStore{client: client}
}

// Touch is called from the gateway's disconnect path. Best-effort; a redis
// outage must not block connection teardown.
func (s *LastSeenStore) Touch(userID string, at time.Time) {
	if s == nil || s.client == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := s.client.Set(ctx, lastSeenKey(userID), at.UTC().Format(time.RFC3339), lastSeenTTL).Err(); err != nil {
		logger.Warnf("[storage] last-seen write for %s: %v", userID, err)
	}
}

func (s *LastSeenStore) LastSeen(ctx context.Context, userID string) (time.Time, bool) {
	if s == nil || s.client == nil {
		return time.Time{}, false
	}
	val, err := s.client.Get(ctx, lastSeenKey(userID)).Result()
	if err != nil {
		if err != redis.Nil {
			logger.Warnf("[storage] last-seen read for %s: %v", userID, err)
		}
		return time.Time{}, false
	}
	at, err := time.Parse(time.RFC3339, val)
	if err != nil {
		return time.Time{}, false
	}
	return at, true
}
