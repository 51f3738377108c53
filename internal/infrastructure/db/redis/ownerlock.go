package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const (
	lockTTL       = 15 * time.Second
	lockRetryWait = 25 * time.Millisecond
)

// releaseScript deletes the lock key only when it is still held by us, so a
// lock that expired and was re-acquired by another holder is never deleted.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// OwnerLock serializes all balance-mutating operations for a single owner
// across concurrent pipelines and across instances.
// Key format: credits:lock:<owner_id>
type OwnerLock struct {
	client *redis.Client
}

// NewOwnerLock creates an OwnerLock wrapping the given Redis client.
func NewOwnerLock(client *redis.Client) *OwnerLock {
	return &OwnerLock{client: client}
}

// Acquire blocks until the owner's lock is held or ctx expires. The lock
// carries a TTL so a crashed holder cannot deadlock settlements forever.
func (l *OwnerLock) Acquire(ctx context.Context, ownerID string) (func(), error) {
	key := fmt.Sprintf("credits:lock:%s", ownerID)
	token := uuid.NewString()

	for {
		ok, err := l.client.SetNX(ctx, key, token, lockTTL).Result()
		if err != nil {
			return nil, fmt.Errorf("owner lock: %w", err)
		}
		if ok {
			return func() {
				releaseCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
				defer cancel()
				_ = releaseScript.Run(releaseCtx, l.client, []string{key}, token).Err()
			}, nil
		}

		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("owner lock: %w", ctx.Err())
		case <-time.After(lockRetryWait):
		}
	}
}
