package leader

import (
	"context"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

const leaderKey = "leader"

// Elector grants one instance at a time the right to run the health
// probing loop. The lease is not renewed: the key expires after its TTL
// and is re-acquired on the next cycle, so leadership may rotate silently
// between cycles. Contention is not an error, just a false return.
type Elector interface {
	AmILeader(ctx context.Context, instanceName string, ttl time.Duration) (bool, error)
}

func NewRedisElector(client *redis.Client) Elector {
	return &redisElector{client}
}

type redisElector struct {
	client *redis.Client
}

func (e *redisElector) AmILeader(ctx context.Context, instanceName string, ttl time.Duration) (bool, error) {
	acquired, err := e.client.SetNX(ctx, leaderKey, instanceName, ttl).Result()
	if err != nil {
		return false, err
	}
	if acquired {
		return true, nil
	}
	current, err := e.client.Get(ctx, leaderKey).Result()
	if err == redis.Nil {
		// lease expired between the SetNX and the Get; next cycle retries
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return current == instanceName, nil
}

// NewMemoryElector is the in-process equivalent of the Redis elector, used
// by tests and single-instance in-memory deployments.
func NewMemoryElector() Elector {
	return &memoryElector{}
}

type memoryElector struct {
	mu      sync.Mutex
	holder  string
	expires time.Time
}

func (e *memoryElector) AmILeader(_ context.Context, instanceName string, ttl time.Duration) (bool, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	now := time.Now()
	if e.holder == "" || now.After(e.expires) {
		e.holder = instanceName
		e.expires = now.Add(ttl)
		return true, nil
	}
	return e.holder == instanceName, nil
}
