package health

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/alexsandroveiga/paygate/src/domain"
	"github.com/redis/go-redis/v9"
)

const activeRouteKey = "actual-payment-service"

// Repository shares the published active-route verdict across instances.
// The leader writes it each probe cycle; followers read it instead of
// probing themselves.
type Repository interface {
	Update(ctx context.Context, record *domain.HealthRecord) error
	Actual(ctx context.Context) (*domain.HealthRecord, error)
}

func NewRedisRepository(client *redis.Client) Repository {
	return &redisRepository{client}
}

type redisRepository struct {
	client *redis.Client
}

func (r *redisRepository) Update(ctx context.Context, record *domain.HealthRecord) error {
	if record == nil {
		return nil
	}
	data, err := json.Marshal(record)
	if err != nil {
		return err
	}
	return r.client.Set(ctx, activeRouteKey, data, 0).Err()
}

func (r *redisRepository) Actual(ctx context.Context) (*domain.HealthRecord, error) {
	data, err := r.client.Get(ctx, activeRouteKey).Result()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var record domain.HealthRecord
	if err := json.Unmarshal([]byte(data), &record); err != nil {
		return nil, err
	}
	return &record, nil
}

// NewMemoryRepository backs the same contract with process-local state,
// for tests and single-instance in-memory deployments.
func NewMemoryRepository() Repository {
	return &memoryRepository{}
}

type memoryRepository struct {
	mu     sync.RWMutex
	actual *domain.HealthRecord
}

func (r *memoryRepository) Update(_ context.Context, record *domain.HealthRecord) error {
	if record == nil {
		return nil
	}
	copied := *record
	r.mu.Lock()
	r.actual = &copied
	r.mu.Unlock()
	return nil
}

func (r *memoryRepository) Actual(_ context.Context) (*domain.HealthRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.actual == nil {
		return nil, nil
	}
	copied := *r.actual
	return &copied, nil
}
