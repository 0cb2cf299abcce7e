package dispatch

import (
	"context"
	"encoding/json"
	"time"

	"github.com/alexsandroveiga/paygate/src/domain"
	"github.com/redis/go-redis/v9"
)

const queueKey = "payments-queued"

// Queue is the shared work queue the workers pull from. The Redis
// implementation is durable and shared across instances; the memory
// implementation keeps everything in-process. Both behave the same from
// the dispatcher's point of view.
type Queue interface {
	Enqueue(ctx context.Context, req domain.PaymentRequest) error
	// Dequeue blocks until a request is available or ctx is cancelled.
	Dequeue(ctx context.Context) (domain.PaymentRequest, error)
}

func NewRedisQueue(client *redis.Client) Queue {
	return &redisQueue{client}
}

type redisQueue struct {
	client *redis.Client
}

func (q *redisQueue) Enqueue(ctx context.Context, req domain.PaymentRequest) error {
	data, err := json.Marshal(req)
	if err != nil {
		return err
	}
	return q.client.LPush(ctx, queueKey, data).Err()
}

func (q *redisQueue) Dequeue(ctx context.Context) (domain.PaymentRequest, error) {
	// timeout 0 blocks indefinitely; cancellation comes through ctx
	result, err := q.client.BLPop(ctx, 0, queueKey).Result()
	if err != nil {
		return domain.PaymentRequest{}, err
	}
	var req domain.PaymentRequest
	if err := json.Unmarshal([]byte(result[1]), &req); err != nil {
		return domain.PaymentRequest{}, err
	}
	return req, nil
}

func NewMemoryQueue(size int) Queue {
	if size <= 0 {
		size = 10000
	}
	return &memoryQueue{buf: make(chan domain.PaymentRequest, size)}
}

type memoryQueue struct {
	buf chan domain.PaymentRequest
}

func (q *memoryQueue) Enqueue(ctx context.Context, req domain.PaymentRequest) error {
	select {
	case q.buf <- req:
		return nil
	default:
	}
	// Buffer full: retry shortly without blocking the caller's loop.
	go func() {
		time.Sleep(200 * time.Millisecond)
		select {
		case q.buf <- req:
		case <-ctx.Done():
		}
	}()
	return nil
}

func (q *memoryQueue) Dequeue(ctx context.Context) (domain.PaymentRequest, error) {
	select {
	case req := <-q.buf:
		return req, nil
	case <-ctx.Done():
		return domain.PaymentRequest{}, ctx.Err()
	}
}
