package ledger

import (
	"context"
	"encoding/json"
	"strconv"
	"sync"
	"time"

	"github.com/alexsandroveiga/paygate/src/domain"
	"github.com/redis/go-redis/v9"
)

const paymentsKey = "payments"

// Repository is the append-only ledger of processed payments. Summaries
// are derived on read; nothing here is ever updated in place.
type Repository interface {
	Save(ctx context.Context, payment domain.ProcessedPayment) error
	// Summary folds the payments requested inside [from, to] (inclusive,
	// nil bound means unconstrained) into per-route totals.
	Summary(ctx context.Context, from, to *time.Time) (domain.PaymentsSummary, error)
	Purge(ctx context.Context) error
}

// NewRedisLedger stores payments in a sorted set scored by the request
// timestamp, so summaries are answered with a native range query.
func NewRedisLedger(client *redis.Client) Repository {
	return &redisLedger{client}
}

type redisLedger struct {
	client *redis.Client
}

func (l *redisLedger) Save(ctx context.Context, payment domain.ProcessedPayment) error {
	data, err := json.Marshal(payment)
	if err != nil {
		return err
	}
	return l.client.ZAdd(ctx, paymentsKey, redis.Z{
		Score:  float64(payment.RequestedAt.UnixMilli()),
		Member: data,
	}).Err()
}

func (l *redisLedger) Summary(ctx context.Context, from, to *time.Time) (domain.PaymentsSummary, error) {
	min, max := "-inf", "+inf"
	if from != nil {
		min = strconv.FormatInt(from.UnixMilli(), 10)
	}
	if to != nil {
		max = strconv.FormatInt(to.UnixMilli(), 10)
	}
	entries, err := l.client.ZRangeByScore(ctx, paymentsKey, &redis.ZRangeBy{Min: min, Max: max}).Result()
	if err != nil {
		return domain.PaymentsSummary{}, err
	}
	payments := make([]domain.ProcessedPayment, 0, len(entries))
	for _, entry := range entries {
		var payment domain.ProcessedPayment
		if err := json.Unmarshal([]byte(entry), &payment); err != nil {
			continue
		}
		payments = append(payments, payment)
	}
	return domain.Summarize(payments), nil
}

func (l *redisLedger) Purge(ctx context.Context) error {
	return l.client.Del(ctx, paymentsKey).Err()
}

// NewMemoryLedger keeps the ledger in process memory, for tests and
// single-instance in-memory deployments.
func NewMemoryLedger() Repository {
	return &memoryLedger{}
}

type memoryLedger struct {
	mu       sync.RWMutex
	payments []domain.ProcessedPayment
}

func (l *memoryLedger) Save(_ context.Context, payment domain.ProcessedPayment) error {
	l.mu.Lock()
	l.payments = append(l.payments, payment)
	l.mu.Unlock()
	return nil
}

func (l *memoryLedger) Summary(_ context.Context, from, to *time.Time) (domain.PaymentsSummary, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	matched := make([]domain.ProcessedPayment, 0, len(l.payments))
	for _, payment := range l.payments {
		if payment.CreatedBetween(from, to) {
			matched = append(matched, payment)
		}
	}
	return domain.Summarize(matched), nil
}

func (l *memoryLedger) Purge(_ context.Context) error {
	l.mu.Lock()
	l.payments = nil
	l.mu.Unlock()
	return nil
}
