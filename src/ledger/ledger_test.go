package ledger

import (
	"context"
	"testing"
	"time"

	"github.com/alexsandroveiga/paygate/src/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func save(t *testing.T, repo Repository, processedBy string, amount int64, at time.Time) {
	t.Helper()
	require.NoError(t, repo.Save(context.Background(), domain.ProcessedPayment{
		CorrelationID: "cid",
		ProcessedBy:   processedBy,
		Amount:        decimal.NewFromInt(amount),
		RequestedAt:   at,
	}))
}

func TestMemoryLedgerSummary(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryLedger()
	at := time.Date(2025, 7, 10, 12, 0, 0, 0, time.UTC)

	save(t, repo, domain.DefaultProcessor, 10, at)
	save(t, repo, domain.DefaultProcessor, 20, at.Add(time.Second))
	save(t, repo, domain.FallbackProcessor, 5, at.Add(2*time.Second))

	from := at
	to := at.Add(time.Minute)
	summary, err := repo.Summary(ctx, &from, &to)
	require.NoError(t, err)

	assert.Equal(t, int64(2), summary.Default.TotalRequests)
	assert.True(t, summary.Default.TotalAmount.Equal(decimal.NewFromInt(30)))
	assert.Equal(t, int64(1), summary.Fallback.TotalRequests)
	assert.True(t, summary.Fallback.TotalAmount.Equal(decimal.NewFromInt(5)))
}

func TestMemoryLedgerSummaryOutsideRangeIsZero(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryLedger()
	at := time.Date(2025, 7, 10, 12, 0, 0, 0, time.UTC)

	save(t, repo, domain.DefaultProcessor, 10, at)
	save(t, repo, domain.FallbackProcessor, 5, at)

	from := at.Add(time.Hour)
	to := at.Add(2 * time.Hour)
	summary, err := repo.Summary(ctx, &from, &to)
	require.NoError(t, err)

	assert.Zero(t, summary.Default.TotalRequests)
	assert.True(t, summary.Default.TotalAmount.IsZero())
	assert.Zero(t, summary.Fallback.TotalRequests)
	assert.True(t, summary.Fallback.TotalAmount.IsZero())
}

func TestMemoryLedgerSummaryBoundsAreInclusive(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryLedger()
	at := time.Date(2025, 7, 10, 12, 0, 0, 0, time.UTC)

	save(t, repo, domain.DefaultProcessor, 10, at)

	summary, err := repo.Summary(ctx, &at, &at)
	require.NoError(t, err)
	assert.Equal(t, int64(1), summary.Default.TotalRequests)
}

func TestMemoryLedgerSummaryUnboundedSides(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryLedger()
	early := time.Date(2025, 7, 10, 12, 0, 0, 0, time.UTC)
	late := early.Add(time.Hour)

	save(t, repo, domain.DefaultProcessor, 10, early)
	save(t, repo, domain.DefaultProcessor, 20, late)

	summary, err := repo.Summary(ctx, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, int64(2), summary.Default.TotalRequests)

	summary, err = repo.Summary(ctx, &late, nil)
	require.NoError(t, err)
	assert.Equal(t, int64(1), summary.Default.TotalRequests)

	summary, err = repo.Summary(ctx, nil, &early)
	require.NoError(t, err)
	assert.Equal(t, int64(1), summary.Default.TotalRequests)
}

func TestMemoryLedgerPurge(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryLedger()
	save(t, repo, domain.DefaultProcessor, 10, time.Now().UTC())

	require.NoError(t, repo.Purge(ctx))

	summary, err := repo.Summary(ctx, nil, nil)
	require.NoError(t, err)
	assert.Zero(t, summary.Default.TotalRequests)
}
