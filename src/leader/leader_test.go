package leader

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryElectorSingleWinner(t *testing.T) {
	ctx := context.Background()
	elector := NewMemoryElector()
	ttl := time.Minute

	first, err := elector.AmILeader(ctx, "instance-a", ttl)
	require.NoError(t, err)
	second, err := elector.AmILeader(ctx, "instance-b", ttl)
	require.NoError(t, err)

	assert.True(t, first)
	assert.False(t, second)
}

func TestMemoryElectorConfirmsCurrentHolder(t *testing.T) {
	ctx := context.Background()
	elector := NewMemoryElector()
	ttl := time.Minute

	_, err := elector.AmILeader(ctx, "instance-a", ttl)
	require.NoError(t, err)

	confirmed, err := elector.AmILeader(ctx, "instance-a", ttl)
	require.NoError(t, err)
	assert.True(t, confirmed, "holder should confirm its own lease")

	denied, err := elector.AmILeader(ctx, "instance-b", ttl)
	require.NoError(t, err)
	assert.False(t, denied, "contender should not steal a live lease")
}

func TestMemoryElectorLeaseExpires(t *testing.T) {
	ctx := context.Background()
	elector := NewMemoryElector()
	ttl := 20 * time.Millisecond

	acquired, err := elector.AmILeader(ctx, "instance-a", ttl)
	require.NoError(t, err)
	require.True(t, acquired)

	time.Sleep(2 * ttl)

	taken, err := elector.AmILeader(ctx, "instance-b", ttl)
	require.NoError(t, err)
	assert.True(t, taken, "lapsed lease should be acquirable by another instance")

	lost, err := elector.AmILeader(ctx, "instance-a", ttl)
	require.NoError(t, err)
	assert.False(t, lost, "previous holder lost leadership after the lapse")
}
