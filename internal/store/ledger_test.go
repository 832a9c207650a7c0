package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestLedger(t *testing.T) *Ledger {
	t.Helper()
	l, err := NewLedger(filepath.Join(t.TempDir(), "mobility.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = l.Close() })
	require.NoError(t, l.Migrate(context.Background()))
	return l
}

func TestLedgerRecordAndList(t *testing.T) {
	l := newTestLedger(t)
	ctx := context.Background()

	now := time.Now().UTC().Truncate(time.Second)
	run := &RunSummary{
		StartedAt:        now,
		FinishedAt:       now.Add(90 * time.Second),
		Schools:          1200,
		TractBoundaries:  310,
		CountyBoundaries: 102,
		UnresolvedTract:  4,
		UnresolvedCounty: 2,
		UnresolvedCZ:     3,
		ExcludedCells:    17,
		CountyJoined:     98,
		CZJoined:         41,
	}
	require.NoError(t, l.Record(ctx, run))
	assert.NotEmpty(t, run.ID)

	runs, err := l.List(ctx, 10)
	require.NoError(t, err)
	require.Len(t, runs, 1)

	got := runs[0]
	assert.Equal(t, run.ID, got.ID)
	assert.Equal(t, 1200, got.Schools)
	assert.Equal(t, 4, got.UnresolvedTract)
	assert.Equal(t, 98, got.CountyJoined)
	assert.True(t, got.StartedAt.Equal(now), "started_at round-trip")
}

func TestLedgerListNewestFirst(t *testing.T) {
	l := newTestLedger(t)
	ctx := context.Background()

	base := time.Now().UTC().Truncate(time.Second)
	for i := 0; i < 3; i++ {
		run := &RunSummary{
			StartedAt:  base.Add(time.Duration(i) * time.Hour),
			FinishedAt: base.Add(time.Duration(i)*time.Hour + time.Minute),
			Schools:    i,
		}
		require.NoError(t, l.Record(ctx, run))
	}

	runs, err := l.List(ctx, 2)
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, 2, runs[0].Schools)
	assert.Equal(t, 1, runs[1].Schools)
}

func TestLedgerListEmpty(t *testing.T) {
	l := newTestLedger(t)

	runs, err := l.List(context.Background(), 0)
	require.NoError(t, err)
	assert.Empty(t, runs)
}
