package usecase

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSequencerMonotonic(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	for i := 1; i <= 5; i++ {
		id, err := f.sequencer.NextOrderID(ctx)
		require.NoError(t, err)
		assert.Equal(t, fmt.Sprintf("20250310ORD%d", i), id)
	}
}

func TestSequencerDailyReset(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	id, err := f.sequencer.NextOrderID(ctx)
	require.NoError(t, err)
	assert.Equal(t, "20250310ORD1", id)
	_, err = f.sequencer.NextOrderID(ctx)
	require.NoError(t, err)

	f.now = f.now.Add(24 * time.Hour)
	id, err = f.sequencer.NextOrderID(ctx)
	require.NoError(t, err)
	assert.Equal(t, "20250311ORD1", id)
}

func TestSequencerConcurrentNoDuplicates(t *testing.T) {
	f := newFixture()
	const n = 8

	ids := make(chan string, n)
	for i := 0; i < n; i++ {
		go func() {
			id, err := f.sequencer.NextOrderID(context.Background())
			if err != nil {
				ids <- "err"
				return
			}
			ids <- id
		}()
	}

	seen := map[string]bool{}
	for i := 0; i < n; i++ {
		id := <-ids
		if id == "err" {
			// A loser past the retry budget is allowed; a duplicate is not.
			continue
		}
		assert.False(t, seen[id], "duplicate id %s", id)
		seen[id] = true
	}
}
