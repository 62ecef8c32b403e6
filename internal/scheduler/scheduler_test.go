package scheduler

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yingtu35/doombot/internal/logger"
)

func TestNewRejectsBadExpression(t *testing.T) {
	_, err := New("every monday", func(context.Context) error { return nil }, logger.NewNop())
	require.ErrorContains(t, err, "failed to parse cron expression")

	// six fields (with seconds) are not accepted
	_, err = New("0 0 9 * * 1", func(context.Context) error { return nil }, logger.NewNop())
	require.Error(t, err)
}

func TestNextWeeklyReview(t *testing.T) {
	s, err := New("0 9 * * 1", func(context.Context) error { return nil }, logger.NewNop())
	require.NoError(t, err)

	// Wednesday 2024-05-15 12:00 -> Monday 2024-05-20 09:00
	from := time.Date(2024, 5, 15, 12, 0, 0, 0, time.UTC)
	assert.Equal(t, time.Date(2024, 5, 20, 9, 0, 0, 0, time.UTC), s.Next(from))
}

func TestRunFiresUntilCancelled(t *testing.T) {
	var runs atomic.Int32
	s, err := New("@every 1s", func(context.Context) error {
		runs.Add(1)
		return errors.New("slack error: 500")
	}, logger.NewNop())
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 2500*time.Millisecond)
	defer cancel()

	require.NoError(t, s.Run(ctx))
	assert.GreaterOrEqual(t, runs.Load(), int32(1))
}

func TestRunSkipsOverlappingRuns(t *testing.T) {
	var active, maxActive, runs atomic.Int32
	s, err := New("@every 1s", func(ctx context.Context) error {
		n := active.Add(1)
		defer active.Add(-1)
		if n > maxActive.Load() {
			maxActive.Store(n)
		}
		runs.Add(1)
		select {
		case <-ctx.Done():
		case <-time.After(2500 * time.Millisecond):
		}
		return nil
	}, logger.NewNop())
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 3500*time.Millisecond)
	defer cancel()

	done := make(chan struct{})
	go func() {
		defer close(done)
		assert.NoError(t, s.Run(ctx))
	}()

	select {
	case <-done:
	case <-time.After(10 * time.Second):
		t.Fatal("scheduler did not stop")
	}
	assert.Equal(t, int32(1), maxActive.Load())
	assert.LessOrEqual(t, runs.Load(), int32(2))
	assert.Equal(t, int32(0), active.Load())
}
