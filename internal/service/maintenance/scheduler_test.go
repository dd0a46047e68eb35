package maintenance

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	internaldb "duck-projection/internal/db"
)

func TestRunOnce_StoreTasks(t *testing.T) {
	writeDB, _ := internaldb.OpenTestSQLite(t)
	s := NewScheduler("@every 1h", nil, CheckpointTask(writeDB), OptimizeTask(writeDB))

	require.NoError(t, s.RunOnce(t.Context()))
}

func TestRunOnce_ContinuesAfterFailure(t *testing.T) {
	var ran atomic.Int32
	s := NewScheduler("@every 1h", nil,
		Task{Name: "broken", Run: func(context.Context) error { return errors.New("boom") }},
		Task{Name: "ok", Run: func(context.Context) error { ran.Add(1); return nil }},
	)

	err := s.RunOnce(t.Context())
	require.ErrorContains(t, err, "broken: boom")
	assert.Equal(t, int32(1), ran.Load())
}

func TestRunOnce_CanceledContext(t *testing.T) {
	var ran atomic.Int32
	s := NewScheduler("@every 1h", nil, Task{Name: "t", Run: func(context.Context) error { ran.Add(1); return nil }})

	ctx, cancel := context.WithCancel(t.Context())
	cancel()
	require.ErrorIs(t, s.RunOnce(ctx), context.Canceled)
	assert.Zero(t, ran.Load())
}

func TestScheduler_StartStop(t *testing.T) {
	s := NewScheduler("@every 1h", nil)
	assert.True(t, s.Next().IsZero())

	require.NoError(t, s.Start(t.Context()))
	assert.ErrorContains(t, s.Start(t.Context()), "already started")

	next := s.Next()
	assert.WithinDuration(t, time.Now().Add(time.Hour), next, time.Minute)

	s.Stop()
	assert.True(t, s.Next().IsZero())
	s.Stop()
}

func TestScheduler_InvalidSchedule(t *testing.T) {
	s := NewScheduler("not a schedule", nil)
	require.ErrorContains(t, s.Start(t.Context()), "invalid maintenance schedule")
}
