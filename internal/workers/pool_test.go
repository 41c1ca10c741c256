package workers

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

func TestPoolProcessesQueuedEvents(t *testing.T) {
	results := make(chan uint, 10)

	pool := NewPool(2, 10, func(ctx context.Context, eventID uint) error {
		results <- eventID
		return nil
	}, testLogger())

	pool.Start()
	defer pool.Stop()

	for i := uint(1); i <= 10; i++ {
		require.True(t, pool.Enqueue(i))
	}

	seen := make(map[uint]bool)

	for i := 0; i < 10; i++ {
		select {
		case id := <-results:
			seen[id] = true
		case <-time.After(5 * time.Second):
			t.Fatalf("timed out waiting for event %d of 10", i+1)
		}
	}

	assert.Len(t, seen, 10)
}

func TestPoolEnqueueAfterStop(t *testing.T) {
	pool := NewPool(1, 1, func(ctx context.Context, eventID uint) error {
		return nil
	}, testLogger())

	pool.Start()
	pool.Stop()

	assert.False(t, pool.Enqueue(1))
}

func TestPoolSurvivesProcessingErrors(t *testing.T) {
	results := make(chan uint, 2)

	pool := NewPool(1, 2, func(ctx context.Context, eventID uint) error {
		results <- eventID
		return context.DeadlineExceeded
	}, testLogger())

	pool.Start()
	defer pool.Stop()

	require.True(t, pool.Enqueue(1))
	require.True(t, pool.Enqueue(2))

	for i := 0; i < 2; i++ {
		select {
		case <-results:
		case <-time.After(5 * time.Second):
			t.Fatal("worker stopped after a processing error")
		}
	}
}
