package chaincheck

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWorkerPool(t *testing.T) {
	tests := []struct {
		name       string
		numTasks   int
		numWorkers int
		failEvery  int
	}{
		{name: "More tasks than workers", numTasks: 20, numWorkers: 3},
		{name: "Failing tasks do not stop the pool", numTasks: 6, numWorkers: 2, failEvery: 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			wp := NewWorkerPool(tt.numWorkers)
			var executed atomic.Int32

			for i := 0; i < tt.numTasks; i++ {
				i := i
				err := wp.AddTask(context.Background(), func() error {
					executed.Add(1)
					if tt.failEvery > 0 && i%tt.failEvery == 0 {
						return errors.New("task failed")
					}
					return nil
				})
				require.NoError(t, err)
			}
			wp.Close()

			assert.Equal(t, int32(tt.numTasks), executed.Load())
		})
	}
}

func TestWorkerPool_AddTaskCancelled(t *testing.T) {
	wp := NewWorkerPool(1)
	defer wp.Close()

	block := make(chan struct{})
	require.NoError(t, wp.AddTask(context.Background(), func() error { <-block; return nil }))
	require.NoError(t, wp.AddTask(context.Background(), func() error { return nil }))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := wp.AddTask(ctx, func() error { return nil })
	close(block)

	assert.ErrorIs(t, err, context.Canceled)
}

func TestWorkerPool_CloseTwice(t *testing.T) {
	wp := NewWorkerPool(2)
	wp.Close()
	assert.NotPanics(t, wp.Close)
}
