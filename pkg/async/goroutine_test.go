package async

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition not met in time")
}

func TestSafeGoRunsTask(t *testing.T) {
	var executed atomic.Bool
	SafeGo(context.Background(), time.Second, "audit write", func(ctx context.Context) error {
		executed.Store(true)
		return nil
	})
	waitFor(t, executed.Load)
}

func TestSafeGoSwallowsErrorAndPanic(t *testing.T) {
	var ran atomic.Int32
	SafeGo(context.Background(), time.Second, "failing task", func(ctx context.Context) error {
		ran.Add(1)
		return errors.New("boom")
	})
	SafeGo(context.Background(), time.Second, "panicking task", func(ctx context.Context) error {
		ran.Add(1)
		panic("boom")
	})
	waitFor(t, func() bool { return ran.Load() == 2 })
}

func TestSafeGoEnforcesTimeout(t *testing.T) {
	var expired atomic.Bool
	SafeGo(context.Background(), 20*time.Millisecond, "slow task", func(ctx context.Context) error {
		<-ctx.Done()
		expired.Store(true)
		return ctx.Err()
	})
	waitFor(t, expired.Load)
}

func TestSafeGoNoError(t *testing.T) {
	var executed atomic.Bool
	SafeGoNoError(context.Background(), time.Second, "notify", func(ctx context.Context) {
		executed.Store(true)
	})
	waitFor(t, executed.Load)
}

func TestWorkerPoolProcessesAllTasks(t *testing.T) {
	pool := NewWorkerPool(context.Background(), 3, "employee import", time.Second)
	defer pool.Shutdown(time.Second)

	var count atomic.Int32
	for i := 0; i < 20; i++ {
		require.NoError(t, pool.Submit(func(ctx context.Context) error {
			count.Add(1)
			return nil
		}))
	}

	waitFor(t, func() bool { return count.Load() == 20 })
}

func TestWorkerPoolCollectsErrors(t *testing.T) {
	pool := NewWorkerPool(context.Background(), 2, "employee import", time.Second)

	require.NoError(t, pool.Submit(func(ctx context.Context) error {
		return errors.New("bad row")
	}))
	require.NoError(t, pool.Submit(func(ctx context.Context) error {
		panic("very bad row")
	}))

	var errs []error
	waitFor(t, func() bool {
		for {
			select {
			case err := <-pool.Errors():
				errs = append(errs, err)
			default:
				return len(errs) == 2
			}
		}
	})
	require.NoError(t, pool.Shutdown(time.Second))
}

func TestWorkerPoolSubmitAfterShutdown(t *testing.T) {
	pool := NewWorkerPool(context.Background(), 1, "employee import", time.Second)
	require.NoError(t, pool.Shutdown(time.Second))

	err := pool.Submit(func(ctx context.Context) error { return nil })
	assert.Error(t, err)
}

func TestWorkerPoolSubmitDuringShutdownRace(t *testing.T) {
	pool := NewWorkerPool(context.Background(), 1, "employee import", time.Second)

	// Close the work channel under Submit the way a concurrent Shutdown
	// does, before the done channel flips. The task was never queued, so
	// Submit has to surface an error rather than report success.
	close(pool.workCh)
	assert.Error(t, pool.Submit(func(ctx context.Context) error { return nil }))

	require.NoError(t, pool.Shutdown(time.Second))
}

func TestWorkerPoolShutdownIdempotent(t *testing.T) {
	pool := NewWorkerPool(context.Background(), 1, "employee import", time.Second)
	require.NoError(t, pool.Shutdown(time.Second))
	require.NoError(t, pool.Shutdown(time.Second))
}

func TestBatchProcessesEveryItem(t *testing.T) {
	items := make([]int, 50)
	for i := range items {
		items[i] = i
	}

	var sum atomic.Int64
	errs := Batch(context.Background(), items, 4, "seed employees", time.Second,
		func(ctx context.Context, n int) error {
			sum.Add(int64(n))
			return nil
		})

	assert.Empty(t, errs)
	assert.Equal(t, int64(49*50/2), sum.Load())
}

func TestBatchReturnsErrors(t *testing.T) {
	errs := Batch(context.Background(), []int{1, 2, 3, 4}, 2, "seed employees", time.Second,
		func(ctx context.Context, n int) error {
			if n%2 == 0 {
				return errors.New("even rows rejected")
			}
			return nil
		})
	assert.Len(t, errs, 2)
}
