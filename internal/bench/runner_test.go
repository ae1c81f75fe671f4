package bench

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync/atomic"
	"testing"
	"time"
)

func testRunner() *Runner {
	return NewRunner(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestRunGoroutineStrategy(t *testing.T) {
	const requests = 100
	const delay = 20 * time.Millisecond

	var executed atomic.Int64
	start := time.Now()
	result, err := testRunner().Run(context.Background(), Options{
		Requests: requests,
		IODelay:  delay,
		Strategy: StrategyGoroutine,
	}, func(context.Context, int) error {
		executed.Add(1)
		return nil
	})
	elapsed := time.Since(start)

	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if executed.Load() != requests {
		t.Errorf("expected %d units executed, got %d", requests, executed.Load())
	}
	if result.SuccessCount != requests || result.FailureCount != 0 {
		t.Errorf("expected %d/0, got %d/%d", requests, result.SuccessCount, result.FailureCount)
	}
	if result.GoroutineUnits != requests || result.PoolUnits != 0 {
		t.Errorf("unexpected unit counts: goroutine=%d pool=%d", result.GoroutineUnits, result.PoolUnits)
	}

	// All units wait concurrently, so the run takes roughly one delay, not
	// requests of them.
	if elapsed < delay {
		t.Errorf("run finished before the simulated wait: %s", elapsed)
	}
	if serial := delay * requests; elapsed > serial/4 {
		t.Errorf("run took %s, suspiciously close to serial time %s", elapsed, serial)
	}
}

func TestRunWorkerPoolStrategy(t *testing.T) {
	const requests = 20
	const poolSize = 4
	const delay = 10 * time.Millisecond

	start := time.Now()
	result, err := testRunner().Run(context.Background(), Options{
		Requests: requests,
		IODelay:  delay,
		Strategy: StrategyWorkerPool,
		PoolSize: poolSize,
	}, nil)
	elapsed := time.Since(start)

	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.PoolUnits != requests || result.GoroutineUnits != 0 {
		t.Errorf("unexpected unit counts: goroutine=%d pool=%d", result.GoroutineUnits, result.PoolUnits)
	}
	if result.SuccessCount != requests {
		t.Errorf("expected %d successes, got %d", requests, result.SuccessCount)
	}

	// With the pool saturated, the run is bounded below by waves of work.
	if minimum := delay * time.Duration(requests/poolSize); elapsed < minimum {
		t.Errorf("pool run took %s, below the %s floor", elapsed, minimum)
	}
}

func TestRunUnitFailures(t *testing.T) {
	result, err := testRunner().Run(context.Background(), Options{
		Requests: 10,
		Strategy: StrategyGoroutine,
	}, func(_ context.Context, i int) error {
		if i%2 == 0 {
			return errors.New("unit broke")
		}
		return nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if result.SuccessCount != 5 || result.FailureCount != 5 {
		t.Errorf("expected 5/5, got %d/%d", result.SuccessCount, result.FailureCount)
	}
	if len(result.SampleErrors) != maxSampledErrors {
		t.Errorf("expected %d sampled errors, got %d", maxSampledErrors, len(result.SampleErrors))
	}
	if result.SampleErrors[0] != "unit broke" {
		t.Errorf("unexpected sample: %q", result.SampleErrors[0])
	}
}

func TestRunBoundedJoin(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
	defer cancel()

	blocked := make(chan struct{})
	defer close(blocked)

	result, err := testRunner().Run(ctx, Options{
		Requests: 5,
		Strategy: StrategyGoroutine,
	}, func(context.Context, int) error {
		<-blocked
		return nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if result.FailureCount != 5 {
		t.Errorf("expected all units abandoned, got %d failures", result.FailureCount)
	}
	if len(result.SampleErrors) == 0 {
		t.Fatal("expected a deadline sample error")
	}
}

func TestRunValidation(t *testing.T) {
	r := testRunner()

	if _, err := r.Run(context.Background(), Options{Requests: 0, Strategy: StrategyGoroutine}, nil); err == nil {
		t.Error("expected error for zero requests")
	}
	if _, err := r.Run(context.Background(), Options{Requests: 1, IODelay: -time.Second, Strategy: StrategyGoroutine}, nil); err == nil {
		t.Error("expected error for negative delay")
	}
	if _, err := r.Run(context.Background(), Options{Requests: 1, Strategy: "fibers"}, nil); err == nil {
		t.Error("expected error for unknown strategy")
	}
}

func TestThroughput(t *testing.T) {
	if got := throughput(100, 0); got != 0 {
		t.Errorf("expected 0 for zero elapsed, got %f", got)
	}
	if got := throughput(100, time.Second); got != 100 {
		t.Errorf("expected 100, got %f", got)
	}
}
