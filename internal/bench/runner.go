// Package bench measures how two scheduling strategies behave under simulated
// I/O latency and high fan-out: one goroutine per unit of work versus a fixed
// pool of OS-thread-pinned workers.
package bench

import (
	"context"
	"fmt"
	"log/slog"
	"runtime"
	"sync"
	"sync/atomic"
	"time"
)

type Strategy string

const (
	// StrategyGoroutine launches one goroutine per unit of work. A blocked
	// unit suspends cheaply without holding an OS thread.
	StrategyGoroutine Strategy = "goroutine"
	// StrategyWorkerPool runs units on a fixed pool of workers, each pinned
	// to an OS thread. A blocked unit occupies its slot for the full wait.
	StrategyWorkerPool Strategy = "worker-pool"
)

const (
	defaultPoolSize  = 10
	maxSampledErrors = 5
)

type Options struct {
	Requests int
	IODelay  time.Duration
	Strategy Strategy
	PoolSize int
}

type Result struct {
	TotalRequests  int      `json:"total_requests"`
	SuccessCount   int      `json:"success_count"`
	FailureCount   int      `json:"failure_count"`
	TotalTimeMs    int64    `json:"total_time_ms"`
	GoroutineUnits int      `json:"goroutine_units"`
	PoolUnits      int      `json:"pool_units"`
	Throughput     float64  `json:"throughput_per_sec"`
	SampleErrors   []string `json:"sample_errors,omitempty"`
}

// Unit is one piece of work driven by the harness after its simulated I/O
// wait. A nil unit benchmarks the wait alone.
type Unit func(ctx context.Context, i int) error

type Runner struct {
	logger *slog.Logger
}

func NewRunner(logger *slog.Logger) *Runner {
	return &Runner{logger: logger}
}

// collector gathers per-unit outcomes without letting one unit's failure
// touch another's.
type collector struct {
	completed      atomic.Int64
	failed         atomic.Int64
	goroutineUnits atomic.Int64
	poolUnits      atomic.Int64

	mu      sync.Mutex
	samples []string
}

func (c *collector) record(strategy Strategy, err error) {
	c.completed.Add(1)
	if strategy == StrategyGoroutine {
		c.goroutineUnits.Add(1)
	} else {
		c.poolUnits.Add(1)
	}
	if err == nil {
		return
	}
	c.failed.Add(1)
	c.mu.Lock()
	if len(c.samples) < maxSampledErrors {
		c.samples = append(c.samples, err.Error())
	}
	c.mu.Unlock()
}

// Run launches opts.Requests independent units under the chosen strategy and
// joins on all of them before measuring. The join is bounded by ctx: units
// still outstanding at the deadline are counted as failures instead of
// blocking forever.
func (r *Runner) Run(ctx context.Context, opts Options, unit Unit) (Result, error) {
	if opts.Requests <= 0 {
		return Result{}, fmt.Errorf("requests must be positive, got %d", opts.Requests)
	}
	if opts.IODelay < 0 {
		return Result{}, fmt.Errorf("io delay must not be negative, got %s", opts.IODelay)
	}
	poolSize := opts.PoolSize
	if poolSize <= 0 {
		poolSize = defaultPoolSize
	}

	r.logger.Info("benchmark started",
		"strategy", opts.Strategy, "requests", opts.Requests, "io_delay", opts.IODelay)

	var c collector
	start := time.Now()

	var wg sync.WaitGroup
	switch opts.Strategy {
	case StrategyGoroutine:
		for i := 0; i < opts.Requests; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				c.record(StrategyGoroutine, r.runUnit(ctx, opts.IODelay, unit, i))
			}(i)
		}

	case StrategyWorkerPool:
		jobs := make(chan int)
		for w := 0; w < poolSize; w++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				// Pin the worker so the pool really is a set of OS threads,
				// not just goroutines multiplexed by the runtime.
				runtime.LockOSThread()
				defer runtime.UnlockOSThread()
				for i := range jobs {
					c.record(StrategyWorkerPool, r.runUnit(ctx, opts.IODelay, unit, i))
				}
			}()
		}
		go func() {
			for i := 0; i < opts.Requests; i++ {
				jobs <- i
			}
			close(jobs)
		}()

	default:
		return Result{}, fmt.Errorf("unknown strategy %q", opts.Strategy)
	}

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()

	timedOut := false
	select {
	case <-done:
	case <-ctx.Done():
		timedOut = true
	}

	elapsed := time.Since(start)

	result := Result{
		TotalRequests:  opts.Requests,
		TotalTimeMs:    elapsed.Milliseconds(),
		GoroutineUnits: int(c.goroutineUnits.Load()),
		PoolUnits:      int(c.poolUnits.Load()),
		FailureCount:   int(c.failed.Load()),
	}

	if timedOut {
		abandoned := opts.Requests - int(c.completed.Load())
		result.FailureCount += abandoned
		c.mu.Lock()
		if len(c.samples) < maxSampledErrors && abandoned > 0 {
			c.samples = append(c.samples, fmt.Sprintf("deadline exceeded with %d units outstanding", abandoned))
		}
		c.mu.Unlock()
	}
	result.SuccessCount = opts.Requests - result.FailureCount
	result.Throughput = throughput(opts.Requests, elapsed)
	c.mu.Lock()
	result.SampleErrors = c.samples
	c.mu.Unlock()

	r.logger.Info("benchmark finished",
		"strategy", opts.Strategy, "total_time_ms", result.TotalTimeMs,
		"success", result.SuccessCount, "failed", result.FailureCount,
		"throughput", result.Throughput)

	return result, nil
}

func (r *Runner) runUnit(ctx context.Context, ioDelay time.Duration, unit Unit, i int) error {
	// Blocking-style wait: under the goroutine strategy this parks cheaply,
	// under the pool it holds a worker slot for the full duration.
	time.Sleep(ioDelay)

	if unit == nil {
		return nil
	}
	return unit(ctx, i)
}

// throughput reports requests per second, or 0 when the measured duration
// rounds to zero milliseconds.
func throughput(requests int, elapsed time.Duration) float64 {
	ms := elapsed.Milliseconds()
	if ms == 0 {
		return 0
	}
	return float64(requests) / float64(ms) * 1000
}
