// Package sender runs outbound Bot API calls on a bounded worker pool so that
// handlers never block on Telegram.
package sender

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/m3rciful/sholatbot/core/logger"
	"github.com/m3rciful/sholatbot/core/metrics"
	"github.com/m3rciful/sholatbot/core/telegram/netutil"
)

var (
	// ErrQueueClosed is returned by Enqueue after Close.
	ErrQueueClosed = errors.New("telegram sender: queue closed")
	// ErrQueueFull is returned when the job buffer is saturated.
	ErrQueueFull = errors.New("telegram sender: queue full")
)

// Options tunes the dispatcher. Zero values select defaults.
type Options struct {
	QueueSize    int
	Workers      int
	MaxRetries   int
	RetryBackoff time.Duration
	// MaxDuration bounds one job including its retries and flood waits.
	MaxDuration time.Duration
}

func (o Options) withDefaults() Options {
	if o.QueueSize <= 0 {
		o.QueueSize = 256
	}
	if o.Workers <= 0 {
		o.Workers = 4
	}
	o.MaxRetries = max(o.MaxRetries, 0)
	if o.RetryBackoff <= 0 {
		o.RetryBackoff = 2 * time.Second
	}
	if o.MaxDuration <= 0 {
		o.MaxDuration = 12 * time.Second
	}
	return o
}

type job struct {
	ctx      context.Context
	action   string
	endpoint string
	run      func() error
}

// attrs tags a job record with the originating update, which may have
// finished before the worker picked the job up.
func (j job) attrs(extra ...slog.Attr) []slog.Attr {
	attrs := []slog.Attr{slog.String("action", j.action)}
	if j.endpoint != "" {
		attrs = append(attrs, slog.String("endpoint", j.endpoint))
	}
	if id := logger.UpdateIDFrom(j.ctx); id != 0 {
		attrs = append(attrs, slog.Int("update_id", id))
	}
	if id := logger.ChatIDFrom(j.ctx); id != 0 {
		attrs = append(attrs, slog.Int64("chat_id", id))
	}
	if id := logger.UserIDFrom(j.ctx); id != 0 {
		attrs = append(attrs, slog.Int64("user_id", id))
	}
	return append(attrs, extra...)
}

// Dispatcher executes queued sends with retry. Jobs are independent; use
// Sequence to keep several calls in order.
type Dispatcher struct {
	opts Options
	jobs chan job
	stop chan struct{}
	once sync.Once
	wg   sync.WaitGroup
	errs atomic.Uint64
	done atomic.Uint64
}

// NewDispatcher starts the worker pool.
func NewDispatcher(opts Options) *Dispatcher {
	opts = opts.withDefaults()
	d := &Dispatcher{
		opts: opts,
		jobs: make(chan job, opts.QueueSize),
		stop: make(chan struct{}),
	}
	d.wg.Add(opts.Workers)
	for range opts.Workers {
		go d.worker()
	}
	return d
}

// Enqueue hands run to a worker without waiting. run may be called again on
// transient failures, so it must be safe to repeat.
func (d *Dispatcher) Enqueue(ctx context.Context, action, endpoint string, run func() error) error {
	if run == nil {
		return errors.New("telegram sender: nil run function")
	}
	select {
	case <-d.stop:
		return ErrQueueClosed
	default:
	}
	select {
	case d.jobs <- job{ctx: ctx, action: action, endpoint: endpoint, run: run}:
		return nil
	default:
		return ErrQueueFull
	}
}

// ErrorCount is the number of jobs that ultimately failed.
func (d *Dispatcher) ErrorCount() uint64 { return d.errs.Load() }

// DoneCount is the number of jobs that succeeded.
func (d *Dispatcher) DoneCount() uint64 { return d.done.Load() }

// Queued is the number of jobs waiting for a worker.
func (d *Dispatcher) Queued() int { return len(d.jobs) }

// Sequence joins steps into one run function that resumes from the first
// unfinished step when retried. Steps of one job execute on a single worker,
// so their order is preserved across retries.
func Sequence(steps ...func() error) func() error {
	next := 0
	return func() error {
		for next < len(steps) {
			if err := steps[next](); err != nil {
				return err
			}
			next++
		}
		return nil
	}
}

// Close rejects new jobs, drains the queue and waits for the workers.
func (d *Dispatcher) Close() {
	d.once.Do(func() {
		close(d.stop)
		close(d.jobs)
		d.wg.Wait()
	})
}

func (d *Dispatcher) worker() {
	defer d.wg.Done()
	for j := range d.jobs {
		d.process(j)
	}
}

func (d *Dispatcher) process(j job) {
	ctx := j.ctx
	if ctx == nil {
		ctx = context.Background()
	}
	start := time.Now()
	attempts, err := d.attempt(ctx, j)
	took := logger.Took(start)

	if err == nil {
		d.done.Add(1)
		attrs := j.attrs(slog.String("status", "ok"), slog.Duration("duration", took))
		if attempts > 1 {
			logger.Info(ctx, "tg.sender", "send.retry.success", append(attrs, slog.Int("attempts", attempts))...)
			return
		}
		logger.Debug(ctx, "tg.sender", "send.success", attrs...)
		return
	}

	kind := netutil.Classify(err)
	d.errs.Add(1)
	metrics.SendFailures.WithLabelValues(string(kind)).Inc()
	logger.Error(ctx, "tg.sender", "send.fail", j.attrs(
		slog.String("status", logger.Status(err)),
		slog.String("err", logger.SanitizeLimit(netutil.Redact(err), 256)),
		slog.String("cause", string(kind)),
		slog.Int("attempts", attempts),
		slog.Duration("duration", took),
	)...)
}

// attempt runs j until it succeeds, fails permanently, exhausts MaxRetries or
// runs out of MaxDuration. It returns the number of calls made.
func (d *Dispatcher) attempt(ctx context.Context, j job) (int, error) {
	ctx, cancel := context.WithTimeout(ctx, d.opts.MaxDuration)
	defer cancel()

	limit := d.opts.MaxRetries + 1
	var err error
	for n := 1; n <= limit; n++ {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return n - 1, errors.Join(err, ctxErr)
		}
		if err = j.run(); err == nil {
			return n, nil
		}
		if n == limit || !netutil.ShouldRetry(err) {
			return n, err
		}

		delay := netutil.Backoff(err, d.opts.RetryBackoff, n)
		if deadline, ok := ctx.Deadline(); ok && time.Until(deadline) < delay {
			return n, err
		}
		logger.Debug(ctx, "tg.sender", "send.retry",
			j.attrs(
				slog.String("status", "retry"),
				slog.String("cause", string(netutil.Classify(err))),
				slog.Int("attempts", n),
				slog.Duration("delay", delay),
			)...,
		)
		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return n, errors.Join(err, ctx.Err())
		case <-timer.C:
		}
	}
	return limit, err
}
