package orchestrators

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"pefitness/internal/adapters/http/perf"
	"pefitness/internal/domain/fitness"
)

// RecordAppender is the store interface needed by Recorder.
type RecordAppender interface {
	Append(ctx context.Context, rec fitness.Record) error
}

// DefaultWriteTimeout bounds a single background write.
const DefaultWriteTimeout = 10 * time.Second

// RecorderConfig configures a Recorder.
type RecorderConfig struct {
	Backend   string // label for logs and stats, e.g. "sqlite"
	Timeout   time.Duration
	Collector *perf.Collector // optional
}

// Recorder persists records on their own goroutine.
// Each write is attempted once; failures are logged and counted, never returned.
type Recorder struct {
	store     RecordAppender
	backend   string
	timeout   time.Duration
	collector *perf.Collector

	mu      sync.Mutex
	closing bool
	wg      sync.WaitGroup
}

var _ RecordSink = (*Recorder)(nil)

// NewRecorder creates a Recorder writing to store.
func NewRecorder(store RecordAppender, cfg RecorderConfig) *Recorder {
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultWriteTimeout
	}
	return &Recorder{
		store:     store,
		backend:   cfg.Backend,
		timeout:   cfg.Timeout,
		collector: cfg.Collector,
	}
}

// Record starts the write and returns immediately.
// The write outlives the request: it keeps ctx values but not its cancellation.
// Once Wait has been called the write runs on the caller's goroutine instead.
// POST: exactly one Append attempt is made
func (r *Recorder) Record(ctx context.Context, rec fitness.Record) {
	r.mu.Lock()
	if r.closing {
		r.mu.Unlock()
		r.writeDetached(ctx, rec)
		return
	}
	r.wg.Add(1)
	r.mu.Unlock()

	go func() {
		defer r.wg.Done()
		r.writeDetached(ctx, rec)
	}()
}

// Wait blocks until every started write has finished. Records arriving
// after Wait begins are written synchronously by their caller.
func (r *Recorder) Wait() {
	r.mu.Lock()
	r.closing = true
	r.mu.Unlock()
	r.wg.Wait()
}

func (r *Recorder) writeDetached(ctx context.Context, rec fitness.Record) {
	wctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), r.timeout)
	defer cancel()
	r.write(wctx, rec)
}

func (r *Recorder) write(ctx context.Context, rec fitness.Record) {
	start := time.Now()
	var err error
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("append panicked: %v", p)
		}
		r.observe(rec, start, err)
	}()
	err = r.store.Append(ctx, rec)
}

func (r *Recorder) observe(rec fitness.Record, start time.Time, err error) {
	durationMs := float64(time.Since(start).Microseconds()) / 1000.0
	if err != nil {
		slog.Error("fitness_record_save_failed",
			"record_id", rec.ID,
			"backend", r.backend,
			"duration_ms", durationMs,
			"error", err,
		)
	} else {
		slog.Info("fitness_record_saved", "record_id", rec.ID, "backend", r.backend, "duration_ms", durationMs)
	}
	if r.collector != nil {
		r.collector.Record(perf.Entry{
			Kind:       perf.KindWrite,
			Path:       r.backend,
			DurationMs: durationMs,
			Failed:     err != nil,
			Timestamp:  start,
		})
	}
}
