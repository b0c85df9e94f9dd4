package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/dgallion1/specdocx/internal/config"
	"github.com/dgallion1/specdocx/internal/convert"
	"github.com/dgallion1/specdocx/internal/engine"
)

// ErrQueueFull is returned by Submit when no queue slot is free.
var ErrQueueFull = errors.New("job queue is full")

// Orchestrator manages the conversion pipeline.
type Orchestrator struct {
	jobs            *JobStore
	queue           chan *Job
	stats           *ConversionStats
	log             *slog.Logger
	cfg             config.Config
	opts            engine.Options
	defaultTemplate []byte

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewOrchestrator creates the pipeline. defaultTemplate may be nil, in
// which case every job must upload its own.
func NewOrchestrator(cfg config.Config, defaultTemplate []byte, log *slog.Logger) *Orchestrator {
	return &Orchestrator{
		jobs:  NewJobStore(cfg.JobTTL),
		queue: make(chan *Job, cfg.MaxQueueSize),
		stats: NewConversionStats(time.Hour),
		log:   log,
		cfg:   cfg,
		opts: engine.Options{
			ParseConcurrency: cfg.ParseConcurrency,
			Convert: convert.Options{
				MaxCodeLineLength: cfg.MaxCodeLineLength,
				LineSeparator:     cfg.LineSeparator,
			},
		},
		defaultTemplate: defaultTemplate,
	}
}

// Start launches worker goroutines.
func (o *Orchestrator) Start(ctx context.Context) {
	workerCtx, cancel := context.WithCancel(ctx)
	o.cancel = cancel

	for range o.cfg.WorkerCount {
		o.wg.Add(1)
		go func() {
			defer o.wg.Done()
			w := NewWorker(o.log, o.opts, o.defaultTemplate, o.stats)
			for {
				select {
				case <-workerCtx.Done():
					return
				case job, ok := <-o.queue:
					if !ok {
						return
					}
					w.Process(workerCtx, job)
				}
			}
		}()
	}

	// Start job store cleanup.
	o.wg.Add(1)
	go func() {
		defer o.wg.Done()
		ticker := time.NewTicker(5 * time.Minute)
		defer ticker.Stop()
		for {
			select {
			case <-workerCtx.Done():
				return
			case <-ticker.C:
				o.jobs.Cleanup()
			}
		}
	}()
}

// Stop gracefully shuts down the pipeline.
func (o *Orchestrator) Stop() {
	if o.cancel != nil {
		o.cancel()
	}
	close(o.queue)
	o.wg.Wait()
}

// Submit queues a new job for processing.
func (o *Orchestrator) Submit(job *Job) error {
	o.jobs.Put(job)
	select {
	case o.queue <- job:
		return nil
	default:
		job.SetStatus(StatusFailed, "queue_full")
		return fmt.Errorf("%w (%d)", ErrQueueFull, o.cfg.MaxQueueSize)
	}
}

// GetJob returns a job by ID.
func (o *Orchestrator) GetJob(id string) *Job {
	return o.jobs.Get(id)
}

// QueueDepth returns current queue depth.
func (o *Orchestrator) QueueDepth() int {
	return len(o.queue)
}

// HasDefaultTemplate reports whether jobs may omit a template.
func (o *Orchestrator) HasDefaultTemplate() bool {
	return len(o.defaultTemplate) > 0
}

// Stats returns the rolling conversion latency aggregate.
func (o *Orchestrator) Stats() StatsSnapshot {
	return o.stats.Snapshot()
}
