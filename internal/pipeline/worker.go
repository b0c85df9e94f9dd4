package pipeline

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/dgallion1/specdocx/internal/engine"
	"github.com/dgallion1/specdocx/internal/wordml"
)

// Worker processes a single conversion job.
type Worker struct {
	log             *slog.Logger
	opts            engine.Options
	defaultTemplate []byte
	stats           *ConversionStats
}

// NewWorker returns a worker running the engine with opts. Jobs without
// their own template use defaultTemplate.
func NewWorker(log *slog.Logger, opts engine.Options, defaultTemplate []byte, stats *ConversionStats) *Worker {
	return &Worker{
		log:             log,
		opts:            opts,
		defaultTemplate: defaultTemplate,
		stats:           stats,
	}
}

// Process runs the full conversion for a job. A run that reports
// diagnostics still completes; only fatal problems and a missing result
// fail the job.
func (w *Worker) Process(ctx context.Context, job *Job) {
	log := w.log.With("job_id", job.ID)
	start := time.Now()
	fail := func(msg string) {
		if w.stats != nil {
			w.stats.RecordFailure(len(job.Files))
		}
		job.Fail(msg)
	}

	data := job.Template()
	if data == nil {
		data = w.defaultTemplate
	}
	if len(data) == 0 {
		log.Error("no template")
		fail("no template was uploaded and the service has no default")
		return
	}
	tpl, err := wordml.LoadTemplate(data)
	if err != nil {
		log.Error("template unreadable", "error", err)
		fail(fmt.Sprintf("template: %s", err))
		return
	}

	var buf bytes.Buffer
	opts := w.opts
	opts.Template = tpl
	opts.Output = &buf
	opts.OutputPath = ""
	opts.OnPhase = func(p engine.Phase) {
		job.SetStatus(statusForPhase(p), string(p))
	}

	inputs := job.Inputs()
	log.Info("converting", "files", len(inputs))
	res, err := engine.Run(ctx, inputs, opts, log)
	if err != nil {
		log.Error("conversion failed", "error", err)
		fail(err.Error())
		return
	}

	if !res.Written {
		job.SetResult(res, nil)
		log.Error("document not written", "errors", res.Errors)
		fail("the document could not be assembled")
		return
	}

	elapsed := time.Since(start)
	if w.stats != nil {
		w.stats.Record(elapsed, len(inputs))
	}
	job.SetResult(res, buf.Bytes())
	job.SetStatus(StatusCompleted, "done")
	log.Info("conversion complete",
		"sections", len(res.Sections),
		"errors", res.Errors,
		"warnings", res.Warnings,
		"bytes", buf.Len(),
		"duration_ms", elapsed.Milliseconds(),
	)
}
