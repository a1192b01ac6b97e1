// Package batch runs analyses for queued addresses using a worker pool.
// Each batch job is independent of the interactive session: results go to
// the output directory and the history store, never to display state.
package batch

import (
	"context"
	"fmt"
	"sync"

	"github.com/dustin/go-humanize"
	"github.com/google/uuid"

	"site_analyzer/internal/analyzer"
	"site_analyzer/internal/config"
	"site_analyzer/internal/history"
	"site_analyzer/internal/logger"
	"site_analyzer/internal/metrics"
	"site_analyzer/internal/notify"
	"site_analyzer/internal/report"
)

// Status values for jobs.
const (
	StatusQueued    = "queued"
	StatusRunning   = "running"
	StatusSucceeded = "succeeded"
	StatusFailed    = "failed"
)

// Job is one queued address analysis.
type Job struct {
	ID         string `json:"id"`
	Address    string `json:"address"`
	Source     string `json:"source,omitempty"` // inbox file it came from, if any
	Status     string `json:"status"`
	Error      string `json:"error,omitempty"`
	ReportPath string `json:"report_path,omitempty"`
}

// Runner executes jobs using a worker pool with a bounded queue.
type Runner struct {
	cfg    config.Config
	client *analyzer.Client
	store  *history.Store

	queue  chan *Job
	wg     sync.WaitGroup
	cancel context.CancelFunc

	mu   sync.Mutex
	jobs map[string]*Job
}

func NewRunner(cfg config.Config, client *analyzer.Client, store *history.Store) *Runner {
	return &Runner{
		cfg:    cfg,
		client: client,
		store:  store,
		queue:  make(chan *Job, cfg.QueueSize),
		jobs:   make(map[string]*Job),
	}
}

// Start spins the worker pool.
func (r *Runner) Start(ctx context.Context) {
	ctx, cancel := context.WithCancel(ctx)
	r.cancel = cancel
	for i := 0; i < r.cfg.WorkerCount; i++ {
		r.wg.Add(1)
		go r.worker(ctx)
	}
}

// Stop waits for workers to finish.
func (r *Runner) Stop() {
	if r.cancel != nil {
		r.cancel()
	}
	r.wg.Wait()
}

// Enqueue queues one address. It fails when the queue is full rather than
// blocking the caller.
func (r *Runner) Enqueue(address, source string) (*Job, error) {
	job := &Job{
		ID:      uuid.NewString(),
		Address: address,
		Source:  source,
		Status:  StatusQueued,
	}
	r.mu.Lock()
	r.jobs[job.ID] = job
	r.mu.Unlock()

	select {
	case r.queue <- job:
		return job, nil
	default:
		r.setStatus(job, StatusFailed, "queue full")
		return nil, fmt.Errorf("queue full")
	}
}

// Job returns a snapshot of a tracked job.
func (r *Runner) Job(id string) (Job, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	j, ok := r.jobs[id]
	if !ok {
		return Job{}, false
	}
	return *j, true
}

func (r *Runner) worker(ctx context.Context) {
	defer r.wg.Done()
	for {
		select {
		case <-ctx.Done():
			return
		case job := <-r.queue:
			r.execute(ctx, job)
		}
	}
}

func (r *Runner) execute(ctx context.Context, job *Job) {
	r.setStatus(job, StatusRunning, "")
	log := logger.Log.WithField("job", job.ID).WithField("address", job.Address)

	result, err := r.client.Analyze(ctx, job.Address)
	if err != nil {
		metrics.IncAnalysisFailed()
		r.setStatus(job, StatusFailed, analyzer.UserMessage(err))
		log.WithError(err).Warn("analysis failed")
		notify.Send(r.cfg, notify.Message{Text: fmt.Sprintf("analysis failed for %q: %s", job.Address, analyzer.UserMessage(err))})
		return
	}
	metrics.IncAnalysisSucceeded()

	var reportBytes int64
	var reportPath string
	if result.ReportPDF != "" {
		data, err := report.Decode(result.ReportPDF)
		if err != nil {
			r.setStatus(job, StatusFailed, fmt.Sprintf("decode report: %v", err))
			log.WithError(err).Warn("decode report")
			return
		}
		path, err := report.SaveAs(r.cfg.OutputDir, job.ID+"-"+report.Filename, data)
		if err != nil {
			r.setStatus(job, StatusFailed, fmt.Sprintf("save report: %v", err))
			log.WithError(err).Warn("save report")
			return
		}
		metrics.IncReportSaved()
		reportBytes = int64(len(data))
		reportPath = path
		log.Infof("report saved to %s (%s)", path, humanize.Bytes(uint64(len(data))))
	}

	if r.store != nil {
		if err := r.store.Record(ctx, history.EntryFrom(result, reportBytes)); err != nil {
			log.WithError(err).Warn("record history")
		}
	}

	r.mu.Lock()
	job.ReportPath = reportPath
	r.mu.Unlock()
	r.setStatus(job, StatusSucceeded, "")
	notify.Send(r.cfg, notify.Message{Text: fmt.Sprintf("analysis complete for %q (%s)", result.Address, result.SlopeAnalysis.SlopeClassification)})
}

func (r *Runner) setStatus(job *Job, status, errMsg string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	job.Status = status
	job.Error = errMsg
}
