package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/contractkit/playbookd/internal/analysis"
	"github.com/contractkit/playbookd/internal/chunker"
	"github.com/contractkit/playbookd/internal/config"
	"github.com/contractkit/playbookd/internal/document"
	"github.com/contractkit/playbookd/internal/excel"
	"github.com/contractkit/playbookd/internal/parser"
	"github.com/contractkit/playbookd/internal/playbook"
)

// RenderFunc writes a playbook workbook to path.
type RenderFunc func(pb *playbook.Playbook, path string) error

// Runner executes the playbook pipeline: extract text, chunk, analyze
// each chunk, merge, and render the workbook.
type Runner struct {
	jobs   *JobStore
	client analysis.Client
	render RenderFunc
	log    *slog.Logger
	cfg    config.Config

	cancel context.CancelFunc
	wg     sync.WaitGroup

	// sleep is swapped out in tests to avoid real backoff waits.
	sleep func(time.Duration)
}

// NewRunner wires the pipeline together. render may be nil, which
// selects the standard workbook writer.
func NewRunner(cfg config.Config, client analysis.Client, render RenderFunc, log *slog.Logger) *Runner {
	if render == nil {
		render = excel.Generate
	}
	return &Runner{
		jobs:   NewJobStore(cfg.JobTTL),
		client: client,
		render: render,
		log:    log,
		cfg:    cfg,
		sleep:  time.Sleep,
	}
}

// Jobs exposes the job store for API handlers.
func (r *Runner) Jobs() *JobStore {
	return r.jobs
}

// Client returns the analysis client for stats reporting.
func (r *Runner) Client() analysis.Client {
	return r.client
}

// Start launches the job store cleanup loop.
func (r *Runner) Start(ctx context.Context) {
	loopCtx, cancel := context.WithCancel(ctx)
	r.cancel = cancel

	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		ticker := time.NewTicker(5 * time.Minute)
		defer ticker.Stop()
		for {
			select {
			case <-loopCtx.Done():
				return
			case <-ticker.C:
				for _, path := range r.jobs.Cleanup() {
					if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
						r.log.Warn("remove expired output", "path", path, "error", err)
					}
				}
			}
		}
	}()
}

// Stop shuts down the cleanup loop.
func (r *Runner) Stop() {
	if r.cancel != nil {
		r.cancel()
	}
	r.wg.Wait()
}

// Run processes one job to completion. It is synchronous; the job's
// status entry reflects the outcome when it returns.
func (r *Runner) Run(ctx context.Context, job *Job) {
	rep := jobReporter{job: job}
	log := r.log.With("job_id", job.ID, "filename", job.Filename)

	rep.Report(0, "extracting document text")
	doc, err := r.extract(job)
	if err != nil {
		log.Error("extraction failed", "error", err)
		job.Fail(err.Error())
		return
	}
	if doc.Empty() {
		log.Warn("document has no extractable text")
		job.Fail("no text could be extracted from the document")
		return
	}
	rep.Report(progressExtracted, fmt.Sprintf("extracted %d characters", len(doc.Text)))

	chunks := chunker.Plan(doc.Text, r.cfg.ChunkSize)
	job.SetChunksTotal(len(chunks))
	log.Info("analysis planned", "chunks", len(chunks), "provider", r.client.Provider(), "model", r.client.Model())

	var results []*playbook.ChunkResult
	for i, chunk := range chunks {
		if ctx.Err() != nil {
			job.Fail("processing cancelled")
			return
		}
		req := analysis.Request{
			Text:          chunk,
			AgreementType: job.Opts.AgreementType,
			UserRole:      job.Opts.UserRole,
			RiskTolerance: job.Opts.RiskTolerance,
			ChunkIndex:    i,
			ChunkCount:    len(chunks),
		}
		res, err := r.analyzeWithRetry(ctx, req)
		if err != nil {
			log.Warn("chunk analysis failed, skipping", "chunk", i+1, "error", err)
			job.IncrChunksFailed()
		} else {
			results = append(results, res)
		}
		rep.Report(analysisProgress(i+1, len(chunks)),
			fmt.Sprintf("analyzed section %d of %d", i+1, len(chunks)))
	}

	if len(results) == 0 {
		log.Error("all chunks failed analysis", "chunks", len(chunks))
		job.Fail(fmt.Sprintf("analysis failed for all %d sections", len(chunks)))
		return
	}

	pb := playbook.Merge(results)
	rep.Report(progressMerged, "merged analysis results")

	outPath, err := r.renderOutput(pb, job)
	if err != nil {
		log.Error("render failed", "error", err)
		job.Fail(err.Error())
		return
	}

	// The upload served its purpose; leftover files are just disk noise.
	if err := os.Remove(job.UploadPath); err != nil && !os.IsNotExist(err) {
		log.Warn("remove upload", "path", job.UploadPath, "error", err)
	}

	job.Complete(outPath, "playbook ready")
	log.Info("playbook generated", "output", outPath, "clauses", len(pb.Clauses), "failed_chunks", job.Snapshot().ChunksFailed)
}

func (r *Runner) extract(job *Job) (*document.Document, error) {
	p, err := parser.ForFile(job.Filename)
	if err != nil {
		return nil, err
	}
	if pdfP, ok := p.(*parser.PDFParser); ok {
		pdfP.FallbackPdftotext = r.cfg.PDFFallbackPdftotext
	}

	f, err := os.Open(job.UploadPath)
	if err != nil {
		return nil, fmt.Errorf("open upload: %w", err)
	}
	defer f.Close()

	d, err := p.Parse(f, job.Filename)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", job.Filename, err)
	}
	return d, nil
}

func (r *Runner) analyzeWithRetry(ctx context.Context, req analysis.Request) (*playbook.ChunkResult, error) {
	var lastErr error
	for attempt := 0; attempt < MaxAttempts; attempt++ {
		if attempt > 0 {
			r.sleep(Backoff(attempt - 1))
		}
		res, err := r.client.Analyze(ctx, req)
		if err == nil {
			return res, nil
		}
		lastErr = err
		if !analysis.IsRetryable(err) {
			break
		}
	}
	return nil, lastErr
}

func (r *Runner) renderOutput(pb *playbook.Playbook, job *Job) (string, error) {
	if err := os.MkdirAll(r.cfg.OutputDir, 0o755); err != nil {
		return "", fmt.Errorf("create output dir: %w", err)
	}
	path := filepath.Join(r.cfg.OutputDir, job.ID+"_playbook.xlsx")
	if err := r.render(pb, path); err != nil {
		return "", err
	}
	return path, nil
}
