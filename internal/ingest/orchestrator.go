package ingest

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/panjf2000/ants/v2"

	"semantic-ats/internal/candidate"
	"semantic-ats/internal/contextutil"
	"semantic-ats/internal/storage"
	"semantic-ats/internal/vectorstore"
)

// RecordBuilder assembles a candidate record from raw resume text.
type RecordBuilder interface {
	Build(ctx context.Context, filename, rawText string) (*candidate.Record, candidate.Outcome)
}

// Ledger records per-file ingestion outcomes durably.
type Ledger interface {
	Record(ingestion storage.Ingestion) error
}

// Summary reports what one ingestion run did.
type Summary struct {
	Scanned int
	Full    int
	Partial int
	Failed  int
}

// Orchestrator drives one ingestion run: scan the intake directory, build
// a record per file on a worker pool, upsert indexable records, and route
// each file to the processed or error directory. Per-file failures never
// abort the run; only vector store unavailability does.
type Orchestrator struct {
	builder  RecordBuilder
	store    vectorstore.CandidateStore
	ledger   Ledger
	markdown *MarkdownExtractor

	sourceDir    string
	processedDir string
	errorDir     string
	workers      int

	locks lockTable
}

// NewOrchestrator creates an ingestion orchestrator.
func NewOrchestrator(builder RecordBuilder, store vectorstore.CandidateStore, ledger Ledger,
	sourceDir, processedDir, errorDir string, workers int) *Orchestrator {
	if workers < 1 {
		workers = 1
	}
	return &Orchestrator{
		builder:      builder,
		store:        store,
		ledger:       ledger,
		markdown:     NewMarkdownExtractor(),
		sourceDir:    sourceDir,
		processedDir: processedDir,
		errorDir:     errorDir,
		workers:      workers,
	}
}

// Run executes one ingestion pass over the intake directory.
//
// The vector store is checked up front; an unreachable store aborts the
// run before any file is touched, since no outcome could be made durable.
// A store outage surfacing mid-run halts further dispatch the same way.
// Cancellation stops new files from being dispatched; files already in
// flight are left unmoved so the next run picks them up.
func (o *Orchestrator) Run(ctx context.Context) (Summary, error) {
	logger := contextutil.LoggerFromContext(ctx)

	if err := o.store.EnsureCollection(ctx); err != nil {
		return Summary{}, fmt.Errorf("vector store unavailable: %w", err)
	}

	for _, dir := range []string{o.processedDir, o.errorDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return Summary{}, fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}

	files, err := ScanSourceDir(o.sourceDir)
	if err != nil {
		return Summary{}, err
	}

	logger.InfoContext(ctx, "ingestion run started",
		"source_dir", o.sourceDir, "files", len(files), "workers", o.workers)

	pool, err := ants.NewPool(o.workers)
	if err != nil {
		return Summary{}, fmt.Errorf("failed to create worker pool: %w", err)
	}
	defer pool.Release()

	runCtx, cancelRun := context.WithCancel(ctx)
	defer cancelRun()

	var (
		mu       sync.Mutex
		wg       sync.WaitGroup
		fatalErr error
		summary  = Summary{Scanned: len(files)}
	)

	for _, file := range files {
		if runCtx.Err() != nil {
			break
		}

		file := file
		wg.Add(1)
		err := pool.Submit(func() {
			defer wg.Done()
			outcome, err := o.processFile(runCtx, file)

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				// Systemic failure: the file stays in the source
				// directory and no further files are dispatched.
				// Cancellation is reported through ctx at the end.
				if fatalErr == nil && !errors.Is(err, context.Canceled) {
					fatalErr = err
				}
				cancelRun()
				return
			}
			switch outcome {
			case candidate.OutcomeFull:
				summary.Full++
			case candidate.OutcomePartial:
				summary.Partial++
			default:
				summary.Failed++
			}
		})
		if err != nil {
			wg.Done()
			logger.ErrorContext(ctx, "failed to submit file to pool", "filename", file.Filename, "error", err)
			mu.Lock()
			summary.Failed++
			mu.Unlock()
		}
	}

	wg.Wait()

	logger.InfoContext(ctx, "ingestion run finished",
		"scanned", summary.Scanned, "full", summary.Full,
		"partial", summary.Partial, "failed", summary.Failed)

	if fatalErr != nil {
		return summary, fatalErr
	}
	if ctx.Err() != nil {
		return summary, ctx.Err()
	}
	return summary, nil
}

// processFile runs the full pipeline for one resume file and returns the
// recorded outcome. A non-nil error means the file was NOT processed:
// either the run was cancelled mid-file or the vector store went away.
// In both cases the file is left in the source directory with no ledger
// row, so the next run sees it again. Same-named files are serialized so
// a record is never half-written by concurrent runs.
func (o *Orchestrator) processFile(ctx context.Context, file SourceFile) (candidate.Outcome, error) {
	logger := contextutil.LoggerFromContext(ctx)

	lock := o.locks.acquire(file.Filename)
	lock.Lock()
	defer lock.Unlock()

	content, err := os.ReadFile(file.AbsPath)
	if err != nil {
		logger.ErrorContext(ctx, "failed to read resume", "filename", file.Filename, "error", err)
		o.finishFile(ctx, file, candidate.PointID(file.Filename), candidate.OutcomeFailed,
			fmt.Sprintf("read failed: %v", err))
		return candidate.OutcomeFailed, nil
	}

	rawText := string(content)
	if strings.EqualFold(filepath.Ext(file.Filename), ".md") {
		rawText = o.markdown.PlainText(content)
	}

	record, outcome := o.builder.Build(ctx, file.Filename, rawText)

	// A build degraded by cancellation is not a verdict on the file.
	if ctx.Err() != nil {
		return outcome, ctx.Err()
	}

	detail := ""
	if outcome.Indexable() {
		// Upsert before moving the file: a record must be searchable
		// before its source leaves the intake directory.
		if err := o.store.Upsert(ctx, toPoint(record)); err != nil {
			if !errors.Is(err, vectorstore.ErrDimensionMismatch) {
				// Anything other than a malformed record means the
				// store itself is in trouble. That is fatal to the
				// run, not a judgment on this resume.
				logger.ErrorContext(ctx, "vector store unavailable", "filename", file.Filename, "error", err)
				return outcome, fmt.Errorf("vector store unavailable: %w", err)
			}
			logger.ErrorContext(ctx, "record rejected by store", "filename", file.Filename, "error", err)
			outcome = candidate.OutcomeFailed
			detail = fmt.Sprintf("upsert rejected: %v", err)
		}
	} else {
		detail = "record not indexable"
	}

	o.finishFile(ctx, file, record.ID, outcome, detail)
	return outcome, nil
}

// finishFile routes the source file to its destination directory and
// writes the ledger row. Both are best-effort at this point; failures are
// logged but the outcome stands.
func (o *Orchestrator) finishFile(ctx context.Context, file SourceFile, pointID string, outcome candidate.Outcome, detail string) {
	logger := contextutil.LoggerFromContext(ctx)

	destDir := o.errorDir
	if outcome.Indexable() {
		destDir = o.processedDir
	}
	dest := filepath.Join(destDir, file.Filename)
	if err := os.Rename(file.AbsPath, dest); err != nil {
		logger.ErrorContext(ctx, "failed to move resume", "filename", file.Filename, "dest", dest, "error", err)
	}

	err := o.ledger.Record(storage.Ingestion{
		Filename:    file.Filename,
		PointID:     pointID,
		Outcome:     outcome.String(),
		Detail:      detail,
		ProcessedAt: time.Now().UTC(),
	})
	if err != nil {
		logger.ErrorContext(ctx, "failed to write ledger row", "filename", file.Filename, "error", err)
	}
}

// toPoint converts a candidate record to its vector store representation.
// Narrative payload fields are present only when their vector is, so
// search results never carry text that cannot be reached by that mode.
func toPoint(record *candidate.Record) vectorstore.Point {
	payload := map[string]any{
		"filename":     record.Filename,
		"raw_text":     record.RawText,
		"processed_at": record.ProcessedAt.Format(time.RFC3339),
	}
	if record.HasVector(candidate.VectorStory) {
		payload["story"] = record.StoryText
	}
	if record.HasVector(candidate.VectorPersonality) {
		payload["personality"] = record.PersonalityText
	}

	return vectorstore.Point{
		ID:      record.ID,
		Vectors: record.Vectors,
		Payload: payload,
	}
}

// lockTable hands out one mutex per filename.
type lockTable struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func (t *lockTable) acquire(key string) *sync.Mutex {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.locks == nil {
		t.locks = make(map[string]*sync.Mutex)
	}
	lock, ok := t.locks[key]
	if !ok {
		lock = &sync.Mutex{}
		t.locks[key] = lock
	}
	return lock
}
