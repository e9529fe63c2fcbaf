// Package uploader drives batch image uploads: the whole batch is validated
// before any bytes move, then files are pushed through a bounded worker pool
// with per-file outcomes and aggregate progress reporting.
package uploader

import (
	"context"
	"fmt"
	"io"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/Kantheephob/Nostalgia-Life-Log/internal/images"
)

const (
	DefaultMaxFiles    = 10
	DefaultConcurrency = 4
)

// Gateway uploads a single file to storage. Implemented by apiclient.Client
// for real servers and by fakes in tests.
type Gateway interface {
	Upload(ctx context.Context, name, contentType string, size int64, r io.Reader) (images.Image, error)
}

// File is one candidate in an upload batch. Open is called at most once, when
// the file's upload slot comes up.
type File struct {
	Name        string
	ContentType string
	Size        int64
	Open        func() (io.ReadCloser, error)
}

// State tracks a batch through its lifecycle.
type State int

const (
	StateIdle State = iota
	StateValidating
	StateUploading
	StateCompleted
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateValidating:
		return "validating"
	case StateUploading:
		return "uploading"
	case StateCompleted:
		return "completed"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Outcome is the per-file result of a batch. Exactly one of Image or Err is
// meaningful.
type Outcome struct {
	File  File
	Image images.Image
	Err   error
}

// BatchResult is the itemized report for one batch. Files stored before a
// sibling failed stay stored; callers see exactly which succeeded.
type BatchResult struct {
	State    State
	Outcomes []Outcome
	Uploaded []images.Image
	Failed   int
}

// Config tunes an Orchestrator.
type Config struct {
	// MaxFiles caps batch size; exceeding it rejects the batch before
	// validation. Defaults to DefaultMaxFiles.
	MaxFiles int
	// Concurrency bounds in-flight uploads. Defaults to DefaultConcurrency.
	Concurrency int
	// OnProgress, if set, is called after each upload settles with the batch
	// completion percentage. Calls are serialized.
	OnProgress func(completed, total int, percent float64)
}

// Orchestrator validates and uploads batches of files.
type Orchestrator struct {
	gw  Gateway
	cfg Config
}

// New constructs an Orchestrator, applying config defaults.
func New(gw Gateway, cfg Config) *Orchestrator {
	if cfg.MaxFiles <= 0 {
		cfg.MaxFiles = DefaultMaxFiles
	}
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = DefaultConcurrency
	}
	return &Orchestrator{gw: gw, cfg: cfg}
}

// Run executes one batch. Validation is all-or-nothing: any invalid file
// rejects the whole batch with that file's reason and zero uploads are
// attempted. Once uploading starts every file settles independently; the
// returned error is nil and per-file failures are reported in the outcomes.
func (o *Orchestrator) Run(ctx context.Context, files []File) (BatchResult, error) {
	if len(files) == 0 {
		return BatchResult{State: StateCompleted}, nil
	}
	if len(files) > o.cfg.MaxFiles {
		err := fmt.Errorf("%w: %d files exceeds the maximum of %d", images.ErrTooManyFiles, len(files), o.cfg.MaxFiles)
		return BatchResult{State: StateFailed}, err
	}

	for _, f := range files {
		if err := validate(f); err != nil {
			return BatchResult{State: StateFailed}, err
		}
	}

	total := len(files)
	outcomes := make([]Outcome, total)

	var mu sync.Mutex
	completed := 0

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(o.cfg.Concurrency)
	for i, f := range files {
		i, f := i, f
		g.Go(func() error {
			img, err := o.uploadOne(gctx, f)
			outcomes[i] = Outcome{File: f, Image: img, Err: err}

			mu.Lock()
			completed++
			done := completed
			mu.Unlock()
			if o.cfg.OnProgress != nil {
				o.cfg.OnProgress(done, total, float64(done)/float64(total)*100)
			}
			// Failures are recorded per file, never propagated: a failed
			// sibling must not cancel in-flight uploads.
			return nil
		})
	}
	_ = g.Wait()

	result := BatchResult{State: StateCompleted, Outcomes: outcomes}
	for _, out := range outcomes {
		if out.Err != nil {
			result.Failed++
			continue
		}
		result.Uploaded = append(result.Uploaded, out.Image)
	}
	if result.Failed > 0 {
		result.State = StateFailed
	}
	return result, nil
}

func (o *Orchestrator) uploadOne(ctx context.Context, f File) (images.Image, error) {
	rc, err := f.Open()
	if err != nil {
		return images.Image{}, fmt.Errorf("open %s: %w", f.Name, err)
	}
	defer rc.Close()
	return o.gw.Upload(ctx, f.Name, f.ContentType, f.Size, rc)
}

func validate(f File) error {
	if !images.AllowedMimeType(f.ContentType) {
		return fmt.Errorf("%s: %w", f.Name, images.ErrInvalidType)
	}
	if f.Size > images.MaxUploadBytes {
		return fmt.Errorf("%s: %w", f.Name, images.ErrTooLarge)
	}
	return nil
}
