package export

import (
	"context"
	"errors"
	"fmt"
	"image"
	"log"
	"sync"

	"github.com/example/shineymark/internal/clipboard"
	"github.com/example/shineymark/internal/notify"
	"github.com/example/shineymark/internal/render"
)

// ErrClosed is returned by Submit after Close.
var ErrClosed = errors.New("export worker closed")

// Job is one export request. Image must be a snapshot the caller no longer
// mutates; the worker never copies it again.
type Job struct {
	Image     *image.RGBA
	Path      string
	Clipboard bool
	Shadow    render.ShadowOptions
}

// Result reports the outcome of a Job.
type Result struct {
	Job Job
	// Output is the image that was written, after the shadow was applied.
	Output *image.RGBA
	Err    error
}

// Worker encodes snapshots on a background goroutine.
type Worker struct {
	comp     *render.Compositor
	notifier *notify.Notifier
	copyFn   func(image.Image) error
	onResult func(Result)

	jobs chan Job

	mu     sync.Mutex
	closed bool
}

// Option configures a Worker.
type Option func(*Worker)

// WithNotifier reports finished exports through n.
func WithNotifier(n *notify.Notifier) Option { return func(w *Worker) { w.notifier = n } }

// WithClipboard replaces clipboard.Copy.
func WithClipboard(fn func(image.Image) error) Option { return func(w *Worker) { w.copyFn = fn } }

// WithResultHandler is called from the worker goroutine after each job.
func WithResultHandler(fn func(Result)) Option { return func(w *Worker) { w.onResult = fn } }

// WithQueue sets how many jobs may wait before Submit blocks.
func WithQueue(n int) Option {
	return func(w *Worker) {
		if n >= 0 {
			w.jobs = make(chan Job, n)
		}
	}
}

// NewWorker creates a Worker. Call Run to start processing.
func NewWorker(comp *render.Compositor, opts ...Option) *Worker {
	if comp == nil {
		comp = render.New()
	}
	w := &Worker{
		comp:   comp,
		copyFn: clipboard.Copy,
		jobs:   make(chan Job, 4),
	}
	for _, o := range opts {
		o(w)
	}
	return w
}

// Submit queues job, blocking while the queue is full.
func (w *Worker) Submit(ctx context.Context, job Job) error {
	if job.Image == nil {
		return fmt.Errorf("export: nil image")
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return ErrClosed
	}
	select {
	case w.jobs <- job:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close stops accepting jobs. Run returns once the queue drains.
func (w *Worker) Close() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return
	}
	w.closed = true
	close(w.jobs)
}

// Run processes jobs until Close has been called and the queue is empty,
// or ctx is done.
func (w *Worker) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case job, ok := <-w.jobs:
			if !ok {
				return nil
			}
			res := w.Process(job)
			if w.onResult != nil {
				w.onResult(res)
			}
		}
	}
}

// Process runs job synchronously.
func (w *Worker) Process(job Job) Result {
	res := Result{Job: job}
	out, _, err := w.comp.DropShadow(job.Image, job.Shadow)
	if err != nil {
		res.Err = fmt.Errorf("shadow: %w", err)
		w.fail(res.Err)
		return res
	}
	res.Output = out
	var errs []error
	if job.Path != "" {
		if err := SaveFile(job.Path, out); err != nil {
			log.Printf("save: %v", err)
			errs = append(errs, err)
		} else {
			w.notifier.Save(job.Path)
		}
	}
	if job.Clipboard {
		if err := w.copyFn(out); err != nil {
			log.Printf("copy: %v", err)
			errs = append(errs, fmt.Errorf("copy: %w", err))
		} else {
			w.notifier.Copy("", out)
		}
	}
	res.Err = errors.Join(errs...)
	w.fail(res.Err)
	return res
}

func (w *Worker) fail(err error) {
	if err != nil {
		w.notifier.Failure(err)
	}
}
