// Package jobs runs submitted subtitle pipelines in the background and
// tracks each one through a handle registry. Submission never blocks on
// job execution; completion is delivered through a callback.
package jobs

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"

	"github.com/google/uuid"

	"subgen/internal/logging"
	"subgen/internal/output"
	"subgen/internal/pipeline"
	"subgen/internal/stage"
)

// Status is the lifecycle state of a submitted job.
type Status string

const (
	StatusPending   Status = "pending"
	StatusRunning   Status = "running"
	StatusSucceeded Status = "succeeded"
	StatusFailed    Status = "failed"
)

// Handle tracks one submitted job. It transitions exactly once from
// running to a terminal state and is owned by the coordinator; callers
// read it but never mutate it.
type Handle struct {
	ID  uuid.UUID
	Job pipeline.Job

	mu     sync.Mutex
	status Status
	bundle *output.Bundle
	err    error
	done   chan struct{}
}

// Status returns the current lifecycle state.
func (h *Handle) Status() Status {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.status
}

// Result returns the output bundle and error once the job is terminal.
// Before completion both are nil.
func (h *Handle) Result() (*output.Bundle, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.bundle, h.err
}

// Done is closed when the job reaches a terminal state.
func (h *Handle) Done() <-chan struct{} {
	return h.done
}

// Wait blocks until the job is terminal or the context is canceled,
// then returns the job's error.
func (h *Handle) Wait(ctx context.Context) error {
	select {
	case <-h.done:
		_, err := h.Result()
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (h *Handle) setRunning() {
	h.mu.Lock()
	h.status = StatusRunning
	h.mu.Unlock()
}

func (h *Handle) finish(bundle *output.Bundle, err error) {
	h.mu.Lock()
	if err != nil {
		h.status = StatusFailed
		h.err = err
	} else {
		h.status = StatusSucceeded
		h.bundle = bundle
	}
	h.mu.Unlock()
}

// Executor runs one job to completion. *pipeline.Runner satisfies it.
type Executor interface {
	Execute(ctx context.Context, job pipeline.Job) (*output.Bundle, error)
}

// Coordinator schedules each submitted job on its own goroutine. The
// in-flight registry is keyed by normalized video path so a second
// submission for the same file is rejected while the first still runs.
type Coordinator struct {
	executor Executor
	logger   *logging.Logger

	mu       sync.Mutex
	inFlight map[string]*Handle
	closed   bool
	wg       sync.WaitGroup
}

func NewCoordinator(executor Executor, logger *logging.Logger) *Coordinator {
	return &Coordinator{
		executor: executor,
		logger:   logger,
		inFlight: make(map[string]*Handle),
	}
}

// Submit validates the job, registers a handle, and schedules execution.
// It returns as soon as the job is scheduled. onComplete, if non-nil, is
// invoked exactly once from the job's goroutine after the handle reaches
// a terminal state, on success and on failure alike.
func (c *Coordinator) Submit(ctx context.Context, job pipeline.Job, onComplete func(*Handle)) (*Handle, error) {
	if err := job.Validate(); err != nil {
		return nil, err
	}
	key, err := normalizePath(job.VideoPath)
	if err != nil {
		return nil, stage.Errorf(stage.ErrInvalidRequest, "resolve %s: %v", job.VideoPath, err)
	}

	handle := &Handle{
		ID:     uuid.New(),
		Job:    job,
		status: StatusPending,
		done:   make(chan struct{}),
	}

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil, stage.Errorf(stage.ErrInvalidRequest, "coordinator is shut down")
	}
	if running, ok := c.inFlight[key]; ok {
		c.mu.Unlock()
		return nil, stage.Errorf(stage.ErrInvalidRequest,
			"a job for %s is already running (%s)", job.VideoPath, running.ID)
	}
	c.inFlight[key] = handle
	c.wg.Add(1)
	c.mu.Unlock()

	c.logger.Infow("Job submitted",
		"id", handle.ID,
		"video", job.VideoPath,
	)
	go c.run(ctx, handle, key, onComplete)
	return handle, nil
}

func (c *Coordinator) run(ctx context.Context, handle *Handle, key string, onComplete func(*Handle)) {
	defer c.wg.Done()
	defer func() {
		c.mu.Lock()
		delete(c.inFlight, key)
		c.mu.Unlock()
		close(handle.done)
		if onComplete != nil {
			onComplete(handle)
		}
	}()

	handle.setRunning()
	bundle, err := c.execute(ctx, handle.Job)
	handle.finish(bundle, err)

	if err != nil {
		c.logger.Warnw("Job failed",
			"id", handle.ID,
			"video", handle.Job.VideoPath,
			"error", err,
		)
		return
	}
	c.logger.Infow("Job succeeded",
		"id", handle.ID,
		"dir", bundle.Dir,
	)
}

// execute isolates a panic inside one job so it becomes that job's
// terminal failure instead of taking down sibling jobs.
func (c *Coordinator) execute(ctx context.Context, job pipeline.Job) (bundle *output.Bundle, err error) {
	defer func() {
		if r := recover(); r != nil {
			bundle = nil
			err = fmt.Errorf("job panicked: %v", r)
		}
	}()
	return c.executor.Execute(ctx, job)
}

// Shutdown refuses further submissions and waits for every in-flight
// job to finish, or returns the context's error if it expires first.
// Jobs keep running either way; there is no cancellation.
func (c *Coordinator) Shutdown(ctx context.Context) error {
	c.mu.Lock()
	c.closed = true
	c.mu.Unlock()

	idle := make(chan struct{})
	go func() {
		c.wg.Wait()
		close(idle)
	}()
	select {
	case <-idle:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func normalizePath(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", err
	}
	return filepath.Clean(abs), nil
}
