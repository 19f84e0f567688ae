// Package analysis drives a single report through submit, wait and outcome.
//
// The transitions live in the pure Reduce function; Controller wraps it with
// the upload gate, the remote service call and logging.
package analysis

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/mabhi256/medi/internal/upload"
	"github.com/mabhi256/medi/utils"
)

// FallbackMessage is shown when a failure carries no usable detail
const FallbackMessage = "Something went wrong. Please try again."

var (
	// ErrRateLimited is returned by a Service when the remote answered 429
	ErrRateLimited = errors.New("analysis rate limit reached")

	ErrBusy            = errors.New("an analysis is in progress or awaiting reset")
	ErrNothingToSubmit = errors.New("no file selected")
)

// ServiceError is a non-2xx, non-429 answer from the analysis service
type ServiceError struct {
	Status int
	Detail string
}

func (e *ServiceError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("analysis service returned %d: %s", e.Status, e.Detail)
	}
	return fmt.Sprintf("analysis service returned %d", e.Status)
}

// Service performs the remote analysis of one file
type Service interface {
	Analyze(ctx context.Context, file *upload.File) (*Result, error)
}

// Request identifies one accepted submission
type Request struct {
	ID   uint64
	File *upload.File
}

type Controller struct {
	mu      sync.Mutex
	gate    *upload.Gate
	service Service
	state   State
	logger  *slog.Logger
}

func NewController(gate *upload.Gate, service Service, logger *slog.Logger) *Controller {
	if logger == nil {
		logger = slog.Default()
	}
	return &Controller{
		gate:    gate,
		service: service,
		logger:  logger,
	}
}

// State returns a snapshot of the current state
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// File returns the file currently held by the gate
func (c *Controller) File() *upload.File {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.gate.Current()
}

// MaxUpload is the size bound enforced on selection
func (c *Controller) MaxUpload() utils.MemorySize {
	return c.gate.MaxSize()
}

// Select validates path and holds it for the next submission
func (c *Controller) Select(path string) (*upload.File, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state.Phase != PhaseIdle {
		return nil, ErrBusy
	}

	file, err := c.gate.Select(path)
	if err != nil {
		c.logger.Info("analysis.select.rejected", "path", path, "error", err)
		return nil, err
	}

	c.logger.Info("analysis.select", "name", file.Name, "size", file.Size, "ext", file.Extension)
	return file, nil
}

// Clear drops the held file. It is refused while a request is in flight.
func (c *Controller) Clear() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state.Phase == PhaseSubmitting {
		return ErrBusy
	}
	c.gate.Clear()
	return nil
}

// Begin moves Idle to Submitting with the held file. The returned request
// must be passed to Run and its outcome to Resolve.
func (c *Controller) Begin() (Request, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	file := c.gate.Current()
	next, ok := Reduce(c.state, Submit{File: file})
	if !ok {
		c.logger.Info("analysis.submit.rejected", "phase", c.state.Phase.String(), "has_file", file != nil)
		if file == nil && c.state.Phase == PhaseIdle {
			return Request{}, ErrNothingToSubmit
		}
		return Request{}, ErrBusy
	}

	c.state = next
	c.logger.Info("analysis.submit", "request_id", next.RequestID, "name", file.Name)
	return Request{ID: next.RequestID, File: file}, nil
}

// Run performs exactly one service call for req and maps its result to the
// event that resolves it. It does not touch the state and may run on any
// goroutine.
func (c *Controller) Run(ctx context.Context, req Request) Event {
	start := time.Now()
	result, err := c.service.Analyze(ctx, req.File)
	elapsed := time.Since(start)

	if err == nil && result != nil {
		c.logger.Info("analysis.response.ok", "request_id", req.ID, "elapsed_ms", elapsed.Milliseconds())
		return ResponseOK{RequestID: req.ID, Result: *result}
	}
	if err == nil {
		err = errors.New("empty analysis result")
	}

	if errors.Is(err, ErrRateLimited) {
		c.logger.Warn("analysis.response.rate_limited", "request_id", req.ID, "elapsed_ms", elapsed.Milliseconds())
		return ResponseRateLimited{RequestID: req.ID}
	}

	c.logger.Error("analysis.response.error", "request_id", req.ID, "error", err, "elapsed_ms", elapsed.Milliseconds())
	return ResponseError{RequestID: req.ID, Message: FailureMessage(err)}
}

// Resolve applies a response event. It returns false for stale responses,
// which are discarded.
func (c *Controller) Resolve(e Event) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	next, ok := Reduce(c.state, e)
	if !ok {
		c.logger.Info("analysis.response.discarded", "phase", c.state.Phase.String(), "event", fmt.Sprintf("%T", e))
		return false
	}

	c.state = next
	c.logger.Info("analysis.state", "phase", next.Phase.String(), "request_id", next.RequestID)
	return true
}

// Submit runs Begin, Run and Resolve back to back and returns the final state
func (c *Controller) Submit(ctx context.Context) (State, error) {
	req, err := c.Begin()
	if err != nil {
		return c.State(), err
	}

	c.Resolve(c.Run(ctx, req))
	return c.State(), nil
}

// Reset returns to Idle and discards the held file and any result. A request
// still in flight keeps running but its response will be discarded.
func (c *Controller) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.state, _ = Reduce(c.state, Reset{})
	c.gate.Clear()
	c.logger.Info("analysis.reset")
}

// FailureMessage extracts the user-facing message from a service failure
func FailureMessage(err error) string {
	var svcErr *ServiceError
	if errors.As(err, &svcErr) && svcErr.Detail != "" {
		return svcErr.Detail
	}
	return FallbackMessage
}
