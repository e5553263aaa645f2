package job

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
)

// PollFunc fetches the current status of a running job.
type PollFunc func(ctx context.Context) (Status, error)

// StartFunc issues the request that kicks the job off server-side.
type StartFunc func(ctx context.Context) error

// Runner starts jobs and polls them to completion. The zero value polls
// every two seconds with the default logger.
type Runner struct {
	Interval time.Duration
	Logger   *slog.Logger
}

func (r *Runner) interval() time.Duration {
	if r.Interval > 0 {
		return r.Interval
	}
	return 2 * time.Second
}

func (r *Runner) logger() *slog.Logger {
	if r.Logger != nil {
		return r.Logger
	}
	return slog.Default()
}

// Handle observes one job instance. Stop cancels the polling loop; it is the
// single cancellation path for both "tab torn down" and "new job started".
type Handle struct {
	ID string

	updates chan Status
	done    chan struct{}
	cancel  context.CancelFunc

	mu   sync.Mutex
	last Status
}

// Updates yields status observations, conflated to the latest: a slow
// consumer sees the newest status, never a stale backlog. The channel is
// closed after the terminal status has been delivered.
func (h *Handle) Updates() <-chan Status { return h.updates }

// Status returns the most recently applied status.
func (h *Handle) Status() Status {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.last
}

// Stop cancels polling. In-flight poll responses are discarded, not applied.
// Stop is idempotent and does not notify the backend.
func (h *Handle) Stop() {
	h.cancel()
	<-h.done
}

// Wait blocks until the job reaches a terminal state or ctx is done.
func (h *Handle) Wait(ctx context.Context) (Status, error) {
	select {
	case <-h.done:
		return h.Status(), nil
	case <-ctx.Done():
		return h.Status(), ctx.Err()
	}
}

func (h *Handle) apply(st Status) {
	h.mu.Lock()
	h.last = st
	h.mu.Unlock()

	// Conflate: replace an unread update instead of blocking the loop.
	for {
		select {
		case h.updates <- st:
			return
		default:
		}
		select {
		case <-h.updates:
		default:
		}
	}
}

type pollResult struct {
	seq    uint64
	status Status
	err    error
}

// Start submits the job and begins polling. If start fails no polling
// happens and the error is returned as-is. At most one poll response is
// applied per sequence number; late responses from older ticks are dropped
// so a stale status can never overwrite a newer one.
func (r *Runner) Start(ctx context.Context, start StartFunc, poll PollFunc) (*Handle, error) {
	if err := start(ctx); err != nil {
		return nil, err
	}

	ctx, cancel := context.WithCancel(ctx)
	h := &Handle{
		ID:      uuid.NewString(),
		updates: make(chan Status, 1),
		done:    make(chan struct{}),
		cancel:  cancel,
		last:    Status{State: StateRunning},
	}

	go r.loop(ctx, h, poll)
	return h, nil
}

// RunOnce covers the single request/response jobs (file preview, credential
// save): the call itself is the whole job and the result is terminal
// immediately. Kept here so call sites treat both shapes uniformly.
func RunOnce(ctx context.Context, start StartFunc) Status {
	if err := start(ctx); err != nil {
		return Status{State: StateError, Detail: err.Error()}
	}
	return Status{State: StateCompleted}
}

func (r *Runner) loop(ctx context.Context, h *Handle, poll PollFunc) {
	// Cancel on every exit path so in-flight poll goroutines blocked on the
	// results send can always bail out, terminal status included.
	defer h.cancel()
	defer close(h.done)
	defer close(h.updates)

	ticker := time.NewTicker(r.interval())
	defer ticker.Stop()

	results := make(chan pollResult)
	var sent, applied uint64
	failures := 0

	issue := func() {
		sent++
		seq := sent
		go func() {
			st, err := poll(ctx)
			select {
			case results <- pollResult{seq: seq, status: st, err: err}:
			case <-ctx.Done():
			}
		}()
	}

	issue()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			issue()
		case res := <-results:
			if res.seq <= applied {
				r.logger().Debug("discarding stale poll response", "job_id", h.ID, "seq", res.seq)
				continue
			}
			if res.err != nil {
				// A single bad tick is non-fatal; keep polling.
				failures++
				r.logger().Debug("poll tick failed", "job_id", h.ID, "error", res.err, "consecutive", failures)
				continue
			}
			applied = res.seq
			st := res.status
			st.PollFailures = failures
			failures = 0
			h.apply(st)
			if st.Terminal() {
				return
			}
		}
	}
}
