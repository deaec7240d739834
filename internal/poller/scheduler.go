package poller

import (
	"context"
	"fmt"
	"log/slog"
	"runtime/debug"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/jpalmerr/mcstatus/internal/mcsrvstat"
)

// StatusResult holds the outcome of one poll tick.
type StatusResult struct {
	// TickID identifies the tick in logs.
	TickID string

	// Target is the host:port that was looked up.
	Target string

	// URL is the status API URL that was requested.
	URL string

	// Status is the normalized status. It is the offline record when Error
	// is set.
	Status mcsrvstat.Status

	// Latency is the time taken to complete the HTTP request.
	Latency time.Duration

	// CheckedAt is when the tick completed.
	CheckedAt time.Time

	// Error is the reason the tick collapsed to offline, if any.
	Error error

	// RawResponse contains the response body (limited to 1MB).
	RawResponse []byte

	// StatusCode is the HTTP status code, zero when no response arrived.
	StatusCode int
}

// Target describes what to poll.
type Target struct {
	// Address is the host:port lookup key.
	Address string

	// BaseURL is the status API base, e.g. https://api.mcsrvstat.us/3.
	BaseURL string

	// Timeout bounds a single request.
	Timeout time.Duration
}

// URL returns the status API URL for the target.
func (t Target) URL() string {
	return mcsrvstat.URL(t.BaseURL, t.Address)
}

// normalizeFunc converts a response body into a status.
type normalizeFunc func(body []byte) (mcsrvstat.Status, error)

func decodeAndNormalize(body []byte) (mcsrvstat.Status, error) {
	resp, err := mcsrvstat.Decode(body)
	if err != nil {
		return mcsrvstat.Offline(), err
	}
	return mcsrvstat.Normalize(resp), nil
}

// Scheduler polls a single target on a fixed interval.
//
// The first tick runs as soon as [Scheduler.Start] is called. Ticks run one
// at a time; every result replaces the previous one downstream.
//
// All lifecycle methods are safe for concurrent use.
type Scheduler struct {
	target    Target
	interval  time.Duration
	client    *Client
	normalize normalizeFunc
	results   chan StatusResult
	logger    *slog.Logger
	cancel    context.CancelFunc
	wg        sync.WaitGroup

	mu        sync.Mutex
	started   bool
	stopped   bool
	closeOnce sync.Once
}

// NewScheduler creates a [Scheduler] for target.
//
// When client is nil a default [Client] is created. The scheduler must be
// started with [Scheduler.Start] and stopped with [Scheduler.Stop].
func NewScheduler(target Target, interval time.Duration, client *Client, logger *slog.Logger) *Scheduler {
	if client == nil {
		client = NewClient()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Scheduler{
		target:    target,
		interval:  interval,
		client:    client,
		normalize: decodeAndNormalize,
		results:   make(chan StatusResult, 1),
		logger:    logger,
	}
}

// Results returns the channel poll results are delivered on.
//
// The channel is closed when the scheduler stops.
func (s *Scheduler) Results() <-chan StatusResult {
	return s.results
}

// Start begins polling in a background goroutine.
//
// Start is non-blocking. It polls immediately, then every interval until
// [Scheduler.Stop] is called or ctx is cancelled. Subsequent calls are
// no-ops, as is calling Start after Stop.
func (s *Scheduler) Start(ctx context.Context) {
	s.mu.Lock()
	if s.started || s.stopped {
		s.mu.Unlock()
		return
	}
	s.started = true

	if ctx == nil {
		ctx = context.Background()
	}
	pollCtx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	s.wg.Add(1)
	s.mu.Unlock()

	go func() {
		defer s.wg.Done()
		defer s.closeOnce.Do(func() { close(s.results) })

		if !s.emit(pollCtx, s.Poll(pollCtx)) {
			return
		}

		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()

		for {
			select {
			case <-pollCtx.Done():
				return
			case <-ticker.C:
				if !s.emit(pollCtx, s.Poll(pollCtx)) {
					return
				}
			}
		}
	}()
}

// emit delivers a result unless the scheduler is shutting down.
func (s *Scheduler) emit(ctx context.Context, result StatusResult) bool {
	select {
	case s.results <- result:
		return true
	case <-ctx.Done():
		return false
	}
}

// Stop halts the scheduler and waits for the polling goroutine to exit.
//
// Stop is idempotent. Calling Stop before Start is a safe no-op that still
// closes the results channel.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	if !s.stopped {
		s.stopped = true
		if s.cancel != nil {
			s.cancel()
		}
	}
	s.mu.Unlock()

	s.wg.Wait()
	s.client.Close()
	s.closeOnce.Do(func() { close(s.results) })
}

// Poll runs a single tick synchronously and returns its result.
func (s *Scheduler) Poll(ctx context.Context) StatusResult {
	url := s.target.URL()
	resp := s.client.Fetch(ctx, url, s.target.Timeout)

	result := StatusResult{
		TickID:      uuid.NewString(),
		Target:      s.target.Address,
		URL:         url,
		Status:      mcsrvstat.Offline(),
		Latency:     resp.Latency,
		RawResponse: resp.Body,
		StatusCode:  resp.StatusCode,
		Error:       resp.Error,
	}

	switch {
	case resp.Error != nil:
	case resp.StatusCode < 200 || resp.StatusCode >= 300:
		result.Error = fmt.Errorf("unexpected status code %d", resp.StatusCode)
	default:
		st, err := s.safeNormalize(resp.Body)
		if err != nil {
			result.Error = err
		} else {
			result.Status = st
		}
	}

	result.CheckedAt = time.Now()
	return result
}

// safeNormalize runs the normalizer with panic recovery. A panic is logged
// with its stack under a correlation ID and reported as offline.
func (s *Scheduler) safeNormalize(body []byte) (st mcsrvstat.Status, err error) {
	defer func() {
		if r := recover(); r != nil {
			correlationID := uuid.NewString()
			s.logger.Error("status normalizer panic",
				"correlation_id", correlationID,
				"panic", fmt.Sprintf("%v", r),
				"stack", string(debug.Stack()),
			)
			st = mcsrvstat.Offline()
			err = fmt.Errorf("normalizer panic (correlation_id: %s)", correlationID)
		}
	}()
	return s.normalize(body)
}
