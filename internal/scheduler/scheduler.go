package scheduler

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/vinylfunders/vf-presale-engine/internal/adapter"
	"github.com/vinylfunders/vf-presale-engine/internal/logger"
	"github.com/vinylfunders/vf-presale-engine/internal/reconciler"
)

// Scheduler drives the reconciliation engine on a fixed cadence.
// The fast pass only looks for thresholds that are already met, so it can
// run often; the full pass additionally scans deadlines, retries stuck
// captures, and retries wind-down releases that failed at the gateway.
//
//go:generate mockgen -source=scheduler.go -destination=../mocks/scheduler.go -package=mocks -mock_names=Scheduler=MockScheduler
type Scheduler interface {
	// Start begins the scheduling loop
	// This is a blocking call that runs until the context is canceled
	Start(ctx context.Context) error

	// Stop gracefully stops the scheduler
	// This waits for an in-progress pass to complete
	Stop(ctx context.Context) error

	// TriggerNow runs a full pass immediately, outside the cadence.
	// Safe to call while the loop is running; the stored status checks
	// keep overlapping passes from double-processing a campaign.
	TriggerNow(ctx context.Context) (*reconciler.RunSummary, error)

	// Running reports whether the scheduling loop is active
	Running() bool

	// Name returns the scheduler's name for logging and identification
	Name() string
}

// Config holds scheduler cadence configuration
type Config struct {
	FullPassInterval time.Duration // Deadline scan plus capture retries
	FastPassInterval time.Duration // Reached-threshold captures only
}

type scheduler struct {
	config  Config
	engine  reconciler.Engine
	clock   adapter.Clock
	running atomic.Bool

	// mu guards the per-run channels so the loop can be restarted after
	// a Stop
	mu        sync.Mutex
	stopChan  chan struct{}
	stoppedCh chan struct{}
}

// New creates a new reconciliation scheduler
func New(config Config, engine reconciler.Engine, clock adapter.Clock) Scheduler {
	return &scheduler{
		config: config,
		engine: engine,
		clock:  clock,
	}
}

// Name returns the scheduler's name
func (s *scheduler) Name() string {
	return "presale-reconciliation-scheduler"
}

// Running reports whether the scheduling loop is active
func (s *scheduler) Running() bool {
	return s.running.Load()
}

// Start begins the scheduling loop
func (s *scheduler) Start(ctx context.Context) error {
	// The running flag only flips together with the channel swap, under
	// mu; Stop holds the same lock, so the channels it reads always
	// belong to the loop whose flag it cleared
	s.mu.Lock()
	if !s.running.CompareAndSwap(false, true) {
		s.mu.Unlock()
		return fmt.Errorf("scheduler already running")
	}
	stopChan := make(chan struct{})
	stoppedCh := make(chan struct{})
	s.stopChan = stopChan
	s.stoppedCh = stoppedCh
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		// A loop that exits on context cancellation still owns the flag;
		// after a Stop (or Stop then Start) it no longer does and must
		// not clear a newer loop's flag
		if s.stoppedCh == stoppedCh {
			s.running.Store(false)
		}
		s.mu.Unlock()
		close(stoppedCh) // Signal that we've stopped
	}()

	logger.InfoCtx(ctx, "Starting presale reconciliation scheduler",
		zap.Duration("full_pass_interval", s.config.FullPassInterval),
		zap.Duration("fast_pass_interval", s.config.FastPassInterval),
	)

	// The first pass runs right away so a restart does not wait a full
	// interval to catch up
	lastFullPass := time.Time{}

	for {
		select {
		case <-ctx.Done():
			logger.InfoCtx(ctx, "Scheduler stopping due to context cancellation", zap.Error(ctx.Err()))
			return nil
		case <-stopChan:
			logger.InfoCtx(ctx, "Scheduler stop requested")
			return nil
		default:
			now := s.clock.Now()
			if now.Sub(lastFullPass) >= s.config.FullPassInterval {
				s.runPass(ctx, true)
				lastFullPass = now
			} else {
				s.runPass(ctx, false)
			}

			// Context-aware sleep so shutdown is not delayed by a full
			// interval
			if !s.sleep(ctx, stopChan, s.config.FastPassInterval) {
				return nil
			}
		}
	}
}

// runPass runs one scheduled pass, logging failures instead of
// propagating them so a bad cycle never kills the loop
func (s *scheduler) runPass(ctx context.Context, full bool) {
	startTime := s.clock.Now()

	var summary *reconciler.RunSummary
	var err error
	if full {
		summary, err = s.fullPass(ctx)
	} else {
		summary, err = s.engine.EvaluateReachedThresholds(ctx)
	}
	if err != nil {
		if !errors.Is(err, context.Canceled) {
			logger.ErrorCtx(ctx, err, zap.Bool("full_pass", full))
		}
		return
	}

	logger.InfoCtx(ctx, "Scheduled pass completed",
		zap.Bool("full_pass", full),
		zap.Duration("duration", s.clock.Since(startTime)),
		zap.Int("evaluated", summary.Evaluated),
		zap.Int("captured", summary.Captured),
		zap.Int("claimed", summary.Claimed),
		zap.Int("failed", summary.Failed),
		zap.Int("retried", summary.Retried),
		zap.Int("released", summary.Released),
	)
}

// fullPass evaluates every active threshold, retries stuck captures,
// and retries stranded wind-down releases, merging the summaries
func (s *scheduler) fullPass(ctx context.Context) (*reconciler.RunSummary, error) {
	summary, err := s.engine.EvaluateThresholds(ctx)
	if err != nil {
		return nil, err
	}

	retrySummary, err := s.engine.RetryPendingCaptures(ctx)
	if err != nil {
		return summary, err
	}
	summary.Merge(retrySummary)

	releaseSummary, err := s.engine.RetryPendingReleases(ctx)
	if err != nil {
		return summary, err
	}
	summary.Merge(releaseSummary)

	return summary, nil
}

// TriggerNow runs a full pass immediately
func (s *scheduler) TriggerNow(ctx context.Context) (*reconciler.RunSummary, error) {
	logger.InfoCtx(ctx, "Manual reconciliation pass triggered")
	return s.fullPass(ctx)
}

// Stop gracefully stops the scheduler with timeout support
func (s *scheduler) Stop(ctx context.Context) error {
	s.mu.Lock()
	if !s.running.CompareAndSwap(true, false) {
		s.mu.Unlock()
		return nil // Already stopped
	}
	stopChan := s.stopChan
	stoppedCh := s.stoppedCh
	s.mu.Unlock()

	logger.InfoCtx(ctx, "Stopping presale reconciliation scheduler")

	// Signal stop to the main loop
	close(stopChan)

	// Wait for main loop to exit, but respect context cancellation
	select {
	case <-stoppedCh:
		logger.InfoCtx(ctx, "Scheduler stopped gracefully")
		return nil
	case <-ctx.Done():
		logger.WarnCtx(ctx, "Scheduler stop interrupted by context timeout")
		return ctx.Err()
	}
}

// sleep sleeps for the given duration but can be interrupted by context cancellation
// Returns true if sleep completed normally, false if interrupted
func (s *scheduler) sleep(ctx context.Context, stopChan chan struct{}, duration time.Duration) bool {
	select {
	case <-s.clock.After(duration):
		return true // Sleep completed
	case <-ctx.Done():
		return false // Interrupted by context cancellation
	case <-stopChan:
		return false // Interrupted by stop signal
	}
}
