package scheduler_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vinylfunders/vf-presale-engine/internal/logger"
	"github.com/vinylfunders/vf-presale-engine/internal/mocks"
	"github.com/vinylfunders/vf-presale-engine/internal/reconciler"
	"github.com/vinylfunders/vf-presale-engine/internal/scheduler"
)

type testScheduler struct {
	ctrl   *gomock.Controller
	engine *mocks.MockEngine
	clock  *mocks.MockClock
	sched  scheduler.Scheduler
	now    time.Time
}

func setupTestScheduler(t *testing.T) *testScheduler {
	err := logger.Initialize(logger.Config{Debug: true})
	require.NoError(t, err)

	ctrl := gomock.NewController(t)

	ts := &testScheduler{
		ctrl:   ctrl,
		engine: mocks.NewMockEngine(ctrl),
		clock:  mocks.NewMockClock(ctrl),
		now:    time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC),
	}

	ts.clock.EXPECT().Now().Return(ts.now).AnyTimes()
	ts.clock.EXPECT().Since(gomock.Any()).Return(time.Millisecond).AnyTimes()

	ts.sched = scheduler.New(scheduler.Config{
		FullPassInterval: time.Hour,
		FastPassInterval: 15 * time.Minute,
	}, ts.engine, ts.clock)

	return ts
}

func (ts *testScheduler) tearDown() {
	ts.ctrl.Finish()
}

func TestTriggerNowMergesFullPass(t *testing.T) {
	ts := setupTestScheduler(t)
	defer ts.tearDown()

	ts.engine.EXPECT().EvaluateThresholds(gomock.Any()).
		Return(&reconciler.RunSummary{Evaluated: 4, Captured: 2, Failed: 1}, nil)
	ts.engine.EXPECT().RetryPendingCaptures(gomock.Any()).
		Return(&reconciler.RunSummary{Retried: 1, Captured: 1}, nil)
	ts.engine.EXPECT().RetryPendingReleases(gomock.Any()).
		Return(&reconciler.RunSummary{Evaluated: 1, Released: 2, Retried: 1}, nil)

	summary, err := ts.sched.TriggerNow(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 5, summary.Evaluated)
	assert.Equal(t, 3, summary.Captured)
	assert.Equal(t, 1, summary.Failed)
	assert.Equal(t, 2, summary.Retried)
	assert.Equal(t, 2, summary.Released)
}

func TestTriggerNowPropagatesEvaluateError(t *testing.T) {
	ts := setupTestScheduler(t)
	defer ts.tearDown()

	ts.engine.EXPECT().EvaluateThresholds(gomock.Any()).
		Return(nil, assert.AnError)

	summary, err := ts.sched.TriggerNow(context.Background())
	assert.Error(t, err)
	assert.Nil(t, summary)
}

func TestStopBeforeStartIsNoop(t *testing.T) {
	ts := setupTestScheduler(t)
	defer ts.tearDown()

	assert.False(t, ts.sched.Running())
	assert.NoError(t, ts.sched.Stop(context.Background()))
}

func TestStartRunsFullPassFirstAndStops(t *testing.T) {
	ts := setupTestScheduler(t)
	defer ts.tearDown()

	// Sleeps never elapse on their own; the loop only exits on Stop
	ts.clock.EXPECT().After(gomock.Any()).Return(make(chan time.Time)).AnyTimes()

	passDone := make(chan struct{})
	ts.engine.EXPECT().EvaluateThresholds(gomock.Any()).
		Return(&reconciler.RunSummary{Evaluated: 1}, nil)
	ts.engine.EXPECT().RetryPendingCaptures(gomock.Any()).
		Return(&reconciler.RunSummary{}, nil)
	ts.engine.EXPECT().RetryPendingReleases(gomock.Any()).
		DoAndReturn(func(context.Context) (*reconciler.RunSummary, error) {
			close(passDone)
			return &reconciler.RunSummary{}, nil
		})

	errChan := make(chan error, 1)
	go func() {
		errChan <- ts.sched.Start(context.Background())
	}()

	select {
	case <-passDone:
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for the first pass")
	}
	assert.True(t, ts.sched.Running())

	stopCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, ts.sched.Stop(stopCtx))
	assert.False(t, ts.sched.Running())

	select {
	case err := <-errChan:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for Start to return")
	}
}

func TestStartWhileRunningFails(t *testing.T) {
	ts := setupTestScheduler(t)
	defer ts.tearDown()

	ts.clock.EXPECT().After(gomock.Any()).Return(make(chan time.Time)).AnyTimes()

	passDone := make(chan struct{})
	ts.engine.EXPECT().EvaluateThresholds(gomock.Any()).
		Return(&reconciler.RunSummary{}, nil)
	ts.engine.EXPECT().RetryPendingCaptures(gomock.Any()).
		Return(&reconciler.RunSummary{}, nil)
	ts.engine.EXPECT().RetryPendingReleases(gomock.Any()).
		DoAndReturn(func(context.Context) (*reconciler.RunSummary, error) {
			close(passDone)
			return &reconciler.RunSummary{}, nil
		})

	go func() {
		_ = ts.sched.Start(context.Background())
	}()
	<-passDone

	err := ts.sched.Start(context.Background())
	assert.Error(t, err)

	stopCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, ts.sched.Stop(stopCtx))
}

func TestPassErrorDoesNotKillLoop(t *testing.T) {
	ts := setupTestScheduler(t)
	defer ts.tearDown()

	// First sleep elapses immediately so a second pass runs; later sleeps
	// block until Stop
	elapsed := make(chan time.Time, 1)
	elapsed <- time.Time{}
	first := ts.clock.EXPECT().After(gomock.Any()).Return(elapsed)
	ts.clock.EXPECT().After(gomock.Any()).Return(make(chan time.Time)).AnyTimes().After(first)

	secondPass := make(chan struct{})
	// The first full pass fails outright
	ts.engine.EXPECT().EvaluateThresholds(gomock.Any()).
		Return(nil, assert.AnError)
	// The loop survives and runs the following fast pass
	ts.engine.EXPECT().EvaluateReachedThresholds(gomock.Any()).
		DoAndReturn(func(context.Context) (*reconciler.RunSummary, error) {
			close(secondPass)
			return &reconciler.RunSummary{}, nil
		})

	go func() {
		_ = ts.sched.Start(context.Background())
	}()

	select {
	case <-secondPass:
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for the pass after the failed one")
	}

	stopCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, ts.sched.Stop(stopCtx))
}

func TestSchedulerRestartsAfterStop(t *testing.T) {
	ts := setupTestScheduler(t)
	defer ts.tearDown()

	ts.clock.EXPECT().After(gomock.Any()).Return(make(chan time.Time)).AnyTimes()

	for i := 0; i < 2; i++ {
		passDone := make(chan struct{})
		ts.engine.EXPECT().EvaluateThresholds(gomock.Any()).
			Return(&reconciler.RunSummary{}, nil)
		ts.engine.EXPECT().RetryPendingCaptures(gomock.Any()).
			Return(&reconciler.RunSummary{}, nil)
		ts.engine.EXPECT().RetryPendingReleases(gomock.Any()).
			DoAndReturn(func(context.Context) (*reconciler.RunSummary, error) {
				close(passDone)
				return &reconciler.RunSummary{}, nil
			})

		go func() {
			_ = ts.sched.Start(context.Background())
		}()
		<-passDone

		stopCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		require.NoError(t, ts.sched.Stop(stopCtx))
		cancel()
		assert.False(t, ts.sched.Running())
	}
}

func TestConcurrentStartStopNeverLeaksLoop(t *testing.T) {
	ts := setupTestScheduler(t)
	defer ts.tearDown()

	ts.clock.EXPECT().After(gomock.Any()).Return(make(chan time.Time)).AnyTimes()
	ts.engine.EXPECT().EvaluateThresholds(gomock.Any()).
		Return(&reconciler.RunSummary{}, nil).AnyTimes()
	ts.engine.EXPECT().RetryPendingCaptures(gomock.Any()).
		Return(&reconciler.RunSummary{}, nil).AnyTimes()
	ts.engine.EXPECT().RetryPendingReleases(gomock.Any()).
		Return(&reconciler.RunSummary{}, nil).AnyTimes()
	ts.engine.EXPECT().EvaluateReachedThresholds(gomock.Any()).
		Return(&reconciler.RunSummary{}, nil).AnyTimes()

	// Interleave starts and stops from racing goroutines. Every loop that
	// wins a start must stay reachable by a later Stop, so every Start
	// call below has to return once the driver loop keeps stopping.
	var starts sync.WaitGroup
	for i := 0; i < 25; i++ {
		starts.Add(1)
		go func() {
			defer starts.Done()
			_ = ts.sched.Start(context.Background())
		}()
		go func() {
			_ = ts.sched.Stop(context.Background())
		}()
	}

	startsDone := make(chan struct{})
	go func() {
		starts.Wait()
		close(startsDone)
	}()

	timeout := time.After(10 * time.Second)
	for {
		select {
		case <-startsDone:
			assert.False(t, ts.sched.Running())
			return
		case <-timeout:
			t.Fatal("a scheduling loop survived its stop")
		default:
			_ = ts.sched.Stop(context.Background())
			time.Sleep(time.Millisecond)
		}
	}
}
