package cron

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
	"go.uber.org/multierr"

	"github.com/freshfold/laundry-backend/pkg/logger"
	"github.com/freshfold/laundry-backend/pkg/metrics"
)

type fakeLock struct {
	held       bool
	acquireErr error
	releases   int
}

func (f *fakeLock) Acquire(context.Context) (bool, error) {
	if f.acquireErr != nil {
		return false, f.acquireErr
	}
	if f.held {
		return false, nil
	}
	f.held = true
	return true, nil
}

func (f *fakeLock) Release(context.Context) error {
	f.held = false
	f.releases++
	return nil
}

type testJob struct {
	name string
	err  error
	runs int
}

func (t *testJob) Name() string { return t.name }

func (t *testJob) Run(context.Context) error {
	t.runs++
	return t.err
}

func newTestCronService(t *testing.T, lock Lock, recorder jobRecorder, jobs ...Job) *Service {
	t.Helper()
	svc, err := NewService(ServiceParams{
		Logger:   logger.New(logger.Options{ServiceName: "cron-test", Output: io.Discard}),
		Registry: NewRegistry(jobs...),
		Lock:     lock,
		Metrics:  recorder,
	})
	require.NoError(t, err)
	return svc
}

func TestRunOnceRunsEveryJobDespiteFailures(t *testing.T) {
	first := &testJob{name: "payment-reconcile", err: errors.New("stripe down")}
	second := &testJob{name: "outbox-retention", err: errors.New("db timeout")}
	third := &testJob{name: "promo-expiry"}
	lock := &fakeLock{}
	svc := newTestCronService(t, lock, nil, first, second, third)

	err := svc.RunOnce(context.Background())
	require.Error(t, err)
	require.Len(t, multierr.Errors(err), 2)
	require.ErrorContains(t, err, "payment-reconcile: stripe down")
	require.Equal(t, 1, third.runs)
	require.Equal(t, 1, lock.releases)
}

func TestRunOnceSkipsWhenLockHeld(t *testing.T) {
	job := &testJob{name: "outbox-retention"}
	reg := prometheus.NewRegistry()
	svc := newTestCronService(t, &fakeLock{held: true}, metrics.NewCronMetrics(reg), job)

	err := svc.RunOnce(context.Background())
	require.ErrorIs(t, err, ErrLockHeld)
	require.Zero(t, job.runs)
	require.Equal(t, 1, testutil.CollectAndCount(reg, "freshfold_cron_cycles_skipped_total"))
}

func TestRunOnceSurfacesLockErrors(t *testing.T) {
	job := &testJob{name: "outbox-retention"}
	svc := newTestCronService(t, &fakeLock{acquireErr: errors.New("redis unavailable")}, nil, job)

	err := svc.RunOnce(context.Background())
	require.ErrorContains(t, err, "redis unavailable")
	require.NotErrorIs(t, err, ErrLockHeld)
	require.Zero(t, job.runs)
}

func TestRunOnceRecordsJobOutcomes(t *testing.T) {
	reg := prometheus.NewRegistry()
	svc := newTestCronService(t, &fakeLock{}, metrics.NewCronMetrics(reg),
		&testJob{name: "payment-reconcile"},
		&testJob{name: "outbox-retention", err: errors.New("boom")},
	)
	clock := time.Date(2026, 5, 2, 3, 0, 0, 0, time.UTC)
	svc.now = func() time.Time {
		clock = clock.Add(time.Second)
		return clock
	}

	require.Error(t, svc.RunOnce(context.Background()))
	require.Equal(t, 2, testutil.CollectAndCount(reg, "freshfold_cron_job_runs_total"))
	require.Equal(t, 1, testutil.CollectAndCount(reg, "freshfold_cron_job_last_success_timestamp_seconds"))
}

func TestRunStopsOnCancel(t *testing.T) {
	job := &testJob{name: "outbox-retention"}
	svc := newTestCronService(t, &fakeLock{}, nil, job)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	require.ErrorIs(t, svc.Run(ctx), context.Canceled)
	require.Equal(t, 1, job.runs, "the first cycle runs before the loop waits")
}
