package cron

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/multierr"

	"github.com/freshfold/laundry-backend/pkg/logger"
)

type fakeReconciler struct {
	applied int
	err     error
	calls   int
}

func (f *fakeReconciler) ReconcileStale(context.Context) (int, error) {
	f.calls++
	return f.applied, f.err
}

func TestPaymentReconcileJobRuns(t *testing.T) {
	rec := &fakeReconciler{applied: 2}
	job, err := NewPaymentReconcileJob(PaymentReconcileJobParams{
		Logger:   logger.New(logger.Options{ServiceName: "test"}),
		Payments: rec,
	})
	if err != nil {
		t.Fatalf("NewPaymentReconcileJob: %v", err)
	}
	if job.Name() != "payment-reconcile" {
		t.Fatalf("unexpected name %q", job.Name())
	}
	if err := job.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if rec.calls != 1 {
		t.Fatalf("expected one reconcile call, got %d", rec.calls)
	}
}

func TestPaymentReconcileJobSurfacesBatchErrors(t *testing.T) {
	batch := multierr.Combine(errors.New("session a"), errors.New("session b"))
	job, err := NewPaymentReconcileJob(PaymentReconcileJobParams{
		Logger:   logger.New(logger.Options{ServiceName: "test"}),
		Payments: &fakeReconciler{applied: 1, err: batch},
	})
	if err != nil {
		t.Fatalf("NewPaymentReconcileJob: %v", err)
	}
	err = job.Run(context.Background())
	if err == nil {
		t.Fatal("expected error")
	}
	if got := len(multierr.Errors(errors.Unwrap(err))); got != 2 {
		t.Fatalf("expected 2 wrapped failures, got %d", got)
	}
}

func TestPaymentReconcileJobRequiresPayments(t *testing.T) {
	if _, err := NewPaymentReconcileJob(PaymentReconcileJobParams{
		Logger: logger.New(logger.Options{ServiceName: "test"}),
	}); err == nil {
		t.Fatal("expected error without payments service")
	}
}
