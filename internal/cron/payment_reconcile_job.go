package cron

import (
	"context"
	"fmt"

	"github.com/freshfold/laundry-backend/pkg/logger"
)

type staleCheckoutReconciler interface {
	ReconcileStale(ctx context.Context) (int, error)
}

// PaymentReconcileJobParams configures the checkout reconciliation job.
type PaymentReconcileJobParams struct {
	Logger   *logger.Logger
	Payments staleCheckoutReconciler
}

// NewPaymentReconcileJob re-checks initiated checkout sessions that never
// received a webhook and settles them through the payments service.
func NewPaymentReconcileJob(params PaymentReconcileJobParams) (Job, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.Payments == nil {
		return nil, fmt.Errorf("payments service required")
	}
	return &paymentReconcileJob{logg: params.Logger, payments: params.Payments}, nil
}

type paymentReconcileJob struct {
	logg     *logger.Logger
	payments staleCheckoutReconciler
}

func (j *paymentReconcileJob) Name() string { return "payment-reconcile" }

func (j *paymentReconcileJob) Run(ctx context.Context) error {
	applied, err := j.payments.ReconcileStale(ctx)
	if err != nil {
		// sessions applied before the failure stay applied; the rest retry next cycle
		return fmt.Errorf("reconcile checkout sessions (%d applied): %w", applied, err)
	}
	j.logg.Info(j.logg.WithField(ctx, "sessions_applied", applied), "payment reconcile complete")
	return nil
}
