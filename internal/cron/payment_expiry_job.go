package cron

import (
	"context"
	"fmt"
	"time"

	"github.com/vashudha/ghee-storefront/pkg/logger"
)

const paymentExpiryJobName = "payment_expiry"

type staleOrderExpirer interface {
	ExpireStale(ctx context.Context, ttl time.Duration) (int, error)
}

// PaymentExpiryJobParams configure the abandoned-payment reaper.
type PaymentExpiryJobParams struct {
	Logger *logger.Logger
	Orders staleOrderExpirer
	TTL    time.Duration
}

// paymentExpiryJob cancels orders stuck awaiting online payment longer
// than the TTL, returning their stock to the catalog. Abandoned hosted
// widget attempts have no client-side timeout, so this job is the only
// thing that reaps them.
type paymentExpiryJob struct {
	logg   *logger.Logger
	orders staleOrderExpirer
	ttl    time.Duration
}

// NewPaymentExpiryJob builds the stale-payment expiry job.
func NewPaymentExpiryJob(params PaymentExpiryJobParams) (Job, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.Orders == nil {
		return nil, fmt.Errorf("order service required")
	}
	if params.TTL <= 0 {
		return nil, fmt.Errorf("payment ttl must be positive")
	}
	return &paymentExpiryJob{logg: params.Logger, orders: params.Orders, ttl: params.TTL}, nil
}

func (j *paymentExpiryJob) Name() string { return paymentExpiryJobName }

func (j *paymentExpiryJob) Run(ctx context.Context) error {
	expired, err := j.orders.ExpireStale(ctx, j.ttl)
	if err != nil {
		return fmt.Errorf("expire stale payments: %w", err)
	}
	if expired > 0 {
		j.logg.Info(j.logg.WithField(ctx, "expired", expired), "expired stale payment orders")
	}
	return nil
}
