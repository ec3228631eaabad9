package cart

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/multierr"

	"github.com/vashudha/ghee-storefront/pkg/logger"
)

// GuestSnapshot is the read side of a guest cart plus the ability to drop
// it once its lines have been replayed.
type GuestSnapshot interface {
	Load(ctx context.Context) ([]Line, error)
	Drop(ctx context.Context) error
}

type lineAdder interface {
	AddItem(ctx context.Context, userID, productID uuid.UUID, qty int) (err error)
}

// serviceAdder adapts Service's richer return to the reconciler's needs.
type serviceAdder struct {
	svc Service
}

func (a serviceAdder) AddItem(ctx context.Context, userID, productID uuid.UUID, qty int) error {
	_, err := a.svc.AddItem(ctx, userID, productID, qty)
	return err
}

// Reconciler replays a guest cart into the freshly authenticated user's
// server cart. It runs best-effort: per-line failures are collected and
// logged but never surfaced, and login never waits on it.
type Reconciler struct {
	adder lineAdder
	logg  *logger.Logger
}

// NewReconciler builds a reconciler on top of the cart service.
func NewReconciler(svc Service, logg *logger.Logger) *Reconciler {
	return &Reconciler{adder: serviceAdder{svc: svc}, logg: logg}
}

// Reconcile replays each guest line sequentially, then drops the guest
// snapshot so a later login cannot double-add the same lines. Lines that
// fail to replay are lost with the drop; the combined error is logged so
// the loss is at least visible.
func (r *Reconciler) Reconcile(ctx context.Context, userID uuid.UUID, guest GuestSnapshot) {
	if r == nil || guest == nil || userID == uuid.Nil {
		return
	}

	lines, err := guest.Load(ctx)
	if err != nil {
		r.warn(ctx, "guest cart load failed, skipping reconciliation", err)
		return
	}
	if len(lines) == 0 {
		return
	}

	var errs error
	replayed := 0
	for _, line := range lines {
		if line.Quantity <= 0 {
			continue
		}
		if err := r.adder.AddItem(ctx, userID, line.ProductID, line.Quantity); err != nil {
			errs = multierr.Append(errs, err)
			continue
		}
		replayed++
	}

	if err := guest.Drop(ctx); err != nil {
		errs = multierr.Append(errs, err)
	}

	if errs != nil {
		ctx = r.fields(ctx, userID, replayed, len(lines))
		r.warn(ctx, "guest cart reconciliation completed with failures", errs)
		return
	}
	if r.logg != nil {
		ctx = r.fields(ctx, userID, replayed, len(lines))
		r.logg.Info(ctx, "guest cart reconciled into server cart")
	}
}

func (r *Reconciler) fields(ctx context.Context, userID uuid.UUID, replayed, total int) context.Context {
	if r.logg == nil {
		return ctx
	}
	return r.logg.WithFields(ctx, map[string]any{
		"user_id":  userID.String(),
		"replayed": replayed,
		"total":    total,
	})
}

func (r *Reconciler) warn(ctx context.Context, msg string, err error) {
	if r.logg == nil {
		return
	}
	r.logg.Warn(r.logg.WithField(ctx, "error", err.Error()), msg)
}
