// Package service contains the business logic for the truck-billing API.
// Services validate inputs, enforce aggregate rules, and orchestrate repo calls.
// No SQL lives here: services depend on repo interfaces, not implementations.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/fjhdream/truck-billing/internal/domain"
	"github.com/fjhdream/truck-billing/internal/repo"
)

var tracer = otel.Tracer("github.com/fjhdream/truck-billing/internal/service")

// Hooks receives one observation per aggregate operation.
type Hooks interface {
	ObserveOperation(name, status string, dur time.Duration)
}

type noopHooks struct{}

func (noopHooks) ObserveOperation(string, string, time.Duration) {}

// Deps are the collaborators shared by every service.
// Repos serves plain reads and single-row writes; Tx runs multi-table writes.
type Deps struct {
	Repos repo.Repos
	Tx    repo.TxRunner
	Log   *slog.Logger
	Hooks Hooks
	Now   func() time.Time
}

func (d Deps) withDefaults() Deps {
	if d.Log == nil {
		d.Log = slog.Default()
	}
	if d.Hooks == nil {
		d.Hooks = noopHooks{}
	}
	if d.Now == nil {
		d.Now = time.Now
	}
	return d
}

// observe runs fn inside a span named op and reports its outcome to the hooks.
func observe(ctx context.Context, d Deps, op string, fn func(ctx context.Context) error, attrs ...attribute.KeyValue) error {
	ctx, span := tracer.Start(ctx, op, trace.WithAttributes(attrs...))
	defer span.End()

	start := time.Now()
	err := fn(ctx)
	status := errorStatus(err)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, status)
	}
	d.Hooks.ObserveOperation(op, status, time.Since(start))
	return err
}

// errorStatus maps an error to a low-cardinality label.
func errorStatus(err error) string {
	switch {
	case err == nil:
		return "success"
	case errors.Is(err, domain.ErrInvalidIdentifier):
		return "invalid_identifier"
	case errors.Is(err, domain.ErrValidation):
		return "validation"
	case errors.Is(err, domain.ErrNotFound):
		return "not_found"
	case errors.Is(err, domain.ErrEmptyBilling):
		return "empty_billing"
	case errors.Is(err, domain.ErrBillingClosed):
		return "billing_closed"
	case errors.Is(err, domain.ErrForbidden):
		return "forbidden"
	case errors.Is(err, domain.ErrDuplicate):
		return "duplicate"
	case errors.Is(err, domain.ErrStore):
		return "store_error"
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return "canceled"
	}
	return "failure"
}

// parseID parses a UUID identifier. kind names the identifier in the error.
func parseID(kind, raw string) (uuid.UUID, error) {
	id, err := uuid.Parse(strings.TrimSpace(raw))
	if err != nil {
		return uuid.Nil, fmt.Errorf("%w: %s %q", domain.ErrInvalidIdentifier, kind, raw)
	}
	return id, nil
}
