// Package diag carries non-fatal data-quality signals out of the request
// pipeline. A reconciliation mismatch is a diagnostic, never an error: the
// payment request proceeds regardless of where the report lands.
package diag

import (
	"context"
	"time"
)

// Kind classifies a diagnostic.
type Kind string

const (
	// KindReconciliationMismatch means the item-bag total disagreed with the
	// order total after rounding.
	KindReconciliationMismatch Kind = "reconciliation_mismatch"
)

// Diagnostic is one recorded signal.
type Diagnostic struct {
	Kind       Kind      `json:"kind"`
	OrderID    int64     `json:"orderId"`
	Currency   string    `json:"currency"`
	OrderTotal float64   `json:"orderTotal"`
	ItemTotal  float64   `json:"itemTotal"`
	Message    string    `json:"message"`
	RecordedAt time.Time `json:"recordedAt"`
}

// Sink receives diagnostics. Implementations must not fail the caller;
// delivery problems are theirs to log.
type Sink interface {
	Report(ctx context.Context, d Diagnostic)
}

// Discard is a Sink that drops everything.
type Discard struct{}

func (Discard) Report(context.Context, Diagnostic) {}
