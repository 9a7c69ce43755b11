// Package provider defines the contract between the gateway adapter and a
// payment network client. Implementations own the wire protocol, credentials,
// timeouts and any retry policy; the adapter only prepares requests and
// normalizes responses.
package provider

import (
	"context"

	"github.com/jmauzyk/commerce-omnipay/internal/request"
)

// Operation is the closed set of payment operations a client can support.
type Operation string

const (
	OpAuthorize         Operation = "authorize"
	OpCapture           Operation = "capture"
	OpCompleteAuthorize Operation = "completeAuthorize"
	OpCompletePurchase  Operation = "completePurchase"
	OpPurchase          Operation = "purchase"
	OpRefund            Operation = "refund"
)

// Response is a raw provider response. The adapter wraps it without
// reinterpreting it; downstream code inspects it for success and reference.
type Response interface {
	// Successful reports whether the provider confirmed the operation.
	Successful() bool
	// Reference is the provider-side transaction reference, if any.
	Reference() string
	// Message is the raw provider message.
	Message() string
	// Data is the decoded response body, provider-shaped.
	Data() any
}

// Request is a prepared, provider-specific request ready for dispatch.
type Request interface {
	// Data returns the outbound wire payload. Not necessarily a map: some
	// providers use XML or JSON bodies.
	Data() (any, error)
	// SetReference points the request at an existing provider transaction
	// (capture and refund target a prior operation).
	SetReference(ref string)
	// Send dispatches the request.
	Send(ctx context.Context) (Response, error)
	// SendData dispatches with a replacement wire payload, for callers that
	// substituted the body wholesale.
	SendData(ctx context.Context, data any) (Response, error)
}

// Client is a configured connection to one payment network. A Client must be
// immutable after construction; the adapter builds it once and reuses it
// read-only across calls.
type Client interface {
	// Name identifies the provider, e.g. "dummy", "paypal_express".
	Name() string
	// Supports reports whether the provider implements an operation.
	Supports(op Operation) bool
	// SupportsWebhooks reports whether the provider sends async notifications.
	SupportsWebhooks() bool
	// Prepare turns the generic payload into a provider request object.
	Prepare(op Operation, p *request.Payload) (Request, error)
}
