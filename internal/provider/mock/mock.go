// Package mock provides a configurable provider client for tests and local
// wiring. Behavior is overridden through function fields.
package mock

import (
	"context"

	"github.com/google/uuid"

	"github.com/jmauzyk/commerce-omnipay/internal/provider"
	"github.com/jmauzyk/commerce-omnipay/internal/request"
)

// Client is a mock provider client. Zero value supports every operation and
// prepares requests that succeed.
type Client struct {
	NameValue     string
	Capabilities  map[provider.Operation]bool // nil means everything supported
	Webhooks      bool
	PrepareFunc   func(op provider.Operation, p *request.Payload) (provider.Request, error)
	PreparedCalls []provider.Operation
}

// NewClient creates a mock client that supports all operations.
func NewClient(name string) *Client {
	return &Client{NameValue: name}
}

func (c *Client) Name() string {
	if c.NameValue == "" {
		return "mock"
	}
	return c.NameValue
}

func (c *Client) Supports(op provider.Operation) bool {
	if c.Capabilities == nil {
		return true
	}
	return c.Capabilities[op]
}

func (c *Client) SupportsWebhooks() bool {
	return c.Webhooks
}

// Prepare records the call and delegates to PrepareFunc, defaulting to a
// Request that succeeds with a fresh reference.
func (c *Client) Prepare(op provider.Operation, p *request.Payload) (provider.Request, error) {
	c.PreparedCalls = append(c.PreparedCalls, op)
	if c.PrepareFunc != nil {
		return c.PrepareFunc(op, p)
	}
	return &Request{Payload: p}, nil
}

// Request is a mock provider request.
type Request struct {
	Payload      *request.Payload
	Ref          string
	DataValue    any
	SendFunc     func(ctx context.Context) (provider.Response, error)
	SendDataFunc func(ctx context.Context, data any) (provider.Response, error)
	Sent         bool
	SentData     any
}

func (r *Request) Data() (any, error) {
	if r.DataValue != nil {
		return r.DataValue, nil
	}
	return r.Payload, nil
}

func (r *Request) SetReference(ref string) {
	r.Ref = ref
}

func (r *Request) Send(ctx context.Context) (provider.Response, error) {
	r.Sent = true
	if r.SendFunc != nil {
		return r.SendFunc(ctx)
	}
	return &Response{Ok: true, Ref: uuid.NewString(), Msg: "approved"}, nil
}

func (r *Request) SendData(ctx context.Context, data any) (provider.Response, error) {
	r.Sent = true
	r.SentData = data
	if r.SendDataFunc != nil {
		return r.SendDataFunc(ctx, data)
	}
	return &Response{Ok: true, Ref: uuid.NewString(), Msg: "approved"}, nil
}

// Response is a mock provider response.
type Response struct {
	Ok   bool
	Ref  string
	Msg  string
	Body any
}

func (r *Response) Successful() bool  { return r.Ok }
func (r *Response) Reference() string { return r.Ref }
func (r *Response) Message() string   { return r.Msg }
func (r *Response) Data() any         { return r.Body }
