// Package gateway sequences a payment operation end to end: capability check,
// payload assembly, provider request preparation, extension hooks, dispatch
// and response normalization. One call handles exactly one transaction; there
// is no shared mutable state between concurrent calls and no retry logic at
// this layer.
package gateway

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/jmauzyk/commerce-omnipay/internal/commerce"
	"github.com/jmauzyk/commerce-omnipay/internal/diag"
	"github.com/jmauzyk/commerce-omnipay/internal/hook"
	"github.com/jmauzyk/commerce-omnipay/internal/itembag"
	"github.com/jmauzyk/commerce-omnipay/internal/metrics"
	"github.com/jmauzyk/commerce-omnipay/internal/provider"
	"github.com/jmauzyk/commerce-omnipay/internal/request"
)

// Config configures a Gateway.
type Config struct {
	// ClientFactory builds the provider client. Called once, on first use;
	// the resulting client is reused read-only for the life of the Gateway.
	ClientFactory func() (provider.Client, error)

	// URLs builds return/cancel/webhook URLs for the hosting application.
	URLs request.URLBuilder

	// Diag receives non-fatal data-quality signals. Optional.
	Diag diag.Sink

	// SendCartInfo controls whether orders are itemized on requests.
	SendCartInfo bool

	// Populate lets a specific gateway overwrite payload fields from the
	// payment form. Optional.
	Populate request.PopulateFunc

	// Hooks, in registration order.
	ItemBagHooks []hook.ItemBagHook
	RequestHooks []hook.RequestHook
	SendHooks    []hook.SendHook
}

// Gateway is the orchestrator for the six payment operations.
type Gateway struct {
	cfg Config

	initOnce sync.Once
	client   provider.Client
	asm      *request.Assembler
	initErr  error
}

// New creates a Gateway. The provider client is not built until the first
// operation or capability query.
func New(cfg Config) (*Gateway, error) {
	if cfg.ClientFactory == nil {
		return nil, fmt.Errorf("gateway: client factory is required")
	}
	if cfg.URLs == nil {
		return nil, fmt.Errorf("gateway: url builder is required")
	}
	if cfg.Diag == nil {
		cfg.Diag = diag.Discard{}
	}
	return &Gateway{cfg: cfg}, nil
}

// init builds the provider client and the assembler exactly once. The client
// is treated as immutable afterwards, so concurrent operations share it
// without locking.
func (g *Gateway) init() error {
	g.initOnce.Do(func() {
		client, err := g.cfg.ClientFactory()
		if err != nil {
			g.initErr = fmt.Errorf("gateway: building provider client: %w", err)
			return
		}

		items := itembag.NewBuilder(g.cfg.Diag)
		asm, err := request.NewAssembler(request.Config{
			URLs:             g.cfg.URLs,
			Items:            items,
			ItemsFilter:      g.itemsFilter(),
			SupportsWebhooks: client.SupportsWebhooks(),
			SendCartInfo:     g.cfg.SendCartInfo,
			Populate:         g.cfg.Populate,
		})
		if err != nil {
			g.initErr = err
			return
		}

		g.client = client
		g.asm = asm
	})
	return g.initErr
}

// itemsFilter chains the registered item-bag hooks into the assembler's
// filter slot.
func (g *Gateway) itemsFilter() request.ItemsFilter {
	hooks := g.cfg.ItemBagHooks
	if len(hooks) == 0 {
		return nil
	}
	return func(ctx context.Context, order *commerce.Order, items []itembag.Item) []itembag.Item {
		for _, h := range hooks {
			items = h.AfterCreateItemBag(ctx, order, items)
		}
		return items
	}
}

// Authorize reserves funds for the transaction without capturing them.
func (g *Gateway) Authorize(ctx context.Context, txn *commerce.Transaction, form *commerce.PaymentForm) (*Result, error) {
	return g.run(ctx, provider.OpAuthorize, txn, form, "")
}

// Capture captures funds previously authorized under the given provider
// reference.
func (g *Gateway) Capture(ctx context.Context, txn *commerce.Transaction, reference string) (*Result, error) {
	return g.run(ctx, provider.OpCapture, txn, nil, reference)
}

// CompleteAuthorize finishes an authorization that went through an off-site
// redirect. No payment form exists in this flow.
func (g *Gateway) CompleteAuthorize(ctx context.Context, txn *commerce.Transaction) (*Result, error) {
	return g.run(ctx, provider.OpCompleteAuthorize, txn, nil, "")
}

// CompletePurchase finishes a purchase that went through an off-site redirect.
func (g *Gateway) CompletePurchase(ctx context.Context, txn *commerce.Transaction) (*Result, error) {
	return g.run(ctx, provider.OpCompletePurchase, txn, nil, "")
}

// Purchase authorizes and captures in one step.
func (g *Gateway) Purchase(ctx context.Context, txn *commerce.Transaction, form *commerce.PaymentForm) (*Result, error) {
	return g.run(ctx, provider.OpPurchase, txn, form, "")
}

// Refund returns funds for the transaction identified by the given provider
// reference.
func (g *Gateway) Refund(ctx context.Context, txn *commerce.Transaction, reference string) (*Result, error) {
	return g.run(ctx, provider.OpRefund, txn, nil, reference)
}

// Supports reports whether the underlying provider implements the operation.
func (g *Gateway) Supports(op provider.Operation) (bool, error) {
	if err := g.init(); err != nil {
		return false, err
	}
	return g.client.Supports(op), nil
}

// SupportsWebhooks reports whether the provider sends async notifications.
func (g *Gateway) SupportsWebhooks() (bool, error) {
	if err := g.init(); err != nil {
		return false, err
	}
	return g.client.SupportsWebhooks(), nil
}

// run is the single linear sequence behind every operation: capability check,
// assemble, prepare, pre-dispatch hooks, dispatch, normalize.
func (g *Gateway) run(ctx context.Context, op provider.Operation, txn *commerce.Transaction, form *commerce.PaymentForm, reference string) (*Result, error) {
	if txn == nil {
		return nil, fmt.Errorf("gateway: transaction is required")
	}

	if err := g.init(); err != nil {
		metrics.OperationsTotal.WithLabelValues(string(op), metrics.StatusError).Inc()
		return nil, err
	}

	if !g.client.Supports(op) {
		metrics.OperationsTotal.WithLabelValues(string(op), metrics.StatusUnsupported).Inc()
		return nil, &UnsupportedOperationError{Op: op, Provider: g.client.Name()}
	}

	payload := g.asm.Assemble(ctx, txn, form)

	req, err := g.client.Prepare(op, payload)
	if err != nil {
		// Provider preparation errors propagate unchanged.
		metrics.OperationsTotal.WithLabelValues(string(op), metrics.StatusError).Inc()
		return nil, err
	}
	if reference != "" {
		req.SetReference(reference)
	}

	resp, err := g.perform(ctx, op, txn, payload, req)
	if err != nil {
		return nil, err
	}

	status := metrics.StatusFailure
	if resp.Successful() {
		status = metrics.StatusSuccess
	}
	metrics.OperationsTotal.WithLabelValues(string(op), status).Inc()

	return newResult(resp, txn), nil
}

// perform raises the pre-dispatch hooks and sends the request. A hook error
// here is the single cancellation point of the pipeline: dispatch is
// guaranteed not to have started.
func (g *Gateway) perform(ctx context.Context, op provider.Operation, txn *commerce.Transaction, payload *request.Payload, req provider.Request) (provider.Response, error) {
	for _, h := range g.cfg.RequestHooks {
		if err := h.BeforeRequestSend(ctx, txn, payload); err != nil {
			metrics.OperationsTotal.WithLabelValues(string(op), metrics.StatusCancelled).Inc()
			return nil, &RequestCancelledError{Op: op, TransactionHash: txn.Hash, Cause: err}
		}
	}

	tracer := otel.Tracer("gateway")
	ctx, span := tracer.Start(ctx, "Gateway.Dispatch", trace.WithAttributes(
		attribute.String("gateway.operation", string(op)),
		attribute.String("gateway.transaction_hash", txn.Hash),
		attribute.String("gateway.provider", g.client.Name()),
	))
	defer span.End()

	start := time.Now()
	resp, err := g.send(ctx, req)
	metrics.DispatchDuration.WithLabelValues(string(op)).Observe(time.Since(start).Seconds())

	if err != nil {
		span.RecordError(err)
		metrics.OperationsTotal.WithLabelValues(string(op), metrics.StatusError).Inc()
		// Provider dispatch errors propagate unchanged; retry policy, if any,
		// belongs to the provider client or the caller.
		return nil, err
	}
	return resp, nil
}

// send gives the send hooks a chance to substitute the outbound wire payload
// wholesale before dispatching.
func (g *Gateway) send(ctx context.Context, req provider.Request) (provider.Response, error) {
	data, err := req.Data()
	if err != nil {
		return nil, err
	}

	replaced := false
	for _, h := range g.cfg.SendHooks {
		if next, ok := h.BeforeSendData(ctx, data); ok {
			data = next
			replaced = true
		}
	}

	if replaced {
		return req.SendData(ctx, data)
	}
	return req.Send(ctx)
}
