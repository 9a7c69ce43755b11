// Package hook defines the interception points external code can register on
// a gateway. Hooks run synchronously inside the orchestration call and must
// not retain the values they are handed.
package hook

import (
	"context"

	"github.com/jmauzyk/commerce-omnipay/internal/commerce"
	"github.com/jmauzyk/commerce-omnipay/internal/itembag"
	"github.com/jmauzyk/commerce-omnipay/internal/request"
)

// ItemBagHook runs after the item bag is built and may replace it. Returning
// the input slice unchanged is the no-op. The order is read-only.
type ItemBagHook interface {
	AfterCreateItemBag(ctx context.Context, order *commerce.Order, items []itembag.Item) []itembag.Item
}

// RequestHook runs before a prepared request is dispatched. It may read and
// mutate the payload in place. Returning a non-nil error cancels the
// operation before any network I/O; the gateway surfaces it as a cancelled
// request.
type RequestHook interface {
	BeforeRequestSend(ctx context.Context, txn *commerce.Transaction, p *request.Payload) error
}

// SendHook sees the outbound wire payload just before it leaves and may
// substitute it wholesale. Wire payloads are not always map-shaped (XML and
// JSON bodies exist), so replacement is all-or-nothing: return the substitute
// and true, or anything and false to keep the original.
type SendHook interface {
	BeforeSendData(ctx context.Context, data any) (any, bool)
}

// ItemBagFunc adapts a function to ItemBagHook.
type ItemBagFunc func(ctx context.Context, order *commerce.Order, items []itembag.Item) []itembag.Item

func (f ItemBagFunc) AfterCreateItemBag(ctx context.Context, order *commerce.Order, items []itembag.Item) []itembag.Item {
	return f(ctx, order, items)
}

// RequestFunc adapts a function to RequestHook.
type RequestFunc func(ctx context.Context, txn *commerce.Transaction, p *request.Payload) error

func (f RequestFunc) BeforeRequestSend(ctx context.Context, txn *commerce.Transaction, p *request.Payload) error {
	return f(ctx, txn, p)
}

// SendFunc adapts a function to SendHook.
type SendFunc func(ctx context.Context, data any) (any, bool)

func (f SendFunc) BeforeSendData(ctx context.Context, data any) (any, bool) {
	return f(ctx, data)
}
