package request

import (
	"context"
	"fmt"
	"strconv"

	"github.com/jmauzyk/commerce-omnipay/internal/card"
	"github.com/jmauzyk/commerce-omnipay/internal/commerce"
	"github.com/jmauzyk/commerce-omnipay/internal/itembag"
)

// CompletePaymentAction is the application action the provider redirects back
// to after an off-site payment step.
const CompletePaymentAction = "commerce/payments/complete-payment"

// URLBuilder produces absolute URLs for the hosting application.
type URLBuilder interface {
	// ActionURL builds an absolute URL for an application action.
	ActionURL(action string, params map[string]string) string
	// SiteURL makes a site-relative path absolute.
	SiteURL(path string) string
	// WebhookURL builds the async notification URL for this gateway.
	WebhookURL(params map[string]string) string
}

// PopulateFunc lets a specific gateway add or overwrite payload fields from
// the payment form before dispatch. Only called for operations that carry
// payment-instrument data.
type PopulateFunc func(p *Payload, form *commerce.PaymentForm)

// ItemsFilter runs over a freshly built item bag and may replace it. This is
// how item-bag hooks reach into assembly without the assembler knowing about
// hook registration.
type ItemsFilter func(ctx context.Context, order *commerce.Order, items []itembag.Item) []itembag.Item

// Config configures an Assembler.
type Config struct {
	URLs             URLBuilder
	Items            *itembag.Builder
	ItemsFilter      ItemsFilter
	SupportsWebhooks bool // whether the provider can receive async notifications
	SendCartInfo     bool // whether to itemize the order on the request
	Populate         PopulateFunc
}

// Assembler builds payloads from transactions.
type Assembler struct {
	cfg Config
}

// NewAssembler creates an Assembler. URLs and Items are required.
func NewAssembler(cfg Config) (*Assembler, error) {
	if cfg.URLs == nil {
		return nil, fmt.Errorf("request: url builder is required")
	}
	if cfg.Items == nil {
		return nil, fmt.Errorf("request: item bag builder is required")
	}
	return &Assembler{cfg: cfg}, nil
}

// Assemble builds the payload for a transaction. Refund and capture reference
// a transaction that already exists on the provider side, so they get the
// minimal payload: re-submitting card or item data there would be incorrect.
// All other types attach a card (when a form was supplied; redirect-completion
// flows have none) and an item bag, then run the gateway's populate override.
func (a *Assembler) Assemble(ctx context.Context, txn *commerce.Transaction, form *commerce.PaymentForm) *Payload {
	if txn.Type == commerce.TypeRefund || txn.Type == commerce.TypeCapture {
		return a.paymentPayload(ctx, txn, nil, nil)
	}

	var c *card.Card
	if form != nil {
		c = card.Build(txn.Order, form)
	}

	var items []itembag.Item
	if a.cfg.SendCartInfo {
		items = a.cfg.Items.Build(ctx, txn.Order)
		if a.cfg.ItemsFilter != nil {
			items = a.cfg.ItemsFilter(ctx, txn.Order, items)
		}
	}

	p := a.paymentPayload(ctx, txn, c, items)
	if a.cfg.Populate != nil {
		a.cfg.Populate(p, form)
	}
	return p
}

func (a *Assembler) paymentPayload(ctx context.Context, txn *commerce.Transaction, c *card.Card, items []itembag.Item) *Payload {
	params := map[string]string{
		"commerceTransactionId":   strconv.FormatInt(txn.ID, 10),
		"commerceTransactionHash": txn.Hash,
	}

	p := &Payload{
		Amount:               txn.Amount,
		Currency:             txn.Currency,
		TransactionID:        txn.Hash,
		TransactionReference: txn.Hash,
		Description:          fmt.Sprintf("Order #%d", txn.OrderID),
		ClientIP:             ClientIP(ctx),
		ReturnURL:            a.cfg.URLs.ActionURL(CompletePaymentAction, params),
		OrderID:              txn.OrderID,
		Order:                txn.Order,
		Extra:                make(map[string]any),
	}

	if a.cfg.SupportsWebhooks {
		p.NotifyURL = a.cfg.URLs.WebhookURL(params)
	} else {
		// Providers without async notification are polled through the
		// synchronous return flow.
		p.NotifyURL = p.ReturnURL
	}

	if txn.Order != nil {
		p.CancelURL = a.cfg.URLs.SiteURL(txn.Order.CancelURL)
		p.Extra[KeyReceiptEmail] = txn.Order.Email
	}

	// PayPal Express fields; harmless elsewhere.
	p.Extra[KeyNoShipping] = 1
	p.Extra[KeyAllowNote] = 0
	p.Extra[KeyAddressOverride] = 1
	p.Extra[KeyButtonSource] = "commerceOmnipay_SP"

	p.Card = c
	p.Items = items

	return p
}
