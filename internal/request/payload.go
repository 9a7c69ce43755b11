// Package request assembles the provider-agnostic payload for a payment
// operation from transaction, order, card and item data.
package request

import (
	"context"

	"github.com/jmauzyk/commerce-omnipay/internal/card"
	"github.com/jmauzyk/commerce-omnipay/internal/commerce"
	"github.com/jmauzyk/commerce-omnipay/internal/itembag"
)

// Well-known Extra keys. Providers that do not recognize a key ignore it.
const (
	KeyReceiptEmail    = "receiptEmail"    // Stripe
	KeyNoShipping      = "noShipping"      // PayPal Express
	KeyAllowNote       = "allowNote"       // PayPal Express
	KeyAddressOverride = "addressOverride" // PayPal Express
	KeyButtonSource    = "buttonSource"    // PayPal Express
)

// Payload is the provider-agnostic request shape. The named fields are the
// keys every provider understands; Extra carries provider-specific keys. A
// payload is built fresh per orchestration call and owned by that call; hooks
// may mutate it up until dispatch, after which it must be treated as frozen.
type Payload struct {
	Amount               float64        `json:"amount"`
	Currency             string         `json:"currency"`
	TransactionID        string         `json:"transactionId"`
	TransactionReference string         `json:"transactionReference"`
	Description          string         `json:"description"`
	ClientIP             string         `json:"clientIp,omitempty"`
	ReturnURL            string         `json:"returnUrl"`
	CancelURL            string         `json:"cancelUrl"`
	NotifyURL            string         `json:"notifyUrl"`
	OrderID              int64          `json:"orderId"`
	Card                 *card.Card     `json:"card,omitempty"`
	Items                []itembag.Item `json:"items,omitempty"`
	Extra                map[string]any `json:"extra,omitempty"`

	// Order is the full order back-reference so provider-specific extension
	// code can reach order context without re-fetching it. Never serialized.
	Order *commerce.Order `json:"-"`
}

type clientIPKey struct{}

// WithClientIP attaches the end user's IP to the context. The hosting
// application owns the inbound HTTP request, so it supplies the IP this way.
func WithClientIP(ctx context.Context, ip string) context.Context {
	return context.WithValue(ctx, clientIPKey{}, ip)
}

// ClientIP returns the IP attached by WithClientIP, rewriting the IPv6
// loopback literal to its IPv4 form. Several providers reject "::1".
func ClientIP(ctx context.Context) string {
	ip, _ := ctx.Value(clientIPKey{}).(string)
	if ip == "::1" {
		return "127.0.0.1"
	}
	return ip
}
