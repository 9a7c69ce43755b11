// Package commerce holds the read-only commerce domain model the gateway
// adapter consumes: orders, line items, adjustments, addresses, transactions
// and the transient payment form. The hosting application owns these records;
// the adapter never mutates them.
package commerce

import (
	"github.com/google/uuid"
)

// TransactionType identifies which payment operation a transaction represents.
type TransactionType string

const (
	TypeAuthorize         TransactionType = "authorize"
	TypePurchase          TransactionType = "purchase"
	TypeCapture           TransactionType = "capture"
	TypeRefund            TransactionType = "refund"
	TypeCompleteAuthorize TransactionType = "complete-authorize"
	TypeCompletePurchase  TransactionType = "complete-purchase"
)

// Transaction is one payment operation attempt. Every transaction belongs to
// exactly one order, and the Hash doubles as an idempotent reference token on
// the provider side.
type Transaction struct {
	ID       int64
	Hash     string
	Type     TransactionType
	Amount   float64
	Currency string
	OrderID  int64
	Order    *Order
}

// NewTransactionHash returns an opaque token suitable for Transaction.Hash.
func NewTransactionHash() string {
	return uuid.NewString()
}

// Order aggregates line items, adjustments, addresses and a total price.
// TotalPrice is expected to equal the reconciled item total; drift is reported
// as a diagnostic, not an error.
type Order struct {
	ID                int64
	Number            string
	Email             string
	Currency          string
	TotalPrice        float64
	CancelURL         string
	LineItems         []LineItem
	Adjustments       []OrderAdjustment
	BillingAddressID  int64
	ShippingAddressID int64
	BillingAddress    *Address
	ShippingAddress   *Address
}

// Purchasable is the catalog item a line item was created from. Optional; a
// line item may outlive its purchasable.
type Purchasable interface {
	Description() string
}

// LineItem is one order line: quantity at a unit sale price, plus optional
// description sources.
type LineItem struct {
	ID          int64
	Qty         int
	SalePrice   float64
	Snapshot    string // description captured at time of ordering
	Purchasable Purchasable
}

// OrderAdjustment is a named amount applied to an order (tax, shipping,
// discount). Included adjustments are already folded into unit prices and must
// not be itemized a second time.
type OrderAdjustment struct {
	Type        string
	Name        string
	Description string
	Amount      float64
	Included    bool
}

// Address is a billing or shipping address as stored by the application.
type Address struct {
	FirstName    string
	LastName     string
	Address1     string
	Address2     string
	City         string
	ZipCode      string
	CountryISO   string
	StateAbbr    string
	StateName    string
	StateText    string // free-text region when no structured state exists
	Phone        string
	BusinessName string
}

// HasState reports whether the address carries a structured region.
func (a *Address) HasState() bool {
	return a.StateAbbr != "" || a.StateName != ""
}

// State returns the preferred region code: abbreviation, then full name.
func (a *Address) State() string {
	if a.StateAbbr != "" {
		return a.StateAbbr
	}
	return a.StateName
}

// PaymentForm is a request-scoped capture of a submitted card. It is never
// persisted and never outlives the orchestration call it was submitted for.
type PaymentForm struct {
	FirstName string
	LastName  string
	Number    string
	Month     int
	Year      int
	CVV       string
	Token     string            // tokenized instrument, when the form never saw a PAN
	Extra     map[string]string // gateway-specific form fields
}
