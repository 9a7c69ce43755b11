// Package card builds the normalized payment-instrument structure sent to
// providers: form fields plus billing and shipping address namespaces.
package card

import (
	"github.com/jmauzyk/commerce-omnipay/internal/address"
	"github.com/jmauzyk/commerce-omnipay/internal/commerce"
)

// Card is the provider-agnostic card structure. The top-level name and
// company fields carry the billing identity, matching provider conventions
// for the cardholder name.
type Card struct {
	FirstName   string
	LastName    string
	Number      string
	ExpiryMonth int
	ExpiryYear  int
	CVV         string
	Token       string
	Company     string
	Email       string

	Billing  address.Fields
	Shipping address.Fields
}

// Build assembles a card from a payment form and the order's addresses.
// Billing names overlay the form's holder name as the primary identity.
// Orders without a billing or shipping address id simply skip that namespace.
func Build(order *commerce.Order, form *commerce.PaymentForm) *Card {
	c := &Card{}

	if form != nil {
		populateFromForm(c, form)
	}

	if order.BillingAddressID != 0 {
		if fields, ok := address.Map(order.BillingAddress); ok {
			// Billing identity wins as the top-level cardholder name.
			c.FirstName = fields.FirstName
			c.LastName = fields.LastName
			c.Company = fields.Company
			c.Billing = fields
		}
	}

	if order.ShippingAddressID != 0 {
		if fields, ok := address.Map(order.ShippingAddress); ok {
			c.Shipping = fields
		}
	}

	c.Email = order.Email

	return c
}

func populateFromForm(c *Card, form *commerce.PaymentForm) {
	c.FirstName = form.FirstName
	c.LastName = form.LastName
	c.Number = form.Number
	c.ExpiryMonth = form.Month
	c.ExpiryYear = form.Year
	c.CVV = form.CVV
	c.Token = form.Token
}
