// Package address projects a commerce address into the flat field set a
// payment request expects.
package address

import (
	"github.com/jmauzyk/commerce-omnipay/internal/commerce"
)

// Fields is the flattened address shape shared by the billing and shipping
// namespaces on a card structure.
type Fields struct {
	FirstName string
	LastName  string
	Address1  string
	Address2  string
	City      string
	Postcode  string
	Country   string // ISO country code
	State     string // abbreviation, falling back to name, then free text
	Phone     string
	Company   string
}

// Map flattens an address. A nil address yields zero Fields and ok=false;
// whether that omission is fatal is the caller's decision.
func Map(a *commerce.Address) (Fields, bool) {
	if a == nil {
		return Fields{}, false
	}

	f := Fields{
		FirstName: a.FirstName,
		LastName:  a.LastName,
		Address1:  a.Address1,
		Address2:  a.Address2,
		City:      a.City,
		Postcode:  a.ZipCode,
		Country:   a.CountryISO,
		Phone:     a.Phone,
		Company:   a.BusinessName,
	}

	if a.HasState() {
		f.State = a.State()
	} else {
		f.State = a.StateText
	}

	return f, true
}
