package gateway

import (
	"github.com/jmauzyk/commerce-omnipay/internal/commerce"
	"github.com/jmauzyk/commerce-omnipay/internal/provider"
)

// Result is the normalized outcome of a gateway operation: the raw provider
// response tied back to the transaction that produced it. Immutable once
// constructed; owned by the caller.
type Result struct {
	Success     bool
	Reference   string
	Message     string
	Transaction *commerce.Transaction
	Response    provider.Response
}

// newResult wraps a raw provider response with its originating transaction.
// Pure association, no business logic.
func newResult(resp provider.Response, txn *commerce.Transaction) *Result {
	return &Result{
		Success:     resp.Successful(),
		Reference:   resp.Reference(),
		Message:     resp.Message(),
		Transaction: txn,
		Response:    resp,
	}
}
