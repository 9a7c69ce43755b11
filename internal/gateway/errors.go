package gateway

import (
	"fmt"

	"github.com/jmauzyk/commerce-omnipay/internal/provider"
)

// UnsupportedOperationError is returned when the provider does not declare
// support for the requested operation. The provider client is never invoked.
type UnsupportedOperationError struct {
	Op       provider.Operation
	Provider string
}

func (e *UnsupportedOperationError) Error() string {
	return fmt.Sprintf("gateway: %s is not supported by the %s gateway", e.Op, e.Provider)
}

// RequestCancelledError is returned when a pre-dispatch hook vetoed the
// request. Guaranteed to surface before any network I/O, so no partial charge
// attempt can have happened.
type RequestCancelledError struct {
	Op              provider.Operation
	TransactionHash string
	Cause           error
}

func (e *RequestCancelledError) Error() string {
	return fmt.Sprintf("gateway: %s request for transaction %s was cancelled: %v", e.Op, e.TransactionHash, e.Cause)
}

func (e *RequestCancelledError) Unwrap() error {
	return e.Cause
}
