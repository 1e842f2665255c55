package payment

import (
	"context"
	"errors"
	"net/url"
)

var (
	ErrInvalidSignature = errors.New("invalid payment callback signature")
	ErrGatewayRejected  = errors.New("payment gateway rejected the request")
	ErrInvalidPayment   = errors.New("payment is not valid")
)

// Gateway is a hosted-checkout payment provider.
type Gateway interface {
	// InitSession opens a checkout session and returns where to send the customer.
	InitSession(ctx context.Context, req SessionRequest) (*Session, error)

	// Validate confirms a completed payment by its gateway validation id.
	Validate(ctx context.Context, valID string) (*Validation, error)

	// VerifyCallback checks the signature on a form posted by the gateway.
	VerifyCallback(form url.Values) error
}
