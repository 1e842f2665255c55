package order

import "errors"

var (
	ErrOrderNotFound        = errors.New("order not found")
	ErrTransactionNotFound  = errors.New("transaction id not found")
	ErrAlreadyPaid          = errors.New("order already paid")
	ErrGatewayUnavailable   = errors.New("payment gateway unavailable")
	ErrDuplicateTransaction = errors.New("duplicate transaction id")
)
