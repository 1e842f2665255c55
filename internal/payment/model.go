package payment

import (
	"encoding/json"
	"time"
)

type SessionRequest struct {
	TransactionID string
	Amount        float64
	Currency      string

	CustomerName    string
	CustomerEmail   string
	CustomerAddress string

	SuccessURL string
	FailURL    string
	CancelURL  string
	IPNURL     string
}

type Session struct {
	GatewayPageURL string
	SessionKey     string
}

// Validation is the gateway's answer for a val_id.
type Validation struct {
	Status        string  `json:"status"`
	TransactionID string  `json:"tran_id"`
	ValID         string  `json:"val_id"`
	Amount        float64 `json:"amount,string"`
	Currency      string  `json:"currency"`
	BankTranID    string  `json:"bank_tran_id"`
}

const (
	StatusValid     = "VALID"
	StatusValidated = "VALIDATED"
	StatusFailed    = "FAILED"
	StatusCancelled = "CANCELLED"
)

// Paid reports whether the status means the money was captured.
func Paid(status string) bool {
	return status == StatusValid || status == StatusValidated
}

// Event is one callback or IPN received from the gateway.
type Event struct {
	ID             int64
	Provider       string
	EventID        string
	EventType      string
	TransactionID  string
	Payload        json.RawMessage
	SignatureValid bool
	ProcessedAt    *time.Time
	ProcessError   *string
}
