package order

import "time"

type Order struct {
	ID              int64      `json:"id"`
	TransactionID   string     `json:"transactionId"`
	PaidStatus      bool       `json:"paidStatus"`
	TotalAmount     float64    `json:"totalAmount"`
	Currency        string     `json:"currency"`
	CustomerName    string     `json:"customerName"`
	CustomerEmail   string     `json:"customerEmail"`
	CustomerAddress string     `json:"customerAddress"`
	CreatedAt       time.Time  `json:"createdAt"`
	PaidAt          *time.Time `json:"paidAt,omitempty"`
	ValID           *string    `json:"valId,omitempty"`
}

// InitiateInput is the body of POST /order.
type InitiateInput struct {
	Price    float64 `json:"price" validate:"gt=0,lte=9999999999.99"`
	Currency string  `json:"currency" validate:"required,len=3"`
	Name     string  `json:"name" validate:"required"`
	Email    string  `json:"email" validate:"required,email"`
	Address  string  `json:"address" validate:"required"`
}

// Checkout is returned to the client to continue on the gateway page.
type Checkout struct {
	URL           string `json:"url"`
	TransactionID string `json:"transactionId"`
}
