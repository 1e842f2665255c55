package product

import "io"

type Status string

const (
	StatusPending  Status = "pending"
	StatusApproved Status = "approved"
)

// MaxAmount is the largest price the NUMERIC(12,2) columns hold.
const MaxAmount = 9999999999.99

type Product struct {
	ID           int64   `json:"id"`
	ProductName  string  `json:"productName"`
	ParentTitle  string  `json:"parentTitle"`
	Type         string  `json:"type"`
	MadeIn       string  `json:"madeIn"`
	NetWeight    string  `json:"netWeight"`
	Price        float64 `json:"price"`
	PrePrice     float64 `json:"prePrice"`
	Expired      string  `json:"expired"`
	Description  string  `json:"description"`
	ProductImage string  `json:"productImage"`
	Role         Status  `json:"role"`
	ImageURL     string  `json:"imageUrl,omitempty"`
}

type NewProductInput struct {
	ProductName string  `json:"productName" validate:"required"`
	ParentTitle string  `json:"parentTitle"`
	Type        string  `json:"type"`
	MadeIn      string  `json:"madeIn"`
	NetWeight   string  `json:"netWeight"`
	Price       float64 `json:"price" validate:"gt=0,lte=9999999999.99"`
	PrePrice    float64 `json:"prePrice" validate:"gte=0,lte=9999999999.99"`
	Expired     string  `json:"expired"`
	Description string  `json:"description"`
}

// UpdateProductInput holds a partial update. Nil fields are left untouched.
type UpdateProductInput struct {
	ProductName *string  `json:"productName"`
	ParentTitle *string  `json:"parentTitle"`
	Type        *string  `json:"type"`
	MadeIn      *string  `json:"madeIn"`
	NetWeight   *string  `json:"netWeight"`
	Price       *float64 `json:"price" validate:"omitempty,gt=0,lte=9999999999.99"`
	PrePrice    *float64 `json:"prePrice" validate:"omitempty,gte=0,lte=9999999999.99"`
	Expired     *string  `json:"expired"`
	Description *string  `json:"description"`
	Role        *Status  `json:"role" validate:"omitempty,oneof=pending approved"`
}

func (in UpdateProductInput) HasAnyField() bool {
	return in.ProductName != nil ||
		in.ParentTitle != nil ||
		in.Type != nil ||
		in.MadeIn != nil ||
		in.NetWeight != nil ||
		in.Price != nil ||
		in.PrePrice != nil ||
		in.Expired != nil ||
		in.Description != nil ||
		in.Role != nil
}

// Normalize drops empty strings so "" means "not supplied", as form posts send them.
func (in *UpdateProductInput) Normalize() {
	for _, p := range []**string{
		&in.ProductName, &in.ParentTitle, &in.Type, &in.MadeIn,
		&in.NetWeight, &in.Expired, &in.Description,
	} {
		if *p != nil && **p == "" {
			*p = nil
		}
	}
	if in.Role != nil && *in.Role == "" {
		in.Role = nil
	}
}

// Upload is an image file received with a create or update request.
type Upload struct {
	Filename string
	Body     io.Reader
}

type ListOptions struct {
	OnlyApproved bool
}
