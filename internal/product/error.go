package product

import "errors"

var (
	ErrProductNotFound  = errors.New("product not found")
	ErrNoFieldsToUpdate = errors.New("no fields to update")
	ErrImageRequired    = errors.New("productImage is required")
	ErrImageDelete      = errors.New("error deleting existing product image")
)
