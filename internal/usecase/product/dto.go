package product

import "marketplace-service/internal/domain/document"

// ListProductsRequest represents the request payload for listing products.
// An empty Email lists every product.
type ListProductsRequest struct {
	Email string
}

// GetProductRequest represents the request payload for retrieving a product.
type GetProductRequest struct {
	ID string
}

// CreateProductRequest represents the request payload for creating a product.
// OwnerEmail comes from the verified caller, never from the body.
type CreateProductRequest struct {
	Name       string   `json:"name" validate:"required,max=200"`
	Price      *float64 `json:"price" validate:"required,gte=0"`
	OwnerEmail string   `json:"email" validate:"required,max=254"`
	Attributes document.Fields
}

// UpdateProductRequest represents the request payload for updating a product.
// Both fields are required; no other stored field changes.
type UpdateProductRequest struct {
	ID    string
	Name  *string  `json:"name" validate:"required,min=1,max=200"`
	Price *float64 `json:"price" validate:"required,gte=0"`
}

// DeleteProductRequest represents the request payload for deleting a product.
type DeleteProductRequest struct {
	ID string
}
