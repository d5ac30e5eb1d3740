package product

import (
	"context"

	"marketplace-service/internal/domain/document"
	domain "marketplace-service/internal/domain/product"
)

// Usecase defines the interface for product business logic operations.
type Usecase interface {
	ListProducts(ctx context.Context, in ListProductsRequest) ([]domain.Product, error)
	LatestProducts(ctx context.Context) ([]domain.Product, error)
	GetProduct(ctx context.Context, in GetProductRequest) (*domain.Product, error)
	CreateProduct(ctx context.Context, in CreateProductRequest) (*document.InsertResult, error)
	UpdateProduct(ctx context.Context, in UpdateProductRequest) (*document.UpdateResult, error)
	DeleteProduct(ctx context.Context, in DeleteProductRequest) (*document.DeleteResult, error)
}
