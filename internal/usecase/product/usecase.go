package product

import (
	"context"
	"time"

	"go.uber.org/zap"

	"marketplace-service/internal/domain/document"
	domain "marketplace-service/internal/domain/product"
	"marketplace-service/internal/usecase/validate"
	pkgerrors "marketplace-service/pkg/errors"
	"marketplace-service/pkg/logger"
	"marketplace-service/pkg/security"
)

// Repository defines the interface for product data access operations.
type Repository interface {
	Create(ctx context.Context, p *domain.Product) error                                                      // Insert a new product
	GetByID(ctx context.Context, id string) (*domain.Product, error)                                          // nil when absent
	List(ctx context.Context, email string) ([]domain.Product, error)                                         // Filter by owner, empty for all
	Latest(ctx context.Context, limit int) ([]domain.Product, error)                                          // Newest first
	UpdateNamePrice(ctx context.Context, id, name string, price float64) (matched, modified int64, err error) // Matched and changed counts
	Delete(ctx context.Context, id string) (int64, error)                                                     // Deleted count
}

// ProductUsecase implements the business logic for product listings.
type ProductUsecase struct {
	repo     Repository
	log      *zap.Logger
	validate *validate.Validator
	now      func() time.Time
}

var _ Usecase = (*ProductUsecase)(nil)

// New creates a new instance of ProductUsecase.
func New(r Repository, log *zap.Logger) *ProductUsecase {
	return &ProductUsecase{
		repo:     r,
		log:      log,
		validate: validate.New(),
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// ListProducts returns all products, or only those owned by in.Email.
func (uc *ProductUsecase) ListProducts(ctx context.Context, in ListProductsRequest) ([]domain.Product, error) {
	log := logger.WithContext(ctx, uc.log)

	email, err := security.ValidateEmailFilter(in.Email)
	if err != nil {
		log.Warn("invalid email filter", zap.String("email", in.Email), zap.Error(err))
		return nil, pkgerrors.NewValidationError("email", err.Error())
	}

	products, err := uc.repo.List(ctx, email)
	if err != nil {
		log.Error("failed to list products", zap.String("email", email), zap.Error(err))
		return nil, pkgerrors.NewInternalError("failed to list products", err)
	}
	return products, nil
}

// LatestProducts returns the most recently created products.
func (uc *ProductUsecase) LatestProducts(ctx context.Context) ([]domain.Product, error) {
	products, err := uc.repo.Latest(ctx, domain.LatestLimit)
	if err != nil {
		logger.WithContext(ctx, uc.log).Error("failed to list latest products", zap.Error(err))
		return nil, pkgerrors.NewInternalError("failed to list latest products", err)
	}
	return products, nil
}

// GetProduct retrieves a product by id.
func (uc *ProductUsecase) GetProduct(ctx context.Context, in GetProductRequest) (*domain.Product, error) {
	log := logger.WithContext(ctx, uc.log)

	id, ok := document.ParseID(in.ID)
	if !ok {
		log.Warn("get product validation failed", zap.String("id", in.ID), zap.String("reason", "invalid id"))
		return nil, pkgerrors.ErrInvalidID
	}

	p, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		log.Error("failed to get product", zap.String("id", id), zap.Error(err))
		return nil, pkgerrors.NewInternalError("failed to get product", err)
	}
	if p == nil {
		return nil, pkgerrors.NewNotFoundError("product", "")
	}
	return p, nil
}

// CreateProduct stores a new product owned by the verified caller and
// stamped with the current time.
func (uc *ProductUsecase) CreateProduct(ctx context.Context, in CreateProductRequest) (*document.InsertResult, error) {
	log := logger.WithContext(ctx, uc.log)

	if err := uc.validate.Struct(in); err != nil {
		log.Warn("validate failed", zap.Error(err))
		return nil, err
	}

	p := &domain.Product{
		ID:         document.NewID(),
		Name:       in.Name,
		Price:      *in.Price,
		Email:      in.OwnerEmail,
		CreatedAt:  uc.now(),
		Attributes: in.Attributes.Without(document.IDKey, "name", "price", "email", "created_at"),
	}

	if err := uc.repo.Create(ctx, p); err != nil {
		log.Error("failed to create product", zap.Error(err))
		return nil, pkgerrors.NewInternalError("failed to create product", err)
	}

	log.Info("product created", zap.String("id", p.ID), zap.String("owner", p.Email))
	return document.Inserted(p.ID), nil
}

// UpdateProduct replaces the name and price of a product. A missing product
// is not an error; the result reports zero matches.
func (uc *ProductUsecase) UpdateProduct(ctx context.Context, in UpdateProductRequest) (*document.UpdateResult, error) {
	log := logger.WithContext(ctx, uc.log)

	id, ok := document.ParseID(in.ID)
	if !ok {
		log.Warn("update product validation failed", zap.String("id", in.ID), zap.String("reason", "invalid id"))
		return nil, pkgerrors.ErrInvalidID
	}
	if err := uc.validate.Struct(in); err != nil {
		log.Warn("validate failed", zap.Error(err))
		return nil, err
	}

	matched, modified, err := uc.repo.UpdateNamePrice(ctx, id, *in.Name, *in.Price)
	if err != nil {
		log.Error("failed to update product", zap.String("id", id), zap.Error(err))
		return nil, pkgerrors.NewInternalError("failed to update product", err)
	}

	log.Info("product updated", zap.String("id", id), zap.Int64("matched", matched), zap.Int64("modified", modified))
	return document.Updated(matched, modified), nil
}

// DeleteProduct removes a product by id without checking it exists first.
func (uc *ProductUsecase) DeleteProduct(ctx context.Context, in DeleteProductRequest) (*document.DeleteResult, error) {
	log := logger.WithContext(ctx, uc.log)

	id, ok := document.ParseID(in.ID)
	if !ok {
		log.Warn("delete product validation failed", zap.String("id", in.ID), zap.String("reason", "invalid id"))
		return nil, pkgerrors.ErrInvalidID
	}

	deleted, err := uc.repo.Delete(ctx, id)
	if err != nil {
		log.Error("failed to delete product", zap.String("id", id), zap.Error(err))
		return nil, pkgerrors.NewInternalError("failed to delete product", err)
	}

	log.Info("product deleted", zap.String("id", id), zap.Int64("deleted", deleted))
	return document.Deleted(deleted), nil
}
