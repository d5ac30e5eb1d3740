package docstore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"marketplace-service/internal/domain/product"
)

// ProductRepo implements the products collection on GORM.
type ProductRepo struct {
	base
	log *zap.Logger
}

// NewProductRepo creates a new instance of ProductRepo.
func NewProductRepo(db *gorm.DB, timeout time.Duration, log *zap.Logger) *ProductRepo {
	return &ProductRepo{base: base{db: db, timeout: timeout}, log: log}
}

func toProductSchema(p *product.Product) ProductSchema {
	model := ProductSchema{
		ID:         p.ID,
		Name:       p.Name,
		Price:      p.Price,
		Email:      p.Email,
		Attributes: p.Attributes,
	}
	if !p.CreatedAt.IsZero() {
		created := p.CreatedAt.UTC()
		model.Created = &created
	}
	return model
}

func fromProductSchema(m *ProductSchema) product.Product {
	p := product.Product{
		ID:         m.ID,
		Name:       m.Name,
		Price:      m.Price,
		Email:      m.Email,
		Attributes: m.Attributes,
	}
	if m.Created != nil {
		p.CreatedAt = m.Created.UTC()
	}
	return p
}

func fromProductSchemas(models []ProductSchema) []product.Product {
	products := make([]product.Product, len(models))
	for i := range models {
		products[i] = fromProductSchema(&models[i])
	}
	return products
}

// Create inserts a new product.
func (r *ProductRepo) Create(ctx context.Context, p *product.Product) error {
	if p == nil {
		return errors.New("product cannot be nil")
	}

	model := toProductSchema(p)

	db, cancel := r.session(ctx)
	defer cancel()

	if err := db.Create(&model).Error; err != nil {
		r.log.Error("failed to create product in db", zap.Error(err), zap.String("owner", p.Email))
		return fmt.Errorf("failed to create product: %w", err)
	}

	r.log.Info("product created in db", zap.String("id", model.ID))
	return nil
}

// GetByID retrieves a product by id. It returns nil, nil when no product
// matches.
func (r *ProductRepo) GetByID(ctx context.Context, id string) (*product.Product, error) {
	db, cancel := r.session(ctx)
	defer cancel()

	var model ProductSchema
	if err := db.Where("id = ?", id).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			r.log.Debug("product not found", zap.String("id", id))
			return nil, nil
		}
		r.log.Error("failed to get product from db", zap.Error(err), zap.String("id", id))
		return nil, fmt.Errorf("failed to get product: %w", err)
	}

	p := fromProductSchema(&model)
	return &p, nil
}

// List retrieves every product, restricted to one owner when email is set.
func (r *ProductRepo) List(ctx context.Context, email string) ([]product.Product, error) {
	db, cancel := r.session(ctx)
	defer cancel()

	if email != "" {
		db = db.Where("email = ?", email)
	}

	var models []ProductSchema
	if err := db.Find(&models).Error; err != nil {
		r.log.Error("failed to list products from db", zap.Error(err), zap.String("email", email))
		return nil, fmt.Errorf("failed to list products: %w", err)
	}

	return fromProductSchemas(models), nil
}

// Latest retrieves at most limit products, newest created_at first.
// Products without created_at come after every timestamped one.
func (r *ProductRepo) Latest(ctx context.Context, limit int) ([]product.Product, error) {
	db, cancel := r.session(ctx)
	defer cancel()

	var models []ProductSchema
	err := db.
		Order("CASE WHEN created_at IS NULL THEN 1 ELSE 0 END").
		Order("created_at DESC").
		Limit(limit).
		Find(&models).Error
	if err != nil {
		r.log.Error("failed to list latest products from db", zap.Error(err), zap.Int("limit", limit))
		return nil, fmt.Errorf("failed to list latest products: %w", err)
	}

	return fromProductSchemas(models), nil
}

// UpdateNamePrice overwrites name and price of one product. It returns the
// number of documents with that id and the number whose values changed.
func (r *ProductRepo) UpdateNamePrice(ctx context.Context, id, name string, price float64) (matched, modified int64, err error) {
	db, cancel := r.session(ctx)
	defer cancel()

	err = db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&ProductSchema{}).Where("id = ?", id).Count(&matched).Error; err != nil {
			return err
		}
		if matched == 0 {
			return nil
		}
		res := tx.Model(&ProductSchema{}).
			Where("id = ? AND (name <> ? OR price <> ?)", id, name, price).
			Updates(map[string]any{"name": name, "price": price})
		modified = res.RowsAffected
		return res.Error
	})
	if err != nil {
		r.log.Error("failed to update product in db", zap.Error(err), zap.String("id", id))
		return 0, 0, fmt.Errorf("failed to update product: %w", err)
	}

	r.log.Info("product updated in db", zap.String("id", id),
		zap.Int64("matched", matched), zap.Int64("modified", modified))
	return matched, modified, nil
}

// Delete removes a product by id and returns the number of deleted documents.
func (r *ProductRepo) Delete(ctx context.Context, id string) (int64, error) {
	db, cancel := r.session(ctx)
	defer cancel()

	res := db.Where("id = ?", id).Delete(&ProductSchema{})
	if res.Error != nil {
		r.log.Error("failed to delete product in db", zap.Error(res.Error), zap.String("id", id))
		return 0, fmt.Errorf("failed to delete product: %w", res.Error)
	}

	r.log.Info("product deleted in db", zap.String("id", id), zap.Int64("deleted", res.RowsAffected))
	return res.RowsAffected, nil
}
