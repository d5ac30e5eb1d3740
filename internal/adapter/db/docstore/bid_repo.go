package docstore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"marketplace-service/internal/domain/bid"
)

// BidRepo implements the bids collection on GORM.
type BidRepo struct {
	base
	log *zap.Logger
}

// NewBidRepo creates a new instance of BidRepo.
func NewBidRepo(db *gorm.DB, timeout time.Duration, log *zap.Logger) *BidRepo {
	return &BidRepo{base: base{db: db, timeout: timeout}, log: log}
}

// Create inserts a new bid.
func (r *BidRepo) Create(ctx context.Context, b *bid.Bid) error {
	if b == nil {
		return errors.New("bid cannot be nil")
	}

	model := BidSchema{
		ID:         b.ID,
		Product:    b.Product,
		BuyerEmail: b.BuyerEmail,
		BidPrice:   b.BidPrice,
		Attributes: b.Attributes,
	}

	db, cancel := r.session(ctx)
	defer cancel()

	if err := db.Create(&model).Error; err != nil {
		r.log.Error("failed to create bid in db", zap.Error(err), zap.String("buyer", b.BuyerEmail))
		return fmt.Errorf("failed to create bid: %w", err)
	}

	r.log.Info("bid created in db", zap.String("id", model.ID), zap.String("product", model.Product))
	return nil
}

// List retrieves every bid, restricted to one buyer when buyerEmail is set.
func (r *BidRepo) List(ctx context.Context, buyerEmail string) ([]bid.Bid, error) {
	db, cancel := r.session(ctx)
	defer cancel()

	if buyerEmail != "" {
		db = db.Where("buyer_email = ?", buyerEmail)
	}

	var models []BidSchema
	if err := db.Find(&models).Error; err != nil {
		r.log.Error("failed to list bids from db", zap.Error(err), zap.String("buyer_email", buyerEmail))
		return nil, fmt.Errorf("failed to list bids: %w", err)
	}

	bids := make([]bid.Bid, len(models))
	for i, m := range models {
		bids[i] = bid.Bid{
			ID:         m.ID,
			Product:    m.Product,
			BuyerEmail: m.BuyerEmail,
			BidPrice:   m.BidPrice,
			Attributes: m.Attributes,
		}
	}
	return bids, nil
}

// Delete removes a bid by id and returns the number of deleted documents.
func (r *BidRepo) Delete(ctx context.Context, id string) (int64, error) {
	db, cancel := r.session(ctx)
	defer cancel()

	res := db.Where("id = ?", id).Delete(&BidSchema{})
	if res.Error != nil {
		r.log.Error("failed to delete bid in db", zap.Error(res.Error), zap.String("id", id))
		return 0, fmt.Errorf("failed to delete bid: %w", res.Error)
	}

	r.log.Info("bid deleted in db", zap.String("id", id), zap.Int64("deleted", res.RowsAffected))
	return res.RowsAffected, nil
}
