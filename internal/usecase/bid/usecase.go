package bid

import (
	"context"
	"strings"

	"go.uber.org/zap"

	domain "marketplace-service/internal/domain/bid"
	"marketplace-service/internal/domain/document"
	"marketplace-service/internal/usecase/validate"
	pkgerrors "marketplace-service/pkg/errors"
	"marketplace-service/pkg/logger"
	"marketplace-service/pkg/security"
)

// Repository defines the interface for bid data access operations.
type Repository interface {
	Create(ctx context.Context, b *domain.Bid) error
	List(ctx context.Context, buyerEmail string) ([]domain.Bid, error)
	Delete(ctx context.Context, id string) (int64, error)
}

// BidUsecase implements the business logic for bids.
type BidUsecase struct {
	repo     Repository
	log      *zap.Logger
	validate *validate.Validator
}

var _ Usecase = (*BidUsecase)(nil)

// New creates a new instance of BidUsecase.
func New(r Repository, log *zap.Logger) *BidUsecase {
	return &BidUsecase{repo: r, log: log, validate: validate.New()}
}

// ListBids returns all bids, or only those placed by in.BuyerEmail.
func (uc *BidUsecase) ListBids(ctx context.Context, in ListBidsRequest) ([]domain.Bid, error) {
	log := logger.WithContext(ctx, uc.log)

	email, err := security.ValidateEmailFilter(in.BuyerEmail)
	if err != nil {
		log.Warn("invalid email filter", zap.String("email", in.BuyerEmail), zap.Error(err))
		return nil, pkgerrors.NewValidationError("email", err.Error())
	}

	bids, err := uc.repo.List(ctx, email)
	if err != nil {
		log.Error("failed to list bids", zap.String("email", email), zap.Error(err))
		return nil, pkgerrors.NewInternalError("failed to list bids", err)
	}
	return bids, nil
}

// CreateBid stores a bid. Fields other than the known ones pass through.
func (uc *BidUsecase) CreateBid(ctx context.Context, in CreateBidRequest) (*document.InsertResult, error) {
	log := logger.WithContext(ctx, uc.log)
	in.BuyerEmail = strings.TrimSpace(in.BuyerEmail)

	if err := uc.validate.Struct(in); err != nil {
		log.Warn("validate failed", zap.Error(err))
		return nil, err
	}

	b := &domain.Bid{
		ID:         document.NewID(),
		Product:    in.Product,
		BuyerEmail: in.BuyerEmail,
		BidPrice:   in.BidPrice,
		Attributes: in.Attributes.Without(document.IDKey, "product", "buyer_email", "bid_price"),
	}

	if err := uc.repo.Create(ctx, b); err != nil {
		log.Error("failed to create bid", zap.String("product", b.Product), zap.Error(err))
		return nil, pkgerrors.NewInternalError("failed to create bid", err)
	}

	log.Info("bid created", zap.String("id", b.ID), zap.String("product", b.Product))
	return document.Inserted(b.ID), nil
}

// DeleteBid removes a bid by id without checking it exists first.
func (uc *BidUsecase) DeleteBid(ctx context.Context, in DeleteBidRequest) (*document.DeleteResult, error) {
	log := logger.WithContext(ctx, uc.log)

	id, ok := document.ParseID(in.ID)
	if !ok {
		log.Warn("delete bid validation failed", zap.String("id", in.ID), zap.String("reason", "invalid id"))
		return nil, pkgerrors.ErrInvalidID
	}

	deleted, err := uc.repo.Delete(ctx, id)
	if err != nil {
		log.Error("failed to delete bid", zap.String("id", id), zap.Error(err))
		return nil, pkgerrors.NewInternalError("failed to delete bid", err)
	}

	log.Info("bid deleted", zap.String("id", id), zap.Int64("deleted", deleted))
	return document.Deleted(deleted), nil
}
