package bid

import (
	"context"

	domain "marketplace-service/internal/domain/bid"
	"marketplace-service/internal/domain/document"
)

// Usecase defines the interface for bid business logic operations.
type Usecase interface {
	ListBids(ctx context.Context, in ListBidsRequest) ([]domain.Bid, error)
	CreateBid(ctx context.Context, in CreateBidRequest) (*document.InsertResult, error)
	DeleteBid(ctx context.Context, in DeleteBidRequest) (*document.DeleteResult, error)
}
