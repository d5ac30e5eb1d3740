package bid

import "marketplace-service/internal/domain/document"

// ListBidsRequest represents the request payload for listing bids.
// An empty BuyerEmail lists every bid.
type ListBidsRequest struct {
	BuyerEmail string
}

// CreateBidRequest represents the request payload for placing a bid.
type CreateBidRequest struct {
	Product    string   `json:"product" validate:"required,max=200"`
	BuyerEmail string   `json:"buyer_email" validate:"required,email,max=254"`
	BidPrice   *float64 `json:"bid_price" validate:"omitempty,gte=0"`
	Attributes document.Fields
}

// DeleteBidRequest represents the request payload for deleting a bid.
type DeleteBidRequest struct {
	ID string
}
