package bid

import "marketplace-service/internal/domain/document"

// Bid represents an offer made by a buyer on a product.
type Bid struct {
	ID         string
	Product    string   // Product is the id of the product bid on, by convention only
	BuyerEmail string   // BuyerEmail identifies the bidding user
	BidPrice   *float64 // BidPrice is optional
	Attributes document.Fields
}
