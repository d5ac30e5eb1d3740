package product

import (
	"time"

	"marketplace-service/internal/domain/document"
)

// LatestLimit is the number of products returned by the latest listing.
const LatestLimit = 6

// Product represents a marketplace listing.
type Product struct {
	ID         string
	Name       string
	Price      float64
	Email      string    // Email of the owning user
	CreatedAt  time.Time // zero for legacy records without a timestamp
	Attributes document.Fields
}
