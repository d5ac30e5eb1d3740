package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"marketplace-service/internal/domain/bid"
	"marketplace-service/internal/domain/document"
	"marketplace-service/internal/domain/product"
	pkgerrors "marketplace-service/pkg/errors"
	"marketplace-service/pkg/logger"
)

// maxBodyBytes caps request bodies.
const maxBodyBytes = 1 << 20

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

// writeError converts classified errors to HTTP responses. Internal causes
// are logged, never returned to the client.
func writeError(c *gin.Context, log *zap.Logger, err error) {
	status, code := pkgerrors.StatusOf(err)

	switch status {
	case http.StatusUnauthorized:
		c.JSON(status, gin.H{"message": pkgerrors.ErrUnauthorized.Message})
	case http.StatusInternalServerError:
		logger.WithContext(c.Request.Context(), log).Error("request failed",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Error(err),
		)
		c.JSON(status, ErrorResponse{Error: code, Message: "An internal error occurred"})
	default:
		c.JSON(status, ErrorResponse{Error: code, Message: err.Error()})
	}
}

// bindDocument binds a JSON object body into dst and returns every field of
// the object for pass-through storage. The body is read once and cached by
// gin, so both bindings see the same bytes.
func bindDocument(c *gin.Context, dst any) (document.Fields, error) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBodyBytes)

	var fields document.Fields
	if err := c.ShouldBindBodyWithJSON(&fields); err != nil {
		return nil, bindError(err)
	}
	if fields == nil {
		return nil, errNotAnObject
	}
	if err := c.ShouldBindBodyWithJSON(dst); err != nil {
		return nil, bindError(err)
	}
	return fields, nil
}

var errNotAnObject = pkgerrors.NewValidationError("", "request body must be a JSON object")

// bindError classifies a gin binding failure as a validation error.
func bindError(err error) error {
	var (
		tooLarge *http.MaxBytesError
		typeErr  *json.UnmarshalTypeError
	)
	switch {
	case errors.As(err, &tooLarge):
		return pkgerrors.NewValidationError("", "request body too large")
	case errors.As(err, &typeErr) && typeErr.Field != "":
		return pkgerrors.NewValidationError(typeErr.Field, "has the wrong type")
	default:
		return errNotAnObject
	}
}

// productDocument renders a product the way it is stored: every attribute
// plus the typed fields and its _id.
func productDocument(p *product.Product) gin.H {
	doc := gin.H{}
	for k, v := range p.Attributes {
		doc[k] = v
	}
	doc[document.IDKey] = p.ID
	doc["name"] = p.Name
	doc["price"] = p.Price
	if p.Email != "" {
		doc["email"] = p.Email
	}
	if !p.CreatedAt.IsZero() {
		doc["created_at"] = p.CreatedAt
	}
	return doc
}

func productDocuments(products []product.Product) []gin.H {
	docs := make([]gin.H, len(products))
	for i := range products {
		docs[i] = productDocument(&products[i])
	}
	return docs
}

func bidDocument(b *bid.Bid) gin.H {
	doc := gin.H{}
	for k, v := range b.Attributes {
		doc[k] = v
	}
	doc[document.IDKey] = b.ID
	doc["product"] = b.Product
	doc["buyer_email"] = b.BuyerEmail
	if b.BidPrice != nil {
		doc["bid_price"] = *b.BidPrice
	}
	return doc
}

func bidDocuments(bids []bid.Bid) []gin.H {
	docs := make([]gin.H, len(bids))
	for i := range bids {
		docs[i] = bidDocument(&bids[i])
	}
	return docs
}
