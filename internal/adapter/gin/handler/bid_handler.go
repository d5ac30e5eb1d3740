package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"marketplace-service/internal/usecase/bid"
	"marketplace-service/pkg/logger"
)

// BidHandler handles HTTP requests for bid operations
type BidHandler struct {
	uc  bid.Usecase
	log *zap.Logger
}

// NewBidHandler creates a new BidHandler instance
func NewBidHandler(uc bid.Usecase, log *zap.Logger) *BidHandler {
	return &BidHandler{
		uc:  uc,
		log: log,
	}
}

// createBidBody represents the HTTP request body for placing a bid
type createBidBody struct {
	Product    string   `json:"product"`
	BuyerEmail string   `json:"buyer_email"`
	BidPrice   *float64 `json:"bid_price"`
}

// ListBids handles GET /bids
func (h *BidHandler) ListBids(c *gin.Context) {
	bids, err := h.uc.ListBids(c.Request.Context(), bid.ListBidsRequest{
		BuyerEmail: c.Query("email"),
	})
	if err != nil {
		writeError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, bidDocuments(bids))
}

// CreateBid handles POST /bids
func (h *BidHandler) CreateBid(c *gin.Context) {
	var body createBidBody
	fields, err := bindDocument(c, &body)
	if err != nil {
		logger.WithContext(c.Request.Context(), h.log).Warn("invalid create bid request", zap.Error(err))
		writeError(c, h.log, err)
		return
	}

	resp, err := h.uc.CreateBid(c.Request.Context(), bid.CreateBidRequest{
		Product:    body.Product,
		BuyerEmail: body.BuyerEmail,
		BidPrice:   body.BidPrice,
		Attributes: fields,
	})
	if err != nil {
		writeError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// DeleteBid handles DELETE /bids/:id
func (h *BidHandler) DeleteBid(c *gin.Context) {
	resp, err := h.uc.DeleteBid(c.Request.Context(), bid.DeleteBidRequest{ID: c.Param("id")})
	if err != nil {
		writeError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}
