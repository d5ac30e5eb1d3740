package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"marketplace-service/internal/adapter/gin/middleware"
	"marketplace-service/internal/usecase/product"
	pkgerrors "marketplace-service/pkg/errors"
	"marketplace-service/pkg/logger"
)

// ProductHandler handles HTTP requests for product operations
type ProductHandler struct {
	uc  product.Usecase
	log *zap.Logger
}

// NewProductHandler creates a new ProductHandler instance
func NewProductHandler(uc product.Usecase, log *zap.Logger) *ProductHandler {
	return &ProductHandler{
		uc:  uc,
		log: log,
	}
}

// createProductBody represents the HTTP request body for creating a product
type createProductBody struct {
	Name  string   `json:"name"`
	Price *float64 `json:"price"`
}

// updateProductBody represents the HTTP request body for updating a product
type updateProductBody struct {
	Name  *string  `json:"name"`
	Price *float64 `json:"price"`
}

// ListProducts handles GET /products
func (h *ProductHandler) ListProducts(c *gin.Context) {
	products, err := h.uc.ListProducts(c.Request.Context(), product.ListProductsRequest{
		Email: c.Query("email"),
	})
	if err != nil {
		writeError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, productDocuments(products))
}

// LatestProducts handles GET /latest-products
func (h *ProductHandler) LatestProducts(c *gin.Context) {
	products, err := h.uc.LatestProducts(c.Request.Context())
	if err != nil {
		writeError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, productDocuments(products))
}

// GetProduct handles GET /products/:id
func (h *ProductHandler) GetProduct(c *gin.Context) {
	p, err := h.uc.GetProduct(c.Request.Context(), product.GetProductRequest{ID: c.Param("id")})
	if err != nil {
		writeError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, productDocument(p))
}

// CreateProduct handles POST /products. The route must sit behind the
// bearer-token gate; the owner is the verified caller.
func (h *ProductHandler) CreateProduct(c *gin.Context) {
	caller, ok := middleware.IdentityFrom(c)
	if !ok {
		writeError(c, h.log, pkgerrors.ErrUnauthorized)
		return
	}

	var body createProductBody
	fields, err := bindDocument(c, &body)
	if err != nil {
		logger.WithContext(c.Request.Context(), h.log).Warn("invalid create product request", zap.Error(err))
		writeError(c, h.log, err)
		return
	}

	resp, err := h.uc.CreateProduct(c.Request.Context(), product.CreateProductRequest{
		Name:       body.Name,
		Price:      body.Price,
		OwnerEmail: caller.Email,
		Attributes: fields,
	})
	if err != nil {
		writeError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// UpdateProduct handles PATCH /products/:id
func (h *ProductHandler) UpdateProduct(c *gin.Context) {
	var body updateProductBody
	if _, err := bindDocument(c, &body); err != nil {
		logger.WithContext(c.Request.Context(), h.log).Warn("invalid update product request", zap.Error(err))
		writeError(c, h.log, err)
		return
	}

	resp, err := h.uc.UpdateProduct(c.Request.Context(), product.UpdateProductRequest{
		ID:    c.Param("id"),
		Name:  body.Name,
		Price: body.Price,
	})
	if err != nil {
		writeError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// DeleteProduct handles DELETE /products/:id
func (h *ProductHandler) DeleteProduct(c *gin.Context) {
	resp, err := h.uc.DeleteProduct(c.Request.Context(), product.DeleteProductRequest{ID: c.Param("id")})
	if err != nil {
		writeError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}
