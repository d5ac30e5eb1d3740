package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"marketplace-service/internal/usecase/user"
	"marketplace-service/pkg/logger"
)

// UserHandler handles HTTP requests for user operations
type UserHandler struct {
	uc  user.Usecase
	log *zap.Logger
}

// NewUserHandler creates a new UserHandler instance
func NewUserHandler(uc user.Usecase, log *zap.Logger) *UserHandler {
	return &UserHandler{
		uc:  uc,
		log: log,
	}
}

// registerUserBody represents the HTTP request body for registering a user
type registerUserBody struct {
	Email string `json:"email"`
}

// RegisterUser handles POST /users
func (h *UserHandler) RegisterUser(c *gin.Context) {
	var body registerUserBody
	fields, err := bindDocument(c, &body)
	if err != nil {
		logger.WithContext(c.Request.Context(), h.log).Warn("invalid register user request", zap.Error(err))
		writeError(c, h.log, err)
		return
	}

	resp, err := h.uc.Register(c.Request.Context(), user.RegisterRequest{
		Email:      body.Email,
		Attributes: fields,
	})
	if err != nil {
		writeError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}
