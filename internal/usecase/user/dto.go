package user

import "marketplace-service/internal/domain/document"

// RegisterRequest represents the request payload for registering a user.
// Attributes carries every other field of the registration body verbatim.
type RegisterRequest struct {
	Email      string `json:"email" validate:"required,email,max=254"`
	Attributes document.Fields
}
