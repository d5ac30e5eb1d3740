package user

import (
	"context"

	"marketplace-service/internal/domain/document"
)

// Usecase defines the interface for user business logic operations.
type Usecase interface {
	Register(ctx context.Context, in RegisterRequest) (*document.InsertResult, error)
}
