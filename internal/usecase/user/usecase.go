package user

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"marketplace-service/internal/domain/document"
	domain "marketplace-service/internal/domain/user"
	"marketplace-service/internal/usecase/validate"
	pkgerrors "marketplace-service/pkg/errors"
	"marketplace-service/pkg/logger"
)

// Repository defines the interface for user data access operations.
type Repository interface {
	// CreateIfAbsent inserts u unless a user with the same email exists.
	// It reports whether u was inserted.
	CreateIfAbsent(ctx context.Context, u *domain.User) (bool, error)
}

// UserUsecase implements the business logic for user registration.
type UserUsecase struct {
	repo     Repository
	log      *zap.Logger
	validate *validate.Validator
}

var _ Usecase = (*UserUsecase)(nil)

// New creates a new instance of UserUsecase.
func New(r Repository, log *zap.Logger) *UserUsecase {
	return &UserUsecase{repo: r, log: log, validate: validate.New()}
}

// Register stores a new user keyed by email. A second registration for the
// same email inserts nothing and reports AlreadyExistsError.
func (uc *UserUsecase) Register(ctx context.Context, in RegisterRequest) (*document.InsertResult, error) {
	log := logger.WithContext(ctx, uc.log)
	in.Email = strings.TrimSpace(in.Email)

	if err := uc.validate.Struct(in); err != nil {
		log.Warn("validate failed", zap.Error(err))
		return nil, err
	}

	u := &domain.User{
		ID:         document.NewID(),
		Email:      in.Email,
		Attributes: in.Attributes.Without(document.IDKey, "email"),
	}

	created, err := uc.repo.CreateIfAbsent(ctx, u)
	if err != nil {
		log.Error("failed to register user", zap.String("email", in.Email), zap.Error(err))
		return nil, pkgerrors.NewInternalError("failed to register user", err)
	}
	if !created {
		log.Info("user already registered", zap.String("email", in.Email))
		return nil, pkgerrors.NewAlreadyExistsError("user", "user already exists")
	}

	log.Info("user registered", zap.String("id", u.ID), zap.String("email", u.Email))
	return document.Inserted(u.ID), nil
}
