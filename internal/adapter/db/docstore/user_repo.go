package docstore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"marketplace-service/internal/domain/user"
)

// UserRepo implements the users collection on GORM.
type UserRepo struct {
	base
	log *zap.Logger
}

// NewUserRepo creates a new instance of UserRepo.
func NewUserRepo(db *gorm.DB, timeout time.Duration, log *zap.Logger) *UserRepo {
	return &UserRepo{base: base{db: db, timeout: timeout}, log: log}
}

// CreateIfAbsent inserts u unless a user with the same email exists. The
// check and the insert are a single statement, so concurrent registrations
// of one email store exactly one document.
func (r *UserRepo) CreateIfAbsent(ctx context.Context, u *user.User) (bool, error) {
	if u == nil {
		return false, errors.New("user cannot be nil")
	}

	model := UserSchema{
		ID:         u.ID,
		Email:      u.Email,
		Attributes: u.Attributes,
	}

	db, cancel := r.session(ctx)
	defer cancel()

	res := db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "email"}},
		DoNothing: true,
	}).Create(&model)
	if res.Error != nil {
		r.log.Error("failed to create user in db", zap.Error(res.Error), zap.String("email", u.Email))
		return false, fmt.Errorf("failed to create user: %w", res.Error)
	}

	if res.RowsAffected == 0 {
		r.log.Debug("user already registered", zap.String("email", u.Email))
		return false, nil
	}

	r.log.Info("user created in db", zap.String("id", model.ID))
	return true, nil
}
