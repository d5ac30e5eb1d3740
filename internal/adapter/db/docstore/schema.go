package docstore

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	"marketplace-service/internal/domain/document"
)

// UserSchema represents the users collection.
type UserSchema struct {
	ID         string          `gorm:"primaryKey;size:36"`
	Email      string          `gorm:"not null;uniqueIndex;size:254"`
	Attributes document.Fields `gorm:"type:text;not null"`
	InsertedAt time.Time       `gorm:"autoCreateTime"`
}

// TableName specifies the table name for the UserSchema model.
func (UserSchema) TableName() string {
	return "users"
}

// ProductSchema represents the products collection. Created is nullable so
// that records written without a timestamp keep sorting after stamped ones.
type ProductSchema struct {
	ID         string          `gorm:"primaryKey;size:36"`
	Name       string          `gorm:"not null;size:200"`
	Price      float64         `gorm:"not null"`
	Email      string          `gorm:"index;size:254"`
	Created    *time.Time      `gorm:"column:created_at;index"`
	Attributes document.Fields `gorm:"type:text;not null"`
	InsertedAt time.Time       `gorm:"autoCreateTime"`
}

// TableName specifies the table name for the ProductSchema model.
func (ProductSchema) TableName() string {
	return "products"
}

// BidSchema represents the bids collection.
type BidSchema struct {
	ID         string          `gorm:"primaryKey;size:36"`
	Product    string          `gorm:"index;size:200"`
	BuyerEmail string          `gorm:"index;size:254"`
	BidPrice   *float64
	Attributes document.Fields `gorm:"type:text;not null"`
	InsertedAt time.Time       `gorm:"autoCreateTime"`
}

// TableName specifies the table name for the BidSchema model.
func (BidSchema) TableName() string {
	return "bids"
}

// AutoMigrate creates or updates the three collections and their indexes.
func AutoMigrate(db *gorm.DB) error {
	if err := db.AutoMigrate(&UserSchema{}, &ProductSchema{}, &BidSchema{}); err != nil {
		return fmt.Errorf("failed to migrate document store: %w", err)
	}
	return nil
}

// Ping checks that the store answers.
func Ping(ctx context.Context, db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}
	return sqlDB.PingContext(ctx)
}

// base carries what every collection repository needs.
type base struct {
	db      *gorm.DB
	timeout time.Duration
}

// session bounds a single store operation by the configured timeout.
func (b base) session(ctx context.Context) (*gorm.DB, context.CancelFunc) {
	if b.timeout <= 0 {
		return b.db.WithContext(ctx), func() {}
	}
	ctx, cancel := context.WithTimeout(ctx, b.timeout)
	return b.db.WithContext(ctx), cancel
}
