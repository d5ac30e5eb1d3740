package product

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"marketplace-service/internal/domain/document"
	domain "marketplace-service/internal/domain/product"
	pkgerrors "marketplace-service/pkg/errors"
)

// MockRepository is a mock implementation of the Repository interface
type MockRepository struct {
	mock.Mock
}

func (m *MockRepository) Create(ctx context.Context, p *domain.Product) error {
	args := m.Called(ctx, p)
	return args.Error(0)
}

func (m *MockRepository) GetByID(ctx context.Context, id string) (*domain.Product, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Product), args.Error(1)
}

func (m *MockRepository) List(ctx context.Context, email string) ([]domain.Product, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Product), args.Error(1)
}

func (m *MockRepository) Latest(ctx context.Context, limit int) ([]domain.Product, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Product), args.Error(1)
}

func (m *MockRepository) UpdateNamePrice(ctx context.Context, id, name string, price float64) (int64, int64, error) {
	args := m.Called(ctx, id, name, price)
	return args.Get(0).(int64), args.Get(1).(int64), args.Error(2)
}

func (m *MockRepository) Delete(ctx context.Context, id string) (int64, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(int64), args.Error(1)
}

var fixedNow = time.Date(2025, 6, 1, 9, 30, 0, 0, time.UTC)

func setupTestUsecase(t *testing.T) (*ProductUsecase, *MockRepository) {
	mockRepo := new(MockRepository)
	uc := New(mockRepo, zaptest.NewLogger(t))
	uc.now = func() time.Time { return fixedNow }
	return uc, mockRepo
}

func ptr[T any](v T) *T { return &v }

// ==================== LIST ====================

func TestListProducts_All(t *testing.T) {
	uc, mockRepo := setupTestUsecase(t)
	ctx := context.Background()

	mockRepo.On("List", ctx, "").Return([]domain.Product{{ID: "a"}, {ID: "b"}}, nil)

	products, err := uc.ListProducts(ctx, ListProductsRequest{})
	require.NoError(t, err)
	assert.Len(t, products, 2)
	mockRepo.AssertExpectations(t)
}

func TestListProducts_FilterIsTrimmed(t *testing.T) {
	uc, mockRepo := setupTestUsecase(t)
	ctx := context.Background()

	mockRepo.On("List", ctx, "seller@example.com").Return([]domain.Product{}, nil)

	_, err := uc.ListProducts(ctx, ListProductsRequest{Email: " seller@example.com "})
	require.NoError(t, err)
	mockRepo.AssertExpectations(t)
}

func TestListProducts_InvalidFilter(t *testing.T) {
	uc, mockRepo := setupTestUsecase(t)

	_, err := uc.ListProducts(context.Background(), ListProductsRequest{Email: strings.Repeat("a", 300) + "@example.com"})

	var ve *pkgerrors.ValidationError
	require.ErrorAs(t, err, &ve)
	mockRepo.AssertNotCalled(t, "List", mock.Anything, mock.Anything)
}

func TestListProducts_StoreError(t *testing.T) {
	uc, mockRepo := setupTestUsecase(t)
	ctx := context.Background()

	mockRepo.On("List", ctx, "").Return(nil, context.DeadlineExceeded)

	_, err := uc.ListProducts(ctx, ListProductsRequest{})

	var internal *pkgerrors.InternalError
	require.ErrorAs(t, err, &internal)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

// ==================== LATEST ====================

func TestLatestProducts(t *testing.T) {
	uc, mockRepo := setupTestUsecase(t)
	ctx := context.Background()

	mockRepo.On("Latest", ctx, domain.LatestLimit).Return([]domain.Product{{ID: "new"}}, nil)

	products, err := uc.LatestProducts(ctx)
	require.NoError(t, err)
	require.Len(t, products, 1)
	assert.Equal(t, "new", products[0].ID)
}

// ==================== GET ====================

func TestGetProduct(t *testing.T) {
	id := document.NewID()

	tests := []struct {
		name      string
		id        string
		setupMock func(*MockRepository)
		wantErr   any
	}{
		{
			name: "found",
			id:   id,
			setupMock: func(m *MockRepository) {
				m.On("GetByID", mock.Anything, id).Return(&domain.Product{ID: id, Name: "Lamp"}, nil)
			},
		},
		{
			name: "missing",
			id:   id,
			setupMock: func(m *MockRepository) {
				m.On("GetByID", mock.Anything, id).Return(nil, nil)
			},
			wantErr: &pkgerrors.NotFoundError{},
		},
		{
			name:      "malformed id",
			id:        "12345",
			setupMock: func(m *MockRepository) {},
			wantErr:   &pkgerrors.ValidationError{},
		},
		{
			name: "store failure",
			id:   id,
			setupMock: func(m *MockRepository) {
				m.On("GetByID", mock.Anything, id).Return(nil, errors.New("boom"))
			},
			wantErr: &pkgerrors.InternalError{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			uc, mockRepo := setupTestUsecase(t)
			tt.setupMock(mockRepo)

			p, err := uc.GetProduct(context.Background(), GetProductRequest{ID: tt.id})

			switch want := tt.wantErr.(type) {
			case nil:
				require.NoError(t, err)
				assert.Equal(t, "Lamp", p.Name)
			case *pkgerrors.NotFoundError:
				assert.ErrorAs(t, err, &want)
			case *pkgerrors.ValidationError:
				assert.ErrorAs(t, err, &want)
				assert.Equal(t, "invalid_id", want.Code())
			case *pkgerrors.InternalError:
				assert.ErrorAs(t, err, &want)
			}
			mockRepo.AssertExpectations(t)
		})
	}
}

// ==================== CREATE ====================

func TestCreateProduct_Success(t *testing.T) {
	uc, mockRepo := setupTestUsecase(t)
	ctx := context.Background()

	req := CreateProductRequest{
		Name:       "Desk lamp",
		Price:      ptr(35.5),
		OwnerEmail: "seller@example.com",
		Attributes: document.Fields{
			"name":       "Desk lamp",
			"email":      "spoofed@example.com",
			"created_at": "1999-01-01",
			"condition":  "new",
		},
	}

	mockRepo.On("Create", ctx, mock.MatchedBy(func(p *domain.Product) bool {
		_, spoofedEmail := p.Attributes["email"]
		_, spoofedTime := p.Attributes["created_at"]
		return p.ID != "" &&
			p.Name == "Desk lamp" &&
			p.Price == 35.5 &&
			p.Email == "seller@example.com" &&
			p.CreatedAt.Equal(fixedNow) &&
			p.Attributes["condition"] == "new" &&
			!spoofedEmail && !spoofedTime
	})).Return(nil)

	resp, err := uc.CreateProduct(ctx, req)
	require.NoError(t, err)
	assert.True(t, resp.Acknowledged)
	assert.NotEmpty(t, resp.InsertedID)
	mockRepo.AssertExpectations(t)
}

func TestCreateProduct_ValidationErrors(t *testing.T) {
	tests := []struct {
		name string
		req  CreateProductRequest
		want string
	}{
		{"missing name", CreateProductRequest{Price: ptr(1.0), OwnerEmail: "a@example.com"}, "name is required"},
		{"missing price", CreateProductRequest{Name: "Lamp", OwnerEmail: "a@example.com"}, "price is required"},
		{"negative price", CreateProductRequest{Name: "Lamp", Price: ptr(-3.0), OwnerEmail: "a@example.com"}, "price must be greater than or equal to 0"},
		{"no owner", CreateProductRequest{Name: "Lamp", Price: ptr(1.0)}, "email is required"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			uc, mockRepo := setupTestUsecase(t)

			_, err := uc.CreateProduct(context.Background(), tt.req)

			var ve *pkgerrors.ValidationError
			require.ErrorAs(t, err, &ve)
			assert.Contains(t, err.Error(), tt.want)
			mockRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
		})
	}
}

// ==================== UPDATE ====================

func TestUpdateProduct_Success(t *testing.T) {
	uc, mockRepo := setupTestUsecase(t)
	ctx := context.Background()
	id := document.NewID()

	mockRepo.On("UpdateNamePrice", ctx, id, "Lamp v2", 40.0).Return(int64(1), int64(1), nil)

	resp, err := uc.UpdateProduct(ctx, UpdateProductRequest{ID: id, Name: ptr("Lamp v2"), Price: ptr(40.0)})
	require.NoError(t, err)
	assert.Equal(t, int64(1), resp.MatchedCount)
	assert.Equal(t, int64(1), resp.ModifiedCount)
	assert.Nil(t, resp.UpsertedID)
}

func TestUpdateProduct_Unchanged(t *testing.T) {
	uc, mockRepo := setupTestUsecase(t)
	ctx := context.Background()
	id := document.NewID()

	mockRepo.On("UpdateNamePrice", ctx, id, "Lamp", 40.0).Return(int64(1), int64(0), nil)

	resp, err := uc.UpdateProduct(ctx, UpdateProductRequest{ID: id, Name: ptr("Lamp"), Price: ptr(40.0)})
	require.NoError(t, err)
	assert.Equal(t, int64(1), resp.MatchedCount)
	assert.Zero(t, resp.ModifiedCount)
}

func TestUpdateProduct_NoMatch(t *testing.T) {
	uc, mockRepo := setupTestUsecase(t)
	ctx := context.Background()
	id := document.NewID()

	mockRepo.On("UpdateNamePrice", ctx, id, "Ghost", 1.0).Return(int64(0), int64(0), nil)

	resp, err := uc.UpdateProduct(ctx, UpdateProductRequest{ID: id, Name: ptr("Ghost"), Price: ptr(1.0)})
	require.NoError(t, err)
	assert.True(t, resp.Acknowledged)
	assert.Zero(t, resp.MatchedCount)
}

func TestUpdateProduct_Invalid(t *testing.T) {
	id := document.NewID()

	tests := []struct {
		name string
		req  UpdateProductRequest
		want string
	}{
		{"malformed id", UpdateProductRequest{ID: "nope", Name: ptr("x"), Price: ptr(1.0)}, "must be a valid identifier"},
		{"missing price", UpdateProductRequest{ID: id, Name: ptr("x")}, "price is required"},
		{"missing name", UpdateProductRequest{ID: id, Price: ptr(1.0)}, "name is required"},
		{"empty name", UpdateProductRequest{ID: id, Name: ptr(""), Price: ptr(1.0)}, "name must be at least 1 characters"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			uc, mockRepo := setupTestUsecase(t)

			_, err := uc.UpdateProduct(context.Background(), tt.req)

			var ve *pkgerrors.ValidationError
			require.ErrorAs(t, err, &ve)
			assert.Contains(t, err.Error(), tt.want)
			mockRepo.AssertNotCalled(t, "UpdateNamePrice", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
		})
	}
}

// ==================== DELETE ====================

func TestDeleteProduct(t *testing.T) {
	uc, mockRepo := setupTestUsecase(t)
	ctx := context.Background()
	id := document.NewID()

	mockRepo.On("Delete", ctx, id).Return(int64(0), nil)

	resp, err := uc.DeleteProduct(ctx, DeleteProductRequest{ID: id})
	require.NoError(t, err)
	assert.True(t, resp.Acknowledged)
	assert.Zero(t, resp.DeletedCount)
}

func TestDeleteProduct_MalformedID(t *testing.T) {
	uc, mockRepo := setupTestUsecase(t)

	_, err := uc.DeleteProduct(context.Background(), DeleteProductRequest{ID: "1"})

	assert.ErrorIs(t, err, pkgerrors.ErrInvalidID)
	mockRepo.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
}
