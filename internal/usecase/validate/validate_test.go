package validate

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pkgerrors "marketplace-service/pkg/errors"
)

type sample struct {
	Email string   `json:"buyer_email" validate:"required,email"`
	Price *float64 `json:"price" validate:"required,gte=0"`
	Note  string   `json:"-" validate:"max=3"`
}

func TestStruct(t *testing.T) {
	v := New()
	price := 10.0
	negative := -1.0

	tests := []struct {
		name    string
		in      sample
		wantMsg string
	}{
		{"valid", sample{Email: "a@example.com", Price: &price}, ""},
		{"missing email", sample{Price: &price}, "buyer_email is required"},
		{"bad email", sample{Email: "nope", Price: &price}, "buyer_email must be a valid email"},
		{"missing price", sample{Email: "a@example.com"}, "price is required"},
		{"negative price", sample{Email: "a@example.com", Price: &negative}, "price must be greater than or equal to 0"},
		{"too long", sample{Email: "a@example.com", Price: &price, Note: "abcd"}, "must be at most 3 characters"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.Struct(tt.in)
			if tt.wantMsg == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			var ve *pkgerrors.ValidationError
			require.ErrorAs(t, err, &ve)
			assert.Contains(t, ve.Message, tt.wantMsg)
		})
	}
}

func TestStruct_MultipleErrorsJoined(t *testing.T) {
	err := New().Struct(sample{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "buyer_email is required")
	assert.Contains(t, err.Error(), "price is required")
}
