package apperror

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHTTPStatus(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"validation", New(ErrValidation, "Rating must be between 1 and 5"), http.StatusBadRequest},
		{"unauthorized", New(ErrUnauthorized, "Unauthorized"), http.StatusUnauthorized},
		{"forbidden", New(ErrForbidden, "Forbidden"), http.StatusForbidden},
		{"not found wrapped", fmt.Errorf("load recipe: %w", New(ErrNotFound, "Recipe not found")), http.StatusNotFound},
		{"conflict", Newf(ErrConflict, "category %q already exists", "Soups"), http.StatusConflict},
		{"too large", New(ErrTooLarge, "File too large"), http.StatusRequestEntityTooLarge},
		{"unsupported", New(ErrUnsupportedMedia, "Invalid file type"), http.StatusUnsupportedMediaType},
		{"plain", errors.New("connection refused"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, HTTPStatus(tt.err))
		})
	}
}

func TestMessage(t *testing.T) {
	err := fmt.Errorf("submit rating: %w", New(ErrValidation, "Rating must be between 1 and 5"))
	assert.Equal(t, "Rating must be between 1 and 5", Message(err))
	assert.True(t, errors.Is(err, ErrValidation))

	assert.Equal(t, "boom", Message(errors.New("boom")))
}
