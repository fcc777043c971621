package apperror

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAppError_Error(t *testing.T) {
	t.Parallel()

	plain := NotFound("bill")
	assert.Equal(t, "bill not found", plain.Error())

	withField := Validation("amount", "must not be negative")
	assert.Equal(t, "amount: must not be negative", withField.Error())
}

func TestAppError_Unwrap(t *testing.T) {
	t.Parallel()

	err := Validation("name", "must not be empty")
	assert.True(t, errors.Is(err, ErrValidation))

	wrapped := fmt.Errorf("creating bill: %w", err)
	assert.True(t, errors.Is(wrapped, ErrValidation))
}

func TestGetStatusCode(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		err  error
		want int
	}{
		{"app error not found", NotFound("bill"), http.StatusNotFound},
		{"app error validation", Validation("amount", "negative"), http.StatusBadRequest},
		{"wrapped app error", fmt.Errorf("outer: %w", NotFound("profile")), http.StatusNotFound},
		{"sentinel validation", ErrValidation, http.StatusBadRequest},
		{"sentinel unauthorized", ErrUnauthorized, http.StatusUnauthorized},
		{"sentinel conflict", ErrConflict, http.StatusConflict},
		{"unknown error defaults to 500", errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, GetStatusCode(tt.err))
		})
	}
}

func TestGetMessage(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "bill not found", GetMessage(NotFound("bill")))
	assert.Equal(t, "boom", GetMessage(errors.New("boom")))
}
