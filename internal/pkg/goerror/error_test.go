package goerror

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewServer(t *testing.T) {
	// Arrange
	cause := errors.New("db down")

	// Act
	err := NewServer(cause)

	// Assert
	ge, ok := As(err)
	assert.True(t, ok)
	assert.Equal(t, TypeServer, ge.Type())
	assert.Equal(t, http.StatusInternalServerError, ge.StatusCode())
	assert.Equal(t, "Internal server error", ge.Msg())
	assert.ErrorIs(t, err, cause)
}

func TestNewBusiness(t *testing.T) {
	tests := []struct {
		name   string
		code   Code
		status int
	}{
		{name: "conflict", code: CodeConflict, status: http.StatusConflict},
		{name: "forbidden", code: CodeForbidden, status: http.StatusForbidden},
		{name: "unauthorized", code: CodeUnauthorized, status: http.StatusUnauthorized},
		{name: "unknown code falls back", code: Code(99), status: http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Act
			err := NewBusiness("nope", tt.code)

			// Assert
			ge, ok := As(fmt.Errorf("wrapped: %w", err))
			assert.True(t, ok)
			assert.Equal(t, tt.status, ge.StatusCode())
			assert.Equal(t, "nope", err.Error())
		})
	}
}

func TestNewInvalidInput(t *testing.T) {
	t.Run("fields from kv", func(t *testing.T) {
		err := NewInvalidInput(nil, "reference_time", "must be RFC3339")

		ge, _ := As(err)
		assert.Equal(t, CodeInvalidInput, ge.Code())
		assert.Equal(t, map[string]string{"reference_time": "must be RFC3339"}, ge.Fields())
	})

	t.Run("odd kv is a format error", func(t *testing.T) {
		err := NewInvalidInput(nil, "only-key")

		ge, _ := As(err)
		assert.Equal(t, CodeInvalidFormat, ge.Code())
		assert.Equal(t, http.StatusBadRequest, ge.StatusCode())
	})
}
