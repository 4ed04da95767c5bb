package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStatus(t *testing.T) {
	tests := []struct {
		err    error
		status int
	}{
		{Validation("bad"), http.StatusBadRequest},
		{BadRequest("bad"), http.StatusBadRequest},
		{Conflict("Email in use"), http.StatusConflict},
		{Auth("Not authorized"), http.StatusUnauthorized},
		{NotFound("Not found"), http.StatusNotFound},
		{Processing("Failed", errors.New("decode")), http.StatusInternalServerError},
		{errors.New("boom"), http.StatusInternalServerError},
		{fmt.Errorf("wrapped, %w", Conflict("Email in use")), http.StatusConflict},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.status, Status(tt.err), tt.err.Error())
	}
}

func TestPublicMessage(t *testing.T) {
	assert.Equal(t, "Email in use", PublicMessage(Conflict("Email in use")))
	assert.Equal(t, "Server error", PublicMessage(errors.New("connection refused")))
	assert.Equal(t, "Server error", PublicMessage(&Error{Kind: KindInternal, Message: "secret detail"}))
	assert.Equal(t, "Failed to process avatar", PublicMessage(Processing("Failed to process avatar", errors.New("x"))))
}

func TestIsAndUnwrap(t *testing.T) {
	cause := errors.New("not an image")
	err := fmt.Errorf("avatar, %w", Processing("Failed", cause))

	assert.True(t, Is(err, KindProcessing))
	assert.False(t, Is(err, KindNotFound))
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "Failed, not an image", Processing("Failed", cause).Error())
}
