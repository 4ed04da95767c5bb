package validators

import (
	"bytes"
	"encoding/json"
	"image"
	"image/color"
	"image/png"
	"io"
	"strings"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEmailValidator(t *testing.T) {
	assert.NoError(t, EmailValidator("user@example.com"))
	assert.ErrorIs(t, EmailValidator(""), ErrEmailEmpty)

	for _, e := range []string{"user", "user@", "@example.com", "User <user@example.com>", " user@example.com"} {
		assert.ErrorIs(t, EmailValidator(e), ErrEmailInvalid, e)
	}
}

func TestPasswordValidator(t *testing.T) {
	assert.NoError(t, PasswordValidator("secret"))
	assert.ErrorIs(t, PasswordValidator(""), ErrPasswordEmpty)
	assert.ErrorIs(t, PasswordValidator("12345"), ErrPasswordTooShort)
	assert.ErrorIs(t, PasswordValidator(strings.Repeat("a", 256)), ErrPasswordTooLong)
}

func TestImageValidator(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 4, 4))
	img.Set(1, 1, color.White)

	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))

	ext, err := ImageValidator(&buf)
	require.NoError(t, err)
	assert.Equal(t, "png", ext)

	_, err = ImageValidator(strings.NewReader("definitely not an image"))
	assert.ErrorIs(t, err, ErrNotAnImage)

	// SVG is an image type, but not one the avatar pipeline can decode
	_, err = ImageValidator(strings.NewReader(`<svg xmlns="http://www.w3.org/2000/svg"></svg>`))
	assert.ErrorIs(t, err, ErrNotAnImage)
}

type contactDTO struct {
	Name         string `binding:"required" validate:"required"`
	Email        string `validate:"omitempty,email"`
	Subscription string `validate:"omitempty,oneof=starter pro business"`
	Phone        string `validate:"omitempty,min=3"`
}

func TestDescribe(t *testing.T) {
	v := validator.New()

	tests := []struct {
		dto  contactDTO
		want string
	}{
		{contactDTO{}, `"name" is required`},
		{contactDTO{Name: "a", Email: "nope"}, `"email" must be a valid email`},
		{contactDTO{Name: "a", Subscription: "gold"}, `"subscription" must be one of [starter, pro, business]`},
		{contactDTO{Name: "a", Phone: "1"}, `"phone" length must be at least 3 characters long`},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, Describe(v.Struct(tt.dto)))
	}

	assert.Equal(t, "Request body is empty", Describe(io.EOF))

	var dst struct {
		Favorite bool `json:"favorite"`
	}
	err := json.Unmarshal([]byte(`{"favorite":"yes"}`), &dst)
	assert.Equal(t, `"favorite" has an invalid type`, Describe(err))
}
