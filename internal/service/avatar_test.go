package service

import (
	"context"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"barylstyle/contacts-api/internal/apperr"
	"barylstyle/contacts-api/internal/model"
	"barylstyle/contacts-api/internal/repository"
	"barylstyle/contacts-api/internal/storage"

	"github.com/disintegration/imaging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writePNG(t *testing.T, dir string, w, h int) string {
	t.Helper()

	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := range w {
		img.Set(x, x%h, color.RGBA{R: 255, A: 255})
	}

	f, err := os.CreateTemp(dir, "upload-*")
	require.NoError(t, err)
	defer f.Close()

	require.NoError(t, png.Encode(f, img))
	return f.Name()
}

func newAvatarService(t *testing.T) (*AvatarService, repository.UserRepository, *model.User, string) {
	t.Helper()

	users := newUserRepo(t)
	u := &model.User{
		Email:        "ann@example.com",
		Password:     "hash",
		Subscription: model.SubscriptionStarter,
		AvatarURL:    "https://www.gravatar.com/avatar/x",
	}
	require.NoError(t, users.Create(context.Background(), u))

	dir := t.TempDir()
	store, err := storage.NewLocalStore(dir, "/avatars")
	require.NoError(t, err)

	return NewAvatarService(users, store), users, u, dir
}

func TestSetAvatar(t *testing.T) {
	s, users, u, dir := newAvatarService(t)
	upload := writePNG(t, t.TempDir(), 640, 480)

	url, err := s.SetAvatar(context.Background(), u, upload, "me.png")
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(url, "/avatars/"+u.ID+".png?v="), url)
	assert.Equal(t, url, u.AvatarURL)

	stored, err := users.FindByID(context.Background(), u.ID)
	require.NoError(t, err)
	assert.Equal(t, url, stored.AvatarURL)

	img, err := imaging.Open(filepath.Join(dir, u.ID+".png"))
	require.NoError(t, err)
	assert.Equal(t, 250, img.Bounds().Dx())
	assert.Equal(t, 250, img.Bounds().Dy())

	_, err = os.Stat(upload)
	assert.True(t, os.IsNotExist(err), "temporary upload is removed")
}

func TestSetAvatarExtension(t *testing.T) {
	s, _, u, dir := newAvatarService(t)

	_, err := s.SetAvatar(context.Background(), u, writePNG(t, t.TempDir(), 300, 300), "Holiday.JPG")
	require.NoError(t, err)
	assert.FileExists(t, filepath.Join(dir, u.ID+".jpg"))

	// Unknown extensions fall back to the sniffed format
	_, err = s.SetAvatar(context.Background(), u, writePNG(t, t.TempDir(), 300, 300), "avatar.heic")
	require.NoError(t, err)
	assert.FileExists(t, filepath.Join(dir, u.ID+".png"))
}

func TestSetAvatarNotAnImage(t *testing.T) {
	s, users, u, dir := newAvatarService(t)

	upload := filepath.Join(t.TempDir(), "notes.png")
	require.NoError(t, os.WriteFile(upload, []byte("just some text, not pixels"), 0o644))

	_, err := s.SetAvatar(context.Background(), u, upload, "notes.png")
	require.Error(t, err)
	assert.True(t, apperr.Is(err, apperr.KindProcessing))
	assert.Equal(t, 500, apperr.Status(err))

	stored, err := users.FindByID(context.Background(), u.ID)
	require.NoError(t, err)
	assert.Equal(t, "https://www.gravatar.com/avatar/x", stored.AvatarURL)
	assert.Equal(t, "https://www.gravatar.com/avatar/x", u.AvatarURL)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)

	_, err = os.Stat(upload)
	assert.True(t, os.IsNotExist(err))
}

func TestSetAvatarOversizedDimensions(t *testing.T) {
	for _, size := range []image.Point{
		{MaxAvatarDimension + 1, 1},
		{1, MaxAvatarDimension + 1},
	} {
		s, users, u, dir := newAvatarService(t)

		// Small on disk, too many pixels to decode
		upload := writePNG(t, t.TempDir(), size.X, size.Y)

		_, err := s.SetAvatar(context.Background(), u, upload, "huge.png")
		require.Error(t, err, size)
		assert.True(t, apperr.Is(err, apperr.KindProcessing), size)

		stored, err := users.FindByID(context.Background(), u.ID)
		require.NoError(t, err)
		assert.Equal(t, "https://www.gravatar.com/avatar/x", stored.AvatarURL)

		entries, err := os.ReadDir(dir)
		require.NoError(t, err)
		assert.Empty(t, entries)

		_, err = os.Stat(upload)
		assert.True(t, os.IsNotExist(err))
	}
}

func TestSetAvatarMaxDimensions(t *testing.T) {
	s, _, u, _ := newAvatarService(t)

	_, err := s.SetAvatar(context.Background(), u, writePNG(t, t.TempDir(), MaxAvatarDimension, 1), "wide.png")
	require.NoError(t, err)
}

func TestOutputFormat(t *testing.T) {
	tests := []struct {
		name, sniffed, ext string
		format             imaging.Format
	}{
		{"a.png", "png", "png", imaging.PNG},
		{"a.JPEG", "png", "jpeg", imaging.JPEG},
		{"a.gif", "gif", "gif", imaging.GIF},
		{"noext", "jpg", "jpg", imaging.JPEG},
		{"a.webp", "webp", "png", imaging.PNG},
	}

	for _, tt := range tests {
		ext, format := outputFormat(tt.name, tt.sniffed)
		assert.Equal(t, tt.ext, ext, tt.name)
		assert.Equal(t, tt.format, format, tt.name)
	}
}
