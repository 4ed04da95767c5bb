package service

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"io"
	"mime"
	"os"
	"path/filepath"
	"strings"
	"time"

	"barylstyle/contacts-api/internal/apperr"
	"barylstyle/contacts-api/internal/model"
	"barylstyle/contacts-api/internal/repository"
	"barylstyle/contacts-api/internal/storage"
	"barylstyle/contacts-api/pkg/validators"

	"github.com/disintegration/imaging"
	"go.uber.org/zap"
)

const (
	AvatarSize = 250

	// Uploads are rejected before decoding when either side is larger
	MaxAvatarDimension = 4096
)

type AvatarService struct {
	users repository.UserRepository
	store storage.AvatarStore
}

func NewAvatarService(users repository.UserRepository, store storage.AvatarStore) *AvatarService {
	return &AvatarService{users: users, store: store}
}

// SetAvatar turns the upload at tempPath into the user's avatar and returns
// the new avatar URL. The temporary upload is always removed and the user is
// left untouched when the file can't be processed.
func (s *AvatarService) SetAvatar(ctx context.Context, user *model.User, tempPath, originalName string) (string, error) {
	defer func() {
		if err := os.Remove(tempPath); err != nil && !os.IsNotExist(err) {
			zap.L().Warn("Failed to remove temporary upload", zap.String("path", tempPath), zap.Error(err))
		}
	}()

	f, err := os.Open(tempPath)
	if err != nil {
		return "", fmt.Errorf("failed to open upload, %w", err)
	}
	defer f.Close()

	sniffed, err := validators.ImageValidator(f)
	if err != nil {
		return "", apperr.Processing("Failed to process avatar", err)
	}

	if _, err := f.Seek(0, io.SeekStart); err != nil {
		return "", fmt.Errorf("failed to rewind upload, %w", err)
	}

	header, _, err := image.DecodeConfig(f)
	if err != nil {
		return "", apperr.Processing("Failed to process avatar", err)
	}

	if header.Width > MaxAvatarDimension || header.Height > MaxAvatarDimension {
		return "", apperr.Processing("Failed to process avatar",
			fmt.Errorf("image is %dx%d, max is %dx%d", header.Width, header.Height, MaxAvatarDimension, MaxAvatarDimension))
	}

	if _, err := f.Seek(0, io.SeekStart); err != nil {
		return "", fmt.Errorf("failed to rewind upload, %w", err)
	}

	img, err := imaging.Decode(f, imaging.AutoOrientation(true))
	if err != nil {
		return "", apperr.Processing("Failed to process avatar", err)
	}

	resized := imaging.Resize(img, AvatarSize, AvatarSize, imaging.Lanczos)

	ext, format := outputFormat(originalName, sniffed)

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, resized, format); err != nil {
		return "", apperr.Processing("Failed to process avatar", err)
	}

	url, err := s.store.Put(ctx, user.ID+"."+ext, &buf, mime.TypeByExtension("."+ext))
	if err != nil {
		return "", fmt.Errorf("failed to store avatar, %w", err)
	}

	avatarURL := fmt.Sprintf("%s?v=%d", url, time.Now().Unix())

	if err := s.users.SetAvatarURL(ctx, user.ID, avatarURL); err != nil {
		return "", fmt.Errorf("failed to update avatar URL, %w", err)
	}

	user.AvatarURL = avatarURL
	return avatarURL, nil
}

// outputFormat picks the extension of the original file name, then the
// sniffed one, and re-encodes as PNG when neither can be written
func outputFormat(originalName, sniffed string) (string, imaging.Format) {
	for _, ext := range []string{
		strings.ToLower(strings.TrimPrefix(filepath.Ext(originalName), ".")),
		sniffed,
	} {
		if ext == "" {
			continue
		}

		if format, err := imaging.FormatFromExtension(ext); err == nil {
			return ext, format
		}
	}

	return "png", imaging.PNG
}
