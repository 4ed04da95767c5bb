package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// LocalStore keeps avatars in a directory that the router serves as static
// files under URLPrefix
type LocalStore struct {
	Dir       string
	URLPrefix string
}

func NewLocalStore(dir, urlPrefix string) (*LocalStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create avatar directory, %w", err)
	}

	return &LocalStore{Dir: dir, URLPrefix: strings.TrimSuffix(urlPrefix, "/")}, nil
}

func (s *LocalStore) Put(_ context.Context, name string, r io.Reader, _ string) (string, error) {
	if name != filepath.Base(name) {
		return "", fmt.Errorf("invalid avatar name %q", name)
	}

	f, err := os.CreateTemp(s.Dir, ".upload-*")
	if err != nil {
		return "", fmt.Errorf("failed to create avatar file, %w", err)
	}
	defer os.Remove(f.Name())

	if _, err := io.Copy(f, r); err != nil {
		f.Close()
		return "", fmt.Errorf("failed to write avatar, %w", err)
	}

	if err := f.Close(); err != nil {
		return "", err
	}

	// Readers never see a half written file
	if err := os.Rename(f.Name(), filepath.Join(s.Dir, name)); err != nil {
		return "", fmt.Errorf("failed to move avatar into place, %w", err)
	}

	return s.URLPrefix + "/" + name, nil
}
