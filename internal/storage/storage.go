// Package storage persists processed avatars and returns the URL they are
// served from
package storage

import (
	"context"
	"io"
)

// AvatarStore writes an avatar under name, replacing any previous file
// with the same name
type AvatarStore interface {
	Put(ctx context.Context, name string, r io.Reader, contentType string) (url string, err error)
}
