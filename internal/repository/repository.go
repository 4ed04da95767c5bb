// Package repository contains the persistence layer. Each interface has a
// gorm (sqlite/postgres) and a mongo implementation; contacts additionally
// have a JSON file backed implementation.
package repository

import (
	"context"
	"errors"
	"time"

	"barylstyle/contacts-api/internal/model"

	gonanoid "github.com/matoous/go-nanoid/v2"
)

var (
	ErrNotFound  = errors.New("record not found")
	ErrDuplicate = errors.New("duplicate record")
)

type UserRepository interface {
	Create(ctx context.Context, u *model.User) error
	FindByID(ctx context.Context, id string) (*model.User, error)
	FindByEmail(ctx context.Context, email string) (*model.User, error)
	FindByVerificationToken(ctx context.Context, token string) (*model.User, error)
	// SetToken stores the current session token of a user. A nil token
	// clears it.
	SetToken(ctx context.Context, id string, token *string, expiresAt *time.Time) error
	SetAvatarURL(ctx context.Context, id, url string) error
	SetSubscription(ctx context.Context, id string, s model.Subscription) error
	// MarkVerified sets the verify flag and drops the verification token
	MarkVerified(ctx context.Context, id string) error
	// ClearExpiredTokens clears session tokens that expired before now and
	// returns how many users were affected
	ClearExpiredTokens(ctx context.Context, now time.Time) (int64, error)
}

// ContactRepository operations are always scoped by the owner's user ID.
// A contact owned by somebody else is reported as ErrNotFound.
type ContactRepository interface {
	List(ctx context.Context, owner string, f model.ContactFilter) ([]model.Contact, error)
	Get(ctx context.Context, owner, id string) (*model.Contact, error)
	Create(ctx context.Context, c *model.Contact) error
	Update(ctx context.Context, owner, id string, p model.ContactPatch) (*model.Contact, error)
	SetFavorite(ctx context.Context, owner, id string, favorite bool) (*model.Contact, error)
	Delete(ctx context.Context, owner, id string) error
}

const idCharset = "0123456789abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ"

// NewID generates a random record ID
func NewID() (string, error) {
	return gonanoid.Generate(idCharset, 21)
}
