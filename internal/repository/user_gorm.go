package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"barylstyle/contacts-api/internal/model"

	"gorm.io/gorm"
)

type GormUserRepository struct {
	db *gorm.DB
}

func NewGormUserRepository(db *gorm.DB) *GormUserRepository {
	return &GormUserRepository{db: db}
}

func (r *GormUserRepository) Create(ctx context.Context, u *model.User) error {
	if u.ID == "" {
		id, err := NewID()
		if err != nil {
			return fmt.Errorf("failed to generate user ID, %w", err)
		}
		u.ID = id
	}

	if err := r.db.WithContext(ctx).Create(u).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return ErrDuplicate
		}

		return err
	}

	return nil
}

func (r *GormUserRepository) FindByID(ctx context.Context, id string) (*model.User, error) {
	return r.findBy(ctx, "id = ?", id)
}

func (r *GormUserRepository) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	return r.findBy(ctx, "email = ?", email)
}

func (r *GormUserRepository) FindByVerificationToken(ctx context.Context, token string) (*model.User, error) {
	return r.findBy(ctx, "verification_token = ?", token)
}

func (r *GormUserRepository) findBy(ctx context.Context, query string, arg any) (*model.User, error) {
	var user model.User

	err := r.db.WithContext(ctx).
		Where(query, arg).
		First(&user).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}

		return nil, err
	}

	return &user, nil
}

func (r *GormUserRepository) SetToken(ctx context.Context, id string, token *string, expiresAt *time.Time) error {
	return r.update(ctx, id, map[string]any{
		"token":            token,
		"token_expires_at": expiresAt,
	})
}

func (r *GormUserRepository) SetAvatarURL(ctx context.Context, id, url string) error {
	return r.update(ctx, id, map[string]any{"avatar_url": url})
}

func (r *GormUserRepository) SetSubscription(ctx context.Context, id string, s model.Subscription) error {
	return r.update(ctx, id, map[string]any{"subscription": s})
}

func (r *GormUserRepository) MarkVerified(ctx context.Context, id string) error {
	return r.update(ctx, id, map[string]any{
		"verify":             true,
		"verification_token": nil,
	})
}

func (r *GormUserRepository) update(ctx context.Context, id string, values map[string]any) error {
	res := r.db.WithContext(ctx).
		Model(&model.User{}).
		Where("id = ?", id).
		Updates(values)
	if res.Error != nil {
		return res.Error
	}

	if res.RowsAffected == 0 {
		return ErrNotFound
	}

	return nil
}

func (r *GormUserRepository) ClearExpiredTokens(ctx context.Context, now time.Time) (int64, error) {
	res := r.db.WithContext(ctx).
		Model(&model.User{}).
		Where("token IS NOT NULL AND token_expires_at < ?", now).
		Updates(map[string]any{
			"token":            nil,
			"token_expires_at": nil,
		})

	return res.RowsAffected, res.Error
}
