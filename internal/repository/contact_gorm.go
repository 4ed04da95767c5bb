package repository

import (
	"context"
	"errors"
	"fmt"

	"barylstyle/contacts-api/internal/model"

	"gorm.io/gorm"
)

type GormContactRepository struct {
	db *gorm.DB
}

func NewGormContactRepository(db *gorm.DB) *GormContactRepository {
	return &GormContactRepository{db: db}
}

func (r *GormContactRepository) List(ctx context.Context, owner string, f model.ContactFilter) ([]model.Contact, error) {
	contacts := []model.Contact{}

	q := r.db.WithContext(ctx).Where("owner = ?", owner)
	if f.Favorite != nil {
		q = q.Where("favorite = ?", *f.Favorite)
	}

	if f.Limit > 0 {
		q = q.Offset(f.Page * f.Limit).Limit(f.Limit)
	}

	if err := q.Order("created_at asc").Find(&contacts).Error; err != nil {
		return nil, err
	}

	return contacts, nil
}

func (r *GormContactRepository) Get(ctx context.Context, owner, id string) (*model.Contact, error) {
	return getContact(r.db.WithContext(ctx), owner, id)
}

func getContact(tx *gorm.DB, owner, id string) (*model.Contact, error) {
	var contact model.Contact

	err := tx.
		Where("owner = ? AND id = ?", owner, id).
		First(&contact).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}

		return nil, err
	}

	return &contact, nil
}

func (r *GormContactRepository) Create(ctx context.Context, c *model.Contact) error {
	if c.ID == "" {
		id, err := NewID()
		if err != nil {
			return fmt.Errorf("failed to generate contact ID, %w", err)
		}
		c.ID = id
	}

	return r.db.WithContext(ctx).Create(c).Error
}

func (r *GormContactRepository) Update(ctx context.Context, owner, id string, p model.ContactPatch) (*model.Contact, error) {
	var contact *model.Contact

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		c, err := getContact(tx, owner, id)
		if err != nil {
			return err
		}

		p.Apply(c)
		if err := tx.Save(c).Error; err != nil {
			return err
		}

		contact = c
		return nil
	})
	if err != nil {
		return nil, err
	}

	return contact, nil
}

func (r *GormContactRepository) SetFavorite(ctx context.Context, owner, id string, favorite bool) (*model.Contact, error) {
	res := r.db.WithContext(ctx).
		Model(&model.Contact{}).
		Where("owner = ? AND id = ?", owner, id).
		Update("favorite", favorite)
	if res.Error != nil {
		return nil, res.Error
	}

	if res.RowsAffected == 0 {
		return nil, ErrNotFound
	}

	return r.Get(ctx, owner, id)
}

func (r *GormContactRepository) Delete(ctx context.Context, owner, id string) error {
	res := r.db.WithContext(ctx).
		Where("owner = ? AND id = ?", owner, id).
		Delete(&model.Contact{})
	if res.Error != nil {
		return res.Error
	}

	if res.RowsAffected == 0 {
		return ErrNotFound
	}

	return nil
}
