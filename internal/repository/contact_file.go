package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"sync"
	"time"

	"barylstyle/contacts-api/internal/model"
)

// FileContactRepository keeps all contacts in a single JSON file. Every
// operation holds mu for its whole read-modify-write cycle and writes go
// through a temporary file + rename, so concurrent requests can't drop
// each other's updates or leave a torn file behind.
type FileContactRepository struct {
	mu   sync.Mutex
	path string
}

func NewFileContactRepository(path string) (*FileContactRepository, error) {
	r := &FileContactRepository{path: path}

	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("failed to create contacts directory, %w", err)
		}

		if err := r.save([]model.Contact{}); err != nil {
			return nil, fmt.Errorf("failed to initialize contacts file, %w", err)
		}
	}

	return r, nil
}

func (r *FileContactRepository) load() ([]model.Contact, error) {
	data, err := os.ReadFile(r.path)
	if err != nil {
		return nil, fmt.Errorf("failed to read contacts file, %w", err)
	}

	contacts := []model.Contact{}
	if len(data) == 0 {
		return contacts, nil
	}

	if err := json.Unmarshal(data, &contacts); err != nil {
		return nil, fmt.Errorf("failed to decode contacts file, %w", err)
	}

	return contacts, nil
}

func (r *FileContactRepository) save(contacts []model.Contact) error {
	data, err := json.MarshalIndent(contacts, "", "  ")
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(filepath.Dir(r.path), ".contacts-*.json")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}

	if err := tmp.Close(); err != nil {
		return err
	}

	return os.Rename(tmp.Name(), r.path)
}

func indexOf(contacts []model.Contact, owner, id string) int {
	return slices.IndexFunc(contacts, func(c model.Contact) bool {
		return c.ID == id && c.Owner == owner
	})
}

func (r *FileContactRepository) List(_ context.Context, owner string, f model.ContactFilter) ([]model.Contact, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	all, err := r.load()
	if err != nil {
		return nil, err
	}

	contacts := []model.Contact{}
	for _, c := range all {
		if c.Owner != owner {
			continue
		}
		if f.Favorite != nil && c.Favorite != *f.Favorite {
			continue
		}

		contacts = append(contacts, c)
	}

	if f.Limit > 0 {
		start := min(f.Page*f.Limit, len(contacts))
		end := min(start+f.Limit, len(contacts))
		contacts = contacts[start:end]
	}

	return contacts, nil
}

func (r *FileContactRepository) Get(_ context.Context, owner, id string) (*model.Contact, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	contacts, err := r.load()
	if err != nil {
		return nil, err
	}

	i := indexOf(contacts, owner, id)
	if i < 0 {
		return nil, ErrNotFound
	}

	return &contacts[i], nil
}

func (r *FileContactRepository) Create(_ context.Context, c *model.Contact) error {
	if c.ID == "" {
		id, err := NewID()
		if err != nil {
			return fmt.Errorf("failed to generate contact ID, %w", err)
		}
		c.ID = id
	}

	now := time.Now().UTC()
	c.CreatedAt = now
	c.UpdatedAt = now

	r.mu.Lock()
	defer r.mu.Unlock()

	contacts, err := r.load()
	if err != nil {
		return err
	}

	return r.save(append(contacts, *c))
}

func (r *FileContactRepository) modify(owner, id string, fn func(c *model.Contact)) (*model.Contact, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	contacts, err := r.load()
	if err != nil {
		return nil, err
	}

	i := indexOf(contacts, owner, id)
	if i < 0 {
		return nil, ErrNotFound
	}

	fn(&contacts[i])
	contacts[i].UpdatedAt = time.Now().UTC()

	if err := r.save(contacts); err != nil {
		return nil, err
	}

	updated := contacts[i]
	return &updated, nil
}

func (r *FileContactRepository) Update(_ context.Context, owner, id string, p model.ContactPatch) (*model.Contact, error) {
	return r.modify(owner, id, p.Apply)
}

func (r *FileContactRepository) SetFavorite(_ context.Context, owner, id string, favorite bool) (*model.Contact, error) {
	return r.modify(owner, id, func(c *model.Contact) { c.Favorite = favorite })
}

func (r *FileContactRepository) Delete(_ context.Context, owner, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	contacts, err := r.load()
	if err != nil {
		return err
	}

	i := indexOf(contacts, owner, id)
	if i < 0 {
		return ErrNotFound
	}

	return r.save(slices.Delete(contacts, i, i+1))
}
