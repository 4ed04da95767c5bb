package model

import "time"

type Contact struct {
	ID        string    `gorm:"primaryKey" bson:"_id" json:"id"`
	Name      string    `gorm:"not null" bson:"name" json:"name"`
	Email     string    `bson:"email,omitempty" json:"email,omitempty"`
	Phone     string    `bson:"phone,omitempty" json:"phone,omitempty"`
	Favorite  bool      `gorm:"default:false" bson:"favorite" json:"favorite"`
	Owner     string    `gorm:"index;not null" bson:"owner" json:"owner"`
	CreatedAt time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time `bson:"updatedAt" json:"updatedAt"`
}

// ContactPatch holds the fields of a partial contact update. Nil fields
// are left untouched.
type ContactPatch struct {
	Name  *string
	Email *string
	Phone *string
}

func (p ContactPatch) Empty() bool {
	return p.Name == nil && p.Email == nil && p.Phone == nil
}

// Apply copies the set fields of p onto c
func (p ContactPatch) Apply(c *Contact) {
	if p.Name != nil {
		c.Name = *p.Name
	}
	if p.Email != nil {
		c.Email = *p.Email
	}
	if p.Phone != nil {
		c.Phone = *p.Phone
	}
}

// ContactFilter narrows down a contact listing. A zero Limit disables
// pagination.
type ContactFilter struct {
	Favorite *bool
	Page     int
	Limit    int
}
