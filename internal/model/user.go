// Package model defines database models
package model

import "time"

type Subscription string

const (
	SubscriptionStarter  Subscription = "starter"
	SubscriptionPro      Subscription = "pro"
	SubscriptionBusiness Subscription = "business"
)

func (s Subscription) Valid() bool {
	switch s {
	case SubscriptionStarter, SubscriptionPro, SubscriptionBusiness:
		return true
	}

	return false
}

// User is shared between the gorm and mongo backends, so it carries both
// sets of tags. Password and session fields are never serialized to clients.
type User struct {
	ID                string       `gorm:"primaryKey" bson:"_id" json:"-"`
	Email             string       `gorm:"uniqueIndex;not null" bson:"email" json:"email"`
	Password          string       `gorm:"not null" bson:"password" json:"-"`
	Subscription      Subscription `gorm:"default:starter;not null" bson:"subscription" json:"subscription"`
	AvatarURL         string       `bson:"avatarURL,omitempty" json:"avatarURL,omitempty"`
	Token             *string      `gorm:"index" bson:"token,omitempty" json:"-"`
	TokenExpiresAt    *time.Time   `bson:"tokenExpiresAt,omitempty" json:"-"`
	Verify            bool         `gorm:"default:false" bson:"verify" json:"-"`
	VerificationToken *string      `gorm:"uniqueIndex" bson:"verificationToken,omitempty" json:"-"`
	CreatedAt         time.Time    `bson:"createdAt" json:"-"`
	UpdatedAt         time.Time    `bson:"updatedAt" json:"-"`
}

// PublicUser is the projection of a user returned by the API
type PublicUser struct {
	Email        string       `json:"email"`
	Subscription Subscription `json:"subscription"`
	AvatarURL    string       `json:"avatarURL,omitempty"`
}

func (u *User) Public() PublicUser {
	return PublicUser{
		Email:        u.Email,
		Subscription: u.Subscription,
		AvatarURL:    u.AvatarURL,
	}
}
