package models

import (
	"math"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Auth is a grant pairing a user with a consumer.
// ExpireDate bounds the access token, EndDate bounds renewal of the grant.
type Auth struct {
	ID           string    `gorm:"primaryKey;size:36"`
	ConsumerID   string    `gorm:"uniqueIndex:idx_auths_consumer_user,priority:1;not null;size:36"`
	UserID       string    `gorm:"uniqueIndex:idx_auths_consumer_user,priority:2;index;not null;size:36"`
	AccessToken  string    `gorm:"uniqueIndex;not null"`
	RefreshToken string    `gorm:"uniqueIndex;not null"`
	ExpireDate   time.Time `gorm:"not null"`
	EndDate      time.Time `gorm:"not null;index"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

func (Auth) TableName() string {
	return "auths"
}

func (a *Auth) BeforeCreate(tx *gorm.DB) error {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	return nil
}

// IsExpired reports whether the access token is no longer accepted at now.
func (a *Auth) IsExpired(now time.Time) bool {
	return now.After(a.ExpireDate)
}

// IsEnded reports whether the grant can no longer be renewed at now.
func (a *Auth) IsEnded(now time.Time) bool {
	return now.After(a.EndDate)
}

// ExpiresIn returns the whole seconds left until ExpireDate. It is negative
// once the access token has expired.
func (a *Auth) ExpiresIn(now time.Time) int64 {
	return int64(math.Floor(a.ExpireDate.Sub(now).Seconds()))
}

// AuthResponse is returned when a grant is issued
type AuthResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int64  `json:"expires_in"`
}

// RefreshResponse is returned when an access token is renewed
type RefreshResponse struct {
	AccessToken string `json:"access_token"`
	ExpiresIn   int64  `json:"expires_in"`
}
