package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// User is an end-user account. Password holds a bcrypt hash and is never serialized.
type User struct {
	ID        string    `gorm:"primaryKey;size:36" json:"id"`
	Email     string    `gorm:"uniqueIndex;not null;size:120" json:"email"`
	Name      string    `gorm:"size:120" json:"name"`
	Password  string    `gorm:"not null" json:"-"`
	CreatedAt time.Time `json:"-"`
	UpdatedAt time.Time `json:"-"`
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	return nil
}
