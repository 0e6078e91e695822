package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Consumer is an application registered by a user. It proves its identity
// with SecretCode through the "Secret" authorization scheme.
type Consumer struct {
	ID         string    `gorm:"primaryKey;size:36" json:"id"`
	UserID     string    `gorm:"index;not null;size:36" json:"-"`
	Name       string    `gorm:"size:120" json:"name"`
	SecretCode string    `gorm:"uniqueIndex;not null" json:"secret,omitempty"`
	CreatedAt  time.Time `json:"-"`
	UpdatedAt  time.Time `json:"-"`
}

func (Consumer) TableName() string {
	return "consumers"
}

func (c *Consumer) BeforeCreate(tx *gorm.DB) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	return nil
}
