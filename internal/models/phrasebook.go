package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Phrasebook is a named collection of phrases owned by a user
type Phrasebook struct {
	ID        string    `gorm:"primaryKey;size:36" json:"id"`
	UserID    string    `gorm:"index;not null;size:36" json:"-"`
	Name      string    `gorm:"not null;size:100" json:"name"`
	CreatedAt time.Time `json:"-"`
	UpdatedAt time.Time `json:"-"`
}

func (p *Phrasebook) BeforeCreate(tx *gorm.DB) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	return nil
}

// Phrase is a text with its translation. Lang1 and Lang2 hold Lang keys.
// A phrase may be shared by several phrasebooks through PhrasebookPhrase.
type Phrase struct {
	ID        string    `gorm:"primaryKey;size:36" json:"id"`
	Text1     string    `gorm:"not null;size:200" json:"text1"`
	Text2     string    `gorm:"not null;size:200" json:"text2"`
	Lang1     string    `gorm:"not null;size:10" json:"lang1"`
	Lang2     string    `gorm:"not null;size:10" json:"lang2"`
	CreatedAt time.Time `json:"-"`
	UpdatedAt time.Time `json:"-"`
}

func (p *Phrase) BeforeCreate(tx *gorm.DB) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	return nil
}

type PhrasebookPhrase struct {
	ID           string `gorm:"primaryKey;size:36"`
	PhrasebookID string `gorm:"uniqueIndex:idx_phrasebook_phrase,priority:1;not null;size:36"`
	PhraseID     string `gorm:"uniqueIndex:idx_phrasebook_phrase,priority:2;index;not null;size:36"`
	CreatedAt    time.Time
}

func (PhrasebookPhrase) TableName() string {
	return "phrasebook_phrases"
}

func (pp *PhrasebookPhrase) BeforeCreate(tx *gorm.DB) error {
	if pp.ID == "" {
		pp.ID = uuid.NewString()
	}
	return nil
}

// Lang is a language known to the API. Codes is a space padded list of
// aliases, e.g. " en en_UK en_US English english eng ".
type Lang struct {
	Key   string `gorm:"primaryKey;size:10" json:"key"`
	Codes string `json:"codes"`
}
