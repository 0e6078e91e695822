package services

import (
	"context"
	"errors"
	"fmt"
	"unicode/utf8"

	"github.com/franciscosanchezn/gin-phrasebook-api/internal/models"
	"gorm.io/gorm"
)

const maxPhraseText = 200

// PhraseInput is the body of POST and PUT /phrases. Nil fields were not sent.
type PhraseInput struct {
	Text1 *string `json:"text1"`
	Text2 *string `json:"text2"`
	Lang1 *string `json:"lang1"`
	Lang2 *string `json:"lang2"`
}

type PhraseService interface {
	GetPhraseByID(ctx context.Context, id string) (*models.Phrase, error)
	// CreatePhrase adds a new phrase to a phrasebook of userID
	CreatePhrase(ctx context.Context, userID, phrasebookID string, input *PhraseInput) (*models.Phrase, error)
	// CopyPhrase links an existing phrase into a phrasebook of userID
	CopyPhrase(ctx context.Context, userID, phrasebookID, phraseID string) error
	// UpdatePhrase changes the texts of a phrase as seen from one phrasebook.
	// It returns the id of the updated phrase, which differs from phraseID
	// when a shared phrase had to be copied.
	UpdatePhrase(ctx context.Context, userID, phrasebookID, phraseID string, input *PhraseInput) (string, error)
	// DeletePhrase unlinks a phrase from a phrasebook and deletes it once unlinked everywhere
	DeletePhrase(ctx context.Context, userID, phrasebookID, phraseID string) error
}

type phraseService struct {
	db *gorm.DB
}

func NewPhraseService(db *gorm.DB) PhraseService {
	return &phraseService{db: db}
}

func (s *phraseService) GetPhraseByID(ctx context.Context, id string) (*models.Phrase, error) {
	id, err := ParseID(id)
	if err != nil {
		return nil, err
	}
	return findPhrase(s.db.WithContext(ctx), id)
}

func (s *phraseService) CreatePhrase(ctx context.Context, userID, phrasebookID string, input *PhraseInput) (*models.Phrase, error) {
	phrasebookID, err := ParseID(phrasebookID)
	if err != nil {
		return nil, err
	}
	if input == nil || !present(input.Text1) || !present(input.Text2) || !present(input.Lang1) || !present(input.Lang2) {
		return nil, ErrMissingPhraseData
	}
	if err := validateTexts(input.Text1, input.Text2); err != nil {
		return nil, err
	}

	phrase := &models.Phrase{Text1: *input.Text1, Text2: *input.Text2}
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := findPhrasebook(tx, userID, phrasebookID); err != nil {
			return err
		}
		if phrase.Lang1, err = resolveLang(tx, *input.Lang1); err != nil {
			return err
		}
		if phrase.Lang2, err = resolveLang(tx, *input.Lang2); err != nil {
			return err
		}
		if err := tx.Create(phrase).Error; err != nil {
			return fmt.Errorf("create phrase: %w", err)
		}
		link := &models.PhrasebookPhrase{PhrasebookID: phrasebookID, PhraseID: phrase.ID}
		if err := tx.Create(link).Error; err != nil {
			return fmt.Errorf("link phrase: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return phrase, nil
}

func (s *phraseService) CopyPhrase(ctx context.Context, userID, phrasebookID, phraseID string) error {
	phrasebookID, phraseID, err := parseIDs(phrasebookID, phraseID)
	if err != nil {
		return err
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := findPhrasebook(tx, userID, phrasebookID); err != nil {
			return err
		}
		if _, err := findPhrase(tx, phraseID); err != nil {
			return err
		}
		if _, err := findLink(tx, phrasebookID, phraseID); err == nil {
			return ErrPhraseExists
		} else if !errors.Is(err, ErrPhraseNotFound) {
			return err
		}
		link := &models.PhrasebookPhrase{PhrasebookID: phrasebookID, PhraseID: phraseID}
		if err := tx.Create(link).Error; err != nil {
			return fmt.Errorf("link phrase: %w", err)
		}
		return nil
	})
}

func (s *phraseService) UpdatePhrase(ctx context.Context, userID, phrasebookID, phraseID string, input *PhraseInput) (string, error) {
	phrasebookID, phraseID, err := parseIDs(phrasebookID, phraseID)
	if err != nil {
		return "", err
	}
	if input == nil {
		return "", ErrNothingToUpdate
	}
	if input.Lang1 != nil || input.Lang2 != nil {
		return "", ErrLangsNotAllowed
	}
	if input.Text1 == nil && input.Text2 == nil {
		return "", ErrNothingToUpdate
	}
	if err := validateTexts(input.Text1, input.Text2); err != nil {
		return "", err
	}

	updatedID := phraseID
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := findPhrasebook(tx, userID, phrasebookID); err != nil {
			return err
		}
		link, err := findLink(tx, phrasebookID, phraseID)
		if err != nil {
			return err
		}
		phrase, err := findPhrase(tx, phraseID)
		if err != nil {
			return err
		}
		if input.Text1 != nil {
			phrase.Text1 = *input.Text1
		}
		if input.Text2 != nil {
			phrase.Text2 = *input.Text2
		}

		var links int64
		if err := tx.Model(&models.PhrasebookPhrase{}).Where("phrase_id = ?", phraseID).Count(&links).Error; err != nil {
			return fmt.Errorf("count phrase links: %w", err)
		}
		if links <= 1 {
			err := tx.Model(&models.Phrase{}).Where("id = ?", phraseID).
				Updates(map[string]interface{}{"text1": phrase.Text1, "text2": phrase.Text2}).Error
			if err != nil {
				return fmt.Errorf("update phrase: %w", err)
			}
			return nil
		}

		// shared with another phrasebook: this phrasebook gets its own copy
		copied := &models.Phrase{Text1: phrase.Text1, Text2: phrase.Text2, Lang1: phrase.Lang1, Lang2: phrase.Lang2}
		if err := tx.Create(copied).Error; err != nil {
			return fmt.Errorf("copy phrase: %w", err)
		}
		if err := tx.Model(&models.PhrasebookPhrase{}).Where("id = ?", link.ID).Update("phrase_id", copied.ID).Error; err != nil {
			return fmt.Errorf("relink phrase: %w", err)
		}
		updatedID = copied.ID
		return nil
	})
	if err != nil {
		return "", err
	}
	return updatedID, nil
}

func (s *phraseService) DeletePhrase(ctx context.Context, userID, phrasebookID, phraseID string) error {
	phrasebookID, phraseID, err := parseIDs(phrasebookID, phraseID)
	if err != nil {
		return err
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := findPhrasebook(tx, userID, phrasebookID); err != nil {
			return err
		}
		link, err := findLink(tx, phrasebookID, phraseID)
		if err != nil {
			return err
		}
		if err := tx.Delete(link).Error; err != nil {
			return fmt.Errorf("unlink phrase: %w", err)
		}
		return deleteOrphanPhrases(tx, []string{phraseID})
	})
}

func parseIDs(phrasebookID, phraseID string) (string, string, error) {
	pb, err := ParseID(phrasebookID)
	if err != nil {
		return "", "", err
	}
	ph, err := ParseID(phraseID)
	if err != nil {
		return "", "", err
	}
	return pb, ph, nil
}

func validateTexts(texts ...*string) error {
	for _, t := range texts {
		if t == nil {
			continue
		}
		if n := utf8.RuneCountInString(*t); n < 1 || n > maxPhraseText {
			return ErrTextRange
		}
	}
	return nil
}

func findPhrase(db *gorm.DB, id string) (*models.Phrase, error) {
	var phrase models.Phrase
	err := db.Where("id = ?", id).First(&phrase).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrPhraseNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find phrase: %w", err)
	}
	return &phrase, nil
}

func findLink(db *gorm.DB, phrasebookID, phraseID string) (*models.PhrasebookPhrase, error) {
	var link models.PhrasebookPhrase
	err := db.Where("phrasebook_id = ? AND phrase_id = ?", phrasebookID, phraseID).First(&link).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrPhraseNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find phrase link: %w", err)
	}
	return &link, nil
}
