package services

import (
	"context"
	"errors"
	"fmt"
	"unicode/utf8"

	"github.com/franciscosanchezn/gin-phrasebook-api/internal/models"
	"gorm.io/gorm"
)

const maxPhrasebookName = 100

// PhrasebookInput is the body of POST and PUT /phrasebooks
type PhrasebookInput struct {
	Name *string `json:"name"`
}

// PhrasebookService manages the phrasebooks of a user
type PhrasebookService interface {
	// GetAllPhrasebooks lists the phrasebooks owned by userID
	GetAllPhrasebooks(ctx context.Context, userID string) ([]models.Phrasebook, error)
	// GetPhrasebookByID returns a phrasebook owned by userID
	GetPhrasebookByID(ctx context.Context, userID, id string) (*models.Phrasebook, error)
	// GetPhrases lists the phrases linked to a phrasebook owned by userID
	GetPhrases(ctx context.Context, userID, id string) ([]models.Phrase, error)
	// CreatePhrasebook creates a phrasebook; a nil input means no body was sent
	CreatePhrasebook(ctx context.Context, userID string, input *PhrasebookInput) (*models.Phrasebook, error)
	// UpdatePhrasebook renames a phrasebook
	UpdatePhrasebook(ctx context.Context, userID, id string, input *PhrasebookInput) error
	// DeletePhrasebook deletes a phrasebook and the phrases only it linked
	DeletePhrasebook(ctx context.Context, userID, id string) error
}

type phrasebookService struct {
	db *gorm.DB
}

// NewPhrasebookService creates a new instance of PhrasebookService
func NewPhrasebookService(db *gorm.DB) PhrasebookService {
	return &phrasebookService{db: db}
}

func (s *phrasebookService) GetAllPhrasebooks(ctx context.Context, userID string) ([]models.Phrasebook, error) {
	phrasebooks := []models.Phrasebook{}
	err := s.db.WithContext(ctx).Where("user_id = ?", userID).Order("created_at").Find(&phrasebooks).Error
	if err != nil {
		return nil, fmt.Errorf("list phrasebooks: %w", err)
	}
	return phrasebooks, nil
}

func (s *phrasebookService) GetPhrasebookByID(ctx context.Context, userID, id string) (*models.Phrasebook, error) {
	id, err := ParseID(id)
	if err != nil {
		return nil, err
	}
	return findPhrasebook(s.db.WithContext(ctx), userID, id)
}

func (s *phrasebookService) GetPhrases(ctx context.Context, userID, id string) ([]models.Phrase, error) {
	pb, err := s.GetPhrasebookByID(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	phrases := []models.Phrase{}
	err = s.db.WithContext(ctx).
		Joins("JOIN phrasebook_phrases ON phrasebook_phrases.phrase_id = phrases.id").
		Where("phrasebook_phrases.phrasebook_id = ?", pb.ID).
		Order("phrasebook_phrases.created_at").
		Find(&phrases).Error
	if err != nil {
		return nil, fmt.Errorf("list phrases: %w", err)
	}
	return phrases, nil
}

func (s *phrasebookService) CreatePhrasebook(ctx context.Context, userID string, input *PhrasebookInput) (*models.Phrasebook, error) {
	name, err := validatePhrasebookName(input)
	if err != nil {
		return nil, err
	}

	pb := &models.Phrasebook{UserID: userID, Name: name}
	if err := s.db.WithContext(ctx).Create(pb).Error; err != nil {
		return nil, fmt.Errorf("create phrasebook: %w", err)
	}
	return pb, nil
}

func (s *phrasebookService) UpdatePhrasebook(ctx context.Context, userID, id string, input *PhrasebookInput) error {
	id, err := ParseID(id)
	if err != nil {
		return err
	}
	name, err := validatePhrasebookName(input)
	if err != nil {
		return err
	}

	result := s.db.WithContext(ctx).Model(&models.Phrasebook{}).
		Where("id = ? AND user_id = ?", id, userID).
		Update("name", name)
	if result.Error != nil {
		return fmt.Errorf("update phrasebook: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrPhrasebookNotFound
	}
	return nil
}

func (s *phrasebookService) DeletePhrasebook(ctx context.Context, userID, id string) error {
	id, err := ParseID(id)
	if err != nil {
		return err
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := findPhrasebook(tx, userID, id); err != nil {
			return err
		}
		return deletePhrasebook(tx, id)
	})
}

func validatePhrasebookName(input *PhrasebookInput) (string, error) {
	if input == nil || input.Name == nil {
		return "", ErrNoData
	}
	if n := utf8.RuneCountInString(*input.Name); n < 1 || n > maxPhrasebookName {
		return "", ErrNameRange
	}
	return *input.Name, nil
}

func findPhrasebook(db *gorm.DB, userID, id string) (*models.Phrasebook, error) {
	var pb models.Phrasebook
	err := db.Where("id = ? AND user_id = ?", id, userID).First(&pb).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrPhrasebookNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find phrasebook: %w", err)
	}
	return &pb, nil
}

// deletePhrasebook removes the phrasebook, its links and the phrases left
// without any link. It must run inside a transaction.
func deletePhrasebook(tx *gorm.DB, id string) error {
	var phraseIDs []string
	if err := tx.Model(&models.PhrasebookPhrase{}).Where("phrasebook_id = ?", id).Pluck("phrase_id", &phraseIDs).Error; err != nil {
		return fmt.Errorf("list phrasebook links: %w", err)
	}
	if err := tx.Where("phrasebook_id = ?", id).Delete(&models.PhrasebookPhrase{}).Error; err != nil {
		return fmt.Errorf("delete phrasebook links: %w", err)
	}
	if err := deleteOrphanPhrases(tx, phraseIDs); err != nil {
		return err
	}
	if err := tx.Where("id = ?", id).Delete(&models.Phrasebook{}).Error; err != nil {
		return fmt.Errorf("delete phrasebook: %w", err)
	}
	return nil
}

// deleteOrphanPhrases deletes those of phraseIDs no phrasebook links anymore
func deleteOrphanPhrases(tx *gorm.DB, phraseIDs []string) error {
	if len(phraseIDs) == 0 {
		return nil
	}
	linked := tx.Model(&models.PhrasebookPhrase{}).Select("phrase_id")
	err := tx.Where("id IN ?", phraseIDs).Where("id NOT IN (?)", linked).Delete(&models.Phrase{}).Error
	if err != nil {
		return fmt.Errorf("delete orphan phrases: %w", err)
	}
	return nil
}
