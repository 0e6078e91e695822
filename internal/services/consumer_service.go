package services

import (
	"context"
	"errors"
	"fmt"
	"unicode/utf8"

	"github.com/franciscosanchezn/gin-phrasebook-api/internal/auth"
	"github.com/franciscosanchezn/gin-phrasebook-api/internal/models"
	"gorm.io/gorm"
)

// ConsumerInput is the body of POST /consumers
type ConsumerInput struct {
	Name string `json:"name"`
}

type ConsumerService interface {
	CreateConsumer(ctx context.Context, userID string, input ConsumerInput) (*models.Consumer, error)
	GetConsumersByUserID(ctx context.Context, userID string) ([]models.Consumer, error)
	GetConsumerByID(ctx context.Context, userID, id string) (*models.Consumer, error)
	DeleteConsumer(ctx context.Context, userID, id string) error
}

type consumerService struct {
	db *gorm.DB
}

func NewConsumerService(db *gorm.DB) ConsumerService {
	return &consumerService{db: db}
}

func (s *consumerService) CreateConsumer(ctx context.Context, userID string, input ConsumerInput) (*models.Consumer, error) {
	if utf8.RuneCountInString(input.Name) > maxNameLength {
		return nil, badRequest("Too long name")
	}

	secret, err := auth.GenerateToken(auth.SecretCodeUnits)
	if err != nil {
		return nil, fmt.Errorf("generate secret: %w", err)
	}

	consumer := &models.Consumer{UserID: userID, Name: input.Name, SecretCode: secret}
	if err := s.db.WithContext(ctx).Create(consumer).Error; err != nil {
		return nil, fmt.Errorf("create consumer: %w", err)
	}
	return consumer, nil
}

// GetConsumersByUserID lists consumers without their secrets
func (s *consumerService) GetConsumersByUserID(ctx context.Context, userID string) ([]models.Consumer, error) {
	consumers := []models.Consumer{}
	err := s.db.WithContext(ctx).Select("id", "name").
		Where("user_id = ?", userID).Order("created_at").Find(&consumers).Error
	if err != nil {
		return nil, fmt.Errorf("list consumers: %w", err)
	}
	return consumers, nil
}

func (s *consumerService) GetConsumerByID(ctx context.Context, userID, id string) (*models.Consumer, error) {
	id, err := ParseID(id)
	if err != nil {
		return nil, err
	}

	var consumer models.Consumer
	err = s.db.WithContext(ctx).Where("id = ? AND user_id = ?", id, userID).First(&consumer).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrConsumerNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find consumer: %w", err)
	}
	return &consumer, nil
}

// DeleteConsumer removes the consumer and every grant issued to it
func (s *consumerService) DeleteConsumer(ctx context.Context, userID, id string) error {
	id, err := ParseID(id)
	if err != nil {
		return err
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Where("id = ? AND user_id = ?", id, userID).Delete(&models.Consumer{})
		if result.Error != nil {
			return fmt.Errorf("delete consumer: %w", result.Error)
		}
		if result.RowsAffected == 0 {
			return ErrConsumerNotFound
		}
		if err := tx.Where("consumer_id = ?", id).Delete(&models.Auth{}).Error; err != nil {
			return fmt.Errorf("delete consumer auths: %w", err)
		}
		return nil
	})
}
