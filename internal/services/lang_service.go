package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/franciscosanchezn/gin-phrasebook-api/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type LangService interface {
	GetAllLangs(ctx context.Context) ([]models.Lang, error)
	// ResolveLang returns the key of the language whose key or codes match code
	ResolveLang(ctx context.Context, code string) (string, error)
}

type langService struct {
	db *gorm.DB
}

func NewLangService(db *gorm.DB) LangService {
	return &langService{db: db}
}

func (s *langService) GetAllLangs(ctx context.Context) ([]models.Lang, error) {
	langs := []models.Lang{}
	err := s.db.WithContext(ctx).
		Order(clause.OrderByColumn{Column: clause.Column{Name: "key"}}).
		Find(&langs).Error
	if err != nil {
		return nil, fmt.Errorf("list langs: %w", err)
	}
	return langs, nil
}

func (s *langService) ResolveLang(ctx context.Context, code string) (string, error) {
	return resolveLang(s.db.WithContext(ctx), code)
}

func resolveLang(db *gorm.DB, code string) (string, error) {
	unknown := badRequest("Unknown lang '%s'", code)
	if code == "" || strings.ContainsAny(code, " \t") {
		return "", unknown
	}

	var lang models.Lang
	err := db.Where(&models.Lang{Key: code}).First(&lang).Error
	if err == nil {
		return lang.Key, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return "", fmt.Errorf("find lang: %w", err)
	}

	// LIKE treats '_' as a wildcard, so candidates are checked again below
	var candidates []models.Lang
	if err := db.Where("codes LIKE ?", "% "+code+" %").Find(&candidates).Error; err != nil {
		return "", fmt.Errorf("find lang by code: %w", err)
	}
	for _, l := range candidates {
		if strings.Contains(l.Codes, " "+code+" ") {
			return l.Key, nil
		}
	}
	return "", unknown
}
