package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	internalmodels "github.com/franciscosanchezn/gin-phrasebook-api/internal/models"
	"github.com/go-oauth2/oauth2/v4"
	"github.com/go-oauth2/oauth2/v4/models"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Default lifetimes of an issued grant
const (
	DefaultAccessTTL = 24 * time.Hour
	DefaultGrantTTL  = 90 * 24 * time.Hour
)

// GormTokenStore persists grants in the auths table
type GormTokenStore struct {
	db        *gorm.DB
	generate  oauth2.AccessGenerate
	accessTTL time.Duration
	grantTTL  time.Duration
	now       func() time.Time
}

// StoreOption customizes a GormTokenStore
type StoreOption func(*GormTokenStore)

// WithClock replaces time.Now, mostly for tests
func WithClock(now func() time.Time) StoreOption {
	return func(s *GormTokenStore) { s.now = now }
}

// WithTTL sets the access token and grant lifetimes. accessTTL must be lower than grantTTL.
func WithTTL(accessTTL, grantTTL time.Duration) StoreOption {
	return func(s *GormTokenStore) {
		s.accessTTL = accessTTL
		s.grantTTL = grantTTL
	}
}

// WithAccessGenerate replaces the token generator
func WithAccessGenerate(g oauth2.AccessGenerate) StoreOption {
	return func(s *GormTokenStore) { s.generate = g }
}

func NewGormTokenStore(db *gorm.DB, opts ...StoreOption) *GormTokenStore {
	s := &GormTokenStore{
		db:        db,
		generate:  NewUUIDAccessGenerate(),
		accessTTL: DefaultAccessTTL,
		grantTTL:  DefaultGrantTTL,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Now returns the store clock in UTC
func (s *GormTokenStore) Now() time.Time {
	return s.now().UTC()
}

// GetOrCreate returns the grant of the (userID, consumerID) pair, issuing it
// when the pair has none. An existing grant is returned unchanged, even when
// its access token has already expired.
//
// Concurrent first calls for the same pair are settled by the unique
// (consumer_id, user_id) index: the losing insert is skipped and the winner's
// row is read back, so both callers get the same grant.
func (s *GormTokenStore) GetOrCreate(ctx context.Context, userID, consumerID string) (*internalmodels.Auth, error) {
	existing, err := s.findPair(ctx, userID, consumerID)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return nil, err
	}

	now := s.Now()
	access, refresh, err := s.generate.Token(ctx, &oauth2.GenerateBasic{
		Client:   &models.Client{ID: consumerID},
		UserID:   userID,
		CreateAt: now,
	}, true)
	if err != nil {
		return nil, fmt.Errorf("generate tokens: %w", err)
	}

	grant := &internalmodels.Auth{
		UserID:       userID,
		ConsumerID:   consumerID,
		AccessToken:  access,
		RefreshToken: refresh,
		ExpireDate:   now.Add(s.accessTTL),
		EndDate:      now.Add(s.grantTTL),
	}
	return s.insertOrLoad(ctx, grant)
}

// insertOrLoad inserts grant unless its pair already has one, in which case
// the stored grant is returned instead.
func (s *GormTokenStore) insertOrLoad(ctx context.Context, grant *internalmodels.Auth) (*internalmodels.Auth, error) {
	result := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "consumer_id"}, {Name: "user_id"}},
		DoNothing: true,
	}).Create(grant)
	if result.Error != nil {
		return nil, fmt.Errorf("create auth: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		logrus.WithFields(logrus.Fields{
			"user_id":     grant.UserID,
			"consumer_id": grant.ConsumerID,
		}).Debug("Concurrent grant issuance, reusing stored grant")
		return s.findPair(ctx, grant.UserID, grant.ConsumerID)
	}
	return grant, nil
}

func (s *GormTokenStore) findPair(ctx context.Context, userID, consumerID string) (*internalmodels.Auth, error) {
	var grant internalmodels.Auth
	err := s.db.WithContext(ctx).
		Where("consumer_id = ? AND user_id = ?", consumerID, userID).
		First(&grant).Error
	if err != nil {
		return nil, notFound(err, "find auth by pair")
	}
	return &grant, nil
}

func (s *GormTokenStore) GetByAccess(ctx context.Context, access string) (*internalmodels.Auth, error) {
	var grant internalmodels.Auth
	err := s.db.WithContext(ctx).Where("access_token = ?", access).First(&grant).Error
	if err != nil {
		return nil, notFound(err, "find auth by access token")
	}
	return &grant, nil
}

func (s *GormTokenStore) GetByRefresh(ctx context.Context, refresh string) (*internalmodels.Auth, error) {
	var grant internalmodels.Auth
	err := s.db.WithContext(ctx).Where("refresh_token = ?", refresh).First(&grant).Error
	if err != nil {
		return nil, notFound(err, "find auth by refresh token")
	}
	return &grant, nil
}

// Refresh mints a new access token for the grant holding refresh. The new
// expire date never passes the grant's end date.
func (s *GormTokenStore) Refresh(ctx context.Context, refresh string) (*internalmodels.Auth, error) {
	grant, err := s.GetByRefresh(ctx, refresh)
	if errors.Is(err, ErrNotFound) {
		return nil, ErrInvalidRefreshToken
	}
	if err != nil {
		return nil, err
	}

	now := s.Now()
	if grant.IsEnded(now) {
		return nil, ErrGrantEnded
	}
	if !grant.IsExpired(now) {
		return nil, ErrTokenStillValid
	}

	access, _, err := s.generate.Token(ctx, &oauth2.GenerateBasic{
		Client:   &models.Client{ID: grant.ConsumerID},
		UserID:   grant.UserID,
		CreateAt: now,
	}, false)
	if err != nil {
		return nil, fmt.Errorf("generate access token: %w", err)
	}

	expire := now.Add(s.accessTTL)
	if expire.After(grant.EndDate) {
		expire = grant.EndDate
	}

	// Only the refresh that still sees the old access token wins
	result := s.db.WithContext(ctx).Model(&internalmodels.Auth{}).
		Where("id = ? AND access_token = ?", grant.ID, grant.AccessToken).
		Updates(map[string]interface{}{"access_token": access, "expire_date": expire})
	if result.Error != nil {
		return nil, fmt.Errorf("refresh auth: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return s.GetByRefresh(ctx, refresh)
	}

	grant.AccessToken = access
	grant.ExpireDate = expire
	return grant, nil
}

// RemoveByRefresh deletes the grant holding refresh
func (s *GormTokenStore) RemoveByRefresh(ctx context.Context, refresh string) error {
	result := s.db.WithContext(ctx).Where("refresh_token = ?", refresh).Delete(&internalmodels.Auth{})
	if result.Error != nil {
		return fmt.Errorf("delete auth: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrInvalidRefreshToken
	}
	return nil
}

// RemoveByUser deletes every grant of a user
func (s *GormTokenStore) RemoveByUser(ctx context.Context, userID string) (int64, error) {
	result := s.db.WithContext(ctx).Where("user_id = ?", userID).Delete(&internalmodels.Auth{})
	if result.Error != nil {
		return 0, fmt.Errorf("delete user auths: %w", result.Error)
	}
	return result.RowsAffected, nil
}

// DeleteEnded deletes the grants whose end date has passed
func (s *GormTokenStore) DeleteEnded(ctx context.Context) (int64, error) {
	result := s.db.WithContext(ctx).Where("end_date < ?", s.Now()).Delete(&internalmodels.Auth{})
	if result.Error != nil {
		return 0, fmt.Errorf("delete ended auths: %w", result.Error)
	}
	return result.RowsAffected, nil
}

type GormConsumerStore struct {
	db *gorm.DB
}

func NewGormConsumerStore(db *gorm.DB) *GormConsumerStore {
	return &GormConsumerStore{db: db}
}

func (s *GormConsumerStore) GetBySecret(ctx context.Context, secret string) (*internalmodels.Consumer, error) {
	var consumer internalmodels.Consumer
	if err := s.db.WithContext(ctx).Where("secret_code = ?", secret).First(&consumer).Error; err != nil {
		return nil, notFound(err, "find consumer by secret")
	}
	return &consumer, nil
}

// notFound maps gorm.ErrRecordNotFound to ErrNotFound and wraps anything else
func notFound(err error, op string) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return ErrNotFound
	default:
		return fmt.Errorf("%s: %w", op, err)
	}
}
