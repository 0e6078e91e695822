package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"regexp"
	"unicode/utf8"

	"github.com/franciscosanchezn/gin-phrasebook-api/internal/auth"
	"github.com/franciscosanchezn/gin-phrasebook-api/internal/models"
	"gorm.io/gorm"
)

var emailPattern = regexp.MustCompile(`^[^@]+@[^@]+\.[^@]+`)

const (
	maxEmailLength    = 120
	maxNameLength     = 120
	maxPasswordLength = 20
)

// UserInput is the body of POST and PUT /users. Nil fields were not sent.
type UserInput struct {
	Email       *string `json:"email"`
	Password    *string `json:"password"`
	Name        *string `json:"name"`
	OldPassword *string `json:"old_password"`
}

type UserService interface {
	CreateUser(ctx context.Context, input UserInput) (*models.User, error)
	Authenticate(ctx context.Context, email, password string) (*models.User, error)
	GetUserByID(ctx context.Context, id string) (*models.User, error)
	UpdateUser(ctx context.Context, id string, input UserInput) error
	DeleteUser(ctx context.Context, id string) error
}

type userService struct {
	db *gorm.DB
}

func NewUserService(db *gorm.DB) UserService {
	return &userService{db: db}
}

func (s *userService) CreateUser(ctx context.Context, input UserInput) (*models.User, error) {
	if !present(input.Email) {
		return nil, badRequest("Missing required data (email)")
	}
	email := *input.Email
	if err := validateEmail(email); err != nil {
		return nil, err
	}
	if err := s.checkEmailFree(ctx, email, ""); err != nil {
		return nil, err
	}

	password := ""
	if input.Password != nil {
		password = *input.Password
	}
	if err := validatePassword(password); err != nil {
		return nil, err
	}

	user := &models.User{Email: email}
	if input.Name != nil {
		if utf8.RuneCountInString(*input.Name) > maxNameLength {
			return nil, badRequest("Too long name")
		}
		user.Name = *input.Name
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	user.Password = hash

	if err := s.db.WithContext(ctx).Create(user).Error; err != nil {
		return nil, emailConflict(err, email, "create user")
	}
	return user, nil
}

// Authenticate returns the user owning email when password matches
func (s *userService) Authenticate(ctx context.Context, email, password string) (*models.User, error) {
	var user models.User
	err := s.db.WithContext(ctx).Where("email = ?", email).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, auth.ErrInvalidCredentials
	}
	if err != nil {
		return nil, fmt.Errorf("find user by email: %w", err)
	}

	ok, err := auth.CheckPassword(user.Password, password)
	if err != nil {
		return nil, fmt.Errorf("check password: %w", err)
	}
	if !ok {
		return nil, auth.ErrInvalidCredentials
	}
	return &user, nil
}

func (s *userService) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	var user models.User
	err := s.db.WithContext(ctx).Where("id = ?", id).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find user: %w", err)
	}
	return &user, nil
}

// UpdateUser changes email, name or password. A password change revokes
// every grant of the user.
func (s *userService) UpdateUser(ctx context.Context, id string, input UserInput) error {
	if input.Email == nil && input.Name == nil && input.Password == nil {
		return ErrNothingToUpdate
	}

	user, err := s.GetUserByID(ctx, id)
	if err != nil {
		return err
	}

	updates := map[string]interface{}{}
	if input.Email != nil {
		if err := validateEmail(*input.Email); err != nil {
			return err
		}
		if err := s.checkEmailFree(ctx, *input.Email, id); err != nil {
			return err
		}
		updates["email"] = *input.Email
		user.Email = *input.Email
	}
	if input.Name != nil {
		if utf8.RuneCountInString(*input.Name) > maxNameLength {
			return badRequest("Too long name")
		}
		updates["name"] = *input.Name
	}

	revoke := false
	if input.Password != nil {
		if err := validatePassword(*input.Password); err != nil {
			return err
		}
		if input.OldPassword == nil {
			return badRequest("Missing required data(old_password)")
		}
		ok, err := auth.CheckPassword(user.Password, *input.OldPassword)
		if err != nil {
			return fmt.Errorf("check password: %w", err)
		}
		if !ok {
			return ErrInvalidOldPassword
		}
		hash, err := auth.HashPassword(*input.Password)
		if err != nil {
			return fmt.Errorf("hash password: %w", err)
		}
		updates["password"] = hash
		revoke = true
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.User{}).Where("id = ?", id).Updates(updates).Error; err != nil {
			return emailConflict(err, user.Email, "update user")
		}
		if revoke {
			if err := tx.Where("user_id = ?", id).Delete(&models.Auth{}).Error; err != nil {
				return fmt.Errorf("revoke user auths: %w", err)
			}
		}
		return nil
	})
}

// DeleteUser removes the user with its grants, consumers and phrasebooks
func (s *userService) DeleteUser(ctx context.Context, id string) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("user_id = ?", id).Delete(&models.Auth{}).Error; err != nil {
			return fmt.Errorf("delete user auths: %w", err)
		}

		var consumerIDs []string
		if err := tx.Model(&models.Consumer{}).Where("user_id = ?", id).Pluck("id", &consumerIDs).Error; err != nil {
			return fmt.Errorf("list user consumers: %w", err)
		}
		if len(consumerIDs) > 0 {
			if err := tx.Where("consumer_id IN ?", consumerIDs).Delete(&models.Auth{}).Error; err != nil {
				return fmt.Errorf("delete consumer auths: %w", err)
			}
			if err := tx.Where("id IN ?", consumerIDs).Delete(&models.Consumer{}).Error; err != nil {
				return fmt.Errorf("delete user consumers: %w", err)
			}
		}

		var phrasebookIDs []string
		if err := tx.Model(&models.Phrasebook{}).Where("user_id = ?", id).Pluck("id", &phrasebookIDs).Error; err != nil {
			return fmt.Errorf("list user phrasebooks: %w", err)
		}
		for _, pbID := range phrasebookIDs {
			if err := deletePhrasebook(tx, pbID); err != nil {
				return err
			}
		}

		result := tx.Where("id = ?", id).Delete(&models.User{})
		if result.Error != nil {
			return fmt.Errorf("delete user: %w", result.Error)
		}
		if result.RowsAffected == 0 {
			return ErrUserNotFound
		}
		return nil
	})
}

func validateEmail(email string) error {
	if !emailPattern.MatchString(email) {
		return badRequest("Invalid email %s", email)
	}
	if utf8.RuneCountInString(email) > maxEmailLength {
		return badRequest("Too long email")
	}
	return nil
}

// checkEmailFree fails when email belongs to a user other than exceptID
func (s *userService) checkEmailFree(ctx context.Context, email, exceptID string) error {
	query := s.db.WithContext(ctx).Model(&models.User{}).Where("email = ?", email)
	if exceptID != "" {
		query = query.Where("id <> ?", exceptID)
	}
	var count int64
	if err := query.Count(&count).Error; err != nil {
		return fmt.Errorf("check email: %w", err)
	}
	if count > 0 {
		return emailExists(email)
	}
	return nil
}

func emailExists(email string) error {
	return &ServiceError{
		Status:  http.StatusBadRequest,
		Message: fmt.Sprintf("Email %s already exists", email),
		Code:    models.CodeEmailExists,
	}
}

// emailConflict reports a write that lost the users.email unique index to a
// concurrent sign-up the same way as the upfront check
func emailConflict(err error, email, op string) error {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return emailExists(email)
	}
	return fmt.Errorf("%s: %w", op, err)
}

// validatePassword bounds the length in characters and in the bytes bcrypt hashes
func validatePassword(password string) error {
	if utf8.RuneCountInString(password) > maxPasswordLength || len(password) > auth.MaxPasswordBytes {
		return badRequest("Too long password")
	}
	return nil
}
