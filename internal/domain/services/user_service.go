package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"fire-alert-service/internal/domain/models"
	"fire-alert-service/internal/infrastructure/config"
)

// InterfaceUserService manages user accounts
type InterfaceUserService interface {
	ListUsers(ctx context.Context) ([]models.User, error)
	GetUserByID(ctx context.Context, id uint) (*models.User, error)
	UpdateUser(ctx context.Context, id uint, input UpdateUserInput) (*models.User, error)
	DeleteUser(ctx context.Context, callerID, id uint) error
}

// UpdateUserInput holds the fields an admin may change. Nil fields are kept.
type UpdateUserInput struct {
	Username *string `json:"username,omitempty" example:"alice"`
	Email    *string `json:"email,omitempty" example:"alice@example.com"`
	Role     *string `json:"role,omitempty" example:"user"`
	Password *string `json:"password,omitempty" example:"newsecret"`
}

// UserService implements InterfaceUserService with gorm
type UserService struct {
	DB     *gorm.DB
	Config *config.Config
}

// NewUserService creates a new user service
func NewUserService(db *gorm.DB, cfg *config.Config) InterfaceUserService {
	return &UserService{
		DB:     db,
		Config: cfg,
	}
}

// 1 ListUsers returns all users, newest first
func (s *UserService) ListUsers(ctx context.Context) ([]models.User, error) {
	users := make([]models.User, 0)
	if err := s.DB.WithContext(ctx).Order("created_at DESC").Order("id DESC").Find(&users).Error; err != nil {
		return nil, fmt.Errorf("%w: list users: %v", ErrStorage, err)
	}
	return users, nil
}

// 2 GetUserByID returns ErrUserNotFound for unknown ids
func (s *UserService) GetUserByID(ctx context.Context, id uint) (*models.User, error) {
	var user models.User
	err := s.DB.WithContext(ctx).First(&user, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: get user: %v", ErrStorage, err)
	}
	return &user, nil
}

// 3 UpdateUser applies the non-nil fields of input
func (s *UserService) UpdateUser(ctx context.Context, id uint, input UpdateUserInput) (*models.User, error) {
	user, err := s.GetUserByID(ctx, id)
	if err != nil {
		return nil, err
	}

	updates := map[string]interface{}{}

	if input.Username != nil {
		username := strings.TrimSpace(*input.Username)
		if username == "" {
			return nil, ErrEmptyUserField
		}
		if username != user.Username {
			if err := s.ensureUnique(ctx, "username", username, id); err != nil {
				return nil, err
			}
			updates["username"] = username
		}
	}

	if input.Email != nil {
		email := strings.ToLower(strings.TrimSpace(*input.Email))
		if email == "" {
			return nil, ErrEmptyUserField
		}
		if email != user.Email {
			if err := s.ensureUnique(ctx, "email", email, id); err != nil {
				return nil, err
			}
			updates["email"] = email
		}
	}

	if input.Role != nil {
		if !models.ValidRole(*input.Role) {
			return nil, ErrInvalidRole
		}
		updates["role"] = *input.Role
	}

	if input.Password != nil && *input.Password != "" {
		if len(*input.Password) < minPasswordLength {
			return nil, ErrPasswordTooShort
		}
		hashed, err := bcrypt.GenerateFromPassword([]byte(*input.Password), bcrypt.DefaultCost)
		if err != nil {
			return nil, fmt.Errorf("hash password: %w", err)
		}
		updates["password"] = string(hashed)
	}

	if len(updates) == 0 {
		return user, nil
	}

	if err := s.DB.WithContext(ctx).Model(user).Updates(updates).Error; err != nil {
		return nil, fmt.Errorf("%w: update user: %v", ErrStorage, err)
	}

	return s.GetUserByID(ctx, id)
}

// 4 DeleteUser removes a user. Callers cannot delete themselves.
func (s *UserService) DeleteUser(ctx context.Context, callerID, id uint) error {
	if callerID == id {
		return ErrSelfDeleteForbidden
	}

	res := s.DB.WithContext(ctx).Delete(&models.User{}, id)
	if res.Error != nil {
		return fmt.Errorf("%w: delete user: %v", ErrStorage, res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrUserNotFound
	}
	return nil
}

func (s *UserService) ensureUnique(ctx context.Context, column, value string, exceptID uint) error {
	var count int64
	err := s.DB.WithContext(ctx).Model(&models.User{}).
		Where(column+" = ? AND id <> ?", value, exceptID).
		Count(&count).Error
	if err != nil {
		return fmt.Errorf("%w: check %s: %v", ErrStorage, column, err)
	}
	if count > 0 {
		return ErrUserAlreadyExists
	}
	return nil
}
