package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"fire-alert-service/internal/domain/models"
	"fire-alert-service/internal/infrastructure/config"
)

const minPasswordLength = 6

// InterfaceJWTService issues and validates bearer tokens and checks credentials
type InterfaceJWTService interface {
	GenerateToken(user *models.User) (string, error)
	ExtractClaims(tokenString string) (*JWTClaims, error)
	Register(ctx context.Context, input RegisterInput) (*LoginResult, error)
	Login(ctx context.Context, identifier, password string) (*LoginResult, error)
}

// RegisterInput carries a self-service signup
type RegisterInput struct {
	Username string `json:"username" binding:"required" example:"alice"`
	Email    string `json:"email" binding:"required,email" example:"alice@example.com"`
	Password string `json:"password" binding:"required" example:"secret123"`
}

// LoginResult is returned by register and login
type LoginResult struct {
	Token string       `json:"token"`
	User  *models.User `json:"user"`
}

// JWTClaims are the claims carried by every token
type JWTClaims struct {
	UserID   uint   `json:"user_id"`
	Username string `json:"username"`
	Role     string `json:"role"`
	jwt.RegisteredClaims
}

// JWTService signs tokens with a shared HMAC secret
type JWTService struct {
	secretKey string
	issuer    string
	expiry    time.Duration
	DB        *gorm.DB
}

// NewJWTService creates the identity service
func NewJWTService(cfg *config.Config, db *gorm.DB) InterfaceJWTService {
	expiry := time.Duration(cfg.JWTExpiryHours) * time.Hour
	if expiry <= 0 {
		expiry = 24 * time.Hour
	}

	return &JWTService{
		secretKey: cfg.JWTSecretKey,
		issuer:    "fire-alert-service",
		expiry:    expiry,
		DB:        db,
	}
}

// 1 GenerateToken signs a token for user
func (s *JWTService) GenerateToken(user *models.User) (string, error) {
	now := time.Now()
	claims := &JWTClaims{
		UserID:   user.ID,
		Username: user.Username,
		Role:     user.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(s.expiry)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			Issuer:    s.issuer,
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.secretKey))
}

// 2 ExtractClaims validates the token signature and expiry and returns its claims
func (s *JWTService) ExtractClaims(tokenString string) (*JWTClaims, error) {
	claims := &JWTClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(s.secretKey), nil
	})
	if err != nil {
		return nil, err
	}
	if !token.Valid || claims.UserID == 0 {
		return nil, errors.New("invalid token claims")
	}
	return claims, nil
}

// 3 Register creates a user account and signs them in
func (s *JWTService) Register(ctx context.Context, input RegisterInput) (*LoginResult, error) {
	username := strings.TrimSpace(input.Username)
	email := strings.ToLower(strings.TrimSpace(input.Email))
	if username == "" || email == "" {
		return nil, ErrEmptyUserField
	}
	if len(input.Password) < minPasswordLength {
		return nil, ErrPasswordTooShort
	}

	var count int64
	if err := s.DB.WithContext(ctx).Model(&models.User{}).
		Where("email = ? OR username = ?", email, username).
		Count(&count).Error; err != nil {
		return nil, fmt.Errorf("%w: check user: %v", ErrStorage, err)
	}
	if count > 0 {
		return nil, ErrUserAlreadyExists
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &models.User{
		Username: username,
		Email:    email,
		Password: string(hashed),
		Role:     models.RoleUser,
	}
	if err := s.DB.WithContext(ctx).Create(user).Error; err != nil {
		return nil, fmt.Errorf("%w: create user: %v", ErrStorage, err)
	}

	token, err := s.GenerateToken(user)
	if err != nil {
		return nil, err
	}
	return &LoginResult{Token: token, User: user}, nil
}

// 4 Login accepts either the email or the username as identifier
func (s *JWTService) Login(ctx context.Context, identifier, password string) (*LoginResult, error) {
	identifier = strings.TrimSpace(identifier)

	var user models.User
	err := s.DB.WithContext(ctx).
		Where("email = ? OR username = ?", strings.ToLower(identifier), identifier).
		First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, fmt.Errorf("%w: find user: %v", ErrStorage, err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	token, err := s.GenerateToken(&user)
	if err != nil {
		return nil, err
	}
	return &LoginResult{Token: token, User: &user}, nil
}
