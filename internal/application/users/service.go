package users

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"planner-backend/internal/domain"
	"planner-backend/internal/infrastructure/database"
	"planner-backend/internal/pkg/validation"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// Service owns the users table: registration, credential checks and lookups.
type Service struct {
	DB     *gorm.DB
	Tokens *Tokens
}

type Credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Register creates a user with a bcrypt-hashed password.
func (s *Service) Register(ctx context.Context, in Credentials) (*domain.User, error) {
	username := strings.TrimSpace(in.Username)
	if username == "" || in.Password == "" {
		return nil, ErrCredentialsRequired
	}
	if !validation.IsValidUsername(username) {
		return nil, ErrInvalidUsername
	}
	if !validation.IsValidPassword(in.Password) {
		return nil, ErrInvalidPassword
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	user := &domain.User{Username: username, PasswordHash: string(hash)}
	if err := s.DB.WithContext(ctx).Create(user).Error; err != nil {
		if database.IsUniqueViolation(err) {
			return nil, ErrUsernameTaken
		}
		return nil, err
	}
	return user, nil
}

// Login checks credentials and issues an access token for the user.
func (s *Service) Login(ctx context.Context, in Credentials) (string, *domain.User, error) {
	username := strings.TrimSpace(in.Username)
	if username == "" || in.Password == "" {
		return "", nil, ErrCredentialsRequired
	}
	var u domain.User
	if err := s.DB.WithContext(ctx).Where("username = ?", username).First(&u).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", nil, ErrInvalidCredentials
		}
		return "", nil, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(in.Password)); err != nil {
		return "", nil, ErrInvalidCredentials
	}
	token, err := s.Tokens.Issue(u.ID, u.Username)
	if err != nil {
		return "", nil, err
	}
	return token, &u, nil
}

// Me resolves a bearer token to its user. The user must still exist.
func (s *Service) Me(ctx context.Context, token string) (*domain.User, error) {
	claims, err := s.Tokens.Parse(token)
	if err != nil {
		return nil, ErrInvalidToken
	}
	u, err := s.Get(ctx, claims.UserID)
	if errors.Is(err, ErrUserNotFound) {
		return nil, ErrInvalidToken
	}
	return u, err
}

func (s *Service) Get(ctx context.Context, id uint) (*domain.User, error) {
	var u domain.User
	if err := s.DB.WithContext(ctx).First(&u, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return &u, nil
}

// List returns all users ordered by id, or the single user with the given username.
func (s *Service) List(ctx context.Context, username string) ([]domain.User, error) {
	list := make([]domain.User, 0)
	q := s.DB.WithContext(ctx).Order("id ASC")
	if username = strings.TrimSpace(username); username != "" {
		q = q.Where("username = ?", username)
	}
	if err := q.Find(&list).Error; err != nil {
		return nil, err
	}
	return list, nil
}
