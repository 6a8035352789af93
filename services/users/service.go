package users

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/upb/webshop/models"
	"github.com/upb/webshop/repositories"
	"github.com/upb/webshop/services"
	"github.com/upb/webshop/services/auth"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// PasswordHasher hashes plaintext passwords for storage
type PasswordHasher interface {
	Hash(plaintext string) (string, error)
}

// CreateUserRequest is the registration payload
type CreateUserRequest struct {
	Name        string `json:"name" validate:"required,personname,max=100"`
	Surname     string `json:"surname" validate:"required,personname,max=100"`
	Birthday    string `json:"birthday" validate:"omitempty,datetime=2006-01-02"`
	Email       string `json:"email" validate:"required,email,max=255"`
	Password    string `json:"password" validate:"required,min=8,maxbytes=72"`
	Address     string `json:"address" validate:"max=255"`
	PhoneNumber string `json:"phoneNumber" validate:"omitempty,e164"`
}

// UpdateContactRequest changes the contact details of a user
type UpdateContactRequest struct {
	Address     string `json:"address" validate:"max=255"`
	PhoneNumber string `json:"phoneNumber" validate:"omitempty,e164"`
}

// Service manages user accounts. It is also the UserLookup behind authentication.
type Service struct {
	repo   repositories.UserRepository
	hasher PasswordHasher
	logger *zap.Logger
}

// NewService creates a new user service
func NewService(repo repositories.UserRepository, hasher PasswordHasher, logger *zap.Logger) *Service {
	return &Service{
		repo:   repo,
		hasher: hasher,
		logger: logger,
	}
}

var _ auth.UserLookup = (*Service)(nil)

// FindBySubject resolves the account whose e-mail is subject
func (s *Service) FindBySubject(ctx context.Context, subject string) (*auth.Account, error) {
	user, err := s.repo.GetByEmail(ctx, subject)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, auth.ErrPrincipalNotFound
		}
		return nil, err
	}

	return &auth.Account{
		Principal: auth.Principal{
			Subject: user.Email,
			Roles:   append([]string(nil), user.Roles...),
		},
		PasswordHash: user.PasswordHash,
	}, nil
}

// Register creates a customer account with the USER role
func (s *Service) Register(ctx context.Context, req CreateUserRequest) (*models.User, error) {
	return s.Create(ctx, req, models.RoleUser)
}

// Create creates an account with the given roles
func (s *Service) Create(ctx context.Context, req CreateUserRequest, roles ...string) (*models.User, error) {
	hash, err := s.hasher.Hash(req.Password)
	if err != nil {
		if errors.Is(err, bcrypt.ErrPasswordTooLong) {
			return nil, services.ErrInvalidInput.WithDetail("password", "password must be at most 72 bytes")
		}
		return nil, services.ErrInternal.Wrap(fmt.Errorf("hash password: %w", err))
	}

	user := models.NewUser(req.Name, req.Surname, req.Email, hash, roles...)
	user.Address = req.Address
	user.PhoneNumber = req.PhoneNumber
	if req.Birthday != "" {
		birthday, err := time.Parse("2006-01-02", req.Birthday)
		if err != nil {
			return nil, services.ErrInvalidInput.WithDetail("birthday", "must be YYYY-MM-DD")
		}
		user.Birthday = &birthday
	}

	if err := s.repo.Create(ctx, user); err != nil {
		if errors.Is(err, repositories.ErrDuplicate) {
			return nil, services.ErrDuplicateEmail
		}
		s.logger.Error("failed to create user", zap.String("email", req.Email), zap.Error(err))
		return nil, services.ErrDatabaseError.Wrap(err)
	}

	s.logger.Info("user created",
		zap.String("user_id", user.ID.String()),
		zap.Strings("roles", user.Roles))
	return user, nil
}

// Get retrieves a user by ID
func (s *Service) Get(ctx context.Context, id uuid.UUID) (*models.User, error) {
	user, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, mapError(err)
	}
	return user, nil
}

// GetBySubject retrieves the user behind an authenticated subject
func (s *Service) GetBySubject(ctx context.Context, subject string) (*models.User, error) {
	user, err := s.repo.GetByEmail(ctx, subject)
	if err != nil {
		return nil, mapError(err)
	}
	return user, nil
}

// List retrieves all users
func (s *Service) List(ctx context.Context) ([]*models.User, error) {
	users, err := s.repo.List(ctx)
	if err != nil {
		return nil, services.ErrDatabaseError.Wrap(err)
	}
	return users, nil
}

// UpdateContact changes the address and phone number of a user
func (s *Service) UpdateContact(ctx context.Context, id uuid.UUID, req UpdateContactRequest) (*models.User, error) {
	user, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, mapError(err)
	}

	user.Address = req.Address
	user.PhoneNumber = req.PhoneNumber
	if err := s.repo.UpdateContact(ctx, user); err != nil {
		return nil, mapError(err)
	}
	return user, nil
}

// SetRoles replaces the roles of the user with the given e-mail
func (s *Service) SetRoles(ctx context.Context, email string, roles []string) error {
	user, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		return mapError(err)
	}
	if err := s.repo.UpdateRoles(ctx, user.ID, roles); err != nil {
		return mapError(err)
	}

	s.logger.Info("user roles changed", zap.String("user_id", user.ID.String()), zap.Strings("roles", roles))
	return nil
}

// Delete deletes a user and, through the schema, their orders
func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return mapError(err)
	}

	s.logger.Info("user deleted", zap.String("user_id", id.String()))
	return nil
}

func mapError(err error) error {
	if errors.Is(err, repositories.ErrNotFound) {
		return services.ErrUserNotFound
	}
	return services.ErrDatabaseError.Wrap(err)
}
