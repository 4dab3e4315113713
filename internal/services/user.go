package services

import (
	"context"
	"errors"
	"strings"

	"github.com/alzy/commerce-api/internal/store"
	"github.com/alzy/commerce-api/types"
)

// UserRepository defines persistence operations for users.
type UserRepository interface {
	GetByID(ctx context.Context, id int) (types.User, error)
	GetByEmail(ctx context.Context, email string) (types.User, error)
	GetByPhone(ctx context.Context, phone string) (types.User, error)
	Create(ctx context.Context, user types.User) (types.User, error)
}

// PasswordHasher hashes a plaintext password for storage.
type PasswordHasher interface {
	Hash(password string) (string, error)
}

// RegisterInput is the registration payload.
type RegisterInput struct {
	FullName        string `json:"full_name" validate:"required,max=255"`
	Email           string `json:"email" validate:"required,email,max=255"`
	Phone           string `json:"phone" validate:"required,phone"`
	Password        string `json:"password" validate:"required,password"`
	ConfirmPassword string `json:"confirm_password" validate:"required,eqfield=Password"`
}

// UserService encapsulates user use-cases.
type UserService struct {
	repo   UserRepository
	hasher PasswordHasher
	events *Events
}

func NewUserService(repo UserRepository, hasher PasswordHasher, events *Events) *UserService {
	return &UserService{repo: repo, hasher: hasher, events: events}
}

// Register validates the input, stores a new user with a hashed password and
// announces it. A taken email or phone yields ErrDuplicateIdentity.
func (s *UserService) Register(ctx context.Context, in RegisterInput) (types.User, error) {
	in.FullName = strings.TrimSpace(in.FullName)
	in.Email = strings.TrimSpace(in.Email)
	in.Phone = strings.TrimSpace(in.Phone)
	if err := validateStruct(in); err != nil {
		return types.User{}, err
	}

	_, err := s.repo.GetByEmail(ctx, in.Email)
	switch {
	case err == nil:
		return types.User{}, ErrDuplicateIdentity
	case !errors.Is(err, store.ErrNotFound):
		return types.User{}, err
	}

	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		return types.User{}, err
	}

	user, err := s.repo.Create(ctx, types.User{
		FullName:     in.FullName,
		Email:        in.Email,
		Phone:        in.Phone,
		PasswordHash: hash,
	})
	if err != nil {
		if errors.Is(err, store.ErrConflict) {
			return types.User{}, ErrDuplicateIdentity
		}
		return types.User{}, err
	}

	s.events.userRegistered(ctx, user.ID, user.Email)
	return user, nil
}

func (s *UserService) GetByID(ctx context.Context, id int) (types.User, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *UserService) GetByEmail(ctx context.Context, email string) (types.User, error) {
	return s.repo.GetByEmail(ctx, email)
}

func (s *UserService) GetByPhone(ctx context.Context, phone string) (types.User, error) {
	return s.repo.GetByPhone(ctx, phone)
}
