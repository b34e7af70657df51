package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/blogup/blogup/internal/input"
	"github.com/blogup/blogup/internal/model"
	"github.com/blogup/blogup/internal/store"
)

var (
	ErrUserExists         = errors.New("user already exists")
	ErrInvalidCredentials = errors.New("invalid email or password")
)

type Service struct {
	users      store.UserStore
	tokens     *TokenService
	bcryptCost int
}

type Verified struct {
	UserID string
}

func NewService(users store.UserStore, tokens *TokenService, bcryptCost int) *Service {
	return &Service{
		users:      users,
		tokens:     tokens,
		bcryptCost: bcryptCost,
	}
}

// Signup creates the account and returns a token for it.
func (s *Service) Signup(ctx context.Context, in input.SignupInput) (string, model.User, error) {
	_, err := s.users.GetUserByEmail(ctx, in.Email)
	if err == nil {
		return "", model.User{}, ErrUserExists
	}
	if !errors.Is(err, store.ErrNotFound) {
		return "", model.User{}, fmt.Errorf("lookup user: %w", err)
	}

	hash, err := HashPassword(in.Password, s.bcryptCost)
	if err != nil {
		return "", model.User{}, fmt.Errorf("hash password: %w", err)
	}
	user := model.User{
		Email:        in.Email,
		Name:         in.Name,
		PasswordHash: hash,
		CreatedAt:    time.Now().UTC(),
	}
	if _, err := s.users.CreateUser(ctx, &user); err != nil {
		// Lost a race against a concurrent signup for the same email.
		if errors.Is(err, store.ErrDuplicateEmail) {
			return "", model.User{}, ErrUserExists
		}
		return "", model.User{}, fmt.Errorf("create user: %w", err)
	}

	token, err := s.tokens.Sign(user.ID)
	if err != nil {
		return "", model.User{}, err
	}
	return token, user, nil
}

// Signin checks the password against the stored hash. Unknown emails and
// wrong passwords both yield ErrInvalidCredentials.
func (s *Service) Signin(ctx context.Context, in input.SigninInput) (string, model.User, error) {
	user, err := s.users.GetUserByEmail(ctx, in.Email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return "", model.User{}, ErrInvalidCredentials
		}
		return "", model.User{}, fmt.Errorf("lookup user: %w", err)
	}
	if !CheckPassword(user.PasswordHash, in.Password) {
		return "", model.User{}, ErrInvalidCredentials
	}
	token, err := s.tokens.Sign(user.ID)
	if err != nil {
		return "", model.User{}, err
	}
	return token, user, nil
}

func (s *Service) Authenticate(bearer string) (Verified, error) {
	claims, err := s.tokens.Verify(bearer)
	if err != nil {
		return Verified{}, err
	}
	return Verified{UserID: claims.UserID}, nil
}
