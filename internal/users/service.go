package users

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"
)

type Service struct {
	Store Store
	Log   zerolog.Logger
}

func NewService(store Store, log zerolog.Logger) *Service {
	return &Service{Store: store, Log: log}
}

// Signup registers a customer account. The display name falls back to the
// local part of the email when omitted.
func (s *Service) Signup(ctx context.Context, email, password, name string) (*User, error) {
	if email == "" || password == "" {
		return nil, ErrMissingFields
	}
	if name == "" {
		name = strings.SplitN(email, "@", 2)[0]
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	u := &User{
		ID:           uuid.NewString(),
		Email:        email,
		Name:         name,
		PasswordHash: string(hash),
		Role:         RoleCustomer,
		CreatedAt:    time.Now().UTC(),
	}
	if err := s.Store.Insert(ctx, u); err != nil {
		return nil, err
	}
	s.Log.Info().Str("email", email).Msg("user signed up")
	return u, nil
}

func (s *Service) Login(ctx context.Context, email, password string) (*User, error) {
	if email == "" || password == "" {
		return nil, ErrMissingFields
	}
	u, err := s.Store.GetByEmail(ctx, email)
	if errors.Is(err, ErrNotFound) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}
	if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) != nil {
		return nil, ErrInvalidCredentials
	}
	return u, nil
}

func (s *Service) GetByID(ctx context.Context, id string) (*User, error) {
	return s.Store.GetByID(ctx, id)
}

// SeedAdmin creates the default admin account if it is missing.
func (s *Service) SeedAdmin(ctx context.Context, email, password string) error {
	if _, err := s.Store.GetByEmail(ctx, email); err == nil {
		return nil
	} else if !errors.Is(err, ErrNotFound) {
		return err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	u := &User{
		ID:           uuid.NewString(),
		Email:        email,
		Name:         "Admin",
		PasswordHash: string(hash),
		Role:         RoleAdmin,
		CreatedAt:    time.Now().UTC(),
	}
	if err := s.Store.Insert(ctx, u); err != nil {
		return err
	}
	s.Log.Info().Str("email", email).Msg("admin account created")
	return nil
}
