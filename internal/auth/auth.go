// Package auth registers users and checks their passwords against the users
// document.
package auth

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"log/slog"

	"agenda/internal/storage"
	"agenda/internal/validation"
)

// ErrInvalidCredentials is returned when a username/password pair does not
// match a stored user.
var ErrInvalidCredentials = errors.New("invalid username or password")

// UserStore is the part of the users document auth needs.
type UserStore interface {
	Lookup(ctx context.Context, name string) (string, bool, error)
	Insert(ctx context.Context, name, credential string) error
	Update(ctx context.Context, name, credential string) error
}

type Service struct {
	users  UserStore
	params Params
	logger *slog.Logger
}

type Option func(*Service)

// WithParams overrides the argon2id cost parameters for new hashes.
func WithParams(p Params) Option {
	return func(s *Service) {
		s.params = p
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func NewService(users UserStore, opts ...Option) *Service {
	s := &Service{
		users:  users,
		params: DefaultParams,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = s.logger.With("component", "auth")
	return s
}

// Register stores a new user with a hashed password. It returns a
// *validation.Error for unacceptable input and storage.ErrAlreadyExists when
// the name is taken.
func (s *Service) Register(ctx context.Context, username, password string) error {
	if err := validation.ValidateUsername(username); err != nil {
		return err
	}
	if err := validation.ValidatePassword(password); err != nil {
		return err
	}
	hash, err := Hash(password, s.params)
	if err != nil {
		return err
	}
	if err := s.users.Insert(ctx, username, hash); err != nil {
		if errors.Is(err, storage.ErrAlreadyExists) {
			return fmt.Errorf("user %q: %w", username, err)
		}
		return err
	}
	s.logger.Info("user registered", "user", username)
	return nil
}

// Login reports whether password is the user's password. A legacy plaintext
// credential that matches is replaced by a hash before returning.
func (s *Service) Login(ctx context.Context, username, password string) (bool, error) {
	cred, ok, err := s.users.Lookup(ctx, username)
	if err != nil {
		return false, err
	}
	if !ok {
		return false, nil
	}

	if !IsHash(cred) {
		if subtle.ConstantTimeCompare([]byte(cred), []byte(password)) != 1 {
			return false, nil
		}
		if err := s.rehash(ctx, username, password); err != nil {
			return false, err
		}
		return true, nil
	}

	match, err := Verify(password, cred)
	if err != nil {
		s.logger.Error("stored hash unreadable", "user", username, "error", err)
		return false, fmt.Errorf("user %q: %w", username, err)
	}
	return match, nil
}

// Authenticate is Login folded into one error.
func (s *Service) Authenticate(ctx context.Context, username, password string) error {
	ok, err := s.Login(ctx, username, password)
	if err != nil {
		return err
	}
	if !ok {
		return ErrInvalidCredentials
	}
	return nil
}

// ChangePassword replaces the password of an authenticated user.
func (s *Service) ChangePassword(ctx context.Context, username, oldPassword, newPassword string) error {
	if err := s.Authenticate(ctx, username, oldPassword); err != nil {
		return err
	}
	if err := validation.ValidatePassword(newPassword); err != nil {
		return err
	}
	hash, err := Hash(newPassword, s.params)
	if err != nil {
		return err
	}
	return s.users.Update(ctx, username, hash)
}

func (s *Service) rehash(ctx context.Context, username, password string) error {
	hash, err := Hash(password, s.params)
	if err != nil {
		return err
	}
	if err := s.users.Update(ctx, username, hash); err != nil {
		return fmt.Errorf("upgrade stored password: %w", err)
	}
	s.logger.Info("upgraded plaintext password", "user", username)
	return nil
}
