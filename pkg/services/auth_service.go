package services

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/backsoul/quizconsole/pkg/config"
	"github.com/backsoul/quizconsole/pkg/models"
	"github.com/backsoul/quizconsole/pkg/store"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrInvalidAdmin  = errors.New("invalid admin credentials")
	ErrNotRegistered = errors.New("user is not registered")
	ErrWrongPassword = errors.New("wrong password")
)

// PasswordSpecials are the characters that satisfy the special-character rule.
const PasswordSpecials = "@#$%^&+=!"

const minPasswordLen = 8

// AuthService checks admin and participant credentials.
type AuthService struct {
	store         store.Store
	adminUser     string
	adminPassword string
	adminHash     []byte
}

// NewAuthService takes the admin credentials from cfg. When AdminPassHash is
// set it is used instead of the plain password.
func NewAuthService(st store.Store, cfg config.Config) *AuthService {
	s := &AuthService{
		store:         st,
		adminUser:     cfg.AdminUser,
		adminPassword: cfg.AdminPassword,
	}
	if cfg.AdminPassHash != "" {
		s.adminHash = []byte(cfg.AdminPassHash)
	}
	return s
}

// AuthenticateAdmin returns ErrInvalidAdmin unless both fields match.
func (s *AuthService) AuthenticateAdmin(username, password string) error {
	userOK := subtle.ConstantTimeCompare([]byte(username), []byte(s.adminUser)) == 1

	var passOK bool
	if s.adminHash != nil {
		passOK = bcrypt.CompareHashAndPassword(s.adminHash, []byte(password)) == nil
	} else {
		passOK = subtle.ConstantTimeCompare([]byte(password), []byte(s.adminPassword)) == 1
	}

	if !userOK || !passOK {
		return ErrInvalidAdmin
	}
	return nil
}

// IsUniqueUsername scans the users table and reports false on the first match.
func (s *AuthService) IsUniqueUsername(ctx context.Context, username string) (bool, error) {
	rows, err := s.store.Load(ctx, store.TableUsers)
	if err != nil {
		return false, fmt.Errorf("error loading users: %w", err)
	}
	for _, row := range rows {
		if len(row) > 0 && row[0] == username {
			return false, nil
		}
	}
	return true, nil
}

// Login finds the first row for username and checks its password.
func (s *AuthService) Login(ctx context.Context, username, password string) (models.User, error) {
	rows, err := s.store.Load(ctx, store.TableUsers)
	if err != nil {
		return models.User{}, fmt.Errorf("error loading users: %w", err)
	}
	for _, row := range rows {
		u := models.UserFromRow(row)
		if u.Username != username {
			continue
		}
		if u.Password != password {
			return models.User{}, ErrWrongPassword
		}
		return u, nil
	}
	return models.User{}, ErrNotRegistered
}

// IsValidPassword requires at least eight characters, an uppercase letter,
// a digit and one of PasswordSpecials.
func IsValidPassword(password string) bool {
	if utf8.RuneCountInString(password) < minPasswordLen {
		return false
	}
	var upper, digit, special bool
	for _, r := range password {
		switch {
		case r >= 'A' && r <= 'Z':
			upper = true
		case unicode.IsDigit(r):
			digit = true
		case strings.ContainsRune(PasswordSpecials, r):
			special = true
		}
	}
	return upper && digit && special
}
