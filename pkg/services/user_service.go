package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/backsoul/quizconsole/pkg/models"
	"github.com/backsoul/quizconsole/pkg/store"
)

var (
	ErrEmptyUsername = errors.New("username must not be empty")
	ErrUsernameTaken = errors.New("username already exists")
	ErrWeakPassword  = errors.New("password does not meet the strength rules")
)

// UserService manages participant accounts and their scores.
type UserService struct {
	store store.Store
	auth  *AuthService
}

func NewUserService(st store.Store, auth *AuthService) *UserService {
	return &UserService{store: st, auth: auth}
}

// AddUser appends [username, password, "0%"]. A duplicate username or a
// weak password leaves the table untouched.
func (s *UserService) AddUser(ctx context.Context, username, password string) (models.User, error) {
	if strings.TrimSpace(username) == "" {
		return models.User{}, ErrEmptyUsername
	}
	unique, err := s.auth.IsUniqueUsername(ctx, username)
	if err != nil {
		return models.User{}, err
	}
	if !unique {
		return models.User{}, ErrUsernameTaken
	}
	if !IsValidPassword(password) {
		return models.User{}, ErrWeakPassword
	}

	rows, err := s.store.Load(ctx, store.TableUsers)
	if err != nil {
		return models.User{}, fmt.Errorf("error loading users: %w", err)
	}
	u := models.User{Username: username, Password: password, Score: models.InitialScore}
	rows = append(rows, u.Row())
	if err := s.store.Save(ctx, store.TableUsers, rows); err != nil {
		return models.User{}, fmt.Errorf("error saving users: %w", err)
	}

	log.Printf("✅ User %s added", username)
	return u, nil
}

// Results returns every user in table order.
func (s *UserService) Results(ctx context.Context) ([]models.User, error) {
	rows, err := s.store.Load(ctx, store.TableUsers)
	if err != nil {
		return nil, fmt.Errorf("error loading users: %w", err)
	}
	users := make([]models.User, 0, len(rows))
	for _, row := range rows {
		if len(row) == 0 {
			continue
		}
		users = append(users, models.UserFromRow(row))
	}
	return users, nil
}

// RecordScore overwrites the score of every row belonging to username.
func (s *UserService) RecordScore(ctx context.Context, username, score string) error {
	rows, err := s.store.Load(ctx, store.TableUsers)
	if err != nil {
		return fmt.Errorf("error loading users: %w", err)
	}

	matched := 0
	for i, row := range rows {
		if len(row) == 0 || row[0] != username {
			continue
		}
		u := models.UserFromRow(row)
		u.Score = score
		rows[i] = u.Row()
		matched++
	}
	if matched == 0 {
		log.Printf("⚠️ No user %s to record score %s for", username, score)
		return nil
	}

	if err := s.store.Save(ctx, store.TableUsers, rows); err != nil {
		return fmt.Errorf("error saving users: %w", err)
	}
	return nil
}
