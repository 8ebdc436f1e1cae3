package services_test

import (
	"context"
	"sync"
	"testing"

	"github.com/backsoul/quizconsole/pkg/config"
	"github.com/backsoul/quizconsole/pkg/services"
	"github.com/backsoul/quizconsole/pkg/store"
)

// countingStore wraps a MemoryStore and counts saves per table.
type countingStore struct {
	*store.MemoryStore
	mu    sync.Mutex
	saves map[string]int
	fail  map[string]error
}

func newCountingStore() *countingStore {
	return &countingStore{
		MemoryStore: store.NewMemoryStore(),
		saves:       map[string]int{},
		fail:        map[string]error{},
	}
}

func (c *countingStore) Save(ctx context.Context, name string, rows [][]string) error {
	c.mu.Lock()
	err := c.fail[name]
	c.saves[name]++
	c.mu.Unlock()
	if err != nil {
		return err
	}
	return c.MemoryStore.Save(ctx, name, rows)
}

func (c *countingStore) savesOf(name string) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.saves[name]
}

type fixture struct {
	store     *countingStore
	auth      *services.AuthService
	users     *services.UserService
	questions *services.QuestionService
	quiz      *services.QuizService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	st := newCountingStore()
	cfg := config.Config{AdminUser: "admin", AdminPassword: "admin123"}
	auth := services.NewAuthService(st, cfg)
	users := services.NewUserService(st, auth)
	questions := services.NewQuestionService(st)
	return &fixture{
		store:     st,
		auth:      auth,
		users:     users,
		questions: questions,
		quiz:      services.NewQuizService(st, questions, users),
	}
}

func (f *fixture) rows(t *testing.T, table string) [][]string {
	t.Helper()
	rows, err := f.store.Load(context.Background(), table)
	if err != nil {
		t.Fatalf("load %s: %v", table, err)
	}
	return rows
}

func (f *fixture) seed(t *testing.T, table string, rows [][]string) {
	t.Helper()
	if err := f.store.MemoryStore.Save(context.Background(), table, rows); err != nil {
		t.Fatalf("seed %s: %v", table, err)
	}
}
