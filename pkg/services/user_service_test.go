package services_test

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"github.com/backsoul/quizconsole/pkg/services"
	"github.com/backsoul/quizconsole/pkg/store"
)

func TestAddUserIntoEmptyTable(t *testing.T) {
	f := newFixture(t)

	u, err := f.users.AddUser(context.Background(), "alice", "Abcd123!")
	if err != nil {
		t.Fatalf("add user: %v", err)
	}
	if u.Score != "0%" {
		t.Fatalf("new user score = %q", u.Score)
	}
	want := [][]string{{"alice", "Abcd123!", "0%"}}
	if got := f.rows(t, store.TableUsers); !reflect.DeepEqual(got, want) {
		t.Fatalf("users = %#v, want %#v", got, want)
	}
}

func TestAddUserDuplicateIsNoOp(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	if _, err := f.users.AddUser(ctx, "alice", "Abcd123!"); err != nil {
		t.Fatal(err)
	}
	before := f.rows(t, store.TableUsers)
	saves := f.store.savesOf(store.TableUsers)

	_, err := f.users.AddUser(ctx, "alice", "Zyxw987#")
	if !errors.Is(err, services.ErrUsernameTaken) {
		t.Fatalf("expected ErrUsernameTaken, got %v", err)
	}
	if f.store.savesOf(store.TableUsers) != saves {
		t.Fatalf("duplicate user triggered a save")
	}
	if got := f.rows(t, store.TableUsers); !reflect.DeepEqual(got, before) {
		t.Fatalf("users changed: %#v", got)
	}
}

func TestAddUserRejectsWeakPassword(t *testing.T) {
	f := newFixture(t)
	for _, pw := range []string{"short1!", "alllower1!", "NoDigits!!", "NoSpecial12"} {
		_, err := f.users.AddUser(context.Background(), "bob", pw)
		if !errors.Is(err, services.ErrWeakPassword) {
			t.Fatalf("%q: expected ErrWeakPassword, got %v", pw, err)
		}
	}
	if f.store.savesOf(store.TableUsers) != 0 {
		t.Fatalf("weak password triggered a save")
	}
}

func TestAddUserChecksUniquenessFirst(t *testing.T) {
	f := newFixture(t)
	f.seed(t, store.TableUsers, [][]string{{"alice", "Abcd123!", "0%"}})
	if _, err := f.users.AddUser(context.Background(), "alice", "weak"); !errors.Is(err, services.ErrUsernameTaken) {
		t.Fatalf("expected ErrUsernameTaken before password check, got %v", err)
	}
}

func TestAddUserRejectsEmptyName(t *testing.T) {
	f := newFixture(t)
	if _, err := f.users.AddUser(context.Background(), "  ", "Abcd123!"); !errors.Is(err, services.ErrEmptyUsername) {
		t.Fatalf("expected ErrEmptyUsername, got %v", err)
	}
}

func TestAddUserSaveFailure(t *testing.T) {
	f := newFixture(t)
	f.store.fail[store.TableUsers] = errors.New("disk full")
	if _, err := f.users.AddUser(context.Background(), "alice", "Abcd123!"); err == nil {
		t.Fatalf("expected save error")
	}
}

func TestResultsAndRecordScore(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.seed(t, store.TableUsers, [][]string{
		{"alice", "a", "0%"},
		{"bob", "b", "0%"},
		{"alice", "c", "0%"},
	})

	if err := f.users.RecordScore(ctx, "alice", "75%"); err != nil {
		t.Fatalf("record: %v", err)
	}
	users, err := f.users.Results(ctx)
	if err != nil {
		t.Fatalf("results: %v", err)
	}
	got := map[string][]string{}
	for _, u := range users {
		got[u.Username] = append(got[u.Username], u.Score)
	}
	if !reflect.DeepEqual(got["alice"], []string{"75%", "75%"}) || !reflect.DeepEqual(got["bob"], []string{"0%"}) {
		t.Fatalf("scores = %v", got)
	}
	if users[0].Username != "alice" || users[1].Username != "bob" {
		t.Fatalf("results out of table order: %+v", users)
	}
}

func TestRecordScoreUnknownUser(t *testing.T) {
	f := newFixture(t)
	f.seed(t, store.TableUsers, [][]string{{"bob", "b", "0%"}})
	if err := f.users.RecordScore(context.Background(), "ghost", "100%"); err != nil {
		t.Fatalf("unknown user: %v", err)
	}
	if f.store.savesOf(store.TableUsers) != 0 {
		t.Fatalf("nothing to update should not save")
	}
}
