package handlers_test

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/backsoul/quizconsole/pkg/config"
	"github.com/backsoul/quizconsole/pkg/handlers"
	"github.com/backsoul/quizconsole/pkg/models"
	"github.com/backsoul/quizconsole/pkg/services"
	"github.com/backsoul/quizconsole/pkg/store"
	"github.com/valyala/fasthttp"
)

type brokenStore struct{}

func (brokenStore) Load(context.Context, string) ([][]string, error) {
	return nil, errors.New("connection refused")
}

func (brokenStore) Save(context.Context, string, [][]string) error {
	return errors.New("connection refused")
}

// pingStore reads fine but fails its ping, like a Redis that went away.
type pingStore struct{ *store.MemoryStore }

func (pingStore) HealthCheck(context.Context) error { return errors.New("redis health check failed") }

// listingStore also reports which tables it holds.
type listingStore struct{ *store.MemoryStore }

func (listingStore) HealthCheck(context.Context) error { return nil }

func (listingStore) Tables(context.Context) ([]string, error) {
	return []string{"attempts", "users"}, nil
}

func newHandler(t *testing.T, st store.Store) *handlers.ResultsHandler {
	t.Helper()
	auth := services.NewAuthService(st, config.Config{AdminUser: "admin", AdminPassword: "admin123"})
	users := services.NewUserService(st, auth)
	questions := services.NewQuestionService(st)
	quiz := services.NewQuizService(st, questions, users)
	return handlers.NewResultsHandler(st, users, quiz)
}

func call(uri string, handle fasthttp.RequestHandler) *fasthttp.RequestCtx {
	var ctx fasthttp.RequestCtx
	ctx.Request.SetRequestURI(uri)
	handle(&ctx)
	return &ctx
}

func decode(t *testing.T, ctx *fasthttp.RequestCtx, data interface{}) models.APIResponse {
	t.Helper()
	resp := models.APIResponse{Data: data}
	if err := json.Unmarshal(ctx.Response.Body(), &resp); err != nil {
		t.Fatalf("decode %s: %v", ctx.Response.Body(), err)
	}
	return resp
}

func TestGetResultsOmitsPasswords(t *testing.T) {
	st := store.NewMemoryStore()
	_ = st.Save(context.Background(), store.TableUsers, [][]string{
		{"alice", "Abcd123!", "50%"},
		{"bob", "Secret99#", "0%"},
	})
	h := newHandler(t, st)

	ctx := call("/api/results", h.GetResults)
	if ctx.Response.StatusCode() != fasthttp.StatusOK {
		t.Fatalf("status = %d", ctx.Response.StatusCode())
	}
	body := string(ctx.Response.Body())
	if strings.Contains(body, "Abcd123!") || strings.Contains(body, "Secret99#") {
		t.Fatalf("passwords leaked: %s", body)
	}

	var data models.ResultsResponse
	resp := decode(t, ctx, &data)
	if !resp.Success || data.Count != 2 || data.Results[0].Username != "alice" || data.Results[0].Score != "50%" {
		t.Fatalf("response = %+v %+v", resp, data)
	}
}

func TestGetAttempts(t *testing.T) {
	st := store.NewMemoryStore()
	_ = st.Save(context.Background(), store.TableAttempts, [][]string{
		{"id-1", "alice", "1", "2", "50%", "2026-10-19T08:00:00Z"},
		{"id-2", "bob", "2", "2", "100%", "2026-10-19T08:05:00Z"},
	})
	h := newHandler(t, st)

	var all models.AttemptsResponse
	decode(t, call("/api/attempts", h.GetAttempts), &all)
	if all.Count != 2 {
		t.Fatalf("all attempts = %+v", all)
	}

	var bobs models.AttemptsResponse
	decode(t, call("/api/attempts?username=bob", h.GetAttempts), &bobs)
	if bobs.Count != 1 || bobs.Attempts[0].ID != "id-2" {
		t.Fatalf("bob attempts = %+v", bobs)
	}

	var none models.AttemptsResponse
	ctx := call("/api/attempts?username=zoe", h.GetAttempts)
	decode(t, ctx, &none)
	if none.Count != 0 || none.Attempts == nil {
		t.Fatalf("zoe attempts = %+v (%s)", none, ctx.Response.Body())
	}
}

func TestHealthCheck(t *testing.T) {
	ok := call("/api/health", newHandler(t, store.NewMemoryStore()).HealthCheck)
	if ok.Response.StatusCode() != fasthttp.StatusOK {
		t.Fatalf("healthy store status = %d", ok.Response.StatusCode())
	}

	bad := call("/api/health", newHandler(t, brokenStore{}).HealthCheck)
	if bad.Response.StatusCode() != fasthttp.StatusServiceUnavailable {
		t.Fatalf("broken store status = %d", bad.Response.StatusCode())
	}
	resp := decode(t, bad, nil)
	if resp.Success || !strings.Contains(resp.Error, "connection refused") {
		t.Fatalf("response = %+v", resp)
	}
}

func TestHealthCheckPingsBackend(t *testing.T) {
	ctx := call("/api/health", newHandler(t, pingStore{store.NewMemoryStore()}).HealthCheck)
	if ctx.Response.StatusCode() != fasthttp.StatusServiceUnavailable {
		t.Fatalf("status = %d", ctx.Response.StatusCode())
	}
	if resp := decode(t, ctx, nil); !strings.Contains(resp.Error, "redis health check failed") {
		t.Fatalf("error = %q", resp.Error)
	}
}

func TestHealthCheckListsTables(t *testing.T) {
	ctx := call("/api/health", newHandler(t, listingStore{store.NewMemoryStore()}).HealthCheck)
	if ctx.Response.StatusCode() != fasthttp.StatusOK {
		t.Fatalf("status = %d", ctx.Response.StatusCode())
	}
	var data struct {
		Status string   `json:"status"`
		Tables []string `json:"tables"`
	}
	decode(t, ctx, &data)
	if data.Status != "healthy" || len(data.Tables) != 2 || data.Tables[1] != "users" {
		t.Fatalf("health = %+v", data)
	}

	plain := call("/api/health", newHandler(t, store.NewMemoryStore()).HealthCheck)
	if strings.Contains(string(plain.Response.Body()), "tables") {
		t.Fatalf("memory store reported tables: %s", plain.Response.Body())
	}
}

func TestResultsStoreFailure(t *testing.T) {
	ctx := call("/api/results", newHandler(t, brokenStore{}).GetResults)
	if ctx.Response.StatusCode() != fasthttp.StatusInternalServerError {
		t.Fatalf("status = %d", ctx.Response.StatusCode())
	}
}

func TestNotFound(t *testing.T) {
	ctx := call("/nope", handlers.NotFound)
	if ctx.Response.StatusCode() != fasthttp.StatusNotFound {
		t.Fatalf("status = %d", ctx.Response.StatusCode())
	}
	if resp := decode(t, ctx, nil); !strings.Contains(resp.Error, "/nope") {
		t.Fatalf("error = %q", resp.Error)
	}
}
