package handlers

import (
	"context"
	"fmt"
	"log"

	"github.com/backsoul/quizconsole/pkg/models"
	"github.com/backsoul/quizconsole/pkg/services"
	"github.com/backsoul/quizconsole/pkg/store"
	"github.com/valyala/fasthttp"
)

// ResultsHandler expone los puntajes y el historial de intentos, solo lectura
type ResultsHandler struct {
	store       store.Store
	userService *services.UserService
	quizService *services.QuizService
}

func NewResultsHandler(st store.Store, userService *services.UserService, quizService *services.QuizService) *ResultsHandler {
	return &ResultsHandler{
		store:       st,
		userService: userService,
		quizService: quizService,
	}
}

// GetResults maneja GET /api/results
func (h *ResultsHandler) GetResults(ctx *fasthttp.RequestCtx) {
	users, err := h.userService.Results(ctx)
	if err != nil {
		log.Printf("❌ Error obteniendo resultados: %v", err)
		respondWithError(ctx, fasthttp.StatusInternalServerError, fmt.Sprintf("error loading results: %v", err))
		return
	}
	respondWithSuccess(ctx, models.ResultsResponse{Results: users, Count: len(users)}, "results loaded")
}

// GetAttempts maneja GET /api/attempts y GET /api/attempts?username=alice
func (h *ResultsHandler) GetAttempts(ctx *fasthttp.RequestCtx) {
	username := string(ctx.QueryArgs().Peek("username"))

	var (
		attempts []models.Attempt
		err      error
	)
	if username != "" {
		attempts, err = h.quizService.History(ctx, username)
	} else {
		attempts, err = h.quizService.Attempts(ctx)
	}
	if err != nil {
		log.Printf("❌ Error obteniendo intentos: %v", err)
		respondWithError(ctx, fasthttp.StatusInternalServerError, fmt.Sprintf("error loading attempts: %v", err))
		return
	}
	if attempts == nil {
		attempts = []models.Attempt{}
	}
	respondWithSuccess(ctx, models.AttemptsResponse{Attempts: attempts, Count: len(attempts)}, "attempts loaded")
}

type healthChecker interface {
	HealthCheck(ctx context.Context) error
}

type tableLister interface {
	Tables(ctx context.Context) ([]string, error)
}

// HealthCheck maneja GET /api/health. Si el backend sabe hacer ping (Redis)
// se usa eso; si no, se lee la tabla de usuarios. Los backends que listan
// sus tablas las incluyen en la respuesta.
func (h *ResultsHandler) HealthCheck(ctx *fasthttp.RequestCtx) {
	var err error
	if hc, ok := h.store.(healthChecker); ok {
		err = hc.HealthCheck(ctx)
	} else {
		_, err = h.store.Load(ctx, store.TableUsers)
	}
	if err != nil {
		respondWithError(ctx, fasthttp.StatusServiceUnavailable, fmt.Sprintf("store unavailable: %v", err))
		return
	}
	data := map[string]interface{}{
		"status": "healthy",
	}
	if tl, ok := h.store.(tableLister); ok {
		tables, err := tl.Tables(ctx)
		if err != nil {
			log.Printf("⚠️ Error listando tablas: %v", err)
		} else {
			data["tables"] = tables
		}
	}
	respondWithSuccess(ctx, data, "service is running")
}
