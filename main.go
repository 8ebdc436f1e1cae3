package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/backsoul/quizconsole/pkg/cli"
	"github.com/backsoul/quizconsole/pkg/config"
	"github.com/backsoul/quizconsole/pkg/handlers"
	"github.com/backsoul/quizconsole/pkg/services"
	"github.com/backsoul/quizconsole/pkg/store"
	"github.com/backsoul/quizconsole/pkg/websocket"
	"github.com/valyala/fasthttp"
)

var (
	cfg             config.Config
	backend         store.Backend
	authService     *services.AuthService
	userService     *services.UserService
	questionService *services.QuestionService
	quizService     *services.QuizService
	resultsHandler  *handlers.ResultsHandler
	liveHandler     *handlers.LiveHandler
	hub             *websocket.Hub
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	initConfig()
	initStore(ctx)
	defer backend.Close()

	initServices()
	loadInitialQuestions(ctx)

	var server *fasthttp.Server
	if cfg.ResultsAddr != "" {
		server = startResultsServer(ctx)
	}

	shell := cli.NewShell(os.Stdin, os.Stdout, authService, userService, questionService, quizService)
	done := make(chan error, 1)
	go func() { done <- shell.Run(ctx) }()

	select {
	case err := <-done:
		if err != nil {
			log.Printf("❌ La consola se detuvo: %v", err)
		}
	case <-ctx.Done():
		log.Println("🛑 Interrumpido")
	}

	if server != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := server.ShutdownWithContext(shutdownCtx); err != nil {
			log.Printf("⚠️ Error deteniendo el servidor de resultados: %v", err)
		}
	}
}

func initConfig() {
	cfg = config.Load()

	if cfg.LogFile != "" {
		f, err := os.OpenFile(cfg.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			log.Fatalf("Error abriendo el archivo de log: %v", err)
		}
		log.SetOutput(f)
	}

	if err := cfg.Validate(); err != nil {
		log.Fatalf("Configuración inválida: %v", err)
	}
}

func initStore(ctx context.Context) {
	var err error
	backend, err = store.Open(ctx, cfg)
	if err != nil {
		log.Fatalf("Error abriendo el almacenamiento %s: %v", cfg.StoreDriver, err)
	}
}

func initServices() {
	log.Println("⚙️  Inicializando servicios...")
	authService = services.NewAuthService(backend, cfg)
	userService = services.NewUserService(backend, authService)
	questionService = services.NewQuestionService(backend)
	quizService = services.NewQuizService(backend, questionService, userService)
}

func loadInitialQuestions(ctx context.Context) {
	if cfg.QuestionsFile == "" {
		return
	}

	count, err := questionService.Count(ctx)
	if err == nil && count > 0 {
		log.Printf("✅ Ya hay %d preguntas guardadas", count)
		return
	}

	added, err := questionService.LoadQuestionsFromFile(ctx, cfg.QuestionsFile)
	if err != nil {
		log.Printf("⚠️ Error cargando preguntas iniciales: %v", err)
		return
	}
	log.Printf("✅ %d preguntas cargadas desde %s", added, cfg.QuestionsFile)
}

// startResultsServer publica los puntajes por HTTP y envía los nuevos a los
// visores WebSocket
func startResultsServer(ctx context.Context) *fasthttp.Server {
	hub = websocket.NewHub()
	go hub.Run(ctx)
	quizService.SetNotifier(hub)

	resultsHandler = handlers.NewResultsHandler(backend, userService, quizService)
	liveHandler = handlers.NewLiveHandler(hub)

	server := &fasthttp.Server{
		Handler: requestHandler,
		Name:    "Quiz Results",
	}

	go func() {
		log.Printf("📊 API de resultados: http://%s/api/results", cfg.ResultsAddr)
		if err := server.ListenAndServe(cfg.ResultsAddr); err != nil {
			log.Printf("❌ El servidor de resultados se detuvo: %v", err)
		}
	}()
	return server
}

func requestHandler(ctx *fasthttp.RequestCtx) {
	path := string(ctx.Path())
	method := string(ctx.Method())

	log.Printf("📡 %s %s", method, path)

	ctx.Response.Header.Set("Server", "Quiz-FastHTTP/1.0")
	ctx.Response.Header.Set("Cache-Control", "no-cache")
	ctx.Response.Header.Set("Access-Control-Allow-Origin", "*")
	ctx.Response.Header.Set("Access-Control-Allow-Methods", "GET, OPTIONS")
	ctx.Response.Header.Set("Access-Control-Allow-Headers", "Content-Type")

	if method == fasthttp.MethodOptions {
		ctx.SetStatusCode(fasthttp.StatusOK)
		return
	}

	switch {
	case path == "/api/health" && method == fasthttp.MethodGet:
		resultsHandler.HealthCheck(ctx)
	case path == "/api/results" && method == fasthttp.MethodGet:
		resultsHandler.GetResults(ctx)
	case path == "/api/attempts" && method == fasthttp.MethodGet:
		resultsHandler.GetAttempts(ctx)
	case path == "/ws":
		liveHandler.HandleWebSocket(ctx)
	default:
		handlers.NotFound(ctx)
	}
}
