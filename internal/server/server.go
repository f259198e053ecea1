package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/rand"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	openai "github.com/sashabaranov/go-openai"

	"vaspx-assistant/internal/config"
	"vaspx-assistant/internal/db"
	"vaspx-assistant/internal/dialogue"
	"vaspx-assistant/internal/gateway"
	"vaspx-assistant/internal/intent"
	"vaspx-assistant/internal/logger"
	"vaspx-assistant/internal/store"
	"vaspx-assistant/internal/types"
)

const (
	healthyMessage = "Vasp Assistant is running!"

	// maxBodyBytes caps /chat and /train request bodies.
	maxBodyBytes = 64 << 10
)

type Server struct {
	router    *chi.Mux
	cfg       config.Config
	log       logger.Logger
	gateway   *gateway.Router
	resolver  *dialogue.Resolver
	registrar *intent.Registrar
	database  *db.DB
}

// NewServer builds every component from cfg. Startup problems (bad
// knowledge file, unreachable database, invalid dialogue tree) are returned
// instead of surfacing on the first request.
func NewServer(ctx context.Context, cfg config.Config, log logger.Logger) (*Server, error) {
	seed := intent.DefaultKnowledgeBase()
	if cfg.KnowledgeFile != "" {
		var err error
		seed, err = intent.LoadKnowledgeFile(cfg.KnowledgeFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load knowledge file: %w", err)
		}
		log.Info("knowledge base loaded from file", map[string]interface{}{"path": cfg.KnowledgeFile, "categories": len(seed)})
	}
	kb := store.NewMemoryStore(seed)

	var database *db.DB
	var persister intent.Persister
	switch {
	case cfg.DatabaseURL != "":
		var err error
		database, err = db.New(ctx, cfg.DatabaseURL, log)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize database: %w", err)
		}
		if err := database.RunMigrations(ctx, cfg.MigrationsDir); err != nil {
			database.Close()
			return nil, fmt.Errorf("failed to run migrations: %w", err)
		}
		log.Info("database connection established", nil)
		persister = store.NewDatabaseStore(database)
	case cfg.KnowledgeSnapshotFile != "":
		persister = store.NewFileKnowledgeStore(cfg.KnowledgeSnapshotFile)
	default:
		log.Warn("no knowledge persistence configured; trained categories are kept until restart", nil)
	}

	registrar := intent.NewRegistrar(kb, persister, log)
	restored, err := registrar.Restore(ctx)
	if err != nil {
		if database != nil {
			database.Close()
		}
		return nil, err
	}
	if restored > 0 {
		log.Info("restored trained categories", map[string]interface{}{"count": restored})
	}

	matcher := intent.NewMatcher(kb, rand.New(rand.NewSource(time.Now().UnixNano())), log)
	tree := dialogue.DefaultTree(cfg.SupportEmail)
	if err := dialogue.Validate(tree); err != nil {
		if database != nil {
			database.Close()
		}
		return nil, fmt.Errorf("invalid dialogue tree: %w", err)
	}
	resolver := dialogue.NewResolver(tree, matcher, cfg.SupportEmail)

	var gw *gateway.Router
	if cfg.GatewayEnabled {
		gw = gateway.NewRouter(newBackend(cfg), cfg.UpstreamTimeout, log)
		log.Info("gateway enabled", map[string]interface{}{"provider": cfg.UpstreamProvider, "endpoint": cfg.UpstreamEndpoint()})
	}

	s := newServer(cfg, log, gw, resolver, registrar)
	s.database = database
	return s, nil
}

func newBackend(cfg config.Config) gateway.Backend {
	if cfg.UpstreamProvider == config.ProviderOpenAI {
		return gateway.NewOpenAIBackend(openai.NewClient(cfg.OpenAIAPIKey), cfg.OpenAIModel, cfg.OpenAISystem)
	}
	return gateway.NewRasaBackend(cfg.UpstreamEndpoint(), &http.Client{})
}

func newServer(cfg config.Config, log logger.Logger, gw *gateway.Router, resolver *dialogue.Resolver, registrar *intent.Registrar) *Server {
	r := chi.NewRouter()
	s := &Server{
		router:    r,
		cfg:       cfg,
		log:       log,
		gateway:   gw,
		resolver:  resolver,
		registrar: registrar,
	}

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.requestLogger)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{cfg.AllowedOrigin},
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", "X-Requested-With"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	s.routes()
	return s
}

func (s *Server) routes() {
	s.router.Get("/health", s.handleHealth)
	s.router.Get("/chat", s.handleDialogue)
	if s.gateway != nil {
		s.router.Post("/chat", s.handleGatewayChat)
	}
	s.router.Post("/train", s.handleTrain)
	s.router.Get("/knowledge", s.handleKnowledge)
	s.router.Handle("/metrics", promhttp.Handler())
	s.router.NotFound(func(w http.ResponseWriter, r *http.Request) {
		s.writeJSON(w, http.StatusNotFound, types.ErrorResponse{Error: "not found"})
	})
}

func (s *Server) Router() http.Handler { return s.router }

// Close releases the database connection, if any.
func (s *Server) Close() error {
	if s.database != nil {
		return s.database.Close()
	}
	return nil
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if s.database != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := s.database.HealthCheck(ctx); err != nil {
			s.log.Warn("database health check failed", map[string]interface{}{"error": err})
			s.writeJSON(w, http.StatusServiceUnavailable, types.HealthResponse{Status: "unhealthy", Message: "database unavailable"})
			return
		}
	}
	s.writeJSON(w, http.StatusOK, types.HealthResponse{Status: "healthy", Message: healthyMessage})
}

// handleGatewayChat always answers 200; failures are carried in the reply list.
func (s *Server) handleGatewayChat(w http.ResponseWriter, r *http.Request) {
	var req types.GatewayRequest
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.log.Warn("invalid chat body, relaying empty message", map[string]interface{}{"error": err})
		req = types.GatewayRequest{}
	}
	req.Sender = senderFor(w, r, req.Sender)

	resp := s.gateway.Relay(r.Context(), req)
	s.writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleDialogue(w http.ResponseWriter, r *http.Request) {
	node := s.resolver.Resolve(r.URL.Query().Get("user_input"))
	s.writeJSON(w, http.StatusOK, node)
}

func (s *Server) handleTrain(w http.ResponseWriter, r *http.Request) {
	var req types.TrainRequest
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		msg := "invalid JSON body"
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			msg = fmt.Sprintf("request body exceeds %d bytes", tooLarge.Limit)
		}
		s.writeJSON(w, http.StatusOK, types.TrainResponse{Status: types.StatusError, Message: msg})
		return
	}
	c, err := s.registrar.Train(r.Context(), req)
	if err != nil {
		s.writeJSON(w, http.StatusOK, types.TrainResponse{Status: types.StatusError, Message: err.Error()})
		return
	}
	s.writeJSON(w, http.StatusOK, types.TrainResponse{
		Status:  types.StatusSuccess,
		Message: fmt.Sprintf("Category '%s' trained with %d patterns and %d responses", c.Name, len(c.Patterns), len(c.Responses)),
	})
}

func (s *Server) handleKnowledge(w http.ResponseWriter, r *http.Request) {
	snapshot := s.registrar.Snapshot()
	kb := make(map[string]types.KnowledgeEntry, len(snapshot))
	for _, c := range snapshot {
		kb[c.Name] = types.KnowledgeEntry{Patterns: c.Patterns, Responses: c.Responses}
	}
	s.writeJSON(w, http.StatusOK, types.KnowledgeResponse{KnowledgeBase: kb})
}

func (s *Server) writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.log.Error("failed to write JSON response", map[string]interface{}{"error": err})
	}
}

func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.log.Debug("request served", map[string]interface{}{
			"method":     r.Method,
			"path":       r.URL.Path,
			"status":     ww.Status(),
			"durationMs": time.Since(start).Milliseconds(),
			"requestId":  middleware.GetReqID(r.Context()),
		})
	})
}
