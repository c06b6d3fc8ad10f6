package internal

import (
	"context"
	"database/sql"
	"net/http"
	"os"
	"time"

	"vira-api/internal/ai"
	"vira-api/internal/ai/gemini"
	"vira-api/internal/auth"
	"vira-api/internal/config"
	"vira-api/internal/handlers"
	"vira-api/internal/rating"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	_ "github.com/jackc/pgx/v5/stdlib"
	"go.uber.org/zap"
)

type Server struct {
	DB          *sql.DB
	Pool        *pgxpool.Pool
	Router      *chi.Mux
	JWTManager  *auth.JWTManager
	Metrics     *Metrics
	Logger      *zap.Logger
	Recommender *ai.Recommender
	Chat        *ai.Chat
	Aggregator  *rating.Aggregator
}

func NewServer(dsn string, cfg *config.Config, logger *zap.Logger) *Server {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		logger.Fatal("failed to open database connection", zap.Error(err))
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		logger.Fatal("database ping failed", zap.Error(err))
	}

	// Also create a pgxpool for the importer
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		logger.Fatal("failed to create pgxpool", zap.Error(err))
	}

	// Initialize JWT manager
	jwtManager := auth.NewJWTManager(cfg.JWTSecret, cfg.JWTIssuer, cfg.JWTAudience, cfg.JWTExpiry)

	if err := jwtManager.ValidateConfig(); err != nil {
		logger.Fatal("JWT configuration validation failed", zap.Error(err))
	}

	s := &Server{
		DB:         db,
		Pool:       pool,
		Router:     chi.NewRouter(),
		JWTManager: jwtManager,
		Metrics:    NewMetrics(),
		Logger:     logger,
		Aggregator: rating.NewAggregator(rating.NewSQLRunner(db), logger),
	}

	// The AI endpoints stay mounted without a Gemini key; they respond
	// with 503 until one is configured.
	if cfg.GeminiAPIKey != "" {
		gen, err := gemini.NewGenerator(ctx, cfg.GeminiAPIKey, cfg.GeminiModel)
		if err != nil {
			logger.Fatal("failed to create Gemini client", zap.Error(err))
		}
		s.Recommender = ai.NewRecommender(gen, logger)
		s.Chat = ai.NewChat(gen, logger)
		logger.Info("AI endpoints enabled", zap.String("model", gen.Model()))
	} else {
		logger.Warn("GEMINI_API_KEY not set, AI endpoints disabled")
	}

	// Mount public routes FIRST (no middleware)
	s.Router.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		if _, err := w.Write([]byte("ok")); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
		}
	})
	s.Router.Get("/dbping", func(w http.ResponseWriter, r *http.Request) {
		if err := s.DB.PingContext(r.Context()); err != nil {
			http.Error(w, "db: "+err.Error(), http.StatusServiceUnavailable)
			return
		}
		if _, err := w.Write([]byte("db: ok")); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
		}
	})

	// Public auth routes (no JWT required)
	s.Router.Post("/auth/login", s.loginUser)

	// Mount metrics if enabled
	if os.Getenv("ENABLE_METRICS") == "true" {
		s.Router.Use(s.Metrics.Middleware())
		s.Router.Get("/metrics", s.Metrics.Handler().ServeHTTP)
	}

	// Create a protected route group with middleware
	s.Router.Group(func(r chi.Router) {
		r.Use(auth.AuthMiddleware(s.JWTManager))

		s.mountProtectedRoutes(r)
	})

	return s
}

// Close properly shuts down the server and cleans up resources
func (s *Server) Close(ctx context.Context) error {
	if s.Pool != nil {
		s.Pool.Close()
	}
	if s.DB != nil {
		return s.DB.Close()
	}
	return nil
}

// mountProtectedRoutes mounts all protected routes that require authentication
func (s *Server) mountProtectedRoutes(r chi.Router) {
	// Vendors - require admin role for write operations
	r.Get("/vendors", s.listVendors)
	r.Get("/vendors/{id}", s.getVendor)
	r.Post("/vendors", auth.MustRole("admin")(http.HandlerFunc(s.createVendor)).(http.HandlerFunc))
	r.Put("/vendors/{id}", auth.MustRole("admin")(http.HandlerFunc(s.updateVendor)).(http.HandlerFunc))
	r.Delete("/vendors/{id}", auth.MustRole("admin")(http.HandlerFunc(s.deleteVendor)).(http.HandlerFunc))

	// Projects - require admin role for write operations
	r.Get("/projects", s.listProjects)
	r.Get("/projects/{id}", s.getProject)
	r.Post("/projects", auth.MustRole("admin")(http.HandlerFunc(s.createProject)).(http.HandlerFunc))
	r.Put("/projects/{id}", auth.MustRole("admin")(http.HandlerFunc(s.updateProject)).(http.HandlerFunc))
	r.Delete("/projects/{id}", auth.MustRole("admin")(http.HandlerFunc(s.deleteProject)).(http.HandlerFunc))

	// Rating submission is open to all authenticated members
	r.Post("/projects/{id}/rating", s.submitProjectRating)

	// Clients - require admin role for write operations
	r.Get("/clients", s.listClients)
	r.Get("/clients/{id}", s.getClient)
	r.Post("/clients", auth.MustRole("admin")(http.HandlerFunc(s.createClient)).(http.HandlerFunc))
	r.Put("/clients/{id}", auth.MustRole("admin")(http.HandlerFunc(s.updateClient)).(http.HandlerFunc))
	r.Delete("/clients/{id}", auth.MustRole("admin")(http.HandlerFunc(s.deleteClient)).(http.HandlerFunc))

	// AI endpoints
	r.Post("/ai/match-vendors", s.matchVendors)
	r.Post("/ai/chat", s.chatWithVira)

	// Excel import - admin only
	importsHandler := handlers.NewImportsHandler(s.Pool)
	r.Post("/imports/excel", auth.MustRole("admin")(http.HandlerFunc(importsHandler.UploadExcel)).(http.HandlerFunc))

	// User management - admin only
	r.Post("/users", auth.MustRole("admin")(http.HandlerFunc(s.createUser)).(http.HandlerFunc))
	r.Get("/users", auth.MustRole("admin")(http.HandlerFunc(s.listUsers)).(http.HandlerFunc))
	r.Get("/users/{id}", auth.MustRole("admin")(http.HandlerFunc(s.getUser)).(http.HandlerFunc))
	r.Put("/users/{id}", auth.MustRole("admin")(http.HandlerFunc(s.updateUser)).(http.HandlerFunc))
	r.Delete("/users/{id}", auth.MustRole("admin")(http.HandlerFunc(s.deleteUser)).(http.HandlerFunc))

	// Self-service routes
	r.Get("/auth/profile", s.getUserProfile)
	r.Put("/auth/profile", s.updateUserProfile)
	r.Put("/auth/change-password", s.changePassword)
}
