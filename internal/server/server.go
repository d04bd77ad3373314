package server

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/bloglist/apiserver/config"
	"github.com/bloglist/apiserver/internal/db"
	"github.com/bloglist/apiserver/internal/events"
	"github.com/bloglist/apiserver/internal/handlers"
	"github.com/bloglist/apiserver/internal/services"
	"github.com/bloglist/apiserver/internal/store"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
)

// Server wraps the HTTP server, router, and shared resources.
type Server struct {
	httpServer *http.Server
	router     *chi.Mux
	db         *sql.DB
	publisher  events.Publisher
	log        zerolog.Logger
}

// New constructs a Server with its full route tree and middleware stack.
func New(ctx context.Context, cfg config.Config) (*Server, error) {
	log := newLogger(cfg)

	dbConn, err := db.Open(ctx, cfg)
	if err != nil {
		return nil, err
	}

	publisher, err := events.New(ctx, cfg.MQ)
	if err != nil {
		_ = dbConn.Close()
		return nil, err
	}

	userRepo := store.NewUserRepository(dbConn)
	sessionRepo := store.NewSessionRepository(dbConn)
	blogRepo := store.NewBlogRepository(dbConn)

	userService := services.NewUserService(userRepo)
	authService := services.NewAuthService(userRepo, sessionRepo)
	blogService := services.NewBlogService(blogRepo, publisher, log)

	requireSession := handlers.RequireSession(authService)

	router := chi.NewRouter()
	router.Use(
		middleware.RequestID,
		middleware.RealIP,
		middleware.Recoverer,
		requestLogger(log),
		middleware.Timeout(60*time.Second),
	)
	router.Get("/healthz", handlers.Healthz)
	router.Route("/api", func(r chi.Router) {
		handlers.AuthRouter(r, authService)
		r.Route("/users", func(r chi.Router) {
			handlers.UserRouter(r, userService)
		})
		r.Route("/blogs", func(r chi.Router) {
			handlers.BlogRouter(r, blogService, requireSession)
		})
		if cfg.TestingEnabled {
			testingService := services.NewTestingService(store.NewTestingRepository(dbConn))
			r.Route("/testing", func(r chi.Router) {
				handlers.TestingRouter(r, testingService)
			})
			log.Warn().Msg("testing routes enabled, do not run this configuration in production")
		}
	})

	port := cfg.ServerPort
	if port == 0 {
		port = 3003
	}

	httpServer := &http.Server{
		Addr:         fmt.Sprintf(":%d", port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return &Server{
		httpServer: httpServer,
		router:     router,
		db:         dbConn,
		publisher:  publisher,
		log:        log,
	}, nil
}

// Router exposes the chi router for route registration.
func (s *Server) Router() *chi.Mux {
	return s.router
}

// Start runs the HTTP server.
func (s *Server) Start() error {
	s.log.Info().Str("addr", s.httpServer.Addr).Msg("starting bloglist server")
	return s.httpServer.ListenAndServe()
}

// Shutdown releases the server's resources.
func (s *Server) Shutdown() error {
	if s.publisher != nil {
		_ = s.publisher.Close()
	}
	if s.db != nil {
		_ = s.db.Close()
	}
	return s.httpServer.Close()
}

func newLogger(cfg config.Config) zerolog.Logger {
	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}

	var out io.Writer = os.Stdout
	if cfg.Env == "development" {
		out = zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}
	}

	return zerolog.New(out).Level(level).With().Timestamp().Logger()
}
