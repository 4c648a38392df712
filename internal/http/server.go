package httpserver

import (
	"context"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/spotshare/spotshare/internal/auth"
	"github.com/spotshare/spotshare/internal/config"
	"github.com/spotshare/spotshare/internal/feed"
	"github.com/spotshare/spotshare/internal/imagestore"
	"github.com/spotshare/spotshare/internal/realtime"
	"github.com/spotshare/spotshare/internal/repository"
	"github.com/spotshare/spotshare/internal/store"
)

// Server wires HTTP routing, middleware, and handlers.
type Server struct {
	cfg     config.Config
	store   *store.Store
	repo    *repository.Repository
	service *feed.Service
	hub     *realtime.Hub
	images  imagestore.Store
	tokens  *auth.TokenIssuer
	logger  *log.Logger
	router  chi.Router
	httpSrv *http.Server
}

// Deps bundles the collaborators the server needs.
type Deps struct {
	Store   *store.Store
	Repo    *repository.Repository
	Service *feed.Service
	Hub     *realtime.Hub
	Images  imagestore.Store
	Tokens  *auth.TokenIssuer
	Logger  *log.Logger
}

// New constructs the HTTP server with base middleware and routes.
func New(cfg config.Config, deps Deps) *Server {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	logger := deps.Logger
	if logger == nil {
		logger = log.Default()
	}

	s := &Server{
		cfg:     cfg,
		store:   deps.Store,
		repo:    deps.Repo,
		service: deps.Service,
		hub:     deps.Hub,
		images:  deps.Images,
		tokens:  deps.Tokens,
		logger:  logger,
		router:  r,
	}
	s.registerRoutes()
	return s
}

func (s *Server) registerRoutes() {
	s.router.Get("/healthz", s.handleHealthz)
	s.router.Get("/realtime", s.handleRealtime)

	if disk, ok := s.images.(*imagestore.DiskStore); ok {
		s.router.Handle("/images/*", http.StripPrefix("/images/", http.FileServer(http.Dir(disk.Dir()))))
	}

	s.router.Route("/auth", func(r chi.Router) {
		r.Put("/signup", s.handleSignup)
		r.Post("/login", s.handleLogin)

		r.Group(func(r chi.Router) {
			r.Use(auth.Middleware(s.tokens))
			r.Get("/user/{userId}", s.handleGetUser)
			r.Get("/status", s.handleGetStatus)
			r.Patch("/status", s.handleUpdateStatus)
			r.Get("/bucket", s.handleGetBucket)
			r.Post("/bucket/{postId}", s.handleAddToBucket)
			r.Delete("/bucket/{postId}", s.handleRemoveFromBucket)
			r.Get("/ratings/{userId}", s.handleGetRatings)
			r.Post("/ratings/{userId}", s.handleSubmitRating)
		})
	})

	s.router.Route("/feed", func(r chi.Router) {
		r.Use(auth.Middleware(s.tokens))
		r.Get("/posts", s.handleListPosts)
		r.Post("/post", s.handleCreatePost)
		r.Route("/post/{postId}", func(r chi.Router) {
			r.Get("/", s.handleGetPost)
			r.Put("/", s.handleUpdatePost)
			r.Delete("/", s.handleDeletePost)
		})
	})
}

// Start boots the HTTP server asynchronously.
func (s *Server) Start(ctx context.Context) error {
	s.httpSrv = &http.Server{
		Addr:         ":" + s.cfg.Port,
		Handler:      s.router,
		ReadTimeout:  time.Duration(s.cfg.ReadTimeoutSecs) * time.Second,
		WriteTimeout: time.Duration(s.cfg.WriteTimeoutSecs) * time.Second,
		IdleTimeout:  time.Duration(s.cfg.IdleTimeoutSecs) * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		if err := s.httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
			return
		}
		errCh <- nil
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = s.httpSrv.Shutdown(shutdownCtx)
		return ctx.Err()
	case err := <-errCh:
		return err
	}
}

// Shutdown gracefully stops the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.httpSrv == nil {
		return nil
	}
	return s.httpSrv.Shutdown(ctx)
}

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if err := s.store.HealthCheck(ctx); err != nil {
		http.Error(w, http.StatusText(http.StatusServiceUnavailable), http.StatusServiceUnavailable)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(`{"status":"ok"}`))
}
