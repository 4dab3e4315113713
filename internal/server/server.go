package server

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/alzy/commerce-api/config"
	"github.com/alzy/commerce-api/internal/auth"
	"github.com/alzy/commerce-api/internal/db"
	"github.com/alzy/commerce-api/internal/handlers"
	"github.com/alzy/commerce-api/internal/logging"
	apimw "github.com/alzy/commerce-api/internal/middleware"
	"github.com/alzy/commerce-api/internal/mq"
	"github.com/alzy/commerce-api/internal/services"
	"github.com/alzy/commerce-api/internal/storage"
	"github.com/alzy/commerce-api/internal/store"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/redis/go-redis/v9"
)

// Server wraps the HTTP server, its router and the connections it owns.
type Server struct {
	httpServer *http.Server
	router     *chi.Mux
	logger     logging.Logger

	db    *sql.DB
	redis *redis.Client
	queue *mq.MQ
}

// New validates cfg, connects every configured backend and mounts the routes.
func New(ctx context.Context, cfg config.Config, logger logging.Logger) (*Server, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	tokenCfg, err := auth.NewTokenConfig(cfg.Auth.JWTSecret, cfg.Auth.JWTAlgorithm, cfg.Auth.TokenTTL)
	if err != nil {
		return nil, err
	}

	s := &Server{logger: logger}

	s.db, err = db.Open(ctx, cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if cfg.Redis.URL != "" {
		if s.redis, err = db.OpenRedis(ctx, cfg.Redis.URL); err != nil {
			s.closeBackends()
			return nil, err
		}
	} else {
		logger.Warn(ctx, "REDIS_URL not set, login rate limiting disabled")
	}

	if s.queue, err = mq.Open(ctx, cfg.MQ); err != nil {
		s.closeBackends()
		return nil, err
	}

	objects, err := storage.Open(ctx, cfg.Storage)
	if err != nil {
		s.closeBackends()
		return nil, err
	}

	userRepo := store.NewUserRepository(s.db)
	productRepo := store.NewProductRepository(s.db)
	cartRepo := store.NewCartRepository(s.db)

	hasher := auth.NewPasswordHasher(cfg.Auth.BcryptCost)
	authenticator, err := auth.NewAuthenticator(userRepo, hasher)
	if err != nil {
		s.closeBackends()
		return nil, err
	}
	loginService := auth.NewService(authenticator, auth.NewIssuer(tokenCfg))
	resolver := auth.NewResolver(auth.NewVerifier(tokenCfg, userRepo))

	var publisher services.Publisher
	if s.queue != nil {
		publisher = s.queue
	}
	events := services.NewEvents(publisher, logger)

	var images services.ImageStore
	if objects != nil {
		images = objects
	}

	userService := services.NewUserService(userRepo, hasher, events)
	productService := services.NewProductService(productRepo, images, logger)
	cartService := services.NewCartService(cartRepo, productRepo, events)

	requireAuth := handlers.RequireAuth(resolver, logger)

	var loginLimiter func(http.Handler) http.Handler
	if s.redis != nil {
		loginLimiter = apimw.NewLoginLimiter(
			apimw.NewRedisCounter(s.redis),
			cfg.Redis.LoginMaxAttempts,
			cfg.Redis.LoginWindow,
			logger,
		).Handler
	}

	s.router = newRouter(cfg, func(r chi.Router) {
		r.Route("/users", func(r chi.Router) {
			handlers.UserRouter(r, userService, loginService, requireAuth, loginLimiter, logger)
		})
		r.Route("/products", func(r chi.Router) {
			handlers.ProductRouter(r, productService, requireAuth, logger)
		})
		r.Route("/cart", func(r chi.Router) {
			handlers.CartRouter(r, cartService, requireAuth, logger)
		})
	})

	port := cfg.ServerPort
	if port == 0 {
		port = 8080
	}

	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf(":%d", port),
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	logger.Info(ctx, "server configured",
		"port", port,
		"jwt_algorithm", tokenCfg.Algorithm(),
		"mq_backend", cfg.MQ.Backend,
		"storage_backend", cfg.Storage.Backend,
		"trusted_proxies", len(cfg.TrustedProxies),
	)
	return s, nil
}

func newRouter(cfg config.Config, mount func(chi.Router)) *chi.Mux {
	// Malformed entries were already rejected by cfg.Validate.
	proxies, _ := cfg.TrustedProxyPrefixes()

	router := chi.NewRouter()
	router.Use(
		middleware.RequestID,
		apimw.TrustedRealIP(proxies),
		middleware.Recoverer,
		middleware.Logger,
		middleware.Timeout(60*time.Second),
		cors.Handler(cors.Options{
			AllowedOrigins:   cfg.CORSOrigins,
			AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
			AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
			ExposedHeaders:   []string{"Retry-After", "X-RateLimit-Limit", "X-RateLimit-Remaining"},
			AllowCredentials: true,
			MaxAge:           300,
		}),
	)
	router.Get("/healthz", handlers.Healthz)
	mount(router)
	return router
}

// Router exposes the chi router for route registration.
func (s *Server) Router() *chi.Mux {
	return s.router
}

// Start runs the HTTP server until Shutdown is called.
func (s *Server) Start() error {
	s.logger.Info(context.Background(), "listening", "addr", s.httpServer.Addr)
	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown drains in-flight requests and then closes the backends.
func (s *Server) Shutdown(ctx context.Context) error {
	err := s.httpServer.Shutdown(ctx)
	return errors.Join(err, s.closeBackends())
}

func (s *Server) closeBackends() error {
	var errs []error
	if s.queue != nil {
		errs = append(errs, s.queue.Close())
	}
	if s.redis != nil {
		errs = append(errs, s.redis.Close())
	}
	if s.db != nil {
		errs = append(errs, s.db.Close())
	}
	return errors.Join(errs...)
}
