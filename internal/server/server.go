package server

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"time"

	"smartbasket/internal/config"
	"smartbasket/internal/gateway"
	"smartbasket/internal/geo"
	custommiddleware "smartbasket/internal/middleware"
	"smartbasket/internal/repository"
	"smartbasket/internal/service"
	"smartbasket/internal/transport"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

type Server struct {
	*http.Server
	config *config.Config
	logger *zap.Logger
	db     *sql.DB
	redis  *redis.Client
	gemini *gateway.GeminiClient
}

// NewServer wires repositories, the price-lookup gateway and the HTTP
// handlers into a configured server. The store index is loaded once at
// startup; stores are immutable reference data.
func NewServer(
	cfg *config.Config,
	logger *zap.Logger,
	db *sql.DB,
	redisClient *redis.Client,
	gemini *gateway.GeminiClient,
) (*Server, error) {
	router := chi.NewRouter()

	// Add basic middleware
	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(middleware.Recoverer)
	router.Use(middleware.Compress(5))
	router.Use(custommiddleware.LoggingMiddleware(logger))
	router.Use(custommiddleware.ErrorHandlingMiddleware(logger))
	router.Use(custommiddleware.CORSMiddleware(cfg.Server.AllowedOrigins, cfg.Server.Env == "development"))
	router.Use(custommiddleware.RateLimitMiddleware(redisClient, custommiddleware.RateLimitConfig{
		RequestsPerWindow: 100,
		Window:            time.Minute,
		KeyPrefix:         "ratelimit",
	}, logger))

	// Health check endpoint
	router.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	})

	// Initialize repositories
	userRepo := repository.NewUserRepository(db)
	refreshTokenRepo := repository.NewRefreshTokenRepository(db)
	storeRepo := repository.NewStoreRepository(db)
	productRepo := repository.NewProductRepository(db)
	shoppingRepo := repository.NewShoppingListRepository(db)

	// Load the store registry into the in-memory geo index
	stores, err := storeRepo.List(context.Background())
	if err != nil {
		return nil, fmt.Errorf("failed to load store registry: %w", err)
	}
	storeIndex := geo.NewStoreIndex(stores)
	logger.Info("Store registry loaded", zap.Int("stores", len(stores)))

	// Initialize the external lookup gateway
	searchClient := gateway.NewSearchClient(cfg.Search, cfg.Lookup.Timeout)
	geocoder := gateway.NewGeocoder(cfg.Geocoder, cfg.Lookup.Timeout)
	lookup := gateway.NewLookup(searchClient, gemini, gemini, redisClient, cfg.Lookup, logger)

	// Initialize services
	userService := service.NewUserService(userRepo, refreshTokenRepo, cfg.JWT.Secret)
	syncService := service.NewSyncService(shoppingRepo, productRepo, lookup, logger)

	// Initialize handlers
	userHandler := transport.NewUserHandler(userService, logger)
	shoppingHandler := transport.NewShoppingListHandler(syncService, logger)
	storeHandler := transport.NewStoreHandler(storeIndex, logger)
	lookupHandler := transport.NewLookupHandler(lookup, geocoder, logger)
	contributionHandler := transport.NewContributionHandler(syncService, logger)
	catalogHandler := transport.NewCatalogHandler(productRepo, logger)

	// Create auth middleware
	authMiddleware := custommiddleware.AuthMiddleware(cfg.JWT.Secret, logger)

	// Register routes
	userHandler.RegisterRoutes(router, authMiddleware)
	shoppingHandler.RegisterRoutes(router, authMiddleware)
	storeHandler.RegisterRoutes(router)
	lookupHandler.RegisterRoutes(router)
	contributionHandler.RegisterRoutes(router, authMiddleware)
	catalogHandler.RegisterRoutes(router, authMiddleware)

	server := &Server{
		Server: &http.Server{
			Addr:         fmt.Sprintf(":%s", cfg.Server.Port),
			Handler:      router,
			IdleTimeout:  time.Minute,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 30 * time.Second,
		},
		config: cfg,
		logger: logger,
		db:     db,
		redis:  redisClient,
		gemini: gemini,
	}

	return server, nil
}

func (s *Server) Close() error {
	s.logger.Info("Closing server resources")

	if s.gemini != nil {
		if err := s.gemini.Close(); err != nil {
			s.logger.Error("Failed to close Gemini client", zap.Error(err))
		}
	}

	if s.redis != nil {
		if err := s.redis.Close(); err != nil {
			s.logger.Error("Failed to close redis connection", zap.Error(err))
		}
	}

	if s.db != nil {
		if err := s.db.Close(); err != nil {
			s.logger.Error("Failed to close database connection", zap.Error(err))
		}
	}

	s.logger.Sync()
	return nil
}
