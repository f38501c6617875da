package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"eventsignup/internal/cache"
	"eventsignup/internal/config"
	"eventsignup/internal/database"
	"eventsignup/internal/directory"
	"eventsignup/internal/handlers"
	"eventsignup/internal/identity"
	"eventsignup/internal/metrics"
	"eventsignup/internal/repository"
	"eventsignup/internal/security"
	"eventsignup/internal/service"

	_ "github.com/joho/godotenv/autoload"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func main() {
	// Load configuration
	cfg := config.Load()

	// Initialize database with config (supports sqlite, postgres, mysql)
	db, err := database.InitializeWithConfig(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Close()

	log.Printf("Database connection established (type: %s)", cfg.DatabaseType)

	// Run migrations
	if err := db.RunMigrations(cfg.MigrationsPath); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	log.Println("Migrations completed successfully")

	// Cache backend: redis when configured, in-process otherwise
	cacheBackend, err := cache.New(cfg.RedisURL)
	if err != nil {
		log.Fatalf("Failed to connect to redis: %v", err)
	}

	m := metrics.New(prometheus.DefaultRegisterer)

	// Directory client
	dir := directory.NewClient(cfg)
	dir.Observe(func(d time.Duration) {
		m.DirectoryRequests.Observe(d.Seconds())
	})

	// Initialize repositories
	eventRepo := repository.NewEventRepository(db)
	tokenRepo := repository.NewTokenRepository(db)
	registrationRepo := repository.NewRegistrationRepository(db)

	// Initialize services
	emailService, err := service.NewEmailService(cfg.AWSRegion, cfg.SESFromEmail, cfg.SESFromName)
	if err != nil {
		log.Fatalf("Failed to initialize email service: %v", err)
	}
	signer := identity.NewSigner(cfg.SignatureKey)
	sessions := security.NewSessionManager(cfg.SessionKey, cfg.SessionDuration)
	authService := service.NewAuthService(dir, tokenRepo, emailService, m, cfg.TokenExpiry, cfg.TokenMaxAttempts)
	registrationService := service.NewRegistrationService(dir, eventRepo, registrationRepo, signer, emailService, m, cfg.OperatorEmail)
	zipService := service.NewZipService(dir, cacheBackend)

	// Initialize handlers
	limiter := security.NewRateLimiter(10, time.Minute)
	middleware := handlers.NewMiddleware(sessions, limiter)
	authHandler := handlers.NewAuthHandler(authService, sessions)
	eventHandler := handlers.NewEventHandler(eventRepo)
	registrationHandler := handlers.NewRegistrationHandler(registrationService)
	zipHandler := handlers.NewZipHandler(zipService)

	// Setup routes
	mux := http.NewServeMux()

	mux.HandleFunc("GET /api/Event", eventHandler.ListEvents)
	mux.HandleFunc("GET /api/Event/{id}", eventHandler.GetEvent)
	mux.HandleFunc("POST /api/FindEmail", middleware.RateLimit(middleware.OptionalAuth(authHandler.FindEmail)))
	mux.HandleFunc("POST /api/VerifyLoginToken", middleware.RateLimit(authHandler.VerifyLoginToken))
	mux.HandleFunc("POST /api/Logout", authHandler.Logout)
	mux.HandleFunc("POST /api/GetOrCreateHouse", middleware.RequireAuth(registrationHandler.GetOrCreateHouse))
	mux.HandleFunc("POST /api/CompleteRegistration", middleware.OptionalAuth(registrationHandler.CompleteRegistration))
	mux.HandleFunc("GET /api/Zip/{zip}", zipHandler.GetZip)

	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	mux.Handle("GET /metrics", promhttp.Handler())

	// Wrap with logging middleware
	handler := handlers.Logging(mux)

	// Start server
	addr := ":" + cfg.ServerPort
	server := &http.Server{
		Addr:         addr,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start background token cleanup
	go cleanupExpiredTokens(authService)

	go func() {
		log.Printf("Server starting on http://localhost%s", addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Server shutting down...")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		log.Printf("Shutdown error: %v", err)
	}
}

// cleanupExpiredTokens periodically removes expired login tokens
func cleanupExpiredTokens(authService *service.AuthService) {
	ticker := time.NewTicker(15 * time.Minute)
	defer ticker.Stop()

	for range ticker.C {
		authService.CleanupExpiredTokens()
	}
}
