package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"

	"kidsvids/internal/config"
	"kidsvids/internal/database"
	"kidsvids/internal/handlers"
	"kidsvids/internal/logger"
	"kidsvids/internal/repository"
	"kidsvids/internal/security"
	"kidsvids/internal/service"
	"kidsvids/internal/session"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.NewLogger(cfg.LogLevel, cfg.LogFormat, "kidsvids")
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.Fatal("server failed", zap.Error(err))
	}
}

func run(ctx context.Context, cfg *config.Config, log *zap.Logger) error {
	// Initialize database with config (supports sqlite, postgres, mysql)
	db, err := database.InitializeWithConfig(cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer db.Close()

	log.Info("database connection established", zap.String("type", db.Dialect.DriverName()))

	if err := db.RunMigrations(ctx, log); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	if cfg.SeedSamples {
		seeded, err := db.SeedSampleVideos(ctx)
		if err != nil {
			log.Warn("failed to seed sample videos", zap.Error(err))
		} else if seeded > 0 {
			log.Info("sample videos seeded", zap.Int("count", seeded))
		}
	}

	store, closeStore, err := openSessionStore(ctx, cfg, db, log)
	if err != nil {
		return err
	}
	defer closeStore()

	// Initialize repositories
	parentRepo := repository.NewParentRepository(db)
	kidRepo := repository.NewKidRepository(db)
	videoRepo := repository.NewVideoRepository(db)
	categoryRepo := repository.NewCategoryRepository(db)
	reportRepo := repository.NewReportRepository(db)

	// Initialize services
	emailService, err := service.NewEmailService(ctx, cfg.AWSRegion, cfg.SESFromEmail, cfg.SESFromName, cfg.AppBaseURL, cfg.EmailDebug, log)
	if err != nil {
		return fmt.Errorf("failed to initialize email service: %w", err)
	}
	mediaService, err := service.NewMediaService(ctx, cfg.AWSRegion, cfg.S3Bucket, cfg.MediaBaseURL, log)
	if err != nil {
		return fmt.Errorf("failed to initialize media service: %w", err)
	}
	if cfg.AdminPassword == "" {
		log.Warn("admin login disabled: ADMIN_PASSWORD not configured")
	}

	contentService := service.NewContentService(db, log)
	authService := service.NewAuthService(parentRepo, emailService, log)
	profileService := service.NewProfileService(db, log)
	overlayService := service.NewOverlayService(db)
	playbackService := service.NewPlaybackService(videoRepo, contentService, log)
	adminService := service.NewAdminService(cfg.AdminEmail, cfg.AdminPassword, videoRepo, categoryRepo, parentRepo, log)
	reportService := service.NewReportService(reportRepo, parentRepo)
	backupService := service.NewBackupService(db, log)

	// Initialize handlers
	sessions := session.NewManager(ctx, store, cfg.SessionIdle, log)
	tokens := security.NewTokenIssuer(cfg.TokenSecret, cfg.TokenTTL)
	if cfg.TokenSecret == "" {
		log.Warn("TOKEN_SECRET not configured: tokens will not survive a restart")
	}
	limiter := security.NewRateLimiter(ctx, cfg.LoginRateLimit, cfg.LoginRateWindow)
	middleware := handlers.NewMiddleware(tokens, sessions, limiter, log)

	mux := handlers.Routes(middleware,
		handlers.NewAuthHandler(authService, sessions, tokens, middleware, log),
		handlers.NewParentHandler(profileService, log),
		handlers.NewKidHandler(contentService, overlayService, playbackService, kidRepo, categoryRepo, log),
		handlers.NewAdminHandler(adminService, reportService, mediaService, backupService, tokens, cfg.UploadMaxSize, log),
	)

	// Start server
	server := &http.Server{
		Addr:         ":" + cfg.ServerPort,
		Handler:      handlers.Logging(log, mux),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("server starting", zap.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("server failed: %w", err)
	case <-ctx.Done():
	}

	log.Info("server shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}

// openSessionStore selects where device sessions are persisted
func openSessionStore(ctx context.Context, cfg *config.Config, db *database.DB, log *zap.Logger) (session.Store, func(), error) {
	switch cfg.SessionStore {
	case "redis":
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		if err := client.Ping(ctx).Err(); err != nil {
			client.Close()
			return nil, nil, fmt.Errorf("failed to connect to redis at %s: %w", cfg.RedisAddr, err)
		}
		log.Info("sessions stored in redis", zap.String("addr", cfg.RedisAddr))
		return session.NewRedisStore(client, cfg.TokenTTL), func() { client.Close() }, nil
	case "memory":
		log.Warn("sessions stored in memory: logins are lost on restart")
		return session.NewMemoryStore(), func() {}, nil
	default:
		log.Info("sessions stored in database")
		return session.NewSQLStore(db), func() {}, nil
	}
}
