package main

import (
	"context"
	"io"
	"log"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/cors"

	"hoclieu/internal/config"
	"hoclieu/internal/drive"
	"hoclieu/internal/handler"
	"hoclieu/internal/middleware"
	"hoclieu/internal/repository/postgres"
	"hoclieu/internal/service"
	"hoclieu/internal/storage"
)

func main() {
	// Load .env file (silently ignore if it doesn't exist - for production)
	_ = godotenv.Load()

	// Load configuration
	cfg := config.Load()

	// Setup structured logging
	logLevel := slog.LevelInfo
	if cfg.Environment == "dev" {
		logLevel = slog.LevelDebug
	}

	var logOut io.Writer = os.Stdout
	if cfg.LogDir != "" {
		logFile, err := config.SetupLogFile(cfg.LogDir, config.MaxLogFiles)
		if err != nil {
			log.Fatalf("Failed to setup log file: %v", err)
		}
		defer logFile.Close()
		logOut = io.MultiWriter(os.Stdout, logFile)
	}

	logger := slog.New(slog.NewJSONHandler(logOut, &slog.HandlerOptions{
		Level: logLevel,
	}))
	slog.SetDefault(logger)

	logger.Info("server starting",
		"environment", cfg.Environment,
		"port", cfg.Port,
		"table_prefix", cfg.TablePrefix,
		"remote_storage", cfg.RemoteStorageEnabled,
	)

	// Create pgx connection pool
	ctx := context.Background()
	pool, err := postgres.CreateConnectionPool(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to create connection pool: %v", err)
	}
	defer pool.Close()

	logger.Info("database connected",
		"max_conns", 25,
		"min_conns", 5,
	)

	// Create repositories
	tables := postgres.NewTableNames(cfg.TablePrefix)
	repoConfig := &postgres.RepositoryConfig{
		Pool:   pool,
		Tables: tables,
		Logger: logger,
	}
	attachmentRepo := postgres.NewAttachmentRepository(repoConfig)
	mappingRepo := postgres.NewFolderMappingRepository(repoConfig)
	searchRepo := postgres.NewSearchRepository(repoConfig)
	txManager := postgres.NewTransactionManager(pool)

	// Local storage backend (always present; the fallback)
	localBackend, err := storage.NewLocalBackend(cfg.LocalStorageDir)
	if err != nil {
		log.Fatalf("Failed to setup local storage: %v", err)
	}

	// Remote storage backend (optional)
	var (
		driveClient   drive.Client
		resolver      *drive.Resolver
		remoteBackend *storage.RemoteBackend
	)
	if cfg.RemoteStorageEnabled {
		if cfg.DriveRootFolderID == "" {
			log.Fatalf("REMOTE_STORAGE_ENABLED requires DRIVE_ROOT_FOLDER_ID")
		}
		driveClient, err = drive.NewGoogleClient(ctx, cfg.DriveCredentialsFile)
		if err != nil {
			log.Fatalf("Failed to create drive client: %v", err)
		}

		naming, err := drive.LoadNamingRules()
		if err != nil {
			log.Fatalf("Failed to load naming rules: %v", err)
		}

		resolver = drive.NewResolver(mappingRepo, driveClient, drive.NewFolderCache(), naming, cfg.DriveRootFolderID, logger)
		remoteBackend = storage.NewRemoteBackend(driveClient, resolver, cfg.DriveRootFolderID)

		logger.Info("remote storage enabled",
			"root_folder_id", cfg.DriveRootFolderID,
		)
	}

	// Create services
	attachmentService := service.NewAttachmentService(attachmentRepo, txManager, localBackend, remoteBackend, cfg.RemoteStorageEnabled, logger)
	searchService := service.NewSearchService(searchRepo, logger)
	browseService := service.NewBrowseService(resolver, driveClient, attachmentRepo, logger)

	// Create handlers
	healthHandler := handler.NewHealthHandler(pool, logger)
	attachmentHandler := handler.NewAttachmentHandler(attachmentService, cfg.MaxUploadBytes, logger)
	searchHandler := handler.NewSearchHandler(searchService, logger)
	browseHandler := handler.NewBrowseHandler(browseService, logger)

	logger.Info("services initialized")

	// Create HTTP router (Go 1.22+ enhanced patterns)
	mux := http.NewServeMux()

	// Health check
	mux.HandleFunc("GET /health", healthHandler.Check)

	// Attachment routes
	mux.HandleFunc("POST /api/attachments", attachmentHandler.Upload)
	mux.HandleFunc("GET /api/attachments/{id}", attachmentHandler.Get)
	mux.HandleFunc("GET /api/attachments/{id}/download", attachmentHandler.Download)
	mux.HandleFunc("DELETE /api/attachments/{id}", attachmentHandler.Delete)

	// Search routes
	mux.HandleFunc("GET /api/search", searchHandler.Search)
	mux.HandleFunc("GET /api/search/suggest", searchHandler.Suggest)
	mux.HandleFunc("POST /api/admin/reindex", searchHandler.Reindex)

	// Browse routes
	mux.HandleFunc("GET /api/browse", browseHandler.Browse)

	// Build middleware chain
	var root http.Handler = mux

	// Apply middleware in reverse order (they wrap each other)
	// Order: CORS → Recovery → Identity → Routes
	root = middleware.Identity()(root)
	root = middleware.Recovery(logger)(root)

	// CORS - Must be before the rest to handle OPTIONS pre-flight requests
	corsHandler := cors.New(cors.Options{
		AllowedOrigins:   strings.Split(cfg.CORSOrigins, ","),
		AllowedMethods:   []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Origin", "Content-Type", "Accept", "X-User-ID"},
		AllowCredentials: true,
	})
	root = corsHandler.Handler(root)

	// Create HTTP server
	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      root,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 5 * time.Minute, // Large attachment downloads
		IdleTimeout:  60 * time.Second,
	}

	// Start server
	logger.Info("server listening", "port", cfg.Port)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatalf("Failed to start server: %v", err)
	}
}
