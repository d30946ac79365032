package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"inventory-media-service/internal/adapters/primary/http/handlers"
	"inventory-media-service/internal/adapters/primary/http/middleware"
	"inventory-media-service/internal/adapters/secondary/filesystem"
	"inventory-media-service/internal/adapters/secondary/postgres"
	"inventory-media-service/internal/adapters/secondary/prometheus"
	"inventory-media-service/internal/adapters/secondary/sqlite"
	"inventory-media-service/internal/config"
	"inventory-media-service/internal/core/ports/output"
	"inventory-media-service/internal/core/services"
	"inventory-media-service/internal/core/worker"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	prom "github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/afero"
	"gopkg.in/natefinch/lumberjack.v2"
)

// repositories bundles the persistence backend chosen by DATABASE_DRIVER.
type repositories struct {
	items     ports.ItemRepository
	images    ports.ItemImageRepository
	documents ports.DocumentRepository
	health    func(ctx context.Context) error
	close     func()
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	closeLog := initLogger(cfg)
	defer closeLog()

	repos, err := openRepositories(context.Background(), cfg.Database)
	if err != nil {
		log.Fatalf("open database: %v", err)
	}
	defer repos.close()
	log.WithField("driver", cfg.Database.Driver).Info("database connection established")

	// ============================================================================
	// Hexagonal Architecture Wiring
	// ============================================================================

	// Secondary Adapters (Artifact Storage)
	store := filesystem.NewStore(afero.NewOsFs(), cfg.Storage.Layout())
	if err := store.EnsureDirs(); err != nil {
		log.Fatalf("prepare storage directories: %v", err)
	}

	// Metrics (Optional - based on config)
	registry := prom.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	var observer ports.MediaObserver = ports.NopObserver{}
	if cfg.Metrics.Enabled {
		o, err := prometheus.NewObserver(cfg.Metrics.Namespace, registry)
		if err != nil {
			log.Fatalf("register media metrics: %v", err)
		}
		observer = o
		log.Info("media metrics enabled")
	} else {
		log.Info("media metrics disabled")
	}

	pool := worker.NewPool(worker.WithWorkers(cfg.Worker.Count), worker.WithQueueSize(cfg.Worker.QueueSize))

	// Core Services (Application Layer)
	validator := services.NewUploadValidator(cfg.Media.MaxImageBytes, cfg.Media.MaxDocumentBytes)
	allocator := services.NewFilenameAllocator()
	normalizer := services.NewImageNormalizer(store, services.NormalizerOptions{
		MaxDimension:     cfg.Media.MaxDimension,
		ThumbnailSize:    cfg.Media.ThumbnailSize,
		JPEGQuality:      cfg.Media.JPEGQuality,
		ThumbnailQuality: cfg.Media.ThumbnailQuality,
		AutoOrient:       cfg.Media.AutoOrient,
		MaxPixels:        cfg.Media.MaxPixels,
	}, observer)
	renderer, err := services.NewQRLabelRenderer(store, observer)
	if err != nil {
		log.Fatalf("init QR label renderer: %v", err)
	}
	storageMgr := services.NewStorageManager(repos.items, repos.images, repos.documents, store, renderer, observer)

	imageSvc := services.NewItemImageService(repos.items, repos.images, validator, allocator, normalizer, storageMgr, store, pool)
	documentSvc := services.NewDocumentService(repos.items, repos.documents, validator, allocator, services.NewDocumentStore(store, observer), store)
	qrSvc := services.NewQRCodeService(repos.items, renderer, allocator, pool)

	// Primary Adapter (HTTP Handlers)
	h := handlers.New(imageSvc, documentSvc, qrSvc, storageMgr, validator)

	// Setup router
	router := gin.New()
	router.Use(middleware.RequestID(), middleware.Logging(), gin.Recovery())
	if cfg.Metrics.Enabled {
		httpMetrics, err := middleware.Metrics(cfg.Metrics.Namespace, registry)
		if err != nil {
			log.Fatalf("register http metrics: %v", err)
		}
		router.Use(httpMetrics)
		router.GET(cfg.Metrics.Path, gin.WrapH(promhttp.HandlerFor(registry, promhttp.HandlerOpts{})))
	}

	api := router.Group("/api")
	h.RegisterRoutes(api)

	// Health check with DB ping
	router.GET("/healthz", func(c *gin.Context) {
		if err := repos.health(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unhealthy", "error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// Start server
	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Infof("starting server on %s", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("server error: %v", err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.WithError(err).Error("server forced shutdown")
	}
	// In-flight normalizations and renders finish before the database closes.
	pool.Shutdown(ctx)

	log.Info("server stopped")
}

func openRepositories(ctx context.Context, cfg config.DatabaseConfig) (*repositories, error) {
	switch cfg.Driver {
	case config.DriverPostgres:
		poolCfg, err := pgxpool.ParseConfig(cfg.DSN())
		if err != nil {
			return nil, fmt.Errorf("parse db config: %w", err)
		}
		poolCfg.MaxConns = int32(cfg.MaxOpenConns)
		poolCfg.MinConns = int32(cfg.MaxIdleConns)
		poolCfg.MaxConnLifetime = cfg.ConnMaxLifetime

		pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
		if err != nil {
			return nil, fmt.Errorf("create db pool: %w", err)
		}
		if err := pool.Ping(ctx); err != nil {
			pool.Close()
			return nil, fmt.Errorf("ping db: %w", err)
		}
		if err := postgres.Migrate(ctx, pool); err != nil {
			pool.Close()
			return nil, err
		}
		return &repositories{
			items:     postgres.NewItemRepository(pool),
			images:    postgres.NewItemImageRepository(pool),
			documents: postgres.NewDocumentRepository(pool),
			health:    pool.Ping,
			close:     pool.Close,
		}, nil

	case config.DriverSQLite:
		store, err := sqlite.NewStore(sqlite.Config{Path: cfg.SQLitePath})
		if err != nil {
			return nil, err
		}
		if err := store.Connect(ctx); err != nil {
			return nil, fmt.Errorf("connect sqlite: %w", err)
		}
		if err := store.Migrate(ctx); err != nil {
			return nil, fmt.Errorf("migrate sqlite: %w", err)
		}
		return &repositories{
			items:     store.Items(),
			images:    store.Images(),
			documents: store.Documents(),
			health:    store.Health,
			close: func() {
				if err := store.Close(); err != nil {
					log.WithError(err).Warn("close sqlite")
				}
			},
		}, nil
	}
	return nil, fmt.Errorf("unknown database driver %q", cfg.Driver)
}

// initLogger configures the global logger. With LOGGER_FILE set, entries go
// to stdout and to a size-rotated file.
func initLogger(cfg *config.Config) func() {
	level, err := log.ParseLevel(cfg.Logger.Level)
	if err != nil {
		level = log.InfoLevel
	}
	log.SetLevel(level)

	if cfg.Logger.Format == "json" {
		log.SetFormatter(&log.JSONFormatter{})
	} else {
		log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	}

	if cfg.Logger.File == "" {
		return func() {}
	}
	fileWriter := &lumberjack.Logger{
		Filename:   cfg.Logger.File,
		MaxSize:    cfg.Logger.MaxSizeMB,
		MaxBackups: cfg.Logger.MaxBackups,
		MaxAge:     cfg.Logger.MaxAgeDays,
		Compress:   cfg.Logger.Compress,
	}
	log.SetOutput(io.MultiWriter(os.Stdout, fileWriter))
	return func() { _ = fileWriter.Close() }
}
