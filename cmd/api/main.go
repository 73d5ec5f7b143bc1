package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"

	"github.com/bryanwahyu/gitgrade/internal/application"
	appanalysis "github.com/bryanwahyu/gitgrade/internal/application/analysis"
	"github.com/bryanwahyu/gitgrade/internal/application/insight"
	"github.com/bryanwahyu/gitgrade/internal/config"
	domain "github.com/bryanwahyu/gitgrade/internal/domain/analysis"
	"github.com/bryanwahyu/gitgrade/internal/domain/credentials"
	"github.com/bryanwahyu/gitgrade/internal/domain/scoring"
	openaiinfra "github.com/bryanwahyu/gitgrade/internal/infra/ai/openai"
	mysqlp "github.com/bryanwahyu/gitgrade/internal/infra/db/mysql"
	postgresp "github.com/bryanwahyu/gitgrade/internal/infra/db/postgres"
	sqlitep "github.com/bryanwahyu/gitgrade/internal/infra/db/sqlite"
	"github.com/bryanwahyu/gitgrade/internal/infra/httpserver"
	githubvcs "github.com/bryanwahyu/gitgrade/internal/infra/vcs/github"
	minioStore "github.com/bryanwahyu/gitgrade/internal/infra/storage"
	"github.com/bryanwahyu/gitgrade/internal/middleware"
)

func main() {
	path := "config.yaml"
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		path = v
	}

	cfg, err := config.Load(path)
	if err != nil {
		log.Fatalf("config load error: %v", err)
	}

	ctx := context.Background()

	// cache backend by driver
	cache, db, err := openCache(ctx, cfg)
	if err != nil {
		log.Fatalf("cache init error (%s): %v", cfg.Cache.Driver, err)
	}
	defer db.Close()

	// GitHub fetcher with token rotation; no tokens means anonymous access
	tokens := cfg.GitHub.Tokens
	if len(tokens) == 0 {
		log.Println("no GitHub tokens configured, using anonymous access")
		tokens = []string{""}
	}
	fetcher := githubvcs.NewFetcher(credentials.NewRotator("github", tokens), githubvcs.Options{
		APIBase:       cfg.GitHub.APIBase,
		Timeout:       time.Duration(cfg.GitHub.TimeoutSeconds) * time.Second,
		MaxAttempts:   cfg.GitHub.MaxAttempts,
		MaxFiles:      cfg.GitHub.MaxFiles,
		MaxFileBytes:  int64(cfg.GitHub.MaxFileKB) * 1024,
		MaxTotalBytes: int64(cfg.GitHub.MaxTotalKB) * 1024,
		CommitWindow:  cfg.GitHub.CommitWindow,
	})

	// insight primary path, absent when no keys are configured
	var aiClient domain.InsightClient
	if len(cfg.AI.APIKeys) > 0 {
		aiClient = openaiinfra.NewClient(
			credentials.NewRotator("openai", cfg.AI.APIKeys),
			cfg.AI.Model,
			time.Duration(cfg.AI.TimeoutSeconds)*time.Second,
		)
	} else {
		log.Println("no AI keys configured, insights use the rule-based fallback")
	}
	insights := insight.NewService(aiClient, cfg.Offline)

	// optional result archive
	var archive domain.ArtifactStore
	if cfg.Archive.Enabled {
		store, err := minioStore.New(ctx,
			cfg.Archive.Endpoint,
			cfg.Archive.Region,
			cfg.Archive.BucketName,
			cfg.Archive.AccessKey,
			cfg.Archive.SecretKey,
			cfg.Archive.UseSSL,
		)
		if err != nil {
			log.Fatalf("archive init error: %v", err)
		}
		archive = store
	}

	svc := appanalysis.NewService(
		fetcher,
		scoring.NewEngine(),
		insights,
		cache,
		archive,
		application.SystemClock{},
		cfg.Offline,
	)

	checkers := map[string]middleware.HealthChecker{
		"cache": &middleware.DatabaseHealthChecker{DB: db},
	}

	mux := chi.NewRouter()
	mux.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type", "Authorization"},
		MaxAge:         300,
	}))
	mux.Use(middleware.LoggingMiddleware)
	mux.Use(middleware.MetricsMiddleware)
	mux.Use(middleware.RateLimitMiddleware(cfg.RateLimit.Capacity, cfg.RateLimit.RefillRate))
	if len(cfg.Auth.APIKeys) > 0 {
		mux.Use(middleware.APIKeyAuth(cfg.Auth.APIKeys))
	}
	mux.Mount("/", httpserver.NewRouter(svc, checkers))

	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("server listening on %s (offline=%v, cache=%s)", addr, cfg.Offline, cfg.Cache.Driver)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop
	log.Println("shutting down server...")

	ctx2, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx2); err != nil {
		log.Printf("shutdown error: %v", err)
	}
}

func openCache(ctx context.Context, cfg *config.Config) (domain.Cache, *sql.DB, error) {
	switch cfg.Cache.Driver {
	case "sqlite":
		db, err := sqlitep.Connect(ctx, cfg.Cache.Path)
		if err != nil {
			return nil, nil, err
		}
		repo, err := sqlitep.NewCacheRepo(ctx, db)
		return repo, db, err
	case "mysql":
		db, err := mysqlp.Connect(ctx, cfg.MySQLDSN())
		if err != nil {
			return nil, nil, err
		}
		repo, err := mysqlp.NewCacheRepo(ctx, db)
		return repo, db, err
	case "postgres":
		db, err := postgresp.Connect(ctx, cfg.PostgresDSN())
		if err != nil {
			return nil, nil, err
		}
		repo, err := postgresp.NewCacheRepo(ctx, db)
		return repo, db, err
	default:
		return nil, nil, fmt.Errorf("unknown cache driver: %s", cfg.Cache.Driver)
	}
}
