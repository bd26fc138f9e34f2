package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"

	"github.com/Skufu/HeartCheck/internal/heart"
	"github.com/Skufu/HeartCheck/internal/model"
	"github.com/Skufu/HeartCheck/internal/observability"
)

const serviceName = "heartcheck"

type HealthChecker interface {
	Ping(ctx context.Context) error
}

type Config struct {
	Port           string
	ModelPath      string
	DatabaseURL    string
	EnableDB       bool
	LogLevel       string
	LogFile        string
	TracesExporter string
}

func main() {
	gin.SetMode(getEnv("GIN_MODE", "release"))

	cfg, err := loadConfig()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}

	logger, err := observability.NewLogger(observability.LogConfig{Level: cfg.LogLevel, File: cfg.LogFile})
	if err != nil {
		log.Fatalf("logger error: %v", err)
	}
	defer logger.Sync()

	ctx := context.Background()
	shutdownTracer, err := observability.InitTracer(ctx, serviceName, cfg.TracesExporter)
	if err != nil {
		logger.Fatal("tracer setup failed", zap.Error(err))
	}
	defer shutdownTracer(ctx)

	// The model is loaded once, before the router exists, and never reloaded.
	ens, err := model.LoadModel(cfg.ModelPath, model.WithFeatureNames(heart.FeatureNames()))
	if err != nil {
		if errors.Is(err, model.ErrModelNotFound) {
			logger.Fatal("model artifact not found", zap.String("path", cfg.ModelPath), zap.Error(err))
		}
		logger.Fatal("model artifact is corrupt or incompatible", zap.String("path", cfg.ModelPath), zap.Error(err))
	}
	logger.Info("model loaded", zap.String("path", cfg.ModelPath), zap.Int("trees", len(ens.Trees)))
	if ens.Synthetic {
		logger.Warn("model artifact is a synthetic placeholder; predictions are not clinically meaningful",
			zap.String("path", cfg.ModelPath), zap.String("description", ens.Description))
	}

	var db HealthChecker
	if cfg.EnableDB {
		pool, err := connectDB(ctx, cfg.DatabaseURL)
		if err != nil {
			logger.Fatal("database connection failed", zap.Error(err))
		}
		defer pool.Close()
		db = pool
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	metrics := observability.NewMetrics(reg)
	metrics.SetModel(cfg.ModelPath, len(ens.Trees))

	info := ModelInfo{Path: cfg.ModelPath, Description: ens.Description, Synthetic: ens.Synthetic}
	router := setupRouter(Dependencies{
		Service:  heart.NewService(ens),
		Model:    info,
		DB:       db,
		Logger:   logger,
		Metrics:  metrics,
		Gatherer: reg,
	}, detectStaticRoot())
	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server error", zap.Error(err))
		}
	}()

	logger.Info("server listening", zap.String("port", cfg.Port))
	waitForShutdown(server, logger)
}

func loadConfig() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Port:           getEnv("PORT", "8080"),
		ModelPath:      getEnv("MODEL_PATH", filepath.Join("models", "heart_disease_model.json")),
		DatabaseURL:    os.Getenv("DATABASE_URL"),
		EnableDB:       strings.EqualFold(getEnv("ENABLE_DB", "false"), "true"),
		LogLevel:       getEnv("LOG_LEVEL", "info"),
		LogFile:        os.Getenv("LOG_FILE"),
		TracesExporter: getEnv("TRACES_EXPORTER", "none"),
	}

	if cfg.EnableDB && cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required when ENABLE_DB=true")
	}
	if strings.TrimSpace(cfg.ModelPath) == "" {
		return nil, fmt.Errorf("MODEL_PATH must not be empty")
	}

	return cfg, nil
}

func connectDB(ctx context.Context, url string) (*pgxpool.Pool, error) {
	cfg, err := pgxpool.ParseConfig(url)
	if err != nil {
		return nil, fmt.Errorf("parse db url: %w", err)
	}

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("create pool: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping db: %w", err)
	}

	return pool, nil
}

func waitForShutdown(server *http.Server, logger *zap.Logger) {
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	logger.Info("shutting down server")
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Error("graceful shutdown failed", zap.Error(err))
	}
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func detectStaticRoot() string {
	startDir, err := os.Getwd()
	if err != nil {
		return "."
	}

	candidates := []string{
		startDir,
		filepath.Dir(startDir),
		filepath.Dir(filepath.Dir(startDir)),
	}

	for _, dir := range candidates {
		if fileExists(filepath.Join(dir, "index.html")) {
			return dir
		}
	}

	return startDir
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return !info.IsDir()
}
