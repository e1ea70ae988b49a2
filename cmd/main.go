package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"sync"
	"syscall"
	"time"

	"evaluation-service/internal/config"
	"evaluation-service/internal/database/minio"
	"evaluation-service/internal/database/postgres"
	"evaluation-service/internal/database/redis"
	"evaluation-service/internal/event"
	"evaluation-service/internal/handlers"
	"evaluation-service/internal/repository"
	"evaluation-service/internal/services"
	"evaluation-service/internal/worker"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
)

func setupLogging(logDir string) (*os.File, error) {
	defer func() {
		if r := recover(); r != nil {
			fmt.Printf("Recovered from panic: %v\n", r)
		}
	}()

	fmt.Println("Log directory:", logDir)
	err := os.MkdirAll(logDir, 0o755)
	if err != nil {
		return nil, fmt.Errorf("failed to create log directory: %v", err)
	}

	currentTime := time.Now()
	logFileName := fmt.Sprintf("log_%s.log", currentTime.Format("2006-01-02"))
	logFile := filepath.Join(logDir, logFileName)

	file, err := os.OpenFile(logFile, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file: %v", err)
	}

	out := io.MultiWriter(os.Stdout, file)
	log.SetOutput(out)
	log.SetFlags(log.Ldate | log.Ltime | log.Lshortfile)
	slog.SetDefault(slog.New(slog.NewTextHandler(out, &slog.HandlerOptions{AddSource: true})))

	return file, nil
}

func main() {
	if err := godotenv.Load(); err != nil {
		fmt.Println("No .env file found, using environment variables")
	}
	cfg := config.New()

	logFile, err := setupLogging(cfg.LogDir)
	if err != nil {
		fmt.Printf("Logging to stdout only: %v\n", err)
	} else {
		defer logFile.Close()
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// database
	log.Printf("Connecting to PostgreSQL with: host=%s, port=%s, user=%s, dbname=%s",
		cfg.PostgresCfg.Host, cfg.PostgresCfg.Port, cfg.PostgresCfg.Username, cfg.PostgresCfg.DBname)
	db, err := postgres.ConnectWithRetry(ctx, cfg.PostgresCfg, cfg.SchemaPath, 30*time.Second)
	if err != nil {
		log.Fatalf("Error connecting to PostgreSQL: %v", err)
	}
	defer db.Close()

	healthChecks := map[string]handlers.HealthCheck{}

	// repositories
	evaluationRepository := repository.NewEvaluationRepository(db)
	healthChecks["postgres"] = evaluationRepository.Ping

	var evaluationCache repository.IEvaluationCacheRepository
	redisClient, err := redis.NewRedisClient(cfg.RedisCfg)
	if err != nil {
		slog.Warn("Redis unavailable, evaluation cache disabled", "error", err)
	} else {
		defer redisClient.Close()
		evaluationCache = repository.NewEvaluationCacheRepository(redisClient.GetClient(), cfg.CacheCfg.EvaluationTTL)
		healthChecks["redis"] = redisClient.Ping
	}

	var publisher services.EventPublisher
	rabbitConn, err := event.ConnectRabbitMQ(cfg.RabbitMQCfg)
	if err != nil {
		slog.Warn("RabbitMQ unavailable, evaluation events disabled", "error", err)
	} else {
		defer rabbitConn.Close()
		evaluationPublisher := event.NewEvaluationPublisher(rabbitConn)
		publisher = evaluationPublisher
		healthChecks["rabbitmq"] = func(ctx context.Context) error {
			if status := evaluationPublisher.HealthCheck(); !status.IsHealthy {
				return errors.New("publisher channel closed")
			}
			return nil
		}
	}

	var archive services.ReportArchive
	minioClient, err := minio.NewMinioClient(cfg.MinioCfg)
	if err != nil {
		slog.Warn("MinIO unavailable, report archiving disabled", "error", err)
	} else {
		archive = minioClient
		healthChecks["minio"] = minioClient.Healthy
	}

	// background workers
	var managerWg sync.WaitGroup
	pool := worker.NewWorkingPool(cfg.WorkerCfg.NumWorkers, cfg.WorkerCfg.QueueSize)
	managerWg.Add(1)
	go pool.Start(ctx, &managerWg)

	// services
	evaluationService := services.NewEvaluationService(
		evaluationRepository,
		evaluationCache,
		publisher,
		archive,
		pool,
		cfg.MinioCfg.ReportURLExpiry,
	)

	// handlers
	r := gin.Default()
	handlers.NewHealthHandler(healthChecks).RegisterRoutes(r)
	handlers.NewEvaluationHandler(evaluationService).RegisterRoutes(r)

	server := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: r,
	}
	go func() {
		log.Printf("Starting evaluation-service on port %s", cfg.Port)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	<-ctx.Done()
	log.Println("Shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server shutdown failed: %v", err)
	}
	managerWg.Wait()
	log.Println("evaluation-service stopped")
}
