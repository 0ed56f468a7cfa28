// The apiserver binary serves the JuriStack query surface: case upload and
// status, the consolidated analyze view, the grounded chatbot, and the manual
// prediction endpoint.  Stage execution itself runs in the worker binary; the
// two share the PostgreSQL queue and the Kafka topics.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/juristack/juristack/internal/application/analysis"
	"github.com/juristack/juristack/internal/application/ingest"
	"github.com/juristack/juristack/internal/application/prediction"
	"github.com/juristack/juristack/internal/application/query"
	"github.com/juristack/juristack/internal/application/retrieval"
	"github.com/juristack/juristack/internal/config"
	"github.com/juristack/juristack/internal/domain/pipeline"
	"github.com/juristack/juristack/internal/infrastructure/database/postgres"
	"github.com/juristack/juristack/internal/infrastructure/database/postgres/repositories"
	"github.com/juristack/juristack/internal/infrastructure/database/redis"
	"github.com/juristack/juristack/internal/infrastructure/messaging/kafka"
	"github.com/juristack/juristack/internal/infrastructure/monitoring/logging"
	"github.com/juristack/juristack/internal/infrastructure/monitoring/prometheus"
	"github.com/juristack/juristack/internal/infrastructure/storage/minio"
	"github.com/juristack/juristack/internal/intelligence/embedder"
	"github.com/juristack/juristack/internal/intelligence/genai"
	httpserver "github.com/juristack/juristack/internal/interfaces/http"
	"github.com/juristack/juristack/internal/interfaces/http/handlers"
	"github.com/juristack/juristack/internal/interfaces/http/middleware"
)

const defaultConfigPath = "configs/config.yaml"

// version is injected via ldflags.
var version = "dev"

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "apiserver: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	configPath := flag.String("config", defaultConfigPath, "path to configuration file")
	migrate := flag.Bool("migrate", true, "run pending database migrations on startup")
	flag.Parse()

	cfg, err := loadConfig(*configPath)
	if err != nil {
		return err
	}

	log, err := newLogger(cfg.Log)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	log = log.Named("apiserver")
	log.Info("starting", logging.String("version", version), logging.Int("port", cfg.Server.Port))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// --- Infrastructure ---
	if *migrate {
		if err := postgres.Migrate(&cfg.Database); err != nil {
			return fmt.Errorf("run migrations: %w", err)
		}
	}
	pg, err := postgres.NewConnection(ctx, &cfg.Database, log)
	if err != nil {
		return fmt.Errorf("connect postgres: %w", err)
	}
	defer pg.Close()

	rdb, err := redis.NewClient(cfg.Redis, log)
	if err != nil {
		return fmt.Errorf("connect redis: %w", err)
	}
	defer rdb.Close() //nolint:errcheck
	cache := redis.NewRedisCache(rdb, log, redis.WithDefaultTTL(cfg.Redis.DefaultTTL))
	locks := redis.NewCaseLockManager(rdb, log)

	minioClient, err := minio.NewClient(&cfg.MinIO, log)
	if err != nil {
		return fmt.Errorf("connect minio: %w", err)
	}
	if err := minioClient.EnsureBucket(ctx); err != nil {
		return fmt.Errorf("ensure bucket: %w", err)
	}
	store := minio.NewDocumentStore(minioClient, log)

	producer, err := kafka.NewProducer(kafka.ProducerConfig{
		Brokers:    cfg.Kafka.Brokers,
		MaxRetries: cfg.Kafka.ProducerRetries,
		BatchSize:  cfg.Kafka.BatchSize,
	}, log)
	if err != nil {
		return fmt.Errorf("create kafka producer: %w", err)
	}
	defer producer.Close() //nolint:errcheck
	events := kafka.NewStagePublisher(producer, "apiserver", log)

	if cfg.Kafka.AutoCreateTopics {
		tm, err := kafka.NewTopicManager(cfg.Kafka.Brokers, log)
		if err != nil {
			return fmt.Errorf("connect kafka admin: %w", err)
		}
		if err := tm.EnsureDefaultTopics(ctx, cfg.Kafka.NumPartitions, cfg.Kafka.ReplicationFactor); err != nil {
			tm.Close() //nolint:errcheck
			return fmt.Errorf("ensure topics: %w", err)
		}
		tm.Close() //nolint:errcheck
	}

	collector, err := prometheus.NewMetricsCollector(prometheus.CollectorConfig{
		Namespace:            "juristack",
		Subsystem:            "apiserver",
		EnableProcessMetrics: true,
		EnableGoMetrics:      true,
	}, log)
	if err != nil {
		return fmt.Errorf("init metrics: %w", err)
	}
	metrics := prometheus.NewAppMetrics(collector)

	// --- Repositories ---
	pool := pg.Pool()
	caseRepo := repositories.NewCaseRepository(pool, log)
	artifactRepo := repositories.NewArtifactRepository(pool, log)
	chunkRepo := repositories.NewChunkRepository(pool, log)
	chatRepo := repositories.NewChatRepository(pool, log)
	statsRepo := repositories.NewStatsRepository(pool, log)
	queueRepo := repositories.NewQueueRepository(pool, log)

	// --- Intelligence ---
	emb := embedder.New(cfg.Embedding, log)
	gen, err := genai.New(ctx, cfg.GenAI, log)
	if err != nil {
		return fmt.Errorf("init generative model: %w", err)
	}

	// --- Application services ---
	analysisSvc := analysis.NewService(analysis.Deps{
		Cases:     caseRepo,
		Artifacts: artifactRepo,
		Store:     store,
		Gen:       gen,
		Targets:   cfg.Translation.TargetLanguages,
		Logger:    log,
	})
	retrievalSvc := retrieval.NewService(retrieval.Deps{
		Cases:      caseRepo,
		Artifacts:  artifactRepo,
		Chunks:     chunkRepo,
		Exchanges:  chatRepo,
		Store:      store,
		Embedder:   emb,
		Analysis:   analysisSvc,
		Pipeline:   cfg.Pipeline,
		Similarity: cfg.Similarity,
		Chat:       cfg.Chat,
		Logger:     log,
	})
	predictionSvc := prediction.NewService(prediction.Deps{
		Cases:     caseRepo,
		Artifacts: artifactRepo,
		Stats:     statsRepo,
		Store:     store,
		Config:    cfg.Prediction,
		Logger:    log,
	})

	// The apiserver never ticks the queue, so it carries no stage handlers;
	// the orchestrator here only serves Enqueue, Status and Reset.
	orchestrator := pipeline.NewOrchestrator(pipeline.Deps{
		Queue:    queueRepo,
		Handlers: pipeline.NewHandlerRegistry(),
		Locks:    locks,
		Events:   events,
		Metrics:  prometheus.NewStageObserver(metrics),
		Logger:   log,

		MaxAttempts:  cfg.Pipeline.MaxAttempts,
		RetryBackoff: cfg.Pipeline.RetryBackoff,
		StageTimeout: cfg.Pipeline.StageTimeout,
	})

	ingestSvc := ingest.NewService(ingest.Deps{
		Cases:     caseRepo,
		Artifacts: artifactRepo,
		Store:     store,
		Pipeline:  orchestrator,
		Logger:    log,
	})
	querySvc := query.NewService(query.Deps{
		Cases:     caseRepo,
		Artifacts: artifactRepo,
		Pipeline:  orchestrator,
		Cache:     cache,
		CacheTTL:  cfg.Redis.DefaultTTL,
		Metrics:   metrics,
		Logger:    log,
	})

	// --- HTTP surface ---
	healthHandler := handlers.NewHealthHandler(version, metrics,
		&postgresHealthAdapter{conn: pg},
		&redisHealthAdapter{client: rdb},
		&minioHealthAdapter{client: minioClient},
	)
	router := httpserver.NewRouter(httpserver.RouterConfig{
		CaseHandler:    handlers.NewCaseHandler(ingestSvc, querySvc, orchestrator, cfg.Server.MaxBodySize, log),
		ChatHandler:    handlers.NewChatHandler(retrievalSvc, caseRepo, chatRepo, metrics, log),
		PredictHandler: handlers.NewPredictHandler(predictionSvc, metrics, log),
		HealthHandler:  healthHandler,
		RateLimit:      middleware.NewTokenBucketLimiter(10, 20, 5*time.Minute),
		Logger:         log,
		Metrics:        metrics,
		MetricsHandler: collector.Handler(),
	})
	srv := httpserver.NewServer(cfg.Server, router, log)

	errCh := make(chan error, 1)
	go func() { errCh <- srv.Start() }()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info("shutdown signal received")
	return srv.Stop(context.Background())
}

// loadConfig reads the YAML file when present and falls back to pure
// environment configuration for containerised deployments.
func loadConfig(path string) (*config.Config, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return config.LoadFromEnv()
	}
	return config.Load(path)
}

// newLogger maps the platform log section onto the zap-backed logger.
func newLogger(cfg config.LogConfig) (logging.Logger, error) {
	format := cfg.Format
	if format == "text" {
		format = "console"
	}
	out := cfg.Output
	if out == "" {
		out = "stdout"
	}
	return logging.NewLogger(logging.LogConfig{
		Level:       cfg.Level,
		Format:      format,
		OutputPaths: []string{out},
	})
}
