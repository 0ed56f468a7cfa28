// The worker binary drives the staged judgment pipeline: it claims queue
// entries from PostgreSQL, runs the stage handlers, and publishes stage
// events.  Kafka enqueue events shorten the poll latency; the PostgreSQL
// queue remains the sole source of truth, so the worker keeps processing
// even with the broker down.
package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/juristack/juristack/internal/application/analysis"
	"github.com/juristack/juristack/internal/application/ingest"
	"github.com/juristack/juristack/internal/application/prediction"
	"github.com/juristack/juristack/internal/application/query"
	"github.com/juristack/juristack/internal/application/retrieval"
	"github.com/juristack/juristack/internal/application/stages"
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
)

const (
	defaultConfigPath = "configs/config.yaml"
	defaultHealthPort = 8081

	// queueDepthInterval is how often the per-stage queue gauge refreshes.
	queueDepthInterval = 15 * time.Second
)

// version is injected via ldflags.
var version = "dev"

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "worker: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	configPath := flag.String("config", defaultConfigPath, "path to configuration file")
	workers := flag.Int("workers", 0, "number of concurrent workers (overrides config)")
	healthPort := flag.Int("health-port", defaultHealthPort, "port for health and metrics endpoints")
	flag.Parse()

	cfg, err := loadConfig(*configPath)
	if err != nil {
		return err
	}
	concurrency := cfg.Worker.Concurrency
	if *workers > 0 {
		concurrency = *workers
	}
	if concurrency <= 0 {
		concurrency = 2
	}

	log, err := newLogger(cfg.Log)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	log = log.Named("worker")
	log.Info("starting",
		logging.String("version", version),
		logging.Int("concurrency", concurrency))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// --- Infrastructure ---
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
	locks := redis.NewCaseLockManager(rdb, log, redis.WithLockTTL(cfg.Worker.LockTTL))

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
		Subsystem:            "worker",
		EnableProcessMetrics: true,
		EnableGoMetrics:      true,
	}, log)
	if err != nil {
		return fmt.Errorf("init metrics: %w", err)
	}
	metrics := prometheus.NewAppMetrics(collector)

	// --- Repositories and services ---
	pool := pg.Pool()
	caseRepo := repositories.NewCaseRepository(pool, log)
	artifactRepo := repositories.NewArtifactRepository(pool, log)
	chunkRepo := repositories.NewChunkRepository(pool, log)
	chatRepo := repositories.NewChatRepository(pool, log)
	statsRepo := repositories.NewStatsRepository(pool, log)
	queueRepo := repositories.NewQueueRepository(pool, log)

	emb := embedder.New(cfg.Embedding, log)
	gen, err := genai.New(ctx, cfg.GenAI, log)
	if err != nil {
		return fmt.Errorf("init generative model: %w", err)
	}

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

	// The registry is created empty and filled after the services exist:
	// ingest needs the orchestrator, and the orchestrator needs the registry.
	registry := pipeline.NewHandlerRegistry()
	orchestrator := pipeline.NewOrchestrator(pipeline.Deps{
		Queue:    queueRepo,
		Handlers: registry,
		Locks:    locks,
		Events:   kafka.NewStagePublisher(producer, "worker", log),
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

	stages.RegisterInto(registry, stages.Deps{
		Ingest:     ingestSvc,
		Analysis:   analysisSvc,
		Retrieval:  retrievalSvc,
		Prediction: predictionSvc,
	})

	// --- Wake-up consumer ---
	// Enqueue events cut the poll latency to near zero; the consumer is
	// optional and the worker degrades to pure polling without it.
	wake := make(chan struct{}, 1)
	consumer, err := kafka.NewConsumer(kafka.ConsumerConfig{
		Brokers:         cfg.Kafka.Brokers,
		GroupID:         cfg.Kafka.GroupID,
		Topics:          []string{kafka.TopicCaseEnqueued},
		AutoOffsetReset: cfg.Kafka.AutoOffsetReset,
	}, log)
	if err != nil {
		log.Warn("kafka consumer unavailable, falling back to polling", logging.Err(err))
	} else {
		_ = consumer.Subscribe(kafka.TopicCaseEnqueued, func(context.Context, *kafka.Message) error {
			select {
			case wake <- struct{}{}:
			default:
			}
			return nil
		})
		if err := consumer.Start(ctx); err != nil {
			log.Warn("kafka consumer failed to start", logging.Err(err))
		} else {
			defer consumer.Close() //nolint:errcheck
		}
	}

	// --- Health and metrics endpoint ---
	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"alive"}`))
	})
	mux.Handle("GET /metrics", collector.Handler())
	healthSrv := &http.Server{Addr: fmt.Sprintf(":%d", *healthPort), Handler: mux}
	go func() {
		if err := healthSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("health endpoint failed", logging.Err(err))
		}
	}()

	// --- Queue depth gauge ---
	go func() {
		ticker := time.NewTicker(queueDepthInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				depths, err := queueRepo.CountByStage(ctx)
				if err != nil {
					log.Warn("queue depth refresh failed", logging.Err(err))
					continue
				}
				metrics.SetQueueDepth(depths)
			}
		}
	}()

	// --- Worker pool ---
	pollInterval := cfg.Worker.PollInterval
	if pollInterval <= 0 {
		pollInterval = 2 * time.Second
	}

	var wg sync.WaitGroup
	for i := 0; i < concurrency; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			runLoop(ctx, orchestrator, querySvc, wake, pollInterval,
				log.With(logging.Int("worker_id", id)))
		}(i)
	}

	<-ctx.Done()
	log.Info("shutdown signal received, draining workers")
	wg.Wait()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = healthSrv.Shutdown(shutdownCtx)

	log.Info("worker stopped")
	return nil
}

// runLoop ticks the pipeline until the context ends.  After an idle tick it
// waits for the poll interval or a Kafka wake-up, whichever comes first.
func runLoop(ctx context.Context, orc pipeline.Orchestrator, queries query.Service,
	wake <-chan struct{}, pollInterval time.Duration, log logging.Logger) {
	for {
		if ctx.Err() != nil {
			return
		}

		res, err := orc.Tick(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			log.Error("tick failed", logging.Err(err))
			sleepOrWake(ctx, wake, pollInterval)
			continue
		}

		switch res.Outcome {
		case pipeline.OutcomeIdle:
			sleepOrWake(ctx, wake, pollInterval)
		case pipeline.OutcomeSkipped:
			// Another worker holds the case; try the next entry soon.
			sleepOrWake(ctx, wake, pollInterval/4)
		default:
			// A stage ran: drop any stale analyze view before the next claim.
			if res.Entry != nil {
				if err := queries.InvalidateCase(ctx, res.Entry.CaseNumber); err != nil {
					log.Warn("analyze cache not invalidated",
						logging.String("case_number", res.Entry.CaseNumber), logging.Err(err))
				}
			}
		}
	}
}

func sleepOrWake(ctx context.Context, wake <-chan struct{}, d time.Duration) {
	if d <= 0 {
		d = time.Second
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
	case <-wake:
	case <-timer.C:
	}
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
