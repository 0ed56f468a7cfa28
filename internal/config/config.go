// Package config defines all configuration structures for the JuriStack
// platform.  No I/O or parsing logic lives here — only plain data types and
// validation.
package config

import (
	"fmt"
	"time"
)

// ─────────────────────────────────────────────────────────────────────────────
// Sub-configuration structs
// ─────────────────────────────────────────────────────────────────────────────

// ServerConfig holds HTTP server tunables.
type ServerConfig struct {
	Port            int           `mapstructure:"port"`
	Mode            string        `mapstructure:"mode"` // "debug" | "release" | "test"
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	MaxBodySize     int64         `mapstructure:"max_body_size"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// DatabaseConfig holds PostgreSQL connection parameters.
type DatabaseConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	User            string        `mapstructure:"user"`
	Password        string        `mapstructure:"password"`
	DBName          string        `mapstructure:"db_name"`
	SSLMode         string        `mapstructure:"ssl_mode"`
	MaxConns        int           `mapstructure:"max_conns"`
	MinConns        int           `mapstructure:"min_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
	ConnMaxIdleTime time.Duration `mapstructure:"conn_max_idle_time"`
	MigrationPath   string        `mapstructure:"migration_path"`
}

// RedisConfig holds Redis connection parameters.
type RedisConfig struct {
	Addr         string        `mapstructure:"addr"`
	Password     string        `mapstructure:"password"`
	DB           int           `mapstructure:"db"`
	PoolSize     int           `mapstructure:"pool_size"`
	MinIdleConns int           `mapstructure:"min_idle_conns"`
	DialTimeout  time.Duration `mapstructure:"dial_timeout"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	DefaultTTL   time.Duration `mapstructure:"default_ttl"`
	KeyPrefix    string        `mapstructure:"key_prefix"`
}

// KafkaConfig holds Apache Kafka producer/consumer parameters.
type KafkaConfig struct {
	Brokers           []string `mapstructure:"brokers"`
	GroupID           string   `mapstructure:"group_id"`
	AutoOffsetReset   string   `mapstructure:"auto_offset_reset"` // "earliest" | "latest"
	TimeoutMS         int      `mapstructure:"timeout_ms"`
	ProducerRetries   int      `mapstructure:"producer_retries"`
	BatchSize         int      `mapstructure:"batch_size"`
	AutoCreateTopics  bool     `mapstructure:"auto_create_topics"`
	ReplicationFactor int      `mapstructure:"replication_factor"`
	NumPartitions     int      `mapstructure:"num_partitions"`
}

// MinIOConfig holds MinIO / S3-compatible object-storage parameters.
type MinIOConfig struct {
	Endpoint      string        `mapstructure:"endpoint"`
	AccessKey     string        `mapstructure:"access_key"`
	SecretKey     string        `mapstructure:"secret_key"`
	Bucket        string        `mapstructure:"bucket"`
	UseSSL        bool          `mapstructure:"use_ssl"`
	PresignExpiry time.Duration `mapstructure:"presign_expiry"`
}

// WorkerConfig holds background-worker execution parameters.
type WorkerConfig struct {
	Concurrency       int           `mapstructure:"concurrency"`
	PollInterval      time.Duration `mapstructure:"poll_interval"`
	HeartbeatInterval time.Duration `mapstructure:"heartbeat_interval"`
	LockTTL           time.Duration `mapstructure:"lock_ttl"`
}

// PipelineConfig holds staged-processing parameters.
type PipelineConfig struct {
	MaxAttempts  int           `mapstructure:"max_attempts"`
	RetryBackoff time.Duration `mapstructure:"retry_backoff"`
	ChunkSize    int           `mapstructure:"chunk_size"`    // words per chunk
	ChunkOverlap int           `mapstructure:"chunk_overlap"` // words shared between neighbours
	StageTimeout time.Duration `mapstructure:"stage_timeout"`
}

// SimilarityConfig holds hybrid-scoring policy knobs.
type SimilarityConfig struct {
	KeywordWeight  float64 `mapstructure:"keyword_weight"`
	SemanticWeight float64 `mapstructure:"semantic_weight"`
	TopK           int     `mapstructure:"top_k"`
}

// PredictionConfig holds outcome-prediction scoring weights.
type PredictionConfig struct {
	EvidenceWeight   float64 `mapstructure:"evidence_weight"`
	DelayWeight      float64 `mapstructure:"delay_weight"`
	CourtWeight      float64 `mapstructure:"court_weight"`
	DisputeWeight    float64 `mapstructure:"dispute_weight"`
	ReliefWeight     float64 `mapstructure:"relief_weight"`
	FavorThreshold   float64 `mapstructure:"favor_threshold"`   // probability at or above which plaintiff is favored
	AgainstThreshold float64 `mapstructure:"against_threshold"` // probability at or below which defendant is favored
	MinSampleSize    int     `mapstructure:"min_sample_size"`
}

// ChatConfig holds retrieval-augmented chat parameters.
type ChatConfig struct {
	TopK           int     `mapstructure:"top_k"`
	ScoreThreshold float64 `mapstructure:"score_threshold"`
}

// EmbeddingConfig holds the sentence-embedding model parameters.
type EmbeddingConfig struct {
	ModelPath string `mapstructure:"model_path"`
	ModelName string `mapstructure:"model_name"`
	Dimension int    `mapstructure:"dimension"`
}

// TranslationConfig lists the languages the pipeline translates summaries
// into automatically.  On-demand requests may name any supported language.
type TranslationConfig struct {
	TargetLanguages []string `mapstructure:"target_languages"`
}

// GenAIConfig holds the optional generative-model parameters.  When APIKey is
// empty the platform runs entirely on its deterministic rule-based engines.
type GenAIConfig struct {
	APIKey  string        `mapstructure:"api_key"`
	Model   string        `mapstructure:"model"`
	Timeout time.Duration `mapstructure:"timeout"`
}

// LogConfig holds structured-logging parameters.
type LogConfig struct {
	Level            string `mapstructure:"level"`  // "debug" | "info" | "warn" | "error"
	Format           string `mapstructure:"format"` // "json" | "text"
	Output           string `mapstructure:"output"`
	EnableCaller     bool   `mapstructure:"enable_caller"`
	EnableStacktrace bool   `mapstructure:"enable_stacktrace"`
}

// ─────────────────────────────────────────────────────────────────────────────
// Root Config
// ─────────────────────────────────────────────────────────────────────────────

// Config is the root configuration structure for the entire platform.
// Every infrastructure component and application service reads its settings
// from the relevant sub-struct.
type Config struct {
	Server      ServerConfig      `mapstructure:"server"`
	Database    DatabaseConfig    `mapstructure:"database"`
	Redis       RedisConfig       `mapstructure:"redis"`
	Kafka       KafkaConfig       `mapstructure:"kafka"`
	MinIO       MinIOConfig       `mapstructure:"minio"`
	Worker      WorkerConfig      `mapstructure:"worker"`
	Pipeline    PipelineConfig    `mapstructure:"pipeline"`
	Similarity  SimilarityConfig  `mapstructure:"similarity"`
	Prediction  PredictionConfig  `mapstructure:"prediction"`
	Chat        ChatConfig        `mapstructure:"chat"`
	Embedding   EmbeddingConfig   `mapstructure:"embedding"`
	Translation TranslationConfig `mapstructure:"translation"`
	GenAI       GenAIConfig       `mapstructure:"genai"`
	Log         LogConfig         `mapstructure:"log"`
}

// ─────────────────────────────────────────────────────────────────────────────
// Validation
// ─────────────────────────────────────────────────────────────────────────────

// Validate performs semantic validation of the fully-populated Config.
// It returns the first error encountered; callers should treat any error as
// fatal and refuse to start the application.
func (c *Config) Validate() error {
	// Server
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("config: server.port %d is out of range [1, 65535]", c.Server.Port)
	}
	switch c.Server.Mode {
	case "debug", "release", "test":
	default:
		return fmt.Errorf("config: server.mode %q is invalid; expected debug|release|test", c.Server.Mode)
	}

	// Database
	if c.Database.Host == "" {
		return fmt.Errorf("config: database.host is required")
	}
	if c.Database.Port < 1 || c.Database.Port > 65535 {
		return fmt.Errorf("config: database.port %d is out of range [1, 65535]", c.Database.Port)
	}
	if c.Database.User == "" {
		return fmt.Errorf("config: database.user is required")
	}
	if c.Database.DBName == "" {
		return fmt.Errorf("config: database.db_name is required")
	}
	if c.Database.MaxConns < 1 {
		return fmt.Errorf("config: database.max_conns must be ≥ 1, got %d", c.Database.MaxConns)
	}

	// Redis
	if c.Redis.Addr == "" {
		return fmt.Errorf("config: redis.addr is required")
	}
	if c.Redis.DB < 0 {
		return fmt.Errorf("config: redis.db must be ≥ 0, got %d", c.Redis.DB)
	}

	// Kafka
	if len(c.Kafka.Brokers) == 0 {
		return fmt.Errorf("config: kafka.brokers must contain at least one broker address")
	}
	if c.Kafka.GroupID == "" {
		return fmt.Errorf("config: kafka.group_id is required")
	}

	// Worker
	if c.Worker.Concurrency < 1 {
		return fmt.Errorf("config: worker.concurrency must be ≥ 1, got %d", c.Worker.Concurrency)
	}

	// Pipeline
	if c.Pipeline.MaxAttempts < 1 {
		return fmt.Errorf("config: pipeline.max_attempts must be ≥ 1, got %d", c.Pipeline.MaxAttempts)
	}
	if c.Pipeline.ChunkSize < 1 {
		return fmt.Errorf("config: pipeline.chunk_size must be ≥ 1, got %d", c.Pipeline.ChunkSize)
	}
	if c.Pipeline.ChunkOverlap < 0 || c.Pipeline.ChunkOverlap >= c.Pipeline.ChunkSize {
		return fmt.Errorf("config: pipeline.chunk_overlap %d must be in [0, chunk_size)", c.Pipeline.ChunkOverlap)
	}

	// Similarity
	if c.Similarity.KeywordWeight < 0 || c.Similarity.SemanticWeight < 0 {
		return fmt.Errorf("config: similarity weights must be non-negative")
	}
	if c.Similarity.KeywordWeight+c.Similarity.SemanticWeight == 0 {
		return fmt.Errorf("config: similarity weights must not both be zero")
	}
	if c.Similarity.TopK < 1 {
		return fmt.Errorf("config: similarity.top_k must be ≥ 1, got %d", c.Similarity.TopK)
	}

	// Prediction thresholds must leave an uncertainty band.
	if c.Prediction.AgainstThreshold >= c.Prediction.FavorThreshold {
		return fmt.Errorf("config: prediction.against_threshold %.2f must be below favor_threshold %.2f",
			c.Prediction.AgainstThreshold, c.Prediction.FavorThreshold)
	}

	// Chat
	if c.Chat.TopK < 1 {
		return fmt.Errorf("config: chat.top_k must be ≥ 1, got %d", c.Chat.TopK)
	}
	if c.Chat.ScoreThreshold < 0 || c.Chat.ScoreThreshold > 1 {
		return fmt.Errorf("config: chat.score_threshold %.2f is out of range [0, 1]", c.Chat.ScoreThreshold)
	}

	// Embedding
	if c.Embedding.Dimension < 1 {
		return fmt.Errorf("config: embedding.dimension must be ≥ 1, got %d", c.Embedding.Dimension)
	}

	// Log
	switch c.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("config: log.level %q is invalid; expected debug|info|warn|error", c.Log.Level)
	}
	switch c.Log.Format {
	case "json", "text":
	default:
		return fmt.Errorf("config: log.format %q is invalid; expected json|text", c.Log.Format)
	}

	return nil
}
