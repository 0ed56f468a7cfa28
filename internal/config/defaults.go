// Package config provides configuration loading, defaults, and validation for
// the JuriStack platform.
package config

import "time"

// ─────────────────────────────────────────────────────────────────────────────
// Default value constants
// ─────────────────────────────────────────────────────────────────────────────

const (
	DefaultServerPort = 8080
	DefaultServerMode = "debug"

	DefaultDBHost     = "localhost"
	DefaultDBPort     = 5432
	DefaultDBName     = "juristack"
	DefaultDBMaxConns = 25

	DefaultRedisAddr = "localhost:6379"
	DefaultRedisDB   = 0

	DefaultKafkaBroker  = "localhost:9092"
	DefaultKafkaGroupID = "juristack-workers"

	DefaultMinIOEndpoint = "localhost:9000"
	DefaultMinIOBucket   = "judgments"

	DefaultLogLevel  = "info"
	DefaultLogFormat = "json"

	DefaultWorkerConcurrency = 4

	DefaultMaxAttempts  = 3
	DefaultChunkSize    = 180
	DefaultChunkOverlap = 40

	DefaultKeywordWeight  = 0.4
	DefaultSemanticWeight = 0.6
	DefaultSimilarityTopK = 5

	DefaultEvidenceWeight   = 0.35
	DefaultDelayWeight      = 0.15
	DefaultCourtWeight      = 0.10
	DefaultDisputeWeight    = 0.20
	DefaultReliefWeight     = 0.20
	DefaultFavorThreshold   = 0.65
	DefaultAgainstThreshold = 0.40
	DefaultMinSampleSize    = 5

	DefaultChatTopK      = 4
	DefaultChatThreshold = 0.30

	DefaultEmbeddingModel = "sentence-transformers/all-MiniLM-L6-v2"
	DefaultEmbeddingDim   = 384

	DefaultGenAIModel = "gemini-2.0-flash"
)

// ApplyDefaults fills every zero-value field in cfg with the platform default.
// Fields that have already been set by the caller (non-zero values) are left
// unchanged so that explicit configuration always wins.  It must be called
// after unmarshalling raw config data and before Validate().
func ApplyDefaults(cfg *Config) {
	if cfg == nil {
		return
	}

	// ── Server ────────────────────────────────────────────────────────────────
	if cfg.Server.Port == 0 {
		cfg.Server.Port = DefaultServerPort
	}
	if cfg.Server.Mode == "" {
		cfg.Server.Mode = DefaultServerMode
	}
	if cfg.Server.ShutdownTimeout == 0 {
		cfg.Server.ShutdownTimeout = 15 * time.Second
	}

	// ── Database ──────────────────────────────────────────────────────────────
	if cfg.Database.Host == "" {
		cfg.Database.Host = DefaultDBHost
	}
	if cfg.Database.Port == 0 {
		cfg.Database.Port = DefaultDBPort
	}
	if cfg.Database.DBName == "" {
		cfg.Database.DBName = DefaultDBName
	}
	if cfg.Database.MaxConns == 0 {
		cfg.Database.MaxConns = DefaultDBMaxConns
	}
	if cfg.Database.SSLMode == "" {
		cfg.Database.SSLMode = "disable"
	}
	if cfg.Database.MigrationPath == "" {
		cfg.Database.MigrationPath = "migrations"
	}

	// ── Redis ─────────────────────────────────────────────────────────────────
	if cfg.Redis.Addr == "" {
		cfg.Redis.Addr = DefaultRedisAddr
	}
	if cfg.Redis.KeyPrefix == "" {
		cfg.Redis.KeyPrefix = "juristack"
	}
	if cfg.Redis.DefaultTTL == 0 {
		cfg.Redis.DefaultTTL = time.Hour
	}

	// ── Kafka ─────────────────────────────────────────────────────────────────
	if len(cfg.Kafka.Brokers) == 0 {
		cfg.Kafka.Brokers = []string{DefaultKafkaBroker}
	}
	if cfg.Kafka.GroupID == "" {
		cfg.Kafka.GroupID = DefaultKafkaGroupID
	}
	if cfg.Kafka.AutoOffsetReset == "" {
		cfg.Kafka.AutoOffsetReset = "earliest"
	}

	// ── MinIO ─────────────────────────────────────────────────────────────────
	if cfg.MinIO.Endpoint == "" {
		cfg.MinIO.Endpoint = DefaultMinIOEndpoint
	}
	if cfg.MinIO.Bucket == "" {
		cfg.MinIO.Bucket = DefaultMinIOBucket
	}

	// ── Worker ────────────────────────────────────────────────────────────────
	if cfg.Worker.Concurrency == 0 {
		cfg.Worker.Concurrency = DefaultWorkerConcurrency
	}
	if cfg.Worker.PollInterval == 0 {
		cfg.Worker.PollInterval = 2 * time.Second
	}
	if cfg.Worker.LockTTL == 0 {
		cfg.Worker.LockTTL = 5 * time.Minute
	}

	// ── Pipeline ──────────────────────────────────────────────────────────────
	if cfg.Pipeline.MaxAttempts == 0 {
		cfg.Pipeline.MaxAttempts = DefaultMaxAttempts
	}
	if cfg.Pipeline.RetryBackoff == 0 {
		cfg.Pipeline.RetryBackoff = 30 * time.Second
	}
	if cfg.Pipeline.ChunkSize == 0 {
		cfg.Pipeline.ChunkSize = DefaultChunkSize
	}
	if cfg.Pipeline.ChunkOverlap == 0 {
		cfg.Pipeline.ChunkOverlap = DefaultChunkOverlap
	}
	if cfg.Pipeline.StageTimeout == 0 {
		cfg.Pipeline.StageTimeout = 5 * time.Minute
	}

	// ── Similarity ────────────────────────────────────────────────────────────
	if cfg.Similarity.KeywordWeight == 0 && cfg.Similarity.SemanticWeight == 0 {
		cfg.Similarity.KeywordWeight = DefaultKeywordWeight
		cfg.Similarity.SemanticWeight = DefaultSemanticWeight
	}
	if cfg.Similarity.TopK == 0 {
		cfg.Similarity.TopK = DefaultSimilarityTopK
	}

	// ── Prediction ────────────────────────────────────────────────────────────
	if cfg.Prediction.EvidenceWeight == 0 {
		cfg.Prediction.EvidenceWeight = DefaultEvidenceWeight
	}
	if cfg.Prediction.DelayWeight == 0 {
		cfg.Prediction.DelayWeight = DefaultDelayWeight
	}
	if cfg.Prediction.CourtWeight == 0 {
		cfg.Prediction.CourtWeight = DefaultCourtWeight
	}
	if cfg.Prediction.DisputeWeight == 0 {
		cfg.Prediction.DisputeWeight = DefaultDisputeWeight
	}
	if cfg.Prediction.ReliefWeight == 0 {
		cfg.Prediction.ReliefWeight = DefaultReliefWeight
	}
	if cfg.Prediction.FavorThreshold == 0 {
		cfg.Prediction.FavorThreshold = DefaultFavorThreshold
	}
	if cfg.Prediction.AgainstThreshold == 0 {
		cfg.Prediction.AgainstThreshold = DefaultAgainstThreshold
	}
	if cfg.Prediction.MinSampleSize == 0 {
		cfg.Prediction.MinSampleSize = DefaultMinSampleSize
	}

	// ── Chat ──────────────────────────────────────────────────────────────────
	if cfg.Chat.TopK == 0 {
		cfg.Chat.TopK = DefaultChatTopK
	}
	if cfg.Chat.ScoreThreshold == 0 {
		cfg.Chat.ScoreThreshold = DefaultChatThreshold
	}

	// ── Embedding ─────────────────────────────────────────────────────────────
	if cfg.Embedding.ModelName == "" {
		cfg.Embedding.ModelName = DefaultEmbeddingModel
	}
	if cfg.Embedding.Dimension == 0 {
		cfg.Embedding.Dimension = DefaultEmbeddingDim
	}

	// ── Translation ───────────────────────────────────────────────────────────
	if len(cfg.Translation.TargetLanguages) == 0 {
		cfg.Translation.TargetLanguages = []string{"hi", "te"}
	}

	// ── GenAI ─────────────────────────────────────────────────────────────────
	if cfg.GenAI.Model == "" {
		cfg.GenAI.Model = DefaultGenAIModel
	}
	if cfg.GenAI.Timeout == 0 {
		cfg.GenAI.Timeout = 30 * time.Second
	}

	// ── Log ───────────────────────────────────────────────────────────────────
	if cfg.Log.Level == "" {
		cfg.Log.Level = DefaultLogLevel
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = DefaultLogFormat
	}
}
