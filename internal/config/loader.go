// Package config provides configuration loading, defaults, and validation for
// the JuriStack platform.
package config

import (
	"fmt"
	"strings"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
)

// envPrefix is the environment variable prefix used by all platform settings.
const envPrefix = "JURISTACK"

// configKeys enumerates every settable key.  AutomaticEnv alone does not
// surface env-only keys through Unmarshal, so newViper binds each key
// explicitly; JURISTACK_DATABASE_USER then works with or without a file.
var configKeys = []string{
	"server.port", "server.mode", "server.read_timeout", "server.write_timeout",
	"server.max_body_size", "server.shutdown_timeout",

	"database.host", "database.port", "database.user", "database.password",
	"database.db_name", "database.ssl_mode", "database.max_conns", "database.min_conns",
	"database.conn_max_lifetime", "database.conn_max_idle_time", "database.migration_path",

	"redis.addr", "redis.password", "redis.db", "redis.pool_size", "redis.min_idle_conns",
	"redis.dial_timeout", "redis.read_timeout", "redis.write_timeout",
	"redis.default_ttl", "redis.key_prefix",

	"kafka.brokers", "kafka.group_id", "kafka.auto_offset_reset", "kafka.timeout_ms",
	"kafka.producer_retries", "kafka.batch_size", "kafka.auto_create_topics",
	"kafka.replication_factor", "kafka.num_partitions",

	"minio.endpoint", "minio.access_key", "minio.secret_key", "minio.bucket",
	"minio.use_ssl", "minio.presign_expiry",

	"worker.concurrency", "worker.poll_interval", "worker.heartbeat_interval",
	"worker.lock_ttl",

	"pipeline.max_attempts", "pipeline.retry_backoff", "pipeline.chunk_size",
	"pipeline.chunk_overlap", "pipeline.stage_timeout",

	"similarity.keyword_weight", "similarity.semantic_weight", "similarity.top_k",

	"prediction.evidence_weight", "prediction.delay_weight", "prediction.court_weight",
	"prediction.dispute_weight", "prediction.relief_weight", "prediction.favor_threshold",
	"prediction.against_threshold", "prediction.min_sample_size",

	"chat.top_k", "chat.score_threshold",

	"embedding.model_path", "embedding.model_name", "embedding.dimension",

	"translation.target_languages",

	"genai.api_key", "genai.model", "genai.timeout",

	"log.level", "log.format", "log.output", "log.enable_caller", "log.enable_stacktrace",
}

// newViper builds a pre-configured Viper instance with the platform's standard
// settings: YAML file type, JURISTACK_ env prefix, automatic env binding, and
// a key replacer that maps "." → "_" so that nested keys like "database.host"
// resolve to "JURISTACK_DATABASE_HOST".
func newViper() *viper.Viper {
	v := viper.New()
	v.SetConfigType("yaml")
	v.SetEnvPrefix(envPrefix)
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	for _, key := range configKeys {
		_ = v.BindEnv(key) //nolint:errcheck // only errors on an empty key
	}
	return v
}

// Load reads the YAML file at configPath, merges any JURISTACK_* environment
// variable overrides, applies platform defaults for unset fields, and
// validates the result.  It returns a fully-populated *Config or a
// descriptive error.
func Load(configPath string) (*Config, error) {
	v := newViper()
	v.SetConfigFile(configPath)

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("config: failed to read config file %q: %w", configPath, err)
	}

	return unmarshalAndFinalize(v)
}

// LoadFromEnv builds a Config entirely from JURISTACK_* environment variables,
// with no config file required.  This is the preferred loading strategy for
// containerised (12-factor) deployments.
//
// Environment variable naming convention:
//
//	JURISTACK_<SECTION>_<FIELD>   e.g.  JURISTACK_DATABASE_HOST, JURISTACK_REDIS_ADDR
func LoadFromEnv() (*Config, error) {
	v := newViper()
	// No config file — rely solely on env vars and defaults.
	return unmarshalAndFinalize(v)
}

// unmarshalAndFinalize unmarshals viper state into a Config struct, applies
// defaults, and validates the result.
func unmarshalAndFinalize(v *viper.Viper) (*Config, error) {
	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("config: failed to unmarshal configuration: %w", err)
	}

	ApplyDefaults(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config: validation failed: %w", err)
	}

	return cfg, nil
}

// Watch monitors configPath for changes and invokes onChange with the newly
// parsed Config whenever the file is modified on disk.  It is intended for
// hot-reloading policy settings such as log level, similarity weights, and
// prediction thresholds; callers are responsible for applying only the safe
// subset of changes at runtime.
//
// Watch is non-blocking; it starts a background goroutine managed by viper.
// If the changed file fails to parse or validate, onChange is NOT called so
// the application never transitions into an invalid configuration.
func Watch(configPath string, onChange func(*Config)) {
	v := newViper()
	v.SetConfigFile(configPath)

	// Initial read — errors are ignored here; callers should call Load first.
	_ = v.ReadInConfig()

	v.WatchConfig()
	v.OnConfigChange(func(_ fsnotify.Event) {
		cfg, err := unmarshalAndFinalize(v)
		if err != nil {
			return
		}
		onChange(cfg)
	})
}

// MustLoad is a convenience wrapper around Load that panics on any error.
// It is intended for use in main() where a config-load failure is always fatal.
func MustLoad(configPath string) *Config {
	cfg, err := Load(configPath)
	if err != nil {
		panic(fmt.Sprintf("config: MustLoad failed: %v", err))
	}
	return cfg
}
