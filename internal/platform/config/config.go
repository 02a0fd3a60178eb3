package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	platformstrings "claimflow/pkg/platform/strings"
)

// Config is the process configuration assembled from the environment.
type Config struct {
	Server     Server
	Workflow   Workflow
	Redis      RedisConfig
	Postgres   PostgresConfig
	Kafka      KafkaConfig
	S3         S3Config
	Signer     SignerConfig
	PluginAuth PluginAuthConfig
	SchemaDir  string
	LogLevel   string
}

// Server captures HTTP server level configuration.
type Server struct {
	Addr            string
	ShutdownTimeout time.Duration
}

// Workflow holds the engine feature toggles.
type Workflow struct {
	Enabled             bool
	SignatureEnabled    bool
	FileStorageEnabled  bool
	PolicySearchEnabled bool
	SignatureProvider   string
	UUIDPropertyName    string
}

// RedisConfig configures the revoked-credential cache. An empty URL disables it.
type RedisConfig struct {
	URL          string
	PoolSize     int
	MinIdleConns int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	RevokedTTL   time.Duration
}

// PostgresConfig selects the durable stores. An empty URL keeps everything in memory.
type PostgresConfig struct {
	URL      string
	MaxConns int32
}

// KafkaConfig configures plugin transport. No brokers means only internal
// actors are reachable.
type KafkaConfig struct {
	Brokers       []string
	ClientID      string
	RequestTopic  string
	ResponseTopic string
	ConsumerGroup string
}

type S3Config struct {
	Bucket     string
	Region     string
	Endpoint   string
	PresignTTL time.Duration
}

type SignerConfig struct {
	BaseURL string
	Timeout time.Duration
}

type PluginAuthConfig struct {
	JWTSigningKey string
	Issuer        string
	Audience      string
}

// FromEnv builds a Config from environment variables so main stays lean.
func FromEnv() (Config, error) {
	cfg := Config{
		Server: Server{
			Addr:            getEnv("CLAIMFLOW_ADDR", ":8080"),
			ShutdownTimeout: 15 * time.Second,
		},
		Workflow: Workflow{
			SignatureProvider: getEnv("SIGNATURE_PROVIDER", "v1"),
			UUIDPropertyName:  getEnv("UUID_PROPERTY_NAME", "osid"),
		},
		Redis: RedisConfig{
			URL:          os.Getenv("REDIS_URL"),
			PoolSize:     10,
			MinIdleConns: 2,
			DialTimeout:  5 * time.Second,
			ReadTimeout:  3 * time.Second,
			WriteTimeout: 3 * time.Second,
			RevokedTTL:   24 * time.Hour,
		},
		Postgres: PostgresConfig{
			URL:      os.Getenv("DATABASE_URL"),
			MaxConns: 10,
		},
		Kafka: KafkaConfig{
			Brokers:       platformstrings.SplitList(os.Getenv("KAFKA_BROKERS"), ","),
			ClientID:      getEnv("KAFKA_CLIENT_ID", "claimflow"),
			RequestTopic:  getEnv("KAFKA_REQUEST_TOPIC", "attestation-requests"),
			ResponseTopic: getEnv("KAFKA_RESPONSE_TOPIC", "attestation-responses"),
			ConsumerGroup: getEnv("KAFKA_CONSUMER_GROUP", "claimflow"),
		},
		S3: S3Config{
			Bucket:     os.Getenv("S3_BUCKET"),
			Region:     getEnv("S3_REGION", "us-east-1"),
			Endpoint:   os.Getenv("S3_ENDPOINT"),
			PresignTTL: 15 * time.Minute,
		},
		Signer: SignerConfig{
			BaseURL: os.Getenv("SIGNER_URL"),
			Timeout: 10 * time.Second,
		},
		PluginAuth: PluginAuthConfig{
			JWTSigningKey: os.Getenv("PLUGIN_JWT_SIGNING_KEY"),
			Issuer:        getEnv("PLUGIN_JWT_ISSUER", "claimflow"),
			Audience:      getEnv("PLUGIN_JWT_AUDIENCE", "claimflow-plugins"),
		},
		SchemaDir: getEnv("SCHEMA_DIR", "./schemas"),
		LogLevel:  getEnv("LOG_LEVEL", "info"),
	}

	var err error
	bools := []struct {
		key  string
		dest *bool
	}{
		{"WORKFLOW_ENABLED", &cfg.Workflow.Enabled},
		{"SIGNATURE_ENABLED", &cfg.Workflow.SignatureEnabled},
		{"FILE_STORAGE_ENABLED", &cfg.Workflow.FileStorageEnabled},
		{"POLICY_SEARCH_ENABLED", &cfg.Workflow.PolicySearchEnabled},
	}
	for _, b := range bools {
		if *b.dest, err = getBool(b.key, false); err != nil {
			return Config{}, err
		}
	}
	durations := []struct {
		key  string
		dest *time.Duration
	}{
		{"SHUTDOWN_TIMEOUT", &cfg.Server.ShutdownTimeout},
		{"REDIS_REVOKED_TTL", &cfg.Redis.RevokedTTL},
		{"S3_PRESIGN_TTL", &cfg.S3.PresignTTL},
		{"SIGNER_TIMEOUT", &cfg.Signer.Timeout},
	}
	for _, d := range durations {
		if err := getDuration(d.key, d.dest); err != nil {
			return Config{}, err
		}
	}
	if v := os.Getenv("REDIS_POOL_SIZE"); v != "" {
		if cfg.Redis.PoolSize, err = strconv.Atoi(v); err != nil {
			return Config{}, fmt.Errorf("REDIS_POOL_SIZE: %w", err)
		}
	}
	if v := os.Getenv("DATABASE_MAX_CONNS"); v != "" {
		n, err := strconv.ParseInt(v, 10, 32)
		if err != nil {
			return Config{}, fmt.Errorf("DATABASE_MAX_CONNS: %w", err)
		}
		cfg.Postgres.MaxConns = int32(n)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks that enabled features have what they need.
func (c Config) Validate() error {
	switch c.Workflow.SignatureProvider {
	case "v1", "v2":
	default:
		return fmt.Errorf("SIGNATURE_PROVIDER must be v1 or v2, got %q", c.Workflow.SignatureProvider)
	}
	if c.Workflow.SignatureEnabled && c.Signer.BaseURL == "" {
		return fmt.Errorf("SIGNER_URL is required when signing is enabled")
	}
	if c.Workflow.FileStorageEnabled && c.S3.Bucket == "" {
		return fmt.Errorf("S3_BUCKET is required when file storage is enabled")
	}
	if c.PluginAuth.JWTSigningKey == "" {
		return fmt.Errorf("PLUGIN_JWT_SIGNING_KEY is required")
	}
	return nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getBool(key string, fallback bool) (bool, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("%s: %w", key, err)
	}
	return b, nil
}

func getDuration(key string, dest *time.Duration) error {
	v := os.Getenv(key)
	if v == "" {
		return nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fmt.Errorf("%s: %w", key, err)
	}
	*dest = d
	return nil
}
