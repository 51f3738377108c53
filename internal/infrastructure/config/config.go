package config

import (
	"context"
	"fmt"
	"time"

	"github.com/sethvargo/go-envconfig"
)

type Config struct {
	Port      string `env:"PORT,      default=8080"`
	Env       string `env:"ENV,       default=development"`
	JWTSecret string `env:"JWT_SECRET"`
	LogLevel  string `env:"LOG_LEVEL, default=info"`

	Mongo    MongoConfig
	Redis    RedisConfig
	Storage  StorageConfig
	Gateway  GatewayConfig
	Pipeline PipelineConfig
}

type MongoConfig struct {
	URI         string `env:"MONGO_URI,           default=mongodb://localhost:27017"`
	Database    string `env:"MONGO_DB,            default=backdrop_studio"`
	MaxPoolSize uint64 `env:"MONGO_MAX_POOL_SIZE, default=32"`
}

type RedisConfig struct {
	Addr     string `env:"REDIS_ADDR,     default=localhost:6379"`
	Password string `env:"REDIS_PASSWORD"`
	DB       int    `env:"REDIS_DB,       default=0"`
}

type StorageConfig struct {
	Endpoint  string `env:"MINIO_ENDPOINT,   default=localhost:9000"`
	AccessKey string `env:"MINIO_ACCESS_KEY"`
	SecretKey string `env:"MINIO_SECRET_KEY"`
	Bucket    string `env:"MINIO_BUCKET,     default=backdrop-artifacts"`
	UseSSL    bool   `env:"MINIO_USE_SSL,    default=false"`
	// PublicBaseURL is the externally reachable prefix for stored objects,
	// e.g. https://cdn.example.com/backdrop-artifacts.
	PublicBaseURL string `env:"STORAGE_PUBLIC_URL, default=http://localhost:9000/backdrop-artifacts"`
}

type GatewayConfig struct {
	ClipdropAPIKey string `env:"CLIPDROP_API_KEY"`
	OpenAIAPIKey   string `env:"OPENAI_API_KEY"`
	// StageTimeout bounds each remote transform call; a timeout is reported
	// as a stage failure.
	StageTimeout time.Duration `env:"GATEWAY_STAGE_TIMEOUT, default=120s"`
}

type PipelineConfig struct {
	Workers int `env:"PIPELINE_WORKERS, default=8"`
}

// Load reads configuration from environment variables using go-envconfig.
func Load() *Config {
	var cfg Config
	if err := envconfig.Process(context.Background(), &cfg); err != nil {
		panic(fmt.Sprintf("config: failed to load configuration: %v", err))
	}
	return &cfg
}
