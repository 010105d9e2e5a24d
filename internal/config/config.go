package config

import (
	"fmt"
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	Port  string `envconfig:"PORT" default:"8080"`
	Debug bool   `envconfig:"DEBUG" default:"false"`

	DatabaseURL string `envconfig:"DATABASE_URL" required:"true"`

	OpenAIAPIKey   string `envconfig:"OPENAI_API_KEY"`
	EmbeddingModel string `envconfig:"EMBEDDING_MODEL"`
	ChatModel      string `envconfig:"CHAT_MODEL"`

	// RetrieveTopK is the number of corpus sentences handed to the
	// generation model as grounding context.
	RetrieveTopK int `envconfig:"RETRIEVE_TOP_K" default:"3"`

	// SnapshotRefresh controls how often the corpus snapshot is rebuilt
	// from the domain store. Zero means build once at startup only.
	SnapshotRefresh time.Duration `envconfig:"SNAPSHOT_REFRESH" default:"0"`

	// ModelTimeout bounds each embedding or generation call.
	ModelTimeout time.Duration `envconfig:"MODEL_TIMEOUT" default:"60s"`
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process("NEIGHBORLY", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process config: %w", err)
	}

	return &cfg, nil
}

func MustLoad() *Config {
	cfg, err := Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	return cfg
}

func (c *Config) HasOpenAI() bool {
	return c.OpenAIAPIKey != ""
}
