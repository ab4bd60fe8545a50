package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/caarlos0/env/v10"
)

type Config struct {
	DocsDir       string   `env:"DOCS_DIR" envDefault:"./docs"`
	DataDir       string   `env:"VECTOR_DB_DIR" envDefault:"./vector_db"`
	Collection    string   `env:"COLLECTION_NAME" envDefault:"email_knowledge"`
	Dimension     int      `env:"EMBEDDING_DIMENSION" envDefault:"768"`
	Compress      bool     `env:"VECTOR_DB_COMPRESS" envDefault:"false"`
	DocExtensions []string `env:"DOC_EXTENSIONS" envDefault:".pdf" envSeparator:","`

	EmbeddingProvider string        `env:"EMBEDDING_PROVIDER" envDefault:"gemini"`
	GeminiAPIKey      string        `env:"GEMINI_API_KEY"`
	GeminiEmbedModel  string        `env:"GEMINI_EMBED_MODEL" envDefault:"text-embedding-004"`
	OllamaURL         string        `env:"OLLAMA_URL" envDefault:"http://localhost:11434"`
	OllamaEmbedModel  string        `env:"OLLAMA_EMBED_MODEL" envDefault:"nomic-embed-text"`
	OpenAIAPIKey      string        `env:"OPENAI_API_KEY"`
	OpenAIEmbedModel  string        `env:"OPENAI_EMBED_MODEL" envDefault:"text-embedding-3-small"`
	EmbedTimeout      time.Duration `env:"EMBED_TIMEOUT" envDefault:"30s"`
	EmbedMaxRetries   int           `env:"EMBED_MAX_RETRIES" envDefault:"3"`
	EmbedRateLimit    float64       `env:"EMBED_RATE_LIMIT" envDefault:"0"`
	EmbedCacheSize    int           `env:"EMBED_CACHE_SIZE" envDefault:"256"`

	ChunkSize   int `env:"CHUNK_SIZE" envDefault:"1500"`
	ChunkStride int `env:"CHUNK_STRIDE" envDefault:"1200"`
	TopK        int `env:"TOP_K" envDefault:"3"`
}

func Init(cfg *Config) error {
	if err := env.Parse(cfg); err != nil {
		return err
	}
	return cfg.Validate()
}

// Validate проверяет значения, которые нельзя исправить молча
func (c *Config) Validate() error {
	var errs []error
	if c.Collection == "" {
		errs = append(errs, errors.New("COLLECTION_NAME must not be empty"))
	}
	if c.Dimension <= 0 {
		errs = append(errs, fmt.Errorf("EMBEDDING_DIMENSION must be > 0, got %d", c.Dimension))
	}
	if c.ChunkSize <= 0 {
		errs = append(errs, fmt.Errorf("CHUNK_SIZE must be > 0, got %d", c.ChunkSize))
	}
	if c.ChunkStride <= 0 || c.ChunkStride > c.ChunkSize {
		errs = append(errs, fmt.Errorf("CHUNK_STRIDE must be in (0, CHUNK_SIZE], got %d", c.ChunkStride))
	}
	if c.TopK <= 0 {
		errs = append(errs, fmt.Errorf("TOP_K must be > 0, got %d", c.TopK))
	}
	if c.EmbedMaxRetries < 1 {
		errs = append(errs, fmt.Errorf("EMBED_MAX_RETRIES must be >= 1, got %d", c.EmbedMaxRetries))
	}
	if c.EmbedRateLimit < 0 {
		errs = append(errs, fmt.Errorf("EMBED_RATE_LIMIT must be >= 0, got %v", c.EmbedRateLimit))
	}
	return errors.Join(errs...)
}
