package embedding

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/philippgille/chromem-go"
	"google.golang.org/genai"
)

const (
	ProviderGemini = "gemini"
	ProviderOllama = "ollama"
	ProviderOpenAI = "openai"

	DefaultGeminiModel = "text-embedding-004"
)

// ProviderConfig выбор и параметры провайдера
type ProviderConfig struct {
	Provider     string
	GeminiAPIKey string
	GeminiModel  string
	OllamaURL    string
	OllamaModel  string
	OpenAIAPIKey string
	OpenAIModel  string
}

// New собирает клиента по конфигу. Отсутствие ключа не ошибка: клиент вернётся несконфигурированным.
func New(ctx context.Context, cfg ProviderConfig, opts Options) (*Client, error) {
	name := strings.ToLower(cfg.Provider)
	if name == "" {
		name = ProviderGemini
	}

	switch name {
	case ProviderGemini:
		if cfg.GeminiAPIKey == "" {
			return Unconfigured(name), nil
		}
		fn, err := NewEmbeddingFuncGemini(ctx, cfg.GeminiAPIKey, cfg.GeminiModel, opts.Dimension)
		if err != nil {
			return nil, err
		}
		return NewClient(name, fn, opts), nil

	case ProviderOllama:
		if cfg.OllamaURL == "" || cfg.OllamaModel == "" {
			return Unconfigured(name), nil
		}
		fn := chromem.NewEmbeddingFuncOllama(cfg.OllamaModel, strings.TrimRight(cfg.OllamaURL, "/")+"/api")
		return NewClient(name, fn, opts), nil

	case ProviderOpenAI:
		if cfg.OpenAIAPIKey == "" {
			return Unconfigured(name), nil
		}
		model := chromem.EmbeddingModelOpenAI3Small
		if cfg.OpenAIModel != "" {
			model = chromem.EmbeddingModelOpenAI(cfg.OpenAIModel)
		}
		fn := chromem.NewEmbeddingFuncOpenAI(cfg.OpenAIAPIKey, model)
		return NewClient(name, fn, opts), nil

	default:
		return nil, fmt.Errorf("unknown embedding provider: %s", cfg.Provider)
	}
}

// NewEmbeddingFuncGemini embedding func поверх Gemini API
func NewEmbeddingFuncGemini(ctx context.Context, apiKey, model string, dimension int) (chromem.EmbeddingFunc, error) {
	if model == "" {
		model = DefaultGeminiModel
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create genai client: %w", err)
	}

	config := &genai.EmbedContentConfig{}
	if dimension > 0 {
		dim := int32(dimension)
		config.OutputDimensionality = &dim
	}

	return func(ctx context.Context, text string) ([]float32, error) {
		resp, err := client.Models.EmbedContent(ctx, model, genai.Text(text), config)
		if err != nil {
			return nil, fmt.Errorf("gemini embed_content: %w", err)
		}
		if resp == nil || len(resp.Embeddings) == 0 || resp.Embeddings[0] == nil {
			return nil, errors.New("gemini returned no embeddings")
		}
		return resp.Embeddings[0].Values, nil
	}, nil
}
