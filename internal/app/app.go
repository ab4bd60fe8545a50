package app

import (
	"context"
	"fmt"
	"log"

	"email_rag/internal/chunker"
	"email_rag/internal/config"
	"email_rag/internal/embedding"
	"email_rag/internal/extract"
	"email_rag/internal/vectorstore"
)

type App struct {
	cfg       *config.Config
	store     *vectorstore.Store
	embedder  *embedding.Client
	indexer   *Indexer
	retriever *Retriever
}

// New открывает хранилище и собирает индексатор и поиск. Ошибка открытия
// хранилища фатальна для процесса.
func New(ctx context.Context, cfg *config.Config) (*App, error) {
	chunkr, err := chunker.NewWindowChunker(chunker.Config{
		Window: cfg.ChunkSize,
		Stride: cfg.ChunkStride,
	})
	if err != nil {
		return nil, err
	}

	extractors, err := extract.NewRegistry(cfg.DocExtensions)
	if err != nil {
		return nil, err
	}

	embedder, err := embedding.New(ctx, embedding.ProviderConfig{
		Provider:     cfg.EmbeddingProvider,
		GeminiAPIKey: cfg.GeminiAPIKey,
		GeminiModel:  cfg.GeminiEmbedModel,
		OllamaURL:    cfg.OllamaURL,
		OllamaModel:  cfg.OllamaEmbedModel,
		OpenAIAPIKey: cfg.OpenAIAPIKey,
		OpenAIModel:  cfg.OpenAIEmbedModel,
	}, embedding.Options{
		Dimension: cfg.Dimension,
		Timeout:   cfg.EmbedTimeout,
		Retry:     retryConfig(cfg.EmbedMaxRetries),
		RateLimit: cfg.EmbedRateLimit,
		CacheSize: cfg.EmbedCacheSize,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to init embeddings: %w", err)
	}

	store, err := vectorstore.Open(vectorstore.Options{
		Path:       cfg.DataDir,
		Collection: cfg.Collection,
		Dimension:  cfg.Dimension,
		Compress:   cfg.Compress,
	})
	if err != nil {
		return nil, err
	}

	return &App{
		cfg:       cfg,
		store:     store,
		embedder:  embedder,
		indexer:   NewIndexer(store, embedder, chunkr, extractors),
		retriever: NewRetriever(store, embedder),
	}, nil
}

// ReindexAll безопасно вызывать при каждом старте
func (a *App) ReindexAll(ctx context.Context) (Stats, error) {
	log.Printf("Indexing documents in: %s", a.cfg.DocsDir)
	return a.indexer.ReindexAll(ctx, a.cfg.DocsDir)
}

// QueryKnowledgeBase контекст для генерации ответа; "" при любой недоступности
func (a *App) QueryKnowledgeBase(ctx context.Context, text string, limit int) string {
	if limit <= 0 {
		limit = a.cfg.TopK
	}
	// Поиск до создания коллекции просто вернёт пустой контекст
	if err := a.store.EnsureCollection(); err != nil {
		log.Printf("❌ Vector store unavailable: %v", err)
		return ""
	}
	return a.retriever.Query(ctx, text, limit)
}

func (a *App) Close() error {
	return a.store.Close()
}

func retryConfig(maxRetries int) embedding.RetryConfig {
	rc := embedding.DefaultRetryConfig()
	if maxRetries > 0 {
		rc.MaxRetries = maxRetries
	}
	return rc
}
