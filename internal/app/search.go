package app

import (
	"context"
	"log"
	"strings"

	"email_rag/internal/vectorstore"
)

const (
	DefaultLimit     = 3
	ContextSeparator = "\n---\n"
)

// SearchStore то, что поиску нужно от хранилища
type SearchStore interface {
	Search(ctx context.Context, vector []float32, k int) ([]vectorstore.Hit, error)
}

// Retriever собирает контекст из ближайших чанков
type Retriever struct {
	store    SearchStore
	embedder Embedder
}

func NewRetriever(store SearchStore, embedder Embedder) *Retriever {
	return &Retriever{store: store, embedder: embedder}
}

// Query никогда не возвращает ошибку: любой сбой даёт пустой контекст
func (r *Retriever) Query(ctx context.Context, text string, limit int) (result string) {
	defer func() {
		if p := recover(); p != nil {
			log.Printf("❌ Knowledge base query panicked: %v", p)
			result = ""
		}
	}()

	if !r.embedder.Configured() || strings.TrimSpace(text) == "" {
		return ""
	}
	if limit <= 0 {
		limit = DefaultLimit
	}

	vector, err := r.embedder.Embed(ctx, text)
	if err != nil {
		return ""
	}

	hits, err := r.store.Search(ctx, vector, limit)
	if err != nil {
		log.Printf("❌ Search error: %v", err)
		return ""
	}

	texts := make([]string, 0, len(hits))
	for _, h := range hits {
		texts = append(texts, h.Payload.Text)
	}
	return strings.Join(texts, ContextSeparator)
}
