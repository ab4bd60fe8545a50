package app

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"

	"email_rag/internal/chunker"
	"email_rag/internal/digest"
	"email_rag/internal/vectorstore"
)

var errNothingEmbedded = errors.New("no chunk could be embedded")

// Embedder клиент модели эмбеддингов
type Embedder interface {
	Configured() bool
	Embed(ctx context.Context, text string) ([]float32, error)
}

// IndexStore то, что индексатору нужно от хранилища
type IndexStore interface {
	EnsureCollection() error
	ExistsFor(ctx context.Context, fileID string) (bool, error)
	Upsert(ctx context.Context, points []vectorstore.Point) error
	Superseded(ctx context.Context, filename, fileID string) ([]string, error)
}

// TextExtractor извлечение текста по пути и байтам файла
type TextExtractor interface {
	Supports(path string) bool
	Extract(path string, data []byte) (string, error)
}

// Stats итог прогона индексации
type Stats struct {
	Files   int // Распознанных документов в каталоге
	Indexed int // Проиндексировано в этом прогоне
	Skipped int // Уже были в индексе
	Failed  int // Ошибка чтения, извлечения или записи
	Points  int // Записано точек
}

// Indexer проходит по каталогу и индексирует новые документы
type Indexer struct {
	store      IndexStore
	embedder   Embedder
	chunker    *chunker.WindowChunker
	extractors TextExtractor
}

func NewIndexer(store IndexStore, embedder Embedder, chunkr *chunker.WindowChunker, extractors TextExtractor) *Indexer {
	return &Indexer{
		store:      store,
		embedder:   embedder,
		chunker:    chunkr,
		extractors: extractors,
	}
}

// ReindexAll индексирует все распознанные документы каталога. Ошибка
// возвращается только если коллекция недоступна; сбои отдельных документов
// и чанков попадают в Stats.
func (ix *Indexer) ReindexAll(ctx context.Context, dir string) (Stats, error) {
	var stats Stats

	if _, err := os.Stat(dir); errors.Is(err, os.ErrNotExist) {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return stats, fmt.Errorf("failed to create docs directory: %w", err)
		}
		log.Printf("Created %s directory. Add your documents there.", dir)
		return stats, nil
	}

	if err := ix.store.EnsureCollection(); err != nil {
		return stats, fmt.Errorf("vector store unavailable: %w", err)
	}

	files, err := ix.listDocuments(dir)
	if err != nil {
		return stats, err
	}
	stats.Files = len(files)
	if len(files) == 0 {
		log.Printf("No documents found in %s", dir)
		return stats, nil
	}

	if !ix.embedder.Configured() {
		log.Printf("⚠️  Embeddings are not configured, skipping indexing of %d documents", len(files))
		return stats, nil
	}

	for _, path := range files {
		if err := ctx.Err(); err != nil {
			return stats, err
		}

		points, skipped, err := ix.indexFile(ctx, path)
		switch {
		case err != nil:
			stats.Failed++
			log.Printf("❌ Failed to index %s: %v", filepath.Base(path), err)
		case skipped:
			stats.Skipped++
		default:
			stats.Indexed++
			stats.Points += points
		}
	}

	log.Printf("📊 Indexing finished: files=%d indexed=%d skipped=%d failed=%d points=%d",
		stats.Files, stats.Indexed, stats.Skipped, stats.Failed, stats.Points)
	return stats, nil
}

// indexFile возвращает число записанных точек и признак пропуска
func (ix *Indexer) indexFile(ctx context.Context, path string) (int, bool, error) {
	filename := filepath.Base(path)

	fileID, data, err := digest.File(path)
	if err != nil {
		return 0, false, err
	}

	exists, err := ix.store.ExistsFor(ctx, fileID)
	if err != nil {
		return 0, false, fmt.Errorf("existence check failed: %w", err)
	}
	if exists {
		log.Printf("File %s is already indexed. Skipping...", filename)
		return 0, true, nil
	}

	log.Printf("📄 Indexing %s...", filename)
	text, err := ix.extractors.Extract(path, data)
	if err != nil {
		return 0, false, err
	}

	chunks := ix.chunker.Chunk(text, fileID)
	points := make([]vectorstore.Point, 0, len(chunks))
	for _, ch := range chunks {
		vector, err := ix.embedder.Embed(ctx, ch.Text)
		if err != nil {
			log.Printf("⚠️  [%s] chunk %d dropped: %v", filename, ch.Index, err)
			continue
		}

		points = append(points, vectorstore.Point{
			ID:     digest.PointID(fileID, ch.Index),
			Vector: vector,
			Payload: vectorstore.Payload{
				Text:     ch.Text,
				Filename: filename,
				FileID:   fileID,
			},
		})
	}

	if len(points) == 0 {
		return 0, false, fmt.Errorf("%w (%d chunks)", errNothingEmbedded, len(chunks))
	}

	if err := ix.store.Upsert(ctx, points); err != nil {
		return 0, false, err
	}
	log.Printf("✅ Successfully indexed %d/%d chunks from %s", len(points), len(chunks), filename)

	ix.warnSuperseded(ctx, filename, fileID)
	return len(points), false, nil
}

// warnSuperseded старые версии файла остаются в индексе, только сообщаем об этом
func (ix *Indexer) warnSuperseded(ctx context.Context, filename, fileID string) {
	old, err := ix.store.Superseded(ctx, filename, fileID)
	if err != nil || len(old) == 0 {
		return
	}
	log.Printf("⚠️  %s has %d earlier version(s) still indexed: %v", filename, len(old), old)
}

// listDocuments распознанные файлы каталога без рекурсии, по имени
func (ix *Indexer) listDocuments(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read docs directory: %w", err)
	}

	var files []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		path := filepath.Join(dir, e.Name())
		if !ix.extractors.Supports(path) {
			continue
		}
		files = append(files, path)
	}
	sort.Strings(files)
	return files, nil
}
