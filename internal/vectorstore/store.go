// Package vectorstore владеет одной persistent-коллекцией chromem-go
// с фиксированной размерностью и косинусной метрикой.
package vectorstore

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"
	"sync"

	"github.com/gofrs/flock"
	"github.com/philippgille/chromem-go"
)

const (
	DistanceCosine = "cosine"

	metaFilename = "filename"
	metaFileID   = "file_id"

	lockSuffix = ".lock"
)

var (
	ErrLocked       = errors.New("vector store is locked by another process")
	ErrDimension    = errors.New("vector dimension mismatch")
	ErrNoCollection = errors.New("collection is not initialized")
)

// Payload полезная нагрузка точки
type Payload struct {
	Text     string
	Filename string
	FileID   string
}

// Point единица хранения в коллекции
type Point struct {
	ID      string
	Vector  []float32
	Payload Payload
}

// Hit результат поиска
type Hit struct {
	ID      string
	Payload Payload
	Score   float32
}

// Options параметры хранилища
type Options struct {
	Path       string
	Collection string
	Dimension  int
	Compress   bool
}

// Store адаптер над chromem.DB
type Store struct {
	opts Options
	db   *chromem.DB
	lock *flock.Flock

	mu   sync.RWMutex
	coll *chromem.Collection
}

// Open открывает БД на диске. Блокировка берётся на файл <Path>.lock рядом с
// каталогом БД; второй процесс на том же каталоге получает ErrLocked.
func Open(opts Options) (*Store, error) {
	if opts.Collection == "" {
		return nil, errors.New("collection name is required")
	}
	if opts.Dimension <= 0 {
		return nil, fmt.Errorf("invalid dimension: %d", opts.Dimension)
	}

	if err := os.MkdirAll(opts.Path, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create vector db directory: %w", err)
	}

	lock := flock.New(filepath.Clean(opts.Path) + lockSuffix)
	locked, err := lock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("failed to lock vector db: %w", err)
	}
	if !locked {
		return nil, fmt.Errorf("%w: %s", ErrLocked, opts.Path)
	}

	db, err := chromem.NewPersistentDB(opts.Path, opts.Compress)
	if err != nil {
		_ = lock.Unlock()
		return nil, fmt.Errorf("failed to open vector db: %w", err)
	}

	return &Store{opts: opts, db: db, lock: lock}, nil
}

// Close снимает блокировку каталога
func (s *Store) Close() error {
	if s.lock == nil {
		return nil
	}
	return s.lock.Unlock()
}

func (s *Store) Dimension() int {
	return s.opts.Dimension
}

// EnsureCollection создаёт коллекцию, если её ещё нет
func (s *Store) EnsureCollection() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.coll != nil {
		return nil
	}

	if coll := s.db.GetCollection(s.opts.Collection, noEmbedding); coll != nil {
		if err := checkDimension(coll, s.opts.Dimension); err != nil {
			return fmt.Errorf("collection %s: %w", s.opts.Collection, err)
		}
		s.coll = coll
		return nil
	}

	coll, err := s.db.CreateCollection(s.opts.Collection, map[string]string{
		"dimension": strconv.Itoa(s.opts.Dimension),
		"distance":  DistanceCosine,
	}, noEmbedding)
	if err != nil {
		return fmt.Errorf("failed to create collection %s: %w", s.opts.Collection, err)
	}

	log.Printf("Created collection: %s", s.opts.Collection)
	s.coll = coll
	return nil
}

// checkDimension сверяет длину сохранённых векторов с настроенной размерностью.
// chromem не хранит размерность отдельно, поэтому проверяем её запросом k=1.
func checkDimension(coll *chromem.Collection, dim int) error {
	if coll.Count() == 0 {
		return nil
	}

	probe := make([]float32, dim)
	probe[0] = 1
	results, err := coll.QueryEmbedding(context.Background(), probe, 1, nil, nil)
	if err != nil {
		if strings.Contains(err.Error(), "vectors must have the same length") {
			return fmt.Errorf("%w: stored vectors differ from configured %d", ErrDimension, dim)
		}
		return fmt.Errorf("failed to inspect collection: %w", err)
	}
	if len(results) > 0 && len(results[0].Embedding) != dim {
		return fmt.Errorf("%w: stored %d, configured %d", ErrDimension, len(results[0].Embedding), dim)
	}
	return nil
}

// Count число точек в коллекции
func (s *Store) Count() int {
	coll := s.collection()
	if coll == nil {
		return 0
	}
	return coll.Count()
}

func (s *Store) collection() *chromem.Collection {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.coll
}

// ExistsFor есть ли хотя бы одна точка с payload.file_id == fileID
func (s *Store) ExistsFor(ctx context.Context, fileID string) (bool, error) {
	hits, err := s.filter(ctx, map[string]string{metaFileID: fileID}, 1)
	if err != nil {
		return false, err
	}
	return len(hits) > 0, nil
}

// Superseded другие file_id, сохранённые под тем же именем файла
func (s *Store) Superseded(ctx context.Context, filename, fileID string) ([]string, error) {
	hits, err := s.filter(ctx, map[string]string{metaFilename: filename}, s.Count())
	if err != nil {
		return nil, err
	}

	seen := make(map[string]struct{})
	var ids []string
	for _, h := range hits {
		if h.Payload.FileID == fileID {
			continue
		}
		if _, ok := seen[h.Payload.FileID]; ok {
			continue
		}
		seen[h.Payload.FileID] = struct{}{}
		ids = append(ids, h.Payload.FileID)
	}
	return ids, nil
}

// Upsert пишет пачку точек, точка с существующим ID перезаписывается
func (s *Store) Upsert(ctx context.Context, points []Point) error {
	coll := s.collection()
	if coll == nil {
		return ErrNoCollection
	}
	if len(points) == 0 {
		return nil
	}

	docs := make([]chromem.Document, 0, len(points))
	for _, p := range points {
		if len(p.Vector) != s.opts.Dimension {
			return fmt.Errorf("%w: point %s has %d, collection has %d", ErrDimension, p.ID, len(p.Vector), s.opts.Dimension)
		}
		docs = append(docs, chromem.Document{
			ID:        p.ID,
			Content:   p.Payload.Text,
			Embedding: p.Vector,
			Metadata: map[string]string{
				metaFilename: p.Payload.Filename,
				metaFileID:   p.Payload.FileID,
			},
		})
	}

	if err := coll.AddDocuments(ctx, docs, runtime.NumCPU()); err != nil {
		return fmt.Errorf("failed to upsert %d points: %w", len(docs), err)
	}
	return nil
}

// Search k ближайших точек по косинусу, по убыванию сходства
func (s *Store) Search(ctx context.Context, vector []float32, k int) ([]Hit, error) {
	coll := s.collection()
	if coll == nil {
		return nil, ErrNoCollection
	}
	if len(vector) != s.opts.Dimension {
		return nil, fmt.Errorf("%w: query has %d, collection has %d", ErrDimension, len(vector), s.opts.Dimension)
	}
	return query(ctx, coll, vector, k, nil)
}

// filter выборка по метаданным; вектор-зонд нужен только потому, что chromem
// фильтрует внутри similarity-запроса
func (s *Store) filter(ctx context.Context, where map[string]string, k int) ([]Hit, error) {
	coll := s.collection()
	if coll == nil {
		return nil, ErrNoCollection
	}
	probe := make([]float32, s.opts.Dimension)
	probe[0] = 1
	return query(ctx, coll, probe, k, where)
}

func query(ctx context.Context, coll *chromem.Collection, vector []float32, k int, where map[string]string) ([]Hit, error) {
	total := coll.Count()
	if total == 0 || k <= 0 {
		return nil, nil
	}
	if k > total {
		k = total
	}

	results, err := coll.QueryEmbedding(ctx, vector, k, where, nil)
	if err != nil {
		return nil, fmt.Errorf("query failed: %w", err)
	}

	hits := make([]Hit, 0, len(results))
	for _, r := range results {
		hits = append(hits, Hit{
			ID: r.ID,
			Payload: Payload{
				Text:     r.Content,
				Filename: r.Metadata[metaFilename],
				FileID:   r.Metadata[metaFileID],
			},
			Score: r.Similarity,
		})
	}
	return hits, nil
}

// noEmbedding векторы всегда приходят готовыми от embedding.Client
func noEmbedding(context.Context, string) ([]float32, error) {
	return nil, errors.New("vector store does not compute embeddings")
}
