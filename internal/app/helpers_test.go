package app

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"email_rag/internal/chunker"
	"email_rag/internal/embedding"
	"email_rag/internal/extract"
	"email_rag/internal/vectorstore"
)

const testDim = 4

// fakeEmbedder вектор из частот букв 'a' и 'b'
type fakeEmbedder struct {
	configured bool
	fail       func(text string) bool
	calls      int
}

func (f *fakeEmbedder) Configured() bool { return f.configured }

func (f *fakeEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	f.calls++
	if !f.configured {
		return nil, embedding.ErrNotConfigured
	}
	if f.fail != nil && f.fail(text) {
		return nil, fmt.Errorf("%w: service returned 503", embedding.ErrUnavailable)
	}
	return letterVector(text), nil
}

func letterVector(text string) []float32 {
	return []float32{
		float32(strings.Count(text, "a")),
		float32(strings.Count(text, "b")),
		1,
		0,
	}
}

type pagesFunc func(data []byte) ([]string, error)

func (f pagesFunc) Pages(data []byte) ([]string, error) { return f(data) }

// twoPages страницы из 1199 'a' и 1199 'b': после склейки ровно 2400 символов,
// то есть два окна [0,1500) и [1200,2400)
func twoPages([]byte) ([]string, error) {
	return []string{strings.Repeat("a", 1199), strings.Repeat("b", 1199)}, nil
}

func newTestStore(t *testing.T) *vectorstore.Store {
	t.Helper()
	store, err := vectorstore.Open(vectorstore.Options{
		Path:       filepath.Join(t.TempDir(), "vector_db"),
		Collection: "email_knowledge",
		Dimension:  testDim,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func newTestRegistry(t *testing.T) *extract.Registry {
	t.Helper()
	reg, err := extract.NewRegistry([]string{".pdf", ".txt"})
	require.NoError(t, err)
	reg.Register(".pdf", pagesFunc(twoPages))
	return reg
}

func newTestIndexer(t *testing.T, store IndexStore, emb Embedder, reg TextExtractor) *Indexer {
	t.Helper()
	chunkr, err := chunker.NewWindowChunker(chunker.DefaultConfig())
	require.NoError(t, err)
	return NewIndexer(store, emb, chunkr, reg)
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}
