package app

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"email_rag/internal/vectorstore"
)

type stubSearch struct {
	hits   []vectorstore.Hit
	err    error
	panics bool
	calls  int
	lastK  int
}

func (s *stubSearch) Search(_ context.Context, _ []float32, k int) ([]vectorstore.Hit, error) {
	s.calls++
	s.lastK = k
	if s.panics {
		panic("index corrupted")
	}
	return s.hits, s.err
}

func hit(text string, score float32) vectorstore.Hit {
	return vectorstore.Hit{Payload: vectorstore.Payload{Text: text}, Score: score}
}

func TestQuery_JoinsInStoreOrder(t *testing.T) {
	store := &stubSearch{hits: []vectorstore.Hit{hit("refund policy", 0.9), hit("shipping times", 0.7), hit("warranty", 0.5)}}
	r := NewRetriever(store, &fakeEmbedder{configured: true})

	got := r.Query(context.Background(), "how do refunds work", 3)
	assert.Equal(t, "refund policy\n---\nshipping times\n---\nwarranty", got)
	assert.Equal(t, 3, store.lastK)
}

func TestQuery_DefaultLimit(t *testing.T) {
	store := &stubSearch{}
	r := NewRetriever(store, &fakeEmbedder{configured: true})

	r.Query(context.Background(), "question", 0)
	assert.Equal(t, DefaultLimit, store.lastK)
}

func TestQuery_NoHits(t *testing.T) {
	r := NewRetriever(&stubSearch{}, &fakeEmbedder{configured: true})
	assert.Equal(t, "", r.Query(context.Background(), "question", 3))
}

func TestQuery_DegradesToEmpty(t *testing.T) {
	tests := []struct {
		name       string
		store      *stubSearch
		embedder   *fakeEmbedder
		query      string
		wantSearch bool
	}{
		{
			name:     "unconfigured embedder",
			store:    &stubSearch{hits: []vectorstore.Hit{hit("x", 1)}},
			embedder: &fakeEmbedder{configured: false},
			query:    "question",
		},
		{
			name:     "embedding unavailable",
			store:    &stubSearch{hits: []vectorstore.Hit{hit("x", 1)}},
			embedder: &fakeEmbedder{configured: true, fail: func(string) bool { return true }},
			query:    "question",
		},
		{
			name:     "blank query",
			store:    &stubSearch{hits: []vectorstore.Hit{hit("x", 1)}},
			embedder: &fakeEmbedder{configured: true},
			query:    "   ",
		},
		{
			name:       "search error",
			store:      &stubSearch{err: errors.New("collection missing")},
			embedder:   &fakeEmbedder{configured: true},
			query:      "question",
			wantSearch: true,
		},
		{
			name:       "search panic",
			store:      &stubSearch{panics: true},
			embedder:   &fakeEmbedder{configured: true},
			query:      "question",
			wantSearch: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := NewRetriever(tt.store, tt.embedder)
			assert.NotPanics(t, func() {
				assert.Equal(t, "", r.Query(context.Background(), tt.query, 3))
			})
			assert.Equal(t, tt.wantSearch, tt.store.calls > 0)
		})
	}
}
