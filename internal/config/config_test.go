package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInit_Defaults(t *testing.T) {
	cfg := Config{}
	require.NoError(t, Init(&cfg))

	assert.Equal(t, "./docs", cfg.DocsDir)
	assert.Equal(t, "./vector_db", cfg.DataDir)
	assert.Equal(t, "email_knowledge", cfg.Collection)
	assert.Equal(t, 768, cfg.Dimension)
	assert.Equal(t, []string{".pdf"}, cfg.DocExtensions)
	assert.Equal(t, "gemini", cfg.EmbeddingProvider)
	assert.Equal(t, "text-embedding-004", cfg.GeminiEmbedModel)
	assert.Equal(t, 30*time.Second, cfg.EmbedTimeout)
	assert.Equal(t, 1500, cfg.ChunkSize)
	assert.Equal(t, 1200, cfg.ChunkStride)
	assert.Equal(t, 3, cfg.TopK)
}

func TestInit_FromEnv(t *testing.T) {
	t.Setenv("DOCS_DIR", "/srv/docs")
	t.Setenv("GEMINI_API_KEY", "key")
	t.Setenv("DOC_EXTENSIONS", ".pdf,.md")
	t.Setenv("EMBED_TIMEOUT", "5s")
	t.Setenv("CHUNK_SIZE", "1000")
	t.Setenv("CHUNK_STRIDE", "800")

	cfg := Config{}
	require.NoError(t, Init(&cfg))

	assert.Equal(t, "/srv/docs", cfg.DocsDir)
	assert.Equal(t, "key", cfg.GeminiAPIKey)
	assert.Equal(t, []string{".pdf", ".md"}, cfg.DocExtensions)
	assert.Equal(t, 5*time.Second, cfg.EmbedTimeout)
	assert.Equal(t, 1000, cfg.ChunkSize)
	assert.Equal(t, 800, cfg.ChunkStride)
}

func TestInit_Invalid(t *testing.T) {
	tests := map[string]map[string]string{
		"stride beyond window": {"CHUNK_SIZE": "100", "CHUNK_STRIDE": "200"},
		"zero dimension":       {"EMBEDDING_DIMENSION": "0"},
		"zero top k":           {"TOP_K": "0"},
		"no retries":           {"EMBED_MAX_RETRIES": "0"},
		"not a number":         {"CHUNK_SIZE": "big"},
	}

	for name, vars := range tests {
		t.Run(name, func(t *testing.T) {
			for k, v := range vars {
				t.Setenv(k, v)
			}
			cfg := Config{}
			assert.Error(t, Init(&cfg))
		})
	}
}
