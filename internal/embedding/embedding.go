// Package embedding оборачивает внешнюю модель эмбеддингов: таймаут,
// ограниченные ретраи, rate limit, кэш и проверка размерности.
package embedding

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"log"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/philippgille/chromem-go"
	"golang.org/x/time/rate"
)

var (
	// ErrUnavailable любая неудача получения вектора. Вызывающий код деградирует.
	ErrUnavailable   = errors.New("embedding unavailable")
	ErrNotConfigured = fmt.Errorf("%w: no embedding provider configured", ErrUnavailable)
	ErrDimension     = fmt.Errorf("%w: unexpected vector dimension", ErrUnavailable)
)

// Options параметры клиента
type Options struct {
	Dimension int
	Timeout   time.Duration
	Retry     RetryConfig
	RateLimit float64 // запросов в секунду, 0 без ограничения
	CacheSize int     // 0 без кэша
}

// Client единая точка вызова модели эмбеддингов
type Client struct {
	name    string
	embed   chromem.EmbeddingFunc
	opts    Options
	limiter *rate.Limiter
	cache   *lru.Cache[string, []float32]
}

// NewClient создаёт клиента поверх provider. nil provider = клиент не сконфигурирован.
func NewClient(name string, embed chromem.EmbeddingFunc, opts Options) *Client {
	c := &Client{name: name, embed: embed, opts: opts}

	if opts.Retry.MaxRetries <= 0 {
		c.opts.Retry = DefaultRetryConfig()
	}
	if opts.RateLimit > 0 {
		c.limiter = rate.NewLimiter(rate.Limit(opts.RateLimit), 1)
	}
	if opts.CacheSize > 0 {
		cache, err := lru.New[string, []float32](opts.CacheSize)
		if err == nil {
			c.cache = cache
		}
	}

	if embed == nil {
		log.Printf("⚠️  Embedding provider %q is not configured, knowledge base disabled", name)
	}
	return c
}

// Unconfigured клиент без провайдера
func Unconfigured(name string) *Client {
	return NewClient(name, nil, Options{})
}

func (c *Client) Name() string {
	return c.name
}

func (c *Client) Dimension() int {
	return c.opts.Dimension
}

// Configured false, если нет ключа/модели
func (c *Client) Configured() bool {
	return c.embed != nil
}

// Embed возвращает вектор длины Dimension либо ошибку, оборачивающую ErrUnavailable
func (c *Client) Embed(ctx context.Context, text string) ([]float32, error) {
	if c.embed == nil {
		return nil, ErrNotConfigured
	}
	if text == "" {
		return nil, fmt.Errorf("%w: empty text", ErrUnavailable)
	}

	key := cacheKey(text)
	if c.cache != nil {
		if v, ok := c.cache.Get(key); ok {
			return copyVector(v), nil
		}
	}

	vector, err := retryWithBackoff(ctx, c.opts.Retry, func() ([]float32, error) {
		return c.call(ctx, text)
	})
	if err != nil {
		log.Printf("❌ [%s] Embedding failed: %v", c.name, err)
		return nil, fmt.Errorf("%w: %w", ErrUnavailable, err)
	}

	if c.opts.Dimension > 0 && len(vector) != c.opts.Dimension {
		log.Printf("❌ [%s] Embedding has %d dimensions, expected %d", c.name, len(vector), c.opts.Dimension)
		return nil, fmt.Errorf("%w: got %d, want %d", ErrDimension, len(vector), c.opts.Dimension)
	}

	if c.cache != nil {
		c.cache.Add(key, copyVector(vector))
	}
	return vector, nil
}

// call один вызов провайдера, ограниченный таймаутом
func (c *Client) call(ctx context.Context, text string) ([]float32, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, err
		}
	}

	if c.opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.opts.Timeout)
		defer cancel()
	}

	vector, err := c.embed(ctx, text)
	if err != nil {
		return nil, err
	}
	if len(vector) == 0 {
		return nil, errors.New("empty embedding returned")
	}
	return vector, nil
}

func cacheKey(text string) string {
	h := sha256.Sum256([]byte(text))
	return hex.EncodeToString(h[:])
}

func copyVector(v []float32) []float32 {
	out := make([]float32, len(v))
	copy(out, v)
	return out
}
