package embedding

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"google.golang.org/genai"
)

// OpenAI- и Ollama-функции chromem возвращают статус только в тексте ошибки
const statusPrefix = "error response from the embedding API: "

// RetryConfig экспоненциальный backoff
type RetryConfig struct {
	MaxRetries int           // Всего попыток
	BaseDelay  time.Duration // Первая пауза
	MaxDelay   time.Duration // Потолок паузы
	Multiplier float64
}

func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxRetries: 3,
		BaseDelay:  200 * time.Millisecond,
		MaxDelay:   5 * time.Second,
		Multiplier: 2,
	}
}

// retryWithBackoff повторяет fn, пока не кончатся попытки или контекст;
// постоянные ошибки (см. isPermanent) возвращаются сразу
func retryWithBackoff[T any](ctx context.Context, config RetryConfig, fn func() (T, error)) (T, error) {
	var lastErr error
	var zero T
	backoff := config.BaseDelay

	for attempt := 0; attempt < config.MaxRetries; attempt++ {
		result, err := fn()
		if err == nil {
			return result, nil
		}

		lastErr = err

		if ctx.Err() != nil {
			return zero, ctx.Err()
		}
		if isPermanent(err) {
			return zero, err
		}

		if attempt < config.MaxRetries-1 {
			select {
			case <-ctx.Done():
				return zero, ctx.Err()
			case <-time.After(backoff):
				backoff = time.Duration(float64(backoff) * config.Multiplier)
				if backoff > config.MaxDelay {
					backoff = config.MaxDelay
				}
			}
		}
	}

	return zero, lastErr
}

// isPermanent ответы 4xx, кроме 408 и 429, повтор не исправит
func isPermanent(err error) bool {
	code := statusCode(err)
	if code < 400 || code >= 500 {
		return false
	}
	return code != http.StatusRequestTimeout && code != http.StatusTooManyRequests
}

func statusCode(err error) int {
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		return apiErr.Code
	}

	_, status, ok := strings.Cut(err.Error(), statusPrefix)
	if !ok {
		return 0
	}
	code, _, _ := strings.Cut(status, " ")
	n, err := strconv.Atoi(code)
	if err != nil {
		return 0
	}
	return n
}
