// Package extract достаёт plain text из исходных документов.
package extract

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
)

var ErrUnsupported = errors.New("unsupported document format")

// Extractor возвращает текст документа постранично
type Extractor interface {
	Pages(data []byte) ([]string, error)
}

// Registry выбирает extractor по расширению файла
type Registry struct {
	byExt map[string]Extractor
}

// NewRegistry создаёт реестр для указанных расширений (".pdf", ".md", ...)
func NewRegistry(extensions []string) (*Registry, error) {
	r := &Registry{byExt: make(map[string]Extractor)}
	for _, ext := range extensions {
		ext = normalizeExt(ext)
		switch ext {
		case ".pdf":
			r.Register(ext, PDF{})
		case ".md", ".markdown":
			r.Register(ext, Markdown{})
		case ".txt", ".text":
			r.Register(ext, Text{})
		default:
			return nil, fmt.Errorf("%w: %s", ErrUnsupported, ext)
		}
	}
	return r, nil
}

// Register добавляет или заменяет extractor для расширения
func (r *Registry) Register(ext string, e Extractor) {
	r.byExt[normalizeExt(ext)] = e
}

// Supports проверяет, распознаётся ли файл
func (r *Registry) Supports(path string) bool {
	_, ok := r.byExt[normalizeExt(filepath.Ext(path))]
	return ok
}

// Extract извлекает текст документа и склеивает страницы
func (r *Registry) Extract(path string, data []byte) (string, error) {
	e, ok := r.byExt[normalizeExt(filepath.Ext(path))]
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrUnsupported, filepath.Ext(path))
	}

	pages, err := e.Pages(data)
	if err != nil {
		return "", fmt.Errorf("failed to extract %s: %w", filepath.Base(path), err)
	}
	return JoinPages(pages), nil
}

// JoinPages каждая страница завершается переводом строки
func JoinPages(pages []string) string {
	var buf strings.Builder
	for _, p := range pages {
		buf.WriteString(p)
		buf.WriteString("\n")
	}
	return buf.String()
}

func normalizeExt(ext string) string {
	ext = strings.ToLower(strings.TrimSpace(ext))
	if ext != "" && !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	return ext
}
