package chunker

import (
	"errors"
	"fmt"
)

var ErrInvalidConfig = errors.New("invalid chunker config")

// WindowChunker разбивает текст на перекрывающиеся окна фиксированного размера
type WindowChunker struct {
	config Config
}

// NewWindowChunker создаёт chunker, проверяя параметры окна
func NewWindowChunker(config Config) (*WindowChunker, error) {
	if config.Window <= 0 {
		return nil, fmt.Errorf("%w: window must be > 0, got %d", ErrInvalidConfig, config.Window)
	}
	if config.Stride <= 0 || config.Stride > config.Window {
		return nil, fmt.Errorf("%w: stride must be in (0, %d], got %d", ErrInvalidConfig, config.Window, config.Stride)
	}
	return &WindowChunker{config: config}, nil
}

func (w *WindowChunker) Name() string {
	return "window"
}

// Overlap количество общих символов у соседних чанков
func (w *WindowChunker) Overlap() int {
	return w.config.Window - w.config.Stride
}

// Chunk i покрывает runes[i*stride : i*stride+window], пока начало < len(runes)
func (w *WindowChunker) Chunk(text, fileID string) []Chunk {
	runes := []rune(text)
	chunks := make([]Chunk, 0, w.Count(len(runes)))

	for start, idx := 0, 0; start < len(runes); start, idx = start+w.config.Stride, idx+1 {
		end := start + w.config.Window
		if end > len(runes) {
			end = len(runes)
		}

		chunks = append(chunks, Chunk{
			Index:  idx,
			Text:   string(runes[start:end]),
			FileID: fileID,
		})
	}

	return chunks
}

// Count число чанков для текста длины length: floor((L-1)/S)+1
func (w *WindowChunker) Count(length int) int {
	if length <= 0 {
		return 0
	}
	return (length-1)/w.config.Stride + 1
}
