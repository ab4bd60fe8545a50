package chunker

// Chunk представляет единицу текста для векторизации
type Chunk struct {
	Index  int    // Позиция в последовательности чанков документа, с 0
	Text   string // Текст чанка
	FileID string // Digest документа-владельца
}

// Config содержит параметры окна
type Config struct {
	Window int // Размер окна в символах
	Stride int // Шаг между началами соседних окон
}

const (
	DefaultWindow = 1500
	DefaultStride = 1200
)

// DefaultConfig окно 1500 с шагом 1200 (overlap 300)
func DefaultConfig() Config {
	return Config{Window: DefaultWindow, Stride: DefaultStride}
}
