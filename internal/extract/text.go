package extract

import (
	"errors"
	"strings"
	"unicode/utf8"
)

// Text plain text файл целиком, одной страницей
type Text struct{}

func (Text) Pages(data []byte) ([]string, error) {
	if !utf8.Valid(data) {
		return nil, errors.New("text document is not valid utf-8")
	}
	return []string{strings.TrimRight(string(data), "\n")}, nil
}
