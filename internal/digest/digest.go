package digest

import (
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"os"
	"strconv"
)

// Bytes возвращает hex MD5 от содержимого документа
func Bytes(data []byte) string {
	sum := md5.Sum(data)
	return hex.EncodeToString(sum[:])
}

// File читает файл целиком и возвращает его digest вместе с байтами,
// чтобы не читать документ повторно при извлечении текста
func File(path string) (string, []byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return Bytes(data), data, nil
}

// PointID детерминированный ID точки: digest(fileID + "_" + index)
func PointID(fileID string, index int) string {
	return Bytes([]byte(fileID + "_" + strconv.Itoa(index)))
}
