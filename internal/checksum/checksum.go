package checksum

import (
	"crypto/sha256"
	"fmt"
	"strings"
)

type Generator struct{}

func NewGenerator() *Generator {
	return &Generator{}
}

// HeaderFingerprint генерирует SHA256 хеш заголовков таблицы.
// Формула: SHA256(lower(h1)|lower(h2)|...), пробелы схлопнуты
func (g *Generator) HeaderFingerprint(headers []string) string {
	normalized := make([]string, len(headers))
	for i, h := range headers {
		normalized[i] = strings.ToLower(strings.Join(strings.Fields(h), " "))
	}

	hash := sha256.Sum256([]byte(strings.Join(normalized, "|")))

	// Возвращаем hex
	return fmt.Sprintf("%x", hash)
}

// VerifyHeaderFingerprint проверяет, что разметка таблицы не поменялась
func (g *Generator) VerifyHeaderFingerprint(expectedHash string, headers []string) bool {
	return g.HeaderFingerprint(headers) == strings.ToLower(strings.TrimSpace(expectedHash))
}
