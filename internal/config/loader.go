package config

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log"
	"os"

	"gopkg.in/yaml.v3"
)

// LoadConfig читает YAML поверх значений по умолчанию, поэтому в файле достаточно указать только отличия.
// Неизвестные ключи считаются ошибкой, опечатка в имени поля не должна молча давать дефолт
func LoadConfig(filePath string) (*Config, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open config file: %w", err)
	}
	defer func() {
		if closeErr := file.Close(); closeErr != nil {
			log.Printf("Warning: failed to close config file: %v", closeErr)
		}
	}()

	cfg, err := decodeConfig(file)
	if err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation error: %w", err)
	}

	return cfg, nil
}

// LoadConfigOrDefault как LoadConfig, но при required == false отсутствующий файл
// заменяется встроенной конфигурацией. Второе значение показывает, был ли прочитан файл
func LoadConfigOrDefault(filePath string, required bool) (*Config, bool, error) {
	cfg, err := LoadConfig(filePath)
	switch {
	case err == nil:
		return cfg, true, nil
	case !required && errors.Is(err, fs.ErrNotExist):
		return DefaultConfig(), false, nil
	default:
		return nil, false, err
	}
}

func decodeConfig(r io.Reader) (*Config, error) {
	cfg := DefaultConfig()

	decoder := yaml.NewDecoder(r)
	decoder.KnownFields(true)
	// Пустой файл даёт io.EOF, остаются значения по умолчанию
	if err := decoder.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	return cfg, nil
}
