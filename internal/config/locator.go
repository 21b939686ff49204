package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// DefaultTableSelector задаёт позиционный селектор таблицы квестов на странице вики
const DefaultTableSelector = "body > div:nth-child(3) > div:nth-child(5) > div:nth-child(7) > div:nth-child(1) > table:nth-child(7)"

// Locator собирает всю зависимость от разметки страницы в одном месте
type Locator struct {
	TableSelector          string  `yaml:"table_selector"`
	BodySelector           string  `yaml:"body_selector"`
	RowSelector            string  `yaml:"row_selector"`
	CellSelector           string  `yaml:"cell_selector"`
	HeaderCellSelector     string  `yaml:"header_cell_selector"`
	ExpectedHeaderChecksum string  `yaml:"expected_header_checksum"`
	Columns                Columns `yaml:"columns"`
}

// Columns хранит позиции ячеек в строке таблицы
type Columns struct {
	Number      int `yaml:"number"`
	Name        int `yaml:"name"`
	Difficulty  int `yaml:"difficulty"`
	Length      int `yaml:"length"`
	QuestPoints int `yaml:"quest_points"`
	Series      int `yaml:"series"`
	ReleaseDate int `yaml:"release_date"`
}

// Max возвращает наибольший индекс колонки
func (c Columns) Max() int {
	m := c.Number
	for _, v := range []int{c.Name, c.Difficulty, c.Length, c.QuestPoints, c.Series, c.ReleaseDate} {
		if v > m {
			m = v
		}
	}
	return m
}

func DefaultLocator() *Locator {
	return &Locator{
		TableSelector:      DefaultTableSelector,
		BodySelector:       "tbody",
		RowSelector:        "tr",
		CellSelector:       "td",
		HeaderCellSelector: "th",
		Columns: Columns{
			Number:      0,
			Name:        1,
			Difficulty:  2,
			Length:      3,
			QuestPoints: 4,
			Series:      5,
			ReleaseDate: 6,
		},
	}
}

// LoadLocator загружает локатор из YAML файла
func LoadLocator(filePath string) (*Locator, error) {
	if filePath == "" {
		return nil, fmt.Errorf("locator file path is empty")
	}

	file, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open locator file: %w", err)
	}
	defer func() {
		if closeErr := file.Close(); closeErr != nil {
			fmt.Printf("Warning: failed to close locator file: %v\n", closeErr)
		}
	}()

	loc := DefaultLocator()
	decoder := yaml.NewDecoder(file)
	if err := decoder.Decode(loc); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("failed to parse locator YAML: %w", err)
	}

	if err := validateLocator(loc); err != nil {
		return nil, err
	}

	return loc, nil
}

// ResolveLocator возвращает локатор из файла конфига или встроенный, если файл не задан
func (c *Config) ResolveLocator(configDir string) (*Locator, error) {
	if c.LocatorFile == "" {
		return DefaultLocator(), nil
	}

	filePath := c.LocatorFile
	// Если путь относительный, делаем его относительно конфига
	if !filepath.IsAbs(filePath) {
		filePath = filepath.Join(configDir, filePath)
	}

	return LoadLocator(filePath)
}

func validateLocator(l *Locator) error {
	if l.TableSelector == "" {
		return fmt.Errorf("table_selector is required")
	}
	if l.BodySelector == "" {
		return fmt.Errorf("body_selector is required")
	}
	if l.RowSelector == "" {
		return fmt.Errorf("row_selector is required")
	}
	if l.CellSelector == "" {
		return fmt.Errorf("cell_selector is required")
	}

	cols := map[string]int{
		"number":       l.Columns.Number,
		"name":         l.Columns.Name,
		"difficulty":   l.Columns.Difficulty,
		"length":       l.Columns.Length,
		"quest_points": l.Columns.QuestPoints,
		"series":       l.Columns.Series,
		"release_date": l.Columns.ReleaseDate,
	}
	for name, idx := range cols {
		if idx < 0 {
			return fmt.Errorf("columns.%s must be >= 0", name)
		}
	}

	return nil
}
