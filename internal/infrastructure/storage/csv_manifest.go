package storage

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"beetle-pipeline/internal/domain/entity"
	"beetle-pipeline/internal/domain/port"
)

// CSVManifestStore хранит манифесты в файлах CSV
type CSVManifestStore struct{}

// NewCSVManifestStore создаёт хранилище манифестов
func NewCSVManifestStore() *CSVManifestStore {
	return &CSVManifestStore{}
}

// Load читает CSV с заголовком в первой строке
func (s *CSVManifestStore) Load(path string) (*entity.Manifest, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open manifest: %w", err)
	}
	defer f.Close()

	return ReadManifest(f)
}

// ReadManifest разбирает CSV; строки разной длины допускаются.
func ReadManifest(r io.Reader) (*entity.Manifest, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, errors.New("manifest is empty")
	}
	if err != nil {
		return nil, fmt.Errorf("read manifest header: %w", err)
	}
	// Убираем BOM, который оставляет Excel.
	if len(header) > 0 {
		header[0] = trimBOM(header[0])
	}

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read manifest rows: %w", err)
	}

	return entity.NewManifest(header, rows), nil
}

// Save записывает таблицу целиком
func (s *CSVManifestStore) Save(path string, m *entity.Manifest) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create manifest dir: %w", err)
		}
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create manifest: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(m.Header); err != nil {
		return fmt.Errorf("write manifest header: %w", err)
	}
	if err := w.WriteAll(m.Rows); err != nil {
		return fmt.Errorf("write manifest rows: %w", err)
	}

	return f.Close()
}

func trimBOM(s string) string {
	const bom = "\ufeff"
	if len(s) >= len(bom) && s[:len(bom)] == bom {
		return s[len(bom):]
	}
	return s
}

var _ port.ManifestStore = (*CSVManifestStore)(nil)
