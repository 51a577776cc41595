package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"beetle-pipeline/internal/domain/port"
)

// JSONReportWriter пишет отчёты с отступом в два пробела
type JSONReportWriter struct{}

// NewJSONReportWriter создаёт писатель отчётов
func NewJSONReportWriter() *JSONReportWriter {
	return &JSONReportWriter{}
}

// WriteJSON сериализует значение; ключи словарей сортируются encoding/json.
func (w *JSONReportWriter) WriteJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal report: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create report dir: %w", err)
	}
	if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("write report: %w", err)
	}

	return nil
}

var _ port.ReportWriter = (*JSONReportWriter)(nil)
