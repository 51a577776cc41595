package storage

import (
	"encoding/csv"
	"fmt"
	"os"

	"beetle-pipeline/internal/domain/entity"
	"beetle-pipeline/internal/domain/port"
)

// CSVDetectionLogs открывает журналы обнаружений в CSV
type CSVDetectionLogs struct{}

// NewCSVDetectionLogs создаёт фабрику журналов
func NewCSVDetectionLogs() *CSVDetectionLogs {
	return &CSVDetectionLogs{}
}

// Open открывает файл на дозапись; заголовок пишется только в пустой файл.
func (l *CSVDetectionLogs) Open(path string) (port.DetectionLog, error) {
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open detection log: %w", err)
	}

	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("stat detection log: %w", err)
	}

	log := &csvDetectionLog{file: f, w: csv.NewWriter(f)}
	if info.Size() == 0 {
		if err := log.write(entity.DetectionHeader); err != nil {
			f.Close()
			return nil, err
		}
	}

	return log, nil
}

type csvDetectionLog struct {
	file *os.File
	w    *csv.Writer
}

func (l *csvDetectionLog) write(record []string) error {
	if err := l.w.Write(record); err != nil {
		return fmt.Errorf("write detection log: %w", err)
	}
	l.w.Flush()
	return l.w.Error()
}

// Append дописывает строку и сразу сбрасывает буфер
func (l *csvDetectionLog) Append(row entity.DetectionRow) error {
	return l.write(row.Record())
}

// Close закрывает файл журнала
func (l *csvDetectionLog) Close() error {
	l.w.Flush()
	if err := l.w.Error(); err != nil {
		l.file.Close()
		return err
	}
	return l.file.Close()
}

var _ port.DetectionLogs = (*CSVDetectionLogs)(nil)
