package port

import "beetle-pipeline/internal/domain/entity"

// ManifestStore интерфейс хранилища табличных манифестов
type ManifestStore interface {
	// Load читает таблицу целиком
	Load(path string) (*entity.Manifest, error)

	// Save записывает таблицу, создавая каталоги
	Save(path string, m *entity.Manifest) error
}

// DetectionLog журнал обнаружений одного группового фото
type DetectionLog interface {
	Append(row entity.DetectionRow) error
	Close() error
}

// DetectionLogs открывает журналы обнаружений в режиме дозаписи
type DetectionLogs interface {
	Open(path string) (DetectionLog, error)
}

// ReportWriter сохраняет отчёты в JSON
type ReportWriter interface {
	WriteJSON(path string, v any) error
}
