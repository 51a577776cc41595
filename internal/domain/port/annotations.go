package port

import "beetle-pipeline/internal/domain/entity"

// AnnotationSource интерфейс чтения файла ручной разметки
type AnnotationSource interface {
	Parse(path string) ([]entity.AnnotatedImage, error)
}
