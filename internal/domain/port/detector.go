package port

import (
	"context"
	"image"

	"beetle-pipeline/internal/domain/entity"
)

// ZeroShotDetector интерфейс детектора объектов по текстовому запросу
type ZeroShotDetector interface {
	// Detect возвращает прямоугольники в пикселях исходного изображения
	Detect(ctx context.Context, img image.Image, query entity.DetectionQuery) ([]entity.Detection, error)
}
