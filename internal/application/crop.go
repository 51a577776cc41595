package app

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"beetle-pipeline/internal/domain/entity"
	"beetle-pipeline/internal/domain/port"
)

// CropParams параметры извлечения особей по ручной разметке.
type CropParams struct {
	XMLFile   string
	ImagesDir string
	OutputDir string
	Padding   int // отступ в пикселях
}

type AnnotationCropService struct {
	source port.AnnotationSource
	imager port.Imager
	log    *zap.Logger
}

// NewAnnotationCropService создаёт сервис вырезки особей по файлу CVAT.
func NewAnnotationCropService(source port.AnnotationSource, imager port.Imager, log *zap.Logger) *AnnotationCropService {
	return &AnnotationCropService{source: source, imager: imager, log: log}
}

// Run вырезает все размеченные особи. Отсутствующие и битые изображения пропускаются.
func (s *AnnotationCropService) Run(ctx context.Context, p CropParams) (*entity.CropReport, error) {
	images, err := s.source.Parse(p.XMLFile)
	if err != nil {
		return nil, err
	}

	if err := os.MkdirAll(p.OutputDir, 0o755); err != nil {
		return nil, fmt.Errorf("create output dir: %w", err)
	}

	report := &entity.CropReport{Images: len(images)}
	for _, img := range images {
		report.Boxes += len(img.Boxes)
	}
	s.log.Info("annotations loaded",
		zap.String("xml_file", p.XMLFile),
		zap.Int("images", report.Images),
		zap.Int("boxes", report.Boxes))

	for _, img := range images {
		if err := ctx.Err(); err != nil {
			return report, err
		}

		saved, err := s.cropImage(img, p)
		report.Saved += saved
		switch {
		case errors.Is(err, os.ErrNotExist):
			report.MissingImages++
			s.log.Warn("image not found", zap.String("image", img.Filename))
		case err != nil:
			report.FailedImages++
			s.log.Error("failed to process image", zap.String("image", img.Filename), zap.Error(err))
		default:
			s.log.Debug("image processed", zap.String("image", img.Filename), zap.Int("crops", saved))
		}
	}

	s.log.Info("annotation crops finished",
		zap.Int("saved", report.Saved),
		zap.Int("missing_images", report.MissingImages),
		zap.Int("failed_images", report.FailedImages))
	return report, nil
}

// cropImage возвращает количество сохранённых вырезок до первой ошибки.
func (s *AnnotationCropService) cropImage(img entity.AnnotatedImage, p CropParams) (int, error) {
	path := filepath.Join(p.ImagesDir, img.Filename)
	if _, err := os.Stat(path); err != nil {
		return 0, err
	}

	src, err := s.imager.Load(path)
	if err != nil {
		return 0, fmt.Errorf("load: %w", err)
	}

	saved := 0
	for i := range img.Boxes {
		rect := img.CropRect(i, p.Padding)
		if rect.Empty() {
			return saved, fmt.Errorf("box %d: invalid region %v", i+1, rect)
		}
		crop := s.imager.Crop(src, rect)
		out := filepath.Join(p.OutputDir, img.CropName(i))
		if err := s.imager.Save(out, crop); err != nil {
			return saved, fmt.Errorf("box %d: %w", i+1, err)
		}
		saved++
	}
	return saved, nil
}
