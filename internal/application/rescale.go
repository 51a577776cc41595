package app

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"beetle-pipeline/internal/domain/entity"
	"beetle-pipeline/internal/domain/port"
)

const (
	colIndividualImageFilePath = "individualImageFilePath"
	colGroupImageFilePath      = "groupImageFilePath"

	scalingFactorsFile = "uniform_scaling_factors.json"
	summaryFile        = "processing_summary.json"
	progressEvery      = 100
)

// Расширения исходных групповых фото в порядке поиска.
var originalExtensions = []string{".jpg", ".jpeg", ".png", ".JPG", ".JPEG", ".PNG"}

// RescaleParams каталоги прохода масштабирования.
type RescaleParams struct {
	BaseDir    string
	GroupDir   string
	ProcessDir string
	Manifest   string
	OutputDir  string
}

type RescaleService struct {
	imager    port.Imager
	manifests port.ManifestStore
	reports   port.ReportWriter
	log       *zap.Logger
}

// NewRescaleService создаёт сервис равномерного масштабирования вырезок.
func NewRescaleService(imager port.Imager, manifests port.ManifestStore, reports port.ReportWriter, log *zap.Logger) *RescaleService {
	return &RescaleService{imager: imager, manifests: manifests, reports: reports, log: log}
}

// CalculateScalingFactors сравнивает уменьшенные групповые фото с исходными
// и сохраняет коэффициенты в processDir.
func (s *RescaleService) CalculateScalingFactors(ctx context.Context, groupDir, processDir string) (entity.ScalingFactors, error) {
	entries, err := os.ReadDir(processDir)
	if err != nil {
		return entity.ScalingFactors{}, fmt.Errorf("read process dir: %w", err)
	}

	var resized []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		switch strings.ToLower(filepath.Ext(e.Name())) {
		case ".jpg", ".jpeg", ".png":
			resized = append(resized, e.Name())
		}
	}
	s.log.Info("resized group images found", zap.String("dir", processDir), zap.Int("count", len(resized)))

	factors := make(entity.ScalingFactors, len(resized))
	for _, name := range resized {
		if err := ctx.Err(); err != nil {
			return factors, err
		}

		pictureID := entity.Stem(name)
		original, ok := findOriginal(groupDir, pictureID)
		if !ok {
			s.log.Warn("no original image found", zap.String("picture_id", pictureID))
			continue
		}

		scale, err := s.scaleFactor(original, filepath.Join(processDir, name))
		if err != nil {
			s.log.Error("failed to calculate scaling factor", zap.String("picture_id", pictureID), zap.Error(err))
			continue
		}
		factors[pictureID] = scale

		if len(factors)%progressEvery == 0 {
			s.log.Info("scaling progress", zap.Int("processed", len(factors)))
		}
	}

	s.log.Info("uniform scaling factors calculated", zap.Int("count", len(factors)))
	if stats, ok := factors.Stats(); ok {
		s.log.Info("scaling factor statistics",
			zap.Float64("min", stats.Min),
			zap.Float64("max", stats.Max),
			zap.Float64("mean", stats.Mean),
			zap.Float64("std", stats.Std))
	}

	out := filepath.Join(processDir, scalingFactorsFile)
	if err := s.reports.WriteJSON(out, factors); err != nil {
		return factors, err
	}
	s.log.Info("uniform scaling factors saved", zap.String("path", out))

	return factors, nil
}

func (s *RescaleService) scaleFactor(original, resized string) (float64, error) {
	ow, oh, err := s.imager.Dimensions(original)
	if err != nil {
		return 0, err
	}
	rw, rh, err := s.imager.Dimensions(resized)
	if err != nil {
		return 0, err
	}
	if rw == 0 || rh == 0 {
		return 0, fmt.Errorf("resized image %s has zero size", resized)
	}
	return entity.UniformScale(ow, oh, rw, rh), nil
}

func findOriginal(groupDir, pictureID string) (string, bool) {
	for _, ext := range originalExtensions {
		p := filepath.Join(groupDir, pictureID+ext)
		if _, err := os.Stat(p); err == nil {
			return p, true
		}
	}
	return "", false
}

// ResizeIndividuals масштабирует вырезки из манифеста коэффициентом их группового фото.
func (s *RescaleService) ResizeIndividuals(ctx context.Context, p RescaleParams, factors entity.ScalingFactors) (*entity.RescaleSummary, error) {
	if len(factors) == 0 {
		return nil, entity.ErrNoScalingFactors
	}

	keys := factors.Keys()
	for _, k := range keys[:min(5, len(keys))] {
		s.log.Info("example uniform scaling factor", zap.String("picture_id", k), zap.Float64("scale", factors[k]))
	}

	if err := os.MkdirAll(p.OutputDir, 0o755); err != nil {
		return nil, fmt.Errorf("create output dir: %w", err)
	}

	m, err := s.manifests.Load(p.Manifest)
	if err != nil {
		return nil, err
	}
	if err := m.Require(colIndividualImageFilePath, colGroupImageFilePath); err != nil {
		return nil, err
	}
	s.log.Info("individual images to process", zap.Int("count", m.Len()))

	summary := &entity.RescaleSummary{
		TotalIndividualImages: m.Len(),
		ScalingFactorsUsed:    len(factors),
		OutputDirectory:       p.OutputDir,
		ScalingMethod:         "uniform",
	}

	for i := 0; i < m.Len(); i++ {
		if err := ctx.Err(); err != nil {
			return summary, err
		}

		individual := m.Get(i, colIndividualImageFilePath)
		pictureID := entity.Stem(m.Get(i, colGroupImageFilePath))

		scale, ok := factors[pictureID]
		if !ok {
			summary.SkippedNoScaling++
			continue
		}

		src := filepath.Join(p.BaseDir, individual)
		if _, err := os.Stat(src); err != nil {
			summary.SkippedNoScaling++
			continue
		}

		if err := s.resize(src, filepath.Join(p.OutputDir, individual), scale); err != nil {
			summary.Errors++
			s.log.Error("failed to resize image", zap.String("path", individual), zap.Error(err))
			continue
		}

		summary.SuccessfullyProcessed++
		if summary.SuccessfullyProcessed%progressEvery == 0 {
			s.log.Info("resize progress", zap.Int("processed", summary.SuccessfullyProcessed))
		}
	}

	s.log.Info("processing complete",
		zap.Int("successfully_processed", summary.SuccessfullyProcessed),
		zap.Int("skipped_no_scaling_factor", summary.SkippedNoScaling),
		zap.Int("errors", summary.Errors),
		zap.String("output_directory", p.OutputDir))

	out := filepath.Join(p.OutputDir, summaryFile)
	if err := s.reports.WriteJSON(out, summary); err != nil {
		return summary, err
	}
	s.log.Info("processing summary saved", zap.String("path", out))

	return summary, nil
}

func (s *RescaleService) resize(src, dst string, scale float64) error {
	img, err := s.imager.Decode(src)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return fmt.Errorf("create dir: %w", err)
	}

	b := img.Bounds()
	w, h := entity.ScaledSize(b.Dx(), b.Dy(), scale)
	return s.imager.Save(dst, s.imager.Resize(img, w, h))
}

// Run выполняет оба шага: расчёт коэффициентов и масштабирование вырезок.
func (s *RescaleService) Run(ctx context.Context, p RescaleParams) (*entity.RescaleSummary, error) {
	factors, err := s.CalculateScalingFactors(ctx, p.GroupDir, p.ProcessDir)
	if err != nil {
		return nil, err
	}
	return s.ResizeIndividuals(ctx, p, factors)
}

