package app

import (
	"context"
	"fmt"
	"image/color"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"go.uber.org/zap"

	"beetle-pipeline/internal/domain/entity"
	"beetle-pipeline/internal/domain/port"
)

// Заливка полей вырезки средним цветом ImageNet.
var letterboxFill = color.RGBA{R: 123, G: 116, B: 103, A: 255}

// DetectParams параметры извлечения особей детектором.
type DetectParams struct {
	CSVPath            string
	ImageDir           string
	SaveFolder         string
	OutputCSV          string
	Query              entity.DetectionQuery
	Padding            float64 // доля ширины и высоты прямоугольника
	IoUThreshold       float64
	PreferredAnnotator string
	CropSize           int
}

type DetectionService struct {
	manifests port.ManifestStore
	logs      port.DetectionLogs
	imager    port.Imager
	detector  port.ZeroShotDetector
	log       *zap.Logger
}

// NewDetectionService создаёт сервис поиска особей на групповых фото.
func NewDetectionService(
	manifests port.ManifestStore,
	logs port.DetectionLogs,
	imager port.Imager,
	detector port.ZeroShotDetector,
	log *zap.Logger,
) *DetectionService {
	return &DetectionService{
		manifests: manifests,
		logs:      logs,
		imager:    imager,
		detector:  detector,
		log:       log,
	}
}

// PrepareManifest проверяет колонки, выводит путь уменьшенного фото и оставляет
// по одной строке на пару (beetleID, pictureID), предпочитая указанного разметчика.
func PrepareManifest(m *entity.Manifest, preferred string) (*entity.Manifest, error) {
	err := m.Require(
		entity.ColPictureID,
		entity.ColBeetleUUID,
		entity.ColBeetleID,
		entity.ColUserName,
		entity.ColRawFilepath,
		entity.ColLengthCoord,
		entity.ColWidthCoord,
	)
	if err != nil {
		return nil, err
	}

	m.EnsureColumn(entity.ColResizedImageFilepath)
	for i := 0; i < m.Len(); i++ {
		resized := strings.ReplaceAll(m.Get(i, entity.ColRawFilepath), "group_images", "resized_images")
		m.Set(i, entity.ColResizedImageFilepath, resized)
	}

	type groupKey struct{ beetleID, pictureID string }
	groups := make(map[groupKey][]int)
	var keys []groupKey
	for i := 0; i < m.Len(); i++ {
		k := groupKey{m.Get(i, entity.ColBeetleID), m.Get(i, entity.ColPictureID)}
		// строки с пустым ключом не попадают ни в одну группу
		if entity.IsMissing(k.beetleID) || entity.IsMissing(k.pictureID) {
			continue
		}
		if _, ok := groups[k]; !ok {
			keys = append(keys, k)
		}
		groups[k] = append(groups[k], i)
	}
	beetleOrder := entity.NewKeyOrder(m.Column(entity.ColBeetleID))
	pictureOrder := entity.NewKeyOrder(m.Column(entity.ColPictureID))
	sort.SliceStable(keys, func(i, j int) bool {
		if c := beetleOrder.Compare(keys[i].beetleID, keys[j].beetleID); c != 0 {
			return c < 0
		}
		return pictureOrder.Compare(keys[i].pictureID, keys[j].pictureID) < 0
	})

	selected := make([]int, 0, len(keys))
	for _, k := range keys {
		rows := groups[k]
		pick := rows[0]
		for _, r := range rows {
			if m.Get(r, entity.ColUserName) == preferred {
				pick = r
				break
			}
		}
		selected = append(selected, pick)
	}

	out := m.Select(selected)
	out.EnsureColumn(entity.ColIndividualImagePath)
	return out, nil
}

// Run обрабатывает все групповые фото манифеста и сохраняет обновлённую таблицу.
func (s *DetectionService) Run(ctx context.Context, p DetectParams) (*entity.DetectionReport, error) {
	raw, err := s.manifests.Load(p.CSVPath)
	if err != nil {
		return nil, err
	}

	m, err := PrepareManifest(raw, p.PreferredAnnotator)
	if err != nil {
		return nil, err
	}

	if err := os.MkdirAll(p.SaveFolder, 0o755); err != nil {
		return nil, fmt.Errorf("create save folder: %w", err)
	}

	pictures := uniquePictures(m)
	uuidOrder := entity.NewKeyOrder(m.Column(entity.ColBeetleUUID))
	report := &entity.DetectionReport{Images: len(pictures)}
	s.log.Info("manifest prepared",
		zap.String("csv_path", p.CSVPath),
		zap.Int("rows", m.Len()),
		zap.Int("images", len(pictures)))

	for n, pictureID := range pictures {
		if err := ctx.Err(); err != nil {
			return report, err
		}

		crops, err := s.processImage(ctx, m, pictureID, uuidOrder, p)
		if err != nil {
			report.FailedImages++
			s.log.Error("failed to process image", zap.String("picture_id", pictureID), zap.Error(err))
		}
		if crops > 0 {
			report.DetectedImages++
			report.Crops += crops
		}

		if (n+1)%100 == 0 {
			s.log.Info("detection progress", zap.Int("processed", n+1), zap.Int("total", len(pictures)))
		}
	}

	if err := s.manifests.Save(p.OutputCSV, m); err != nil {
		return report, err
	}

	s.log.Info("detection finished",
		zap.Int("detected_images", report.DetectedImages),
		zap.Int("crops", report.Crops),
		zap.Int("failed_images", report.FailedImages),
		zap.String("output_csv", p.OutputCSV))
	return report, nil
}

// processImage возвращает количество сохранённых вырезок для одного фото.
func (s *DetectionService) processImage(
	ctx context.Context,
	m *entity.Manifest,
	pictureID string,
	uuidOrder entity.KeyOrder,
	p DetectParams,
) (int, error) {
	img, err := s.imager.Load(filepath.Join(p.ImageDir, pictureID))
	if err != nil {
		return 0, err
	}
	bounds := img.Bounds()

	imageDir := filepath.Join(p.SaveFolder, pictureID)
	if err := os.MkdirAll(imageDir, 0o755); err != nil {
		return 0, fmt.Errorf("create image dir: %w", err)
	}

	specimens := specimenRows(m, pictureID)
	if len(specimens) == 0 {
		return 0, nil
	}

	detections, err := s.detector.Detect(ctx, img, p.Query)
	if err != nil {
		return 0, err
	}
	s.log.Debug("detections received", zap.String("picture_id", pictureID), zap.Int("detections", len(detections)))

	log, err := s.logs.Open(filepath.Join(imageDir, entity.Stem(pictureID)+".csv"))
	if err != nil {
		return 0, err
	}
	defer log.Close()

	params := entity.SelectionParams{
		ImageWidth:   bounds.Dx(),
		ImageHeight:  bounds.Dy(),
		IoUThreshold: p.IoUThreshold,
	}

	crops := 0
	for _, uuid := range sortedKeys(specimens, uuidOrder) {
		rows := specimens[uuid]

		specimen, err := buildSpecimen(m, pictureID, uuid, rows)
		if err != nil {
			s.log.Warn("invalid trait coordinates", zap.String("beetle_uuid", uuid), zap.Error(err))
			continue
		}

		best, ok := entity.SelectSpecimenBox(detections, specimen, params)
		if !ok {
			s.log.Debug("no box for specimen", zap.String("picture_id", pictureID), zap.String("beetle_uuid", uuid))
			continue
		}

		crop := s.imager.Crop(img, entity.PaddedRect(best.Box, p.Padding, bounds.Dx(), bounds.Dy()))
		out := s.imager.Letterbox(crop, p.CropSize, letterboxFill)
		if err := s.imager.Save(filepath.Join(imageDir, uuid+".png"), out); err != nil {
			return crops, err
		}

		err = log.Append(entity.DetectionRow{PictureID: pictureID, UUID: uuid, Box: best.Box, Score: best.Score})
		if err != nil {
			return crops, err
		}

		for _, r := range rows {
			m.Set(r, entity.ColIndividualImagePath, specimen.IndividualPath())
		}
		crops++
	}

	return crops, nil
}

// buildSpecimen берёт первые непустые линии длины и ширины среди строк особи.
func buildSpecimen(m *entity.Manifest, pictureID, uuid string, rows []int) (entity.Specimen, error) {
	s := entity.Specimen{PictureID: pictureID, UUID: uuid}

	var err error
	if v, ok := firstPresent(m, rows, entity.ColLengthCoord); ok {
		if s.Length, err = entity.ParseTraitLine(v); err != nil {
			return s, err
		}
	}
	if v, ok := firstPresent(m, rows, entity.ColWidthCoord); ok {
		if s.Width, err = entity.ParseTraitLine(v); err != nil {
			return s, err
		}
	}
	return s, nil
}

func firstPresent(m *entity.Manifest, rows []int, column string) (string, bool) {
	for _, r := range rows {
		if v := m.Get(r, column); !entity.IsMissing(v) {
			return v, true
		}
	}
	return "", false
}

// uniquePictures возвращает pictureID в порядке первого появления.
func uniquePictures(m *entity.Manifest) []string {
	seen := make(map[string]struct{})
	var out []string
	for i := 0; i < m.Len(); i++ {
		id := m.Get(i, entity.ColPictureID)
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

// specimenRows группирует строки фото по beetle_uuid.
func specimenRows(m *entity.Manifest, pictureID string) map[string][]int {
	out := make(map[string][]int)
	for i := 0; i < m.Len(); i++ {
		if m.Get(i, entity.ColPictureID) != pictureID {
			continue
		}
		uuid := m.Get(i, entity.ColBeetleUUID)
		if entity.IsMissing(uuid) {
			continue
		}
		out[uuid] = append(out[uuid], i)
	}
	return out
}

func sortedKeys(groups map[string][]int, order entity.KeyOrder) []string {
	keys := make([]string, 0, len(groups))
	for k := range groups {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		return order.Compare(keys[i], keys[j]) < 0
	})
	return keys
}
