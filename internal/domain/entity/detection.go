package entity

import (
	"math"
	"strconv"
)

// DetectionQuery параметры запроса к zero-shot детектору.
type DetectionQuery struct {
	ModelID       string
	Prompt        string
	BoxThreshold  float64
	TextThreshold float64
}

// Detection прямоугольник, найденный детектором.
type Detection struct {
	Box   Box
	Score float64
	Label string
}

// DetectionRow строка журнала обнаружений для одного группового фото.
type DetectionRow struct {
	PictureID string
	UUID      string
	Box       Box
	Score     float64
}

// DetectionHeader заголовок журнала обнаружений
var DetectionHeader = []string{"pictureID", "beetle_uuid", "x_min", "y_min", "x_max", "y_max", "score"}

// Record сериализует строку журнала; координаты целые, оценка округлена до 4 знаков.
func (r DetectionRow) Record() []string {
	return []string{
		r.PictureID,
		r.UUID,
		strconv.Itoa(int(r.Box.XMin)),
		strconv.Itoa(int(r.Box.YMin)),
		strconv.Itoa(int(r.Box.XMax)),
		strconv.Itoa(int(r.Box.YMax)),
		strconv.FormatFloat(math.Round(r.Score*1e4)/1e4, 'f', -1, 64),
	}
}

// areaLimit ограничение площади прямоугольника относительно площади кадра
// для заданного диапазона количества обнаружений. maxCount == 0 означает без верхней границы.
type areaLimit struct {
	minCount int
	maxCount int
	fraction float64
}

// Чем больше особей на фото, тем меньше допустимая площадь одной особи.
var areaLimits = []areaLimit{
	{minCount: 6, fraction: 0.1},
	{minCount: 5, maxCount: 20, fraction: 0.05},
	{minCount: 20, maxCount: 50, fraction: 0.02},
	{minCount: 50, maxCount: 100, fraction: 0.01},
	{minCount: 100, maxCount: 200, fraction: 0.005},
	{minCount: 200, fraction: 0.001},
}

// ExceedsAreaLimit проверяет, превышает ли площадь допустимую долю кадра.
func ExceedsAreaLimit(area, imageArea float64, detections int) bool {
	for _, l := range areaLimits {
		if detections < l.minCount {
			continue
		}
		if l.maxCount > 0 && detections >= l.maxCount {
			continue
		}
		if area > l.fraction*imageArea {
			return true
		}
	}
	return false
}

// SelectionParams параметры выбора прямоугольника для особи.
type SelectionParams struct {
	ImageWidth   int
	ImageHeight  int
	IoUThreshold float64
}

// SelectSpecimenBox выбирает прямоугольник особи среди обнаружений:
// фильтр по площади, обязательное содержание обеих линий измерения, NMS,
// затем самый большой из оставшихся.
func SelectSpecimenBox(detections []Detection, s Specimen, p SelectionParams) (Detection, bool) {
	if !s.HasLines() {
		return Detection{}, false
	}

	imageArea := float64(p.ImageWidth * p.ImageHeight)
	n := len(detections)

	boxes := make([]Box, 0, n)
	scores := make([]float64, 0, n)
	for _, d := range detections {
		box := d.Box.Truncate()
		if ExceedsAreaLimit(box.Area(), imageArea, n) {
			continue
		}
		if !box.ContainsLine(*s.Length) || !box.ContainsLine(*s.Width) {
			continue
		}
		boxes = append(boxes, box)
		scores = append(scores, d.Score)
	}
	if len(boxes) == 0 {
		return Detection{}, false
	}

	var (
		best    Detection
		found   bool
		maxArea float64
	)
	for _, idx := range NMS(boxes, scores, p.IoUThreshold) {
		if area := boxes[idx].Area(); area > maxArea {
			maxArea = area
			best = Detection{Box: boxes[idx], Score: scores[idx]}
			found = true
		}
	}

	return best, found
}

// DetectionReport итог прохода детектора по групповым фото.
type DetectionReport struct {
	Images         int // групповых фото в манифесте
	DetectedImages int // фото, где сохранена хотя бы одна вырезка
	Crops          int // сохранённых вырезок
	FailedImages   int // фото, которые не удалось обработать
}
