package entity

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// Колонки манифеста особей.
const (
	ColPictureID            = "pictureID"
	ColBeetleUUID           = "beetle_uuid"
	ColBeetleID             = "beetleID"
	ColUserName             = "user_name"
	ColRawFilepath          = "raw_filepath"
	ColLengthCoord          = "length_coord_value"
	ColWidthCoord           = "width_coord_value"
	ColResizedImageFilepath = "resized_image_filepath"
	ColIndividualImagePath  = "individual_image_file_path"
)

// Specimen особь на групповом фото с линиями измерения надкрылий.
type Specimen struct {
	PictureID string
	UUID      string
	Length    *Line // nil, если длина не размечена
	Width     *Line // nil, если ширина не размечена
}

// HasLines проверяет, что размечены обе линии.
func (s Specimen) HasLines() bool {
	return s.Length != nil && s.Width != nil
}

// IndividualPath относительный путь вырезки в итоговом манифесте.
func (s Specimen) IndividualPath() string {
	return "individual_images/" + s.PictureID + "/" + s.UUID + ".png"
}

// ParseTraitLine разбирает словарь вида {'x1': 1.0, 'y1': 2.0, 'x2': 3.0, 'y2': 4.0}.
// Пустое значение даёт nil без ошибки.
func ParseTraitLine(value string) (*Line, error) {
	if IsMissing(value) {
		return nil, nil
	}

	normalized := strings.ReplaceAll(strings.TrimSpace(value), "'", `"`)
	var coords map[string]float64
	if err := json.Unmarshal([]byte(normalized), &coords); err != nil {
		return nil, fmt.Errorf("parse trait coordinates %q: %w", value, err)
	}

	for _, key := range []string{"x1", "y1", "x2", "y2"} {
		if _, ok := coords[key]; !ok {
			return nil, fmt.Errorf("parse trait coordinates %q: key %s is missing", value, key)
		}
	}

	return &Line{
		Start: Point{X: coords["x1"], Y: coords["y1"]},
		End:   Point{X: coords["x2"], Y: coords["y2"]},
	}, nil
}

// KeyOrder порядок значений одной колонки: числовой, если каждое непустое
// значение колонки является числом, иначе строковый.
type KeyOrder struct {
	numeric bool
}

// NewKeyOrder выбирает порядок по всем значениям колонки.
func NewKeyOrder(values []string) KeyOrder {
	present := 0
	for _, v := range values {
		if IsMissing(v) {
			continue
		}
		if _, err := strconv.ParseFloat(strings.TrimSpace(v), 64); err != nil {
			return KeyOrder{}
		}
		present++
	}
	return KeyOrder{numeric: present > 0}
}

// Numeric сообщает, что колонка сравнивается как числа.
func (o KeyOrder) Numeric() bool {
	return o.numeric
}

// Compare сравнивает два значения колонки. В числовом режиме равные числа
// с разной записью упорядочиваются по строке, нечисловые идут последними.
func (o KeyOrder) Compare(a, b string) int {
	if !o.numeric {
		return strings.Compare(a, b)
	}

	fa, errA := strconv.ParseFloat(strings.TrimSpace(a), 64)
	fb, errB := strconv.ParseFloat(strings.TrimSpace(b), 64)
	switch {
	case errA == nil && errB != nil:
		return -1
	case errA != nil && errB == nil:
		return 1
	case errA == nil && errB == nil:
		if fa < fb {
			return -1
		}
		if fa > fb {
			return 1
		}
	}
	return strings.Compare(a, b)
}
