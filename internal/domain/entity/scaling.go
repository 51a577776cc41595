package entity

import (
	"errors"
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// ErrNoScalingFactors возвращается, когда не удалось посчитать ни одного коэффициента.
var ErrNoScalingFactors = errors.New("no scaling factors calculated")

// ScalingFactors коэффициенты масштаба picture_id -> исходный размер / уменьшенный.
type ScalingFactors map[string]float64

// UniformScale усредняет коэффициенты по осям.
func UniformScale(origW, origH, resizedW, resizedH int) float64 {
	scaleX := float64(origW) / float64(resizedW)
	scaleY := float64(origH) / float64(resizedH)
	return (scaleX + scaleY) / 2
}

// ScaledSize делит размеры на коэффициент с отбрасыванием дробной части.
func ScaledSize(w, h int, scale float64) (int, int) {
	return int(float64(w) / scale), int(float64(h) / scale)
}

// Keys возвращает идентификаторы в отсортированном порядке.
func (f ScalingFactors) Keys() []string {
	keys := make([]string, 0, len(f))
	for k := range f {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// ScalingStats сводная статистика коэффициентов
type ScalingStats struct {
	Min  float64
	Max  float64
	Mean float64
	Std  float64 // стандартное отклонение генеральной совокупности
}

// Stats считает статистику коэффициентов; для пустого набора возвращает false.
func (f ScalingFactors) Stats() (ScalingStats, bool) {
	if len(f) == 0 {
		return ScalingStats{}, false
	}

	values := make([]float64, 0, len(f))
	for _, k := range f.Keys() {
		values = append(values, f[k])
	}
	mean, variance := stat.PopMeanVariance(values, nil)

	return ScalingStats{
		Min:  floats.Min(values),
		Max:  floats.Max(values),
		Mean: mean,
		Std:  math.Sqrt(variance),
	}, true
}

// RescaleSummary итог масштабирования вырезок, сохраняется в JSON.
type RescaleSummary struct {
	TotalIndividualImages int    `json:"total_individual_images"`
	SuccessfullyProcessed int    `json:"successfully_processed"`
	SkippedNoScaling      int    `json:"skipped_no_scaling_factor"`
	Errors                int    `json:"errors"`
	ScalingFactorsUsed    int    `json:"scaling_factors_used"`
	OutputDirectory       string `json:"output_directory"`
	ScalingMethod         string `json:"scaling_method"`
}
