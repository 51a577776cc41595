package entity

import (
	"errors"
	"math"

	"gonum.org/v1/gonum/stat"
)

// ErrNoSamples возвращается, когда у пары нет ни одной полной строки.
var ErrNoSamples = errors.New("no paired samples")

// Metrics показатели согласия двух рядов измерений.
type Metrics struct {
	RMSE float64
	R2   float64
	Bias float64
}

// ComputeAgreement считает RMSE, R² и среднее смещение x относительно y.
// y считается эталоном, x предсказанием.
func ComputeAgreement(x, y []float64) (Metrics, error) {
	if len(x) != len(y) {
		return Metrics{}, errors.New("samples have different lengths")
	}
	if len(x) == 0 {
		return Metrics{}, ErrNoSamples
	}

	diff := make([]float64, len(x))
	sq := make([]float64, len(x))
	for i := range x {
		diff[i] = x[i] - y[i]
		sq[i] = diff[i] * diff[i]
	}

	return Metrics{
		RMSE: math.Sqrt(stat.Mean(sq, nil)),
		R2:   rSquared(x, y),
		Bias: stat.Mean(diff, nil),
	}, nil
}

// rSquared повторяет соглашения sklearn: для постоянного эталона 1 при точном
// совпадении и 0 иначе, для одной точки NaN.
func rSquared(pred, truth []float64) float64 {
	if len(truth) < 2 {
		return math.NaN()
	}

	mean := stat.Mean(truth, nil)
	var ssTot, ssRes float64
	for i := range truth {
		ssTot += (truth[i] - mean) * (truth[i] - mean)
		ssRes += (truth[i] - pred[i]) * (truth[i] - pred[i])
	}
	if ssTot == 0 {
		if ssRes == 0 {
			return 1
		}
		return 0
	}
	return stat.RSquaredFrom(pred, truth, nil)
}

// MeanMetrics усредняет показатели по нескольким парам.
func MeanMetrics(ms []Metrics) Metrics {
	if len(ms) == 0 {
		return Metrics{RMSE: math.NaN(), R2: math.NaN(), Bias: math.NaN()}
	}
	rmse := make([]float64, len(ms))
	r2 := make([]float64, len(ms))
	bias := make([]float64, len(ms))
	for i, m := range ms {
		rmse[i], r2[i], bias[i] = m.RMSE, m.R2, m.Bias
	}
	return Metrics{
		RMSE: stat.Mean(rmse, nil),
		R2:   stat.Mean(r2, nil),
		Bias: stat.Mean(bias, nil),
	}
}

// Pair пара колонок для сравнения
type Pair struct {
	XColumn string `yaml:"x"`
	YColumn string `yaml:"y"`
	Title   string `yaml:"title"`
	XLabel  string `yaml:"x_label"`
	YLabel  string `yaml:"y_label"`
}

// PairResult показатели одной пары
type PairResult struct {
	Title   string
	Samples int
	Metrics Metrics
}

// Panel данные одной панели графика.
type Panel struct {
	Title  string
	XLabel string
	YLabel string
	X      []float64
	Y      []float64
}

// AgreementFigure рисунок из панелей в один ряд.
type AgreementFigure struct {
	Panels []Panel
	LimMin float64
	LimMax float64
}

// AgreementReport итог расчёта согласия.
type AgreementReport struct {
	Pairs   []PairResult
	Summary *PairResult // среднее по парам или средний человек против системы
	Figure  string      // путь к PDF
}
