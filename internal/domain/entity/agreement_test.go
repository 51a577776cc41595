package entity

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestComputeAgreement(t *testing.T) {
	x := []float64{1, 2, 3, 4}
	y := []float64{1.5, 2, 2.5, 4}

	m, err := ComputeAgreement(x, y)
	require.NoError(t, err)
	require.InDelta(t, math.Sqrt(0.125), m.RMSE, 1e-12)
	require.InDelta(t, 0.0, m.Bias, 1e-12)
	// ss_tot = 3.5 вокруг среднего 2.5, ss_res = 0.5
	require.InDelta(t, 1-0.5/3.5, m.R2, 1e-12)
}

func TestComputeAgreement_EdgeCases(t *testing.T) {
	_, err := ComputeAgreement(nil, nil)
	require.ErrorIs(t, err, ErrNoSamples)

	_, err = ComputeAgreement([]float64{1}, []float64{1, 2})
	require.Error(t, err)

	m, err := ComputeAgreement([]float64{2, 2}, []float64{2, 2})
	require.NoError(t, err)
	require.Equal(t, 1.0, m.R2)

	m, err = ComputeAgreement([]float64{1, 3}, []float64{2, 2})
	require.NoError(t, err)
	require.Equal(t, 0.0, m.R2)
	require.InDelta(t, 0.0, m.Bias, 1e-12)
}

func TestMeanMetrics(t *testing.T) {
	m := MeanMetrics([]Metrics{{RMSE: 1, R2: 0.5, Bias: -1}, {RMSE: 3, R2: 0.7, Bias: 1}})
	require.InDelta(t, 2.0, m.RMSE, 1e-12)
	require.InDelta(t, 0.6, m.R2, 1e-12)
	require.InDelta(t, 0.0, m.Bias, 1e-12)
}
