package entity

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestUniformScaleAndScaledSize(t *testing.T) {
	s := UniformScale(4000, 3000, 1000, 750)
	require.InDelta(t, 4.0, s, 1e-12)

	w, h := ScaledSize(401, 399, s)
	require.Equal(t, 100, w)
	require.Equal(t, 99, h)
}

func TestScalingFactorsStats(t *testing.T) {
	_, ok := ScalingFactors{}.Stats()
	require.False(t, ok)

	f := ScalingFactors{"b": 2, "a": 4}
	require.Equal(t, []string{"a", "b"}, f.Keys())

	st, ok := f.Stats()
	require.True(t, ok)
	require.Equal(t, 2.0, st.Min)
	require.Equal(t, 4.0, st.Max)
	require.InDelta(t, 3.0, st.Mean, 1e-12)
	require.InDelta(t, 1.0, st.Std, 1e-12)
	require.False(t, math.IsNaN(st.Std))
}
