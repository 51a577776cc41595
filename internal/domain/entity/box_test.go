package entity

import (
	"image"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestBoxContainsLine(t *testing.T) {
	b := Box{XMin: 10, YMin: 10, XMax: 20, YMax: 20}
	require.True(t, b.ContainsLine(Line{Start: Point{10, 10}, End: Point{20, 20}}))
	require.False(t, b.ContainsLine(Line{Start: Point{10, 10}, End: Point{20.5, 15}}))
}

func TestIoU(t *testing.T) {
	a := Box{XMin: 0, YMin: 0, XMax: 10, YMax: 10}
	b := Box{XMin: 5, YMin: 0, XMax: 15, YMax: 10}
	require.InDelta(t, 50.0/150.0, IoU(a, b), 1e-9)
	require.Equal(t, 0.0, IoU(a, Box{XMin: 20, YMin: 20, XMax: 30, YMax: 30}))
	require.Equal(t, 0.0, IoU(Box{}, Box{}))
}

func TestNMS_SuppressesOverlapsByScore(t *testing.T) {
	boxes := []Box{
		{XMin: 0, YMin: 0, XMax: 10, YMax: 10},
		{XMin: 1, YMin: 0, XMax: 11, YMax: 10},
		{XMin: 50, YMin: 50, XMax: 60, YMax: 60},
	}
	scores := []float64{0.5, 0.9, 0.3}

	keep := NMS(boxes, scores, 0.6)
	require.Equal(t, []int{1, 2}, keep)

	// Порог выше любой перекрытости оставляет всё.
	require.Equal(t, []int{1, 0, 2}, NMS(boxes, scores, 0.99))
}

func TestPaddedRect_ClampsToImage(t *testing.T) {
	r := PaddedRect(Box{XMin: 5, YMin: 10, XMax: 105, YMax: 60}, 0.1, 110, 200)
	require.Equal(t, image.Rect(0, 5, 110, 65), r)
}

func TestFitWithin(t *testing.T) {
	w, h := FitWithin(1024, 512, 512)
	require.Equal(t, 512, w)
	require.Equal(t, 256, h)

	w, h = FitWithin(64, 256, 512)
	require.Equal(t, 128, w)
	require.Equal(t, 512, h)

	w, h = FitWithin(0, 10, 512)
	require.Zero(t, w)
	require.Zero(t, h)
}
