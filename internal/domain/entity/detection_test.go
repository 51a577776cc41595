package entity

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestExceedsAreaLimit(t *testing.T) {
	const img = 1_000_000.0

	require.False(t, ExceedsAreaLimit(0.9*img, img, 4))
	require.True(t, ExceedsAreaLimit(0.06*img, img, 5))
	require.True(t, ExceedsAreaLimit(0.06*img, img, 6))
	require.False(t, ExceedsAreaLimit(0.04*img, img, 19))
	require.True(t, ExceedsAreaLimit(0.03*img, img, 20))
	require.True(t, ExceedsAreaLimit(0.011*img, img, 99))
	require.True(t, ExceedsAreaLimit(0.006*img, img, 150))
	require.False(t, ExceedsAreaLimit(0.0009*img, img, 250))
	require.True(t, ExceedsAreaLimit(0.002*img, img, 250))
}

func TestSelectSpecimenBox(t *testing.T) {
	specimen := Specimen{
		PictureID: "p.jpg",
		UUID:      "u1",
		Length:    &Line{Start: Point{110, 120}, End: Point{150, 180}},
		Width:     &Line{Start: Point{105, 150}, End: Point{160, 150}},
	}
	detections := []Detection{
		{Box: Box{XMin: 100.7, YMin: 100.2, XMax: 170.9, YMax: 200.6}, Score: 0.8},
		{Box: Box{XMin: 99, YMin: 99, XMax: 171, YMax: 201}, Score: 0.5},   // перекрывается с первым
		{Box: Box{XMin: 120, YMin: 100, XMax: 170, YMax: 200}, Score: 0.9}, // не содержит линию ширины
		{Box: Box{XMin: 400, YMin: 400, XMax: 500, YMax: 500}, Score: 0.95},
	}

	best, ok := SelectSpecimenBox(detections, specimen, SelectionParams{
		ImageWidth: 1000, ImageHeight: 1000, IoUThreshold: 0.6,
	})
	require.True(t, ok)
	require.Equal(t, Box{XMin: 100, YMin: 100, XMax: 170, YMax: 200}, best.Box)
	require.Equal(t, 0.8, best.Score)
}

func TestSelectSpecimenBox_PicksLargestAfterNMS(t *testing.T) {
	specimen := Specimen{
		Length: &Line{Start: Point{50, 50}, End: Point{60, 60}},
		Width:  &Line{Start: Point{50, 60}, End: Point{60, 50}},
	}
	detections := []Detection{
		{Box: Box{XMin: 40, YMin: 40, XMax: 70, YMax: 70}, Score: 0.9},
		{Box: Box{XMin: 20, YMin: 20, XMax: 90, YMax: 90}, Score: 0.4},
	}

	best, ok := SelectSpecimenBox(detections, specimen, SelectionParams{
		ImageWidth: 1000, ImageHeight: 1000, IoUThreshold: 0.6,
	})
	require.True(t, ok)
	require.Equal(t, Box{XMin: 20, YMin: 20, XMax: 90, YMax: 90}, best.Box)
}

func TestSelectSpecimenBox_RequiresBothLines(t *testing.T) {
	specimen := Specimen{Length: &Line{Start: Point{1, 1}, End: Point{2, 2}}}
	_, ok := SelectSpecimenBox([]Detection{{Box: Box{XMax: 10, YMax: 10}, Score: 1}}, specimen, SelectionParams{
		ImageWidth: 100, ImageHeight: 100, IoUThreshold: 0.5,
	})
	require.False(t, ok)
}

func TestDetectionRowRecord(t *testing.T) {
	row := DetectionRow{PictureID: "p.jpg", UUID: "u1", Box: Box{XMin: 1, YMin: 2, XMax: 30, YMax: 40}, Score: 0.123456}
	require.Equal(t, []string{"p.jpg", "u1", "1", "2", "30", "40", "0.1235"}, row.Record())
}
