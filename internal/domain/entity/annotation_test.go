package entity

import (
	"image"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestAnnotatedImageCropRect(t *testing.T) {
	a := AnnotatedImage{
		Filename: "plate_01.jpg",
		Width:    100,
		Height:   80,
		Boxes:    []Box{{XMin: 2.7, YMin: 10.2, XMax: 98.9, YMax: 40.5}},
	}

	require.Equal(t, image.Rect(2, 10, 98, 40), a.CropRect(0, 0))
	require.Equal(t, image.Rect(0, 5, 100, 45), a.CropRect(0, 5))
	require.Equal(t, "plate_01_specimen_1.png", a.CropName(0))
}

func TestAnnotatedImageCropRect_Inverted(t *testing.T) {
	a := AnnotatedImage{
		Width:  100,
		Height: 80,
		Boxes:  []Box{{XMin: 60, YMin: 50, XMax: 30, YMax: 40}},
	}

	rect := a.CropRect(0, 0)
	require.True(t, rect.Empty())
	require.Equal(t, image.Pt(60, 50), rect.Min)
}

func TestStem(t *testing.T) {
	require.Equal(t, "a.b", Stem("dir/a.b.jpg"))
	require.Equal(t, "plate", Stem("plate"))
}
