//go:build gocv
// +build gocv

package vision

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"os"

	"gocv.io/x/gocv"

	"beetle-pipeline/internal/domain/entity"
	"beetle-pipeline/internal/domain/port"
)

// GoCVImager работа с изображениями через OpenCV.
// Операции, которые OpenCV не смог выполнить, выполняются на чистом Go.
type GoCVImager struct {
	pure *Imager
}

// NewGoCVImager создаёт Imager на OpenCV
func NewGoCVImager() *GoCVImager {
	return &GoCVImager{pure: NewImager()}
}

// Load читает файл через imread
func (g *GoCVImager) Load(path string) (image.Image, error) {
	if err := checkImageFile(path); err != nil {
		return nil, err
	}

	mat := gocv.IMRead(path, gocv.IMReadColor)
	if mat.Empty() {
		return nil, fmt.Errorf("decode image %s: empty image", path)
	}
	defer mat.Close()

	img, err := mat.ToImage()
	if err != nil {
		return nil, fmt.Errorf("convert image %s: %w", path, err)
	}
	return toRGB(img), nil
}

// Decode читает файл без смены цветовой модели
func (g *GoCVImager) Decode(path string) (image.Image, error) {
	return g.pure.Decode(path)
}

// Dimensions читает только заголовок файла
func (g *GoCVImager) Dimensions(path string) (int, int, error) {
	return decodeDimensions(path)
}

// Crop вырезает область через Region.
// Область, выходящую за границы изображения, дополняет чистый Go.
func (g *GoCVImager) Crop(img image.Image, rect image.Rectangle) image.Image {
	if rect.Empty() || !rect.In(image.Rect(0, 0, img.Bounds().Dx(), img.Bounds().Dy())) {
		return g.pure.Crop(img, rect)
	}

	mat, err := toMat(img)
	if err != nil {
		return g.pure.Crop(img, rect)
	}
	defer mat.Close()

	region := mat.Region(rect)
	defer region.Close()

	out, err := region.ToImage()
	if err != nil {
		return g.pure.Crop(img, rect)
	}
	return toRGB(out)
}

// Resize масштабирует с интерполяцией Lanczos4.
// Изображения не в RGBA масштабирует чистый Go, чтобы не терять альфу и оттенки серого.
func (g *GoCVImager) Resize(img image.Image, width, height int) image.Image {
	if _, ok := img.(*image.RGBA); !ok || width <= 0 || height <= 0 {
		return g.pure.Resize(img, width, height)
	}

	mat, err := toMat(img)
	if err != nil {
		return g.pure.Resize(img, width, height)
	}
	defer mat.Close()

	resized := gocv.NewMat()
	defer resized.Close()
	gocv.Resize(mat, &resized, image.Pt(width, height), 0, 0, gocv.InterpolationLanczos4)

	out, err := resized.ToImage()
	if err != nil {
		return g.pure.Resize(img, width, height)
	}
	return toRGB(out)
}

// Letterbox вписывает изображение в квадрат и центрирует его на заливке.
func (g *GoCVImager) Letterbox(img image.Image, size int, fill color.RGBA) image.Image {
	w, h := entity.FitWithin(img.Bounds().Dx(), img.Bounds().Dy(), size)
	return compose(g.Resize(img, w, h), size, fill)
}

// Save записывает файл через imwrite
func (g *GoCVImager) Save(path string, img image.Image) error {
	if _, ok := img.(*image.RGBA); !ok {
		return g.pure.Save(path, img)
	}

	mat, err := toMat(img)
	if err != nil {
		return g.pure.Save(path, img)
	}
	defer mat.Close()

	if !gocv.IMWrite(path, mat) {
		os.Remove(path)
		return fmt.Errorf("encode %s: imwrite failed", path)
	}
	return nil
}

// toMat превращает image.Image в gocv.Mat (BGR, 8 бит на канал).
func toMat(img image.Image) (gocv.Mat, error) {
	mat, err := gocv.ImageToMatRGB(img)
	if err == nil && !mat.Empty() {
		return mat, nil
	}
	if !mat.Empty() {
		mat.Close()
	}
	return gocv.NewMat(), errors.New("failed to convert image")
}

var _ port.Imager = (*GoCVImager)(nil)
