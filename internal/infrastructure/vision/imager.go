package vision

import (
	"fmt"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"io"
	"math"
	"os"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"golang.org/x/image/bmp"
	"golang.org/x/image/draw"
	"golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"beetle-pipeline/internal/domain/entity"
	"beetle-pipeline/internal/domain/port"
)

const jpegQuality = 75

// lanczos3 ядро Ланцоша радиуса 3, то же, что у PIL LANCZOS.
var lanczos3 = &draw.Kernel{
	Support: 3,
	At: func(t float64) float64 {
		if t == 0 {
			return 1
		}
		if t >= 3 {
			return 0
		}
		x := math.Pi * t
		return 3 * math.Sin(x) * math.Sin(x/3) / (x * x)
	},
}

// Imager работа с изображениями на чистом Go.
type Imager struct{}

// NewImager создаёт Imager
func NewImager() *Imager {
	return &Imager{}
}

// Load читает файл и приводит изображение к непрозрачному RGBA с началом в (0, 0).
func (i *Imager) Load(path string) (image.Image, error) {
	if err := checkImageFile(path); err != nil {
		return nil, err
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open image: %w", err)
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decode image %s: %w", path, err)
	}

	return toRGB(img), nil
}

// Decode читает файл без преобразования цветовой модели.
func (i *Imager) Decode(path string) (image.Image, error) {
	if err := checkImageFile(path); err != nil {
		return nil, err
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open image: %w", err)
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decode image %s: %w", path, err)
	}
	return img, nil
}

// Dimensions читает только заголовок файла
func (i *Imager) Dimensions(path string) (int, int, error) {
	return decodeDimensions(path)
}

// Crop копирует область целиком; часть за пределами изображения заливается чёрным.
func (i *Imager) Crop(img image.Image, rect image.Rectangle) image.Image {
	if rect.Empty() {
		return image.NewRGBA(image.Rectangle{})
	}

	dst := image.NewRGBA(image.Rect(0, 0, rect.Dx(), rect.Dy()))
	draw.Draw(dst, dst.Bounds(), image.NewUniform(color.Black), image.Point{}, draw.Src)

	b := img.Bounds()
	src := rect.Add(b.Min)
	inter := src.Intersect(b)
	if !inter.Empty() {
		draw.Draw(dst, inter.Sub(src.Min), img, inter.Min, draw.Src)
	}
	return dst
}

// Resize масштабирует ядром Ланцоша, сохраняя цветовую модель источника.
func (i *Imager) Resize(img image.Image, width, height int) image.Image {
	dst := canvasLike(img, image.Rect(0, 0, maxZero(width), maxZero(height)))
	if dst.Bounds().Empty() || img.Bounds().Empty() {
		return dst
	}
	lanczos3.Scale(dst, dst.Bounds(), img, img.Bounds(), draw.Src, nil)
	return dst
}

// canvasLike создаёт пустой холст той же цветовой модели, что у img.
// Палитра и модели без альфы на 16 бит не сохраняются как есть.
func canvasLike(img image.Image, r image.Rectangle) draw.Image {
	switch img.(type) {
	case *image.Gray:
		return image.NewGray(r)
	case *image.Gray16:
		return image.NewGray16(r)
	case *image.NRGBA, *image.Paletted:
		return image.NewNRGBA(r)
	case *image.NRGBA64:
		return image.NewNRGBA64(r)
	case *image.RGBA64:
		return image.NewRGBA64(r)
	}
	return image.NewRGBA(r)
}

// Letterbox вписывает изображение в квадрат и центрирует его на заливке.
func (i *Imager) Letterbox(img image.Image, size int, fill color.RGBA) image.Image {
	w, h := entity.FitWithin(img.Bounds().Dx(), img.Bounds().Dy(), size)
	return compose(i.Resize(img, w, h), size, fill)
}

// Save кодирует изображение по расширению файла
func (i *Imager) Save(path string, img image.Image) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create image: %w", err)
	}

	if err := encode(f, filepath.Ext(path), img); err != nil {
		f.Close()
		os.Remove(path)
		return fmt.Errorf("encode %s: %w", path, err)
	}

	return f.Close()
}

func encode(w io.Writer, ext string, img image.Image) error {
	switch strings.ToLower(ext) {
	case ".png":
		enc := png.Encoder{CompressionLevel: png.BestCompression}
		return enc.Encode(w, img)
	case ".jpg", ".jpeg":
		return jpeg.Encode(w, img, &jpeg.Options{Quality: jpegQuality})
	case ".bmp":
		return bmp.Encode(w, img)
	case ".tif", ".tiff":
		return tiff.Encode(w, img, &tiff.Options{Compression: tiff.Deflate})
	}
	return fmt.Errorf("unsupported image format %q", ext)
}

// compose центрирует изображение на квадратном холсте с заливкой.
func compose(img image.Image, size int, fill color.RGBA) image.Image {
	canvas := image.NewRGBA(image.Rect(0, 0, size, size))
	draw.Draw(canvas, canvas.Bounds(), &image.Uniform{C: fill}, image.Point{}, draw.Src)

	b := img.Bounds()
	offset := image.Pt((size-b.Dx())/2, (size-b.Dy())/2)
	draw.Draw(canvas, image.Rectangle{Min: offset, Max: offset.Add(b.Size())}, img, b.Min, draw.Src)
	return canvas
}

// toRGB отбрасывает альфа-канал, не смешивая цвет с фоном.
func toRGB(img image.Image) *image.RGBA {
	b := img.Bounds()
	dst := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))

	if o, ok := img.(interface{ Opaque() bool }); ok && o.Opaque() {
		draw.Draw(dst, dst.Bounds(), img, b.Min, draw.Src)
		return dst
	}

	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			c := color.NRGBAModel.Convert(img.At(x, y)).(color.NRGBA)
			dst.SetRGBA(x-b.Min.X, y-b.Min.Y, color.RGBA{R: c.R, G: c.G, B: c.B, A: 255})
		}
	}
	return dst
}

func decodeDimensions(path string) (int, int, error) {
	if err := checkImageFile(path); err != nil {
		return 0, 0, err
	}

	f, err := os.Open(path)
	if err != nil {
		return 0, 0, fmt.Errorf("open image: %w", err)
	}
	defer f.Close()

	cfg, _, err := image.DecodeConfig(f)
	if err != nil {
		return 0, 0, fmt.Errorf("decode image header %s: %w", path, err)
	}
	return cfg.Width, cfg.Height, nil
}

// checkImageFile проверяет по содержимому, что файл является изображением.
func checkImageFile(path string) error {
	mt, err := mimetype.DetectFile(path)
	if err != nil {
		return fmt.Errorf("detect type of %s: %w", path, err)
	}
	if !strings.HasPrefix(mt.String(), "image/") {
		return fmt.Errorf("%s is not an image (%s)", path, mt.String())
	}
	return nil
}

func maxZero(v int) int {
	if v < 0 {
		return 0
	}
	return v
}

var _ port.Imager = (*Imager)(nil)
