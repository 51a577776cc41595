package entity

import (
	"fmt"
	"image"
	"path/filepath"
	"strings"
)

// AnnotatedImage групповое фото с размеченными вручную особями.
type AnnotatedImage struct {
	Filename string // имя файла без каталогов
	Width    int    // ширина из файла разметки
	Height   int    // высота из файла разметки
	Boxes    []Box  // прямоугольники особей
}

// CropRect возвращает область i-й особи с отступом в пикселях.
// Границы обрезаются по размерам из разметки, а не по реальному файлу.
// Перевёрнутая рамка не нормализуется и даёт пустой прямоугольник.
func (a AnnotatedImage) CropRect(i, padding int) image.Rectangle {
	b := a.Boxes[i]
	return image.Rectangle{
		Min: image.Pt(maxInt(0, int(b.XMin)-padding), maxInt(0, int(b.YMin)-padding)),
		Max: image.Pt(minInt(a.Width, int(b.XMax)+padding), minInt(a.Height, int(b.YMax)+padding)),
	}
}

// CropName возвращает имя файла для i-й особи, нумерация с единицы.
func (a AnnotatedImage) CropName(i int) string {
	return fmt.Sprintf("%s_specimen_%d.png", Stem(a.Filename), i+1)
}

// CropReport итог извлечения особей по разметке.
type CropReport struct {
	Images        int // изображений в разметке
	Boxes         int // прямоугольников в разметке
	Saved         int // сохранённых вырезок
	MissingImages int // файлов, которых нет на диске
	FailedImages  int // изображений, обработка которых прервалась ошибкой
}

// Stem возвращает имя файла без каталога и расширения.
func Stem(name string) string {
	base := filepath.Base(name)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
