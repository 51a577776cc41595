package entity

import (
	"image"
	"math"
	"sort"
)

// Point точка в пиксельных координатах изображения
type Point struct {
	X float64
	Y float64
}

// Line отрезок измерения признака (длина или ширина надкрылий)
type Line struct {
	Start Point
	End   Point
}

// Box прямоугольник в формате xyxy
type Box struct {
	XMin float64 // левая граница
	YMin float64 // верхняя граница
	XMax float64 // правая граница
	YMax float64 // нижняя граница
}

// Width возвращает ширину прямоугольника
func (b Box) Width() float64 {
	return b.XMax - b.XMin
}

// Height возвращает высоту прямоугольника
func (b Box) Height() float64 {
	return b.YMax - b.YMin
}

// Area возвращает площадь без обрезки отрицательных значений.
func (b Box) Area() float64 {
	return b.Width() * b.Height()
}

// Truncate отбрасывает дробную часть каждой координаты.
func (b Box) Truncate() Box {
	return Box{
		XMin: math.Trunc(b.XMin),
		YMin: math.Trunc(b.YMin),
		XMax: math.Trunc(b.XMax),
		YMax: math.Trunc(b.YMax),
	}
}

// Contains проверяет, лежит ли точка внутри прямоугольника (границы включены).
func (b Box) Contains(p Point) bool {
	return b.XMin <= p.X && p.X <= b.XMax && b.YMin <= p.Y && p.Y <= b.YMax
}

// ContainsLine проверяет, что оба конца отрезка лежат внутри прямоугольника.
func (b Box) ContainsLine(l Line) bool {
	return b.Contains(l.Start) && b.Contains(l.End)
}

// Rect переводит прямоугольник в целочисленный image.Rectangle.
func (b Box) Rect() image.Rectangle {
	return image.Rect(int(b.XMin), int(b.YMin), int(b.XMax), int(b.YMax))
}

// IoU считает отношение пересечения к объединению двух прямоугольников.
func IoU(a, b Box) float64 {
	w := math.Max(0, math.Min(a.XMax, b.XMax)-math.Max(a.XMin, b.XMin))
	h := math.Max(0, math.Min(a.YMax, b.YMax)-math.Max(a.YMin, b.YMin))
	inter := w * h

	union := a.Area() + b.Area() - inter
	if union <= 0 {
		return 0
	}
	return inter / union
}

// NMS выполняет жадное подавление немаксимумов и возвращает индексы
// оставшихся прямоугольников в порядке убывания оценки.
func NMS(boxes []Box, scores []float64, threshold float64) []int {
	order := make([]int, len(boxes))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(i, j int) bool {
		return scores[order[i]] > scores[order[j]]
	})

	suppressed := make([]bool, len(boxes))
	keep := make([]int, 0, len(boxes))
	for i, n := range order {
		if suppressed[n] {
			continue
		}
		keep = append(keep, n)

		for _, m := range order[i+1:] {
			if suppressed[m] {
				continue
			}
			if IoU(boxes[n], boxes[m]) > threshold {
				suppressed[m] = true
			}
		}
	}

	return keep
}

// PaddedRect расширяет прямоугольник на долю его размеров и обрезает
// результат по границам изображения.
func PaddedRect(b Box, padding float64, imgW, imgH int) image.Rectangle {
	r := b.Rect()
	padW := int(padding * float64(r.Dx()))
	padH := int(padding * float64(r.Dy()))

	return image.Rect(
		maxInt(0, r.Min.X-padW),
		maxInt(0, r.Min.Y-padH),
		minInt(imgW, r.Max.X+padW),
		minInt(imgH, r.Max.Y+padH),
	)
}

// FitWithin возвращает размеры, вписанные в квадрат size×size с сохранением пропорций.
func FitWithin(w, h, size int) (int, int) {
	if w <= 0 || h <= 0 {
		return 0, 0
	}
	scale := float64(size) / float64(maxInt(w, h))
	return int(float64(w) * scale), int(float64(h) * scale)
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}
