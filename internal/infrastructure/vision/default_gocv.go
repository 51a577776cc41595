//go:build gocv
// +build gocv

package vision

import "beetle-pipeline/internal/domain/port"

// NewDefaultImager возвращает Imager на OpenCV (сборка с тегом gocv).
func NewDefaultImager() port.Imager {
	return NewGoCVImager()
}
