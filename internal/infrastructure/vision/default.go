//go:build !gocv
// +build !gocv

package vision

import "beetle-pipeline/internal/domain/port"

// NewDefaultImager возвращает Imager на чистом Go (сборка без тега gocv).
func NewDefaultImager() port.Imager {
	return NewImager()
}
