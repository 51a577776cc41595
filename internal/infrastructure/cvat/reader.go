package cvat

import (
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"

	"beetle-pipeline/internal/domain/entity"
	"beetle-pipeline/internal/domain/port"
)

type xmlImage struct {
	Name   string   `xml:"name,attr"`
	Width  string   `xml:"width,attr"`
	Height string   `xml:"height,attr"`
	Boxes  []xmlBox `xml:"box"`
}

type xmlBox struct {
	XTL string `xml:"xtl,attr"`
	YTL string `xml:"ytl,attr"`
	XBR string `xml:"xbr,attr"`
	YBR string `xml:"ybr,attr"`
}

// Reader читает экспорт разметки CVAT (формат "CVAT for images").
type Reader struct{}

// NewReader создаёт читатель разметки
func NewReader() *Reader {
	return &Reader{}
}

// Parse читает файл разметки
func (r *Reader) Parse(path string) ([]entity.AnnotatedImage, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open annotations: %w", err)
	}
	defer f.Close()

	return Decode(f)
}

// Decode находит все элементы image на любой глубине документа.
func Decode(r io.Reader) ([]entity.AnnotatedImage, error) {
	dec := xml.NewDecoder(r)

	var images []entity.AnnotatedImage
	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("decode annotations: %w", err)
		}

		start, ok := tok.(xml.StartElement)
		if !ok || start.Name.Local != "image" {
			continue
		}

		var raw xmlImage
		if err := dec.DecodeElement(&raw, &start); err != nil {
			return nil, fmt.Errorf("decode image element: %w", err)
		}

		img, err := raw.toEntity()
		if err != nil {
			return nil, err
		}
		images = append(images, img)
	}

	return images, nil
}

func (x xmlImage) toEntity() (entity.AnnotatedImage, error) {
	img := entity.AnnotatedImage{Filename: filepath.Base(x.Name)}

	var err error
	if img.Width, err = strconv.Atoi(x.Width); err != nil {
		return img, fmt.Errorf("image %s: invalid width %q", x.Name, x.Width)
	}
	if img.Height, err = strconv.Atoi(x.Height); err != nil {
		return img, fmt.Errorf("image %s: invalid height %q", x.Name, x.Height)
	}

	img.Boxes = make([]entity.Box, 0, len(x.Boxes))
	for i, b := range x.Boxes {
		var coords [4]float64
		for j, v := range []string{b.XTL, b.YTL, b.XBR, b.YBR} {
			if coords[j], err = strconv.ParseFloat(v, 64); err != nil {
				return img, fmt.Errorf("image %s: box %d: invalid coordinate %q", x.Name, i, v)
			}
		}
		img.Boxes = append(img.Boxes, entity.Box{XMin: coords[0], YMin: coords[1], XMax: coords[2], YMax: coords[3]})
	}

	return img, nil
}

var _ port.AnnotationSource = (*Reader)(nil)
