package cvat

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"beetle-pipeline/internal/domain/entity"
)

const sample = `<?xml version="1.0" encoding="utf-8"?>
<annotations>
  <version>1.1</version>
  <meta><task><name>beetles</name></task></meta>
  <image id="0" name="plates/A00000046094.jpg" width="5568" height="3712">
    <box label="beetle" occluded="0" xtl="100.50" ytl="200.25" xbr="300.00" ybr="400.75"></box>
    <box label="beetle" occluded="0" xtl="10" ytl="20" xbr="30" ybr="40"></box>
  </image>
  <image id="1" name="A00000046095.jpg" width="640" height="480"></image>
</annotations>`

func TestDecode(t *testing.T) {
	images, err := Decode(strings.NewReader(sample))
	require.NoError(t, err)
	require.Len(t, images, 2)

	require.Equal(t, "A00000046094.jpg", images[0].Filename)
	require.Equal(t, 5568, images[0].Width)
	require.Equal(t, 3712, images[0].Height)
	require.Equal(t, []entity.Box{
		{XMin: 100.5, YMin: 200.25, XMax: 300, YMax: 400.75},
		{XMin: 10, YMin: 20, XMax: 30, YMax: 40},
	}, images[0].Boxes)

	require.Equal(t, "A00000046095.jpg", images[1].Filename)
	require.Empty(t, images[1].Boxes)
}

func TestDecode_InvalidCoordinate(t *testing.T) {
	doc := `<annotations><image name="a.jpg" width="10" height="10"><box xtl="x" ytl="0" xbr="1" ybr="1"/></image></annotations>`
	_, err := Decode(strings.NewReader(doc))
	require.Error(t, err)
	require.Contains(t, err.Error(), "a.jpg")
}

func TestReader_Parse(t *testing.T) {
	path := filepath.Join(t.TempDir(), "annotations.xml")
	require.NoError(t, os.WriteFile(path, []byte(sample), 0o644))

	images, err := NewReader().Parse(path)
	require.NoError(t, err)
	require.Len(t, images, 2)

	_, err = NewReader().Parse(filepath.Join(t.TempDir(), "missing.xml"))
	require.Error(t, err)
}
