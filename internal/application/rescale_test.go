package app

import (
	"context"
	"encoding/json"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"beetle-pipeline/internal/domain/entity"
	"beetle-pipeline/internal/infrastructure/storage"
	"beetle-pipeline/internal/infrastructure/vision"
)

func newRescaleService() *RescaleService {
	return NewRescaleService(vision.NewImager(), storage.NewCSVManifestStore(), storage.NewJSONReportWriter(), zap.NewNop())
}

func rescaleFixture(t *testing.T) RescaleParams {
	t.Helper()
	base := t.TempDir()
	p := RescaleParams{
		BaseDir:    base,
		GroupDir:   filepath.Join(base, "group_images"),
		ProcessDir: filepath.Join(base, "processed_images"),
		Manifest:   filepath.Join(base, "individual_specimens.csv"),
	}
	p.OutputDir = filepath.Join(p.ProcessDir, "individual_images_resized_uniform")

	writePNG(t, filepath.Join(p.GroupDir, "p1.PNG"), 400, 200)
	writePNG(t, filepath.Join(p.GroupDir, "p2.png"), 300, 300)
	writePNG(t, filepath.Join(p.ProcessDir, "p1.png"), 200, 100)
	writePNG(t, filepath.Join(p.ProcessDir, "p2.png"), 100, 150)
	writePNG(t, filepath.Join(p.ProcessDir, "p3.png"), 10, 10)
	writeText(t, filepath.Join(p.ProcessDir, "notes.txt"), "not an image")

	writePNG(t, filepath.Join(base, "individual_images", "p1", "a.png"), 80, 40)
	writePNG(t, filepath.Join(base, "individual_images", "p2", "b.png"), 50, 25)
	writeText(t, filepath.Join(base, "individual_images", "p2", "bad.png"), "broken")

	writeText(t, p.Manifest, `individualImageFilePath,groupImageFilePath
individual_images/p1/a.png,group_images/p1.PNG
individual_images/p2/b.png,group_images/p2.png
individual_images/p9/c.png,group_images/p9.png
individual_images/p1/missing.png,group_images/p1.PNG
individual_images/p2/bad.png,group_images/p2.png
`)
	return p
}

func TestRescaleService_CalculateScalingFactors(t *testing.T) {
	p := rescaleFixture(t)

	factors, err := newRescaleService().CalculateScalingFactors(context.Background(), p.GroupDir, p.ProcessDir)
	require.NoError(t, err)
	require.Equal(t, entity.ScalingFactors{"p1": 2, "p2": 2.5}, factors)

	data, err := os.ReadFile(filepath.Join(p.ProcessDir, "uniform_scaling_factors.json"))
	require.NoError(t, err)
	var saved map[string]float64
	require.NoError(t, json.Unmarshal(data, &saved))
	require.Equal(t, map[string]float64{"p1": 2, "p2": 2.5}, saved)
}

func TestRescaleService_MissingProcessDir(t *testing.T) {
	factors, err := newRescaleService().CalculateScalingFactors(context.Background(), t.TempDir(), filepath.Join(t.TempDir(), "absent"))
	require.Error(t, err)
	require.Empty(t, factors)
}

func TestRescaleService_Run(t *testing.T) {
	p := rescaleFixture(t)

	summary, err := newRescaleService().Run(context.Background(), p)
	require.NoError(t, err)
	require.Equal(t, entity.RescaleSummary{
		TotalIndividualImages: 5,
		SuccessfullyProcessed: 2,
		SkippedNoScaling:      2,
		Errors:                1,
		ScalingFactorsUsed:    2,
		OutputDirectory:       p.OutputDir,
		ScalingMethod:         "uniform",
	}, *summary)

	w, h := pngSize(t, filepath.Join(p.OutputDir, "individual_images", "p1", "a.png"))
	require.Equal(t, 40, w)
	require.Equal(t, 20, h)

	w, h = pngSize(t, filepath.Join(p.OutputDir, "individual_images", "p2", "b.png"))
	require.Equal(t, 20, w)
	require.Equal(t, 10, h)

	data, err := os.ReadFile(filepath.Join(p.OutputDir, "processing_summary.json"))
	require.NoError(t, err)
	var saved map[string]any
	require.NoError(t, json.Unmarshal(data, &saved))
	require.Equal(t, "uniform", saved["scaling_method"])
	require.EqualValues(t, 2, saved["skipped_no_scaling_factor"])
}

func TestRescaleService_KeepsColorModel(t *testing.T) {
	p := rescaleFixture(t)

	gray := image.NewGray(image.Rect(0, 0, 80, 40))
	for i := range gray.Pix {
		gray.Pix[i] = 90
	}
	writeImage(t, filepath.Join(p.BaseDir, "individual_images", "p1", "a.png"), gray)

	translucent := image.NewNRGBA(image.Rect(0, 0, 50, 25))
	for y := 0; y < 25; y++ {
		for x := 0; x < 50; x++ {
			translucent.SetNRGBA(x, y, color.NRGBA{R: 200, G: 10, B: 10, A: 128})
		}
	}
	writeImage(t, filepath.Join(p.BaseDir, "individual_images", "p2", "b.png"), translucent)

	_, err := newRescaleService().Run(context.Background(), p)
	require.NoError(t, err)

	out := readImage(t, filepath.Join(p.OutputDir, "individual_images", "p1", "a.png"))
	require.IsType(t, &image.Gray{}, out)
	require.Equal(t, image.Rect(0, 0, 40, 20), out.Bounds())

	out = readImage(t, filepath.Join(p.OutputDir, "individual_images", "p2", "b.png"))
	require.Equal(t, image.Rect(0, 0, 20, 10), out.Bounds())
	c := color.NRGBAModel.Convert(out.At(10, 5)).(color.NRGBA)
	require.Less(t, c.A, uint8(255))
	require.Greater(t, c.A, uint8(0))
}

func writeImage(t *testing.T, path string, img image.Image) {
	t.Helper()
	f, err := os.Create(path)
	require.NoError(t, err)
	require.NoError(t, png.Encode(f, img))
	require.NoError(t, f.Close())
}

func readImage(t *testing.T, path string) image.Image {
	t.Helper()
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	img, err := png.Decode(f)
	require.NoError(t, err)
	return img
}

func TestRescaleService_NoFactors(t *testing.T) {
	_, err := newRescaleService().ResizeIndividuals(context.Background(), RescaleParams{}, entity.ScalingFactors{})
	require.ErrorIs(t, err, entity.ErrNoScalingFactors)
}

func TestRescaleService_MissingManifestColumns(t *testing.T) {
	dir := t.TempDir()
	manifest := filepath.Join(dir, "m.csv")
	writeText(t, manifest, "individualImageFilePath\nx.png\n")

	_, err := newRescaleService().ResizeIndividuals(context.Background(), RescaleParams{
		BaseDir:   dir,
		Manifest:  manifest,
		OutputDir: filepath.Join(dir, "out"),
	}, entity.ScalingFactors{"x": 2})
	require.ErrorIs(t, err, entity.ErrMissingColumns)
}
