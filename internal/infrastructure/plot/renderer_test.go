package plot

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"beetle-pipeline/internal/domain/entity"
)

func TestPDFRenderer_Render(t *testing.T) {
	path := filepath.Join(t.TempDir(), "figures", "agreement.pdf")
	fig := entity.AgreementFigure{
		LimMin: 0.15,
		LimMax: 0.65,
		Panels: []entity.Panel{
			{Title: "Annotator A vs Annotator B", XLabel: "Annotator A", YLabel: "Annotator B", X: []float64{0.2, 0.3, 0.4}, Y: []float64{0.21, 0.33, 0.38}},
			{Title: "Annotator B vs Annotator C", XLabel: "Annotator B", YLabel: "Annotator C", X: []float64{0.5}, Y: []float64{0.52}},
			{Title: "Empty", XLabel: "x", YLabel: "y"},
		},
	}

	require.NoError(t, NewPDFRenderer().Render(path, fig))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Greater(t, len(data), 100)
	require.Equal(t, "%PDF", string(data[:4]))
}

func TestPDFRenderer_NoPanels(t *testing.T) {
	err := NewPDFRenderer().Render(filepath.Join(t.TempDir(), "x.pdf"), entity.AgreementFigure{})
	require.Error(t, err)
}
