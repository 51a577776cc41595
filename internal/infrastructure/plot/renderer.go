package plot

import (
	"errors"
	"fmt"
	"image/color"
	"os"
	"path/filepath"

	xfont "golang.org/x/image/font"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgpdf"

	"beetle-pipeline/internal/domain/entity"
	"beetle-pipeline/internal/domain/port"
)

var (
	steelBlue = color.RGBA{R: 70, G: 130, B: 180, A: 255}
	orange    = color.RGBA{R: 255, G: 165, B: 0, A: 255}
	gridGray  = color.RGBA{R: 220, G: 220, B: 220, A: 255}
)

// PDFRenderer рисует панели согласия в один ряд и сохраняет PDF.
type PDFRenderer struct {
	PanelWidth  vg.Length
	PanelHeight vg.Length
}

// NewPDFRenderer создаёт рендерер с панелями 8×6 дюймов.
func NewPDFRenderer() *PDFRenderer {
	return &PDFRenderer{
		PanelWidth:  8 * vg.Inch,
		PanelHeight: 6 * vg.Inch,
	}
}

// Render сохраняет рисунок в PDF, создавая каталоги.
func (r *PDFRenderer) Render(path string, fig entity.AgreementFigure) error {
	if len(fig.Panels) == 0 {
		return errors.New("figure has no panels")
	}

	plots := make([][]*plot.Plot, 1)
	for i, panel := range fig.Panels {
		p, err := r.panel(panel, fig.LimMin, fig.LimMax, i == 0)
		if err != nil {
			return fmt.Errorf("panel %q: %w", panel.Title, err)
		}
		plots[0] = append(plots[0], p)
	}

	canvas := vgpdf.New(r.PanelWidth*vg.Length(len(fig.Panels)), r.PanelHeight)
	tiles := draw.Tiles{
		Rows:      1,
		Cols:      len(fig.Panels),
		PadX:      vg.Inch / 2,
		PadTop:    vg.Inch / 4,
		PadBottom: vg.Inch / 4,
		PadLeft:   vg.Inch / 4,
		PadRight:  vg.Inch / 2,
	}
	canvases := plot.Align(plots, tiles, draw.New(canvas))
	for j, p := range plots[0] {
		p.Draw(canvases[0][j])
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create figure dir: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create figure: %w", err)
	}
	if _, err := canvas.WriteTo(f); err != nil {
		f.Close()
		return fmt.Errorf("write figure: %w", err)
	}
	return f.Close()
}

func (r *PDFRenderer) panel(panel entity.Panel, limMin, limMax float64, withLegend bool) (*plot.Plot, error) {
	p := plot.New()

	p.Title.Text = panel.Title
	p.Title.TextStyle.Font.Size = vg.Points(24)
	p.Title.TextStyle.Font.Weight = xfont.WeightBold
	p.Title.Padding = vg.Points(12)

	p.X.Label.Text = panel.XLabel
	p.Y.Label.Text = panel.YLabel
	for _, axis := range []*plot.Axis{&p.X, &p.Y} {
		axis.Label.TextStyle.Font.Size = vg.Points(22)
		axis.Label.TextStyle.Font.Weight = xfont.WeightBold
		axis.Label.Padding = vg.Points(12)
		axis.Tick.Label.Font.Size = vg.Points(18)
	}

	grid := plotter.NewGrid()
	grid.Vertical.Color = gridGray
	grid.Horizontal.Color = gridGray
	p.Add(grid)

	pts := make(plotter.XYs, len(panel.X))
	for i := range panel.X {
		pts[i].X = panel.X[i]
		pts[i].Y = panel.Y[i]
	}

	fill, err := plotter.NewScatter(pts)
	if err != nil {
		return nil, err
	}
	fill.GlyphStyle.Color = steelBlue
	fill.GlyphStyle.Shape = draw.CircleGlyph{}
	fill.GlyphStyle.Radius = vg.Points(4)

	edge, err := plotter.NewScatter(pts)
	if err != nil {
		return nil, err
	}
	edge.GlyphStyle.Color = color.Black
	edge.GlyphStyle.Shape = draw.RingGlyph{}
	edge.GlyphStyle.Radius = vg.Points(4)

	identity, err := plotter.NewLine(plotter.XYs{{X: limMin, Y: limMin}, {X: limMax, Y: limMax}})
	if err != nil {
		return nil, err
	}
	identity.LineStyle.Color = orange
	identity.LineStyle.Width = vg.Points(2)
	identity.LineStyle.Dashes = []vg.Length{vg.Points(8), vg.Points(4)}

	p.Add(fill, edge, identity)

	// Add расширяет оси по данным, поэтому пределы задаются после него.
	p.X.Min, p.X.Max = limMin, limMax
	p.Y.Min, p.Y.Max = limMin, limMax

	if withLegend {
		p.Legend.Add("Perfect agreement", identity)
		p.Legend.Top = true
		p.Legend.Left = true
		p.Legend.TextStyle.Font.Size = vg.Points(18)
	}

	return p, nil
}

var _ port.AgreementRenderer = (*PDFRenderer)(nil)
