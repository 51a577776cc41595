package app

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"beetle-pipeline/internal/domain/entity"
	"beetle-pipeline/internal/domain/port"
)

// AgreementMode набор сравниваемых пар.
type AgreementMode string

const (
	ModeInterAnnotator AgreementMode = "inter-annotator"
	ModeSystem         AgreementMode = "system"

	colSystemLength = "System_length"
	systemLabel     = "Automated System"
	humanAvgTitle   = "Average Human vs Automated System"
)

// ParseAgreementMode проверяет название режима.
func ParseAgreementMode(s string) (AgreementMode, error) {
	switch m := AgreementMode(s); m {
	case ModeInterAnnotator, ModeSystem:
		return m, nil
	}
	return "", fmt.Errorf("unknown agreement mode %q", s)
}

// DefaultOutput путь рисунка по умолчанию для режима.
func (m AgreementMode) DefaultOutput() string {
	if m == ModeSystem {
		return "figures/CalipersVsToras.pdf"
	}
	return "figures/InterAnnotatorAgreement.pdf"
}

// DefaultPairs пары колонок по умолчанию.
func DefaultPairs(mode AgreementMode) []entity.Pair {
	if mode == ModeSystem {
		pairs := make([]entity.Pair, 0, 3)
		for _, a := range []string{"A", "B", "C"} {
			pairs = append(pairs, entity.Pair{
				XColumn: "Annotator" + a + "_length",
				YColumn: colSystemLength,
				Title:   "Annotator " + a + " vs " + systemLabel,
				XLabel:  "Annotator " + a,
				YLabel:  systemLabel,
			})
		}
		return pairs
	}

	return []entity.Pair{
		interPair("A", "B"),
		interPair("B", "C"),
		interPair("C", "A"),
	}
}

func interPair(x, y string) entity.Pair {
	return entity.Pair{
		XColumn: "Annotator" + x + "_length",
		YColumn: "Annotator" + y + "_length",
		Title:   "Annotator " + x + " vs Annotator " + y,
		XLabel:  "Annotator " + x,
		YLabel:  "Annotator " + y,
	}
}

// LoadPairs читает пары из YAML-файла со списком в ключе pairs.
func LoadPairs(path string) ([]entity.Pair, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read pairs file: %w", err)
	}

	var doc struct {
		Pairs []entity.Pair `yaml:"pairs"`
	}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse pairs file %s: %w", path, err)
	}
	if len(doc.Pairs) == 0 {
		return nil, fmt.Errorf("pairs file %s defines no pairs", path)
	}
	for i, p := range doc.Pairs {
		if p.XColumn == "" || p.YColumn == "" {
			return nil, fmt.Errorf("pairs file %s: pair %d needs both x and y", path, i+1)
		}
		if p.Title == "" {
			doc.Pairs[i].Title = p.XColumn + " vs " + p.YColumn
		}
		if p.XLabel == "" {
			doc.Pairs[i].XLabel = p.XColumn
		}
		if p.YLabel == "" {
			doc.Pairs[i].YLabel = p.YColumn
		}
	}
	return doc.Pairs, nil
}

// AgreementParams параметры расчёта согласия.
type AgreementParams struct {
	DataPath   string
	OutputPath string
	Mode       AgreementMode
	Pairs      []entity.Pair // пусто означает пары по умолчанию
	LimMin     float64
	LimMax     float64
}

type AgreementService struct {
	manifests port.ManifestStore
	renderer  port.AgreementRenderer
	log       *zap.Logger
}

// NewAgreementService создаёт сервис расчёта согласия измерений.
func NewAgreementService(manifests port.ManifestStore, renderer port.AgreementRenderer, log *zap.Logger) *AgreementService {
	return &AgreementService{manifests: manifests, renderer: renderer, log: log}
}

// Run считает показатели по парам, итоговую строку режима и сохраняет рисунок.
func (s *AgreementService) Run(ctx context.Context, p AgreementParams) (*entity.AgreementReport, error) {
	pairs := p.Pairs
	if len(pairs) == 0 {
		pairs = DefaultPairs(p.Mode)
	}
	output := p.OutputPath
	if output == "" {
		output = p.Mode.DefaultOutput()
	}

	m, err := s.manifests.Load(p.DataPath)
	if err != nil {
		return nil, err
	}

	required := make([]string, 0, 2*len(pairs)+1)
	for _, pair := range pairs {
		required = append(required, pair.XColumn, pair.YColumn)
	}
	if p.Mode == ModeSystem {
		required = append(required, colSystemLength)
	}
	if err := m.Require(unique(required)...); err != nil {
		return nil, err
	}

	report := &entity.AgreementReport{Figure: output}
	fig := entity.AgreementFigure{LimMin: p.LimMin, LimMax: p.LimMax}

	for _, pair := range pairs {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		x, y, err := pairedValues(m, pair.XColumn, pair.YColumn)
		if err != nil {
			return nil, err
		}
		metrics, err := entity.ComputeAgreement(x, y)
		if err != nil {
			return nil, fmt.Errorf("pair %q: %w", pair.Title, err)
		}

		report.Pairs = append(report.Pairs, entity.PairResult{Title: pair.Title, Samples: len(x), Metrics: metrics})
		fig.Panels = append(fig.Panels, entity.Panel{
			Title:  pair.Title,
			XLabel: pair.XLabel,
			YLabel: pair.YLabel,
			X:      x,
			Y:      y,
		})
	}

	switch p.Mode {
	case ModeSystem:
		summary, err := humanAverage(m, pairs)
		if err != nil {
			return nil, err
		}
		report.Summary = summary
	default:
		ms := make([]entity.Metrics, len(report.Pairs))
		for i, r := range report.Pairs {
			ms[i] = r.Metrics
		}
		report.Summary = &entity.PairResult{Title: "Average Across All Annotator Pairs", Metrics: entity.MeanMetrics(ms)}
	}

	if err := s.renderer.Render(output, fig); err != nil {
		return nil, fmt.Errorf("render figure: %w", err)
	}

	for _, r := range report.Pairs {
		s.logMetrics(r)
	}
	s.logMetrics(*report.Summary)
	s.log.Info("agreement figure saved", zap.String("path", output))

	return report, nil
}

func (s *AgreementService) logMetrics(r entity.PairResult) {
	s.log.Info("agreement metrics",
		zap.String("title", r.Title),
		zap.Int("samples", r.Samples),
		zap.Float64("rmse", r.Metrics.RMSE),
		zap.Float64("r2", r.Metrics.R2),
		zap.Float64("bias", r.Metrics.Bias))
}

// humanAverage сравнивает построчное среднее разметчиков с системой.
func humanAverage(m *entity.Manifest, pairs []entity.Pair) (*entity.PairResult, error) {
	humans := make([]string, 0, len(pairs))
	for _, p := range pairs {
		humans = append(humans, p.XColumn)
	}
	humans = unique(humans)

	var avg, sys []float64
	for i := 0; i < m.Len(); i++ {
		truth, ok, err := cellValue(m, i, colSystemLength)
		if err != nil {
			return nil, err
		}
		if !ok {
			continue
		}

		var sum float64
		var n int
		for _, col := range humans {
			v, ok, err := cellValue(m, i, col)
			if err != nil {
				return nil, err
			}
			if ok {
				sum += v
				n++
			}
		}
		if n == 0 {
			continue
		}

		avg = append(avg, sum/float64(n))
		sys = append(sys, truth)
	}

	metrics, err := entity.ComputeAgreement(avg, sys)
	if err != nil {
		return nil, fmt.Errorf("pair %q: %w", humanAvgTitle, err)
	}
	return &entity.PairResult{Title: humanAvgTitle, Samples: len(avg), Metrics: metrics}, nil
}

// pairedValues возвращает значения строк, где заполнены обе колонки.
func pairedValues(m *entity.Manifest, xCol, yCol string) ([]float64, []float64, error) {
	var x, y []float64
	for i := 0; i < m.Len(); i++ {
		xv, xok, err := cellValue(m, i, xCol)
		if err != nil {
			return nil, nil, err
		}
		yv, yok, err := cellValue(m, i, yCol)
		if err != nil {
			return nil, nil, err
		}
		if xok && yok {
			x = append(x, xv)
			y = append(y, yv)
		}
	}
	return x, y, nil
}

func cellValue(m *entity.Manifest, row int, column string) (float64, bool, error) {
	raw := strings.TrimSpace(m.Get(row, column))
	if entity.IsMissing(raw) {
		return 0, false, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, false, fmt.Errorf("column %s row %d: invalid number %q", column, row+1, raw)
	}
	return v, true, nil
}

func unique(values []string) []string {
	seen := make(map[string]struct{}, len(values))
	out := values[:0:0]
	for _, v := range values {
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}
