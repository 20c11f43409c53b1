// Package visualize renders a fitted classifier's decision boundary over its
// training points.
package visualize

import (
	"image/color"
	"os"
	"path/filepath"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/palette/moreland"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"

	"github.com/augurlab/augur/internal/walkforward"
	"github.com/augurlab/augur/pkg/errors"
)

// Point colors for the two classes.
var (
	downColor = color.RGBA{R: 0xFF, G: 0x31, B: 0x2E, A: 0xFF}
	upColor   = color.RGBA{R: 0x6E, G: 0x88, B: 0x94, A: 0xFF}
)

// Options controls the rendering of a decision boundary plot.
type Options struct {
	// OutputDir receives the generated PNG, named after the symbol.
	OutputDir string
	// Step is the sampling interval of the probability grid.
	Step float64
	// Width of the figure.
	Width vg.Length
	// Height of the figure.
	Height vg.Length
}

// DefaultOptions returns the standard rendering options: a 0.02 grid step on
// a 5 by 5 inch figure.
func DefaultOptions(outputDir string) Options {
	return Options{
		OutputDir: outputDir,
		Step:      0.02,
		Width:     5 * vg.Inch,
		Height:    5 * vg.Inch,
	}
}

// probabilityGrid samples the classifier's down-probability over a normalized
// feature plane.
type probabilityGrid struct {
	xs []float64
	ys []float64
	z  *mat.Dense
}

func (g *probabilityGrid) Dims() (c, r int)   { return len(g.xs), len(g.ys) }
func (g *probabilityGrid) Z(c, r int) float64 { return g.z.At(r, c) }
func (g *probabilityGrid) X(c int) float64    { return g.xs[c] }
func (g *probabilityGrid) Y(r int) float64    { return g.ys[r] }

// DecisionBoundary renders the result's classifier over its two-dimensional
// training set and saves the figure as <symbol>.png in the output directory,
// returning the file path.
//
// The training matrix is normalized column-wise and the retained classifier
// is refitted on the normalized values before sampling; the result keeps
// that refitted state. Requires a completed run with exactly two features.
func DecisionBoundary(result *walkforward.Result, opts Options) (string, error) {
	if result == nil || result.Model == nil || result.TrainingFeatures == nil ||
		len(result.TrainingLabels) == 0 || len(result.Dates) == 0 {
		return "", errors.New(errors.ErrCodeNoCompletedRun, "no completed run to visualize")
	}

	_, cols := result.TrainingFeatures.Dims()
	if cols != 2 {
		return "", errors.Newf(errors.ErrCodeFeatureCount,
			"plotting is restricted to 2 features, got %d", cols)
	}

	if opts.Step <= 0 {
		opts.Step = 0.02
	}

	if opts.Width <= 0 {
		opts.Width = 5 * vg.Inch
	}

	if opts.Height <= 0 {
		opts.Height = 5 * vg.Inch
	}

	if opts.OutputDir == "" {
		opts.OutputDir = "."
	}

	normalized := normalize(result.TrainingFeatures)

	if err := result.Model.Fit(normalized, result.TrainingLabels); err != nil {
		return "", err
	}

	xMin, xMax := columnRange(normalized, 0)
	yMin, yMax := columnRange(normalized, 1)

	grid, err := sampleGrid(result, xMin-0.5, xMax+0.5, yMin-0.5, yMax+0.5, opts.Step)
	if err != nil {
		return "", err
	}

	colorMap := moreland.SmoothBlueRed()
	colorMap.SetMin(0)
	colorMap.SetMax(1)

	heatMap := plotter.NewHeatMap(grid, colorMap.Palette(255))
	heatMap.Min = 0
	heatMap.Max = 1

	p := plot.New()
	p.Title.Text = result.Dates[len(result.Dates)-1].Symbol
	p.Add(heatMap)

	for _, class := range []int{0, 1} {
		scatter, err := classScatter(normalized, result.TrainingLabels, class)
		if err != nil {
			return "", err
		}

		if scatter != nil {
			p.Add(scatter)
		}
	}

	p.X.Min, p.X.Max = grid.xs[0], grid.xs[len(grid.xs)-1]
	p.Y.Min, p.Y.Max = grid.ys[0], grid.ys[len(grid.ys)-1]

	if err := os.MkdirAll(opts.OutputDir, 0755); err != nil {
		return "", errors.Wrap(errors.ErrCodeInternal, "failed to create output directory", err)
	}

	path := filepath.Join(opts.OutputDir, p.Title.Text+".png")
	if err := p.Save(opts.Width, opts.Height, path); err != nil {
		return "", errors.Wrap(errors.ErrCodeInternal, "failed to save plot", err)
	}

	return path, nil
}

// normalize returns a copy of m with each column shifted to zero mean and
// scaled to unit deviation. Constant columns are left centered.
func normalize(m *mat.Dense) *mat.Dense {
	rows, cols := m.Dims()
	out := mat.DenseCopyOf(m)

	for j := 0; j < cols; j++ {
		col := mat.Col(nil, j, m)
		mean := stat.Mean(col, nil)

		sigma := stat.PopStdDev(col, nil)
		if sigma == 0 {
			sigma = 1
		}

		for i := 0; i < rows; i++ {
			out.Set(i, j, (m.At(i, j)-mean)/sigma)
		}
	}

	return out
}

func columnRange(m *mat.Dense, j int) (float64, float64) {
	col := mat.Col(nil, j, m)

	min, max := col[0], col[0]
	for _, v := range col {
		if v < min {
			min = v
		}

		if v > max {
			max = v
		}
	}

	return min, max
}

// sampleGrid evaluates the down-probability across the plane so that up
// regions render blue and down regions red.
func sampleGrid(result *walkforward.Result, xMin, xMax, yMin, yMax, step float64) (*probabilityGrid, error) {
	var xs []float64
	for x := xMin; x < xMax; x += step {
		xs = append(xs, x)
	}

	var ys []float64
	for y := yMin; y < yMax; y += step {
		ys = append(ys, y)
	}

	z := mat.NewDense(len(ys), len(xs), nil)

	for r, y := range ys {
		for c, x := range xs {
			prob, err := result.Model.PredictProb([]float64{x, y})
			if err != nil {
				return nil, err
			}

			z.Set(r, c, prob.Down)
		}
	}

	return &probabilityGrid{xs: xs, ys: ys, z: z}, nil
}

func classScatter(m *mat.Dense, labels []int, class int) (*plotter.Scatter, error) {
	var points plotter.XYs

	for i, label := range labels {
		if label != class {
			continue
		}

		points = append(points, plotter.XY{X: m.At(i, 0), Y: m.At(i, 1)})
	}

	if len(points) == 0 {
		return nil, nil
	}

	scatter, err := plotter.NewScatter(points)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, "failed to build scatter", err)
	}

	scatter.GlyphStyle.Shape = draw.CircleGlyph{}
	scatter.GlyphStyle.Radius = vg.Points(2)

	if class == 0 {
		scatter.GlyphStyle.Color = downColor
	} else {
		scatter.GlyphStyle.Color = upColor
	}

	return scatter, nil
}
