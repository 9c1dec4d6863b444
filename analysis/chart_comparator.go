package analysis

import (
	"fmt"
	"os"
	"path"
	"strconv"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"
	"github.com/rs/zerolog/log"
	"gonum.org/v1/gonum/stat"

	"github.com/zeu5/tabular-rl/core"
	"github.com/zeu5/tabular-rl/util"
)

const DefaultChartWindow = 100

// MovingAverage smooths values with a trailing window. The first entries
// average over the values seen so far.
func MovingAverage(values []float64, window int) []float64 {
	if window < 1 {
		window = 1
	}
	out := make([]float64, len(values))
	for i := range values {
		start := i - window + 1
		if start < 0 {
			start = 0
		}
		out[i] = stat.Mean(values[start:i+1], nil)
	}
	return out
}

// ChartComparator renders the learning curves of an EpisodeDataset per
// experiment into a single HTML page.
type ChartComparator struct {
	savePath string
	window   int
}

var _ core.Comparator = &ChartComparator{}

func NewChartComparator(savePath string, window int) *ChartComparator {
	return &ChartComparator{
		savePath: savePath,
		window:   window,
	}
}

func (c *ChartComparator) Compare(experimentNames []string, datasets []core.DataSet) {
	returns := make(map[string][]float64)
	steps := make(map[string][]float64)
	names := make([]string, 0, len(experimentNames))
	episodes := 0
	for i, name := range experimentNames {
		ds, ok := datasets[i].(*EpisodeDataset)
		if !ok || ds == nil {
			continue
		}
		names = append(names, name)
		returns[name] = MovingAverage(ds.Returns, c.window)
		s := make([]float64, len(ds.Steps))
		for j, n := range ds.Steps {
			s[j] = float64(n)
		}
		steps[name] = MovingAverage(s, c.window)
		if ds.Len() > episodes {
			episodes = ds.Len()
		}
	}
	if len(names) == 0 {
		return
	}

	page := components.NewPage()
	page.AddCharts(
		c.line("Return per episode", "return", episodes, names, returns),
		c.line("Steps per episode", "steps", episodes, names, steps),
	)

	if err := util.EnsureDir(path.Dir(c.savePath)); err != nil {
		log.Error().Err(err).Msg("failed to create chart directory")
		return
	}
	f, err := os.Create(c.savePath)
	if err != nil {
		log.Error().Err(err).Str("file", c.savePath).Msg("failed to create chart")
		return
	}
	defer f.Close()
	if err := page.Render(f); err != nil {
		log.Error().Err(err).Str("file", c.savePath).Msg("failed to render chart")
	}
}

func (c *ChartComparator) line(title, yName string, episodes int, names []string, series map[string][]float64) *charts.Line {
	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{
			Title:    title,
			Subtitle: fmt.Sprintf("moving average over %d episodes", c.window),
		}),
		charts.WithXAxisOpts(opts.XAxis{Name: "episode"}),
		charts.WithYAxisOpts(opts.YAxis{Name: yName}),
	)

	xs := make([]string, episodes)
	for i := range xs {
		xs[i] = strconv.Itoa(i)
	}
	line = line.SetXAxis(xs)
	for _, name := range names {
		items := make([]opts.LineData, 0, len(series[name]))
		for _, v := range series[name] {
			items = append(items, opts.LineData{Value: v})
		}
		line.AddSeries(name, items)
	}
	return line
}

type ChartComparatorConstructor struct {
	savePath string
	window   int
}

var _ core.ComparatorConstructor = &ChartComparatorConstructor{}

// NewChartComparatorConstructor writes to <savePath>/<run>/learning_curve.html.
func NewChartComparatorConstructor(savePath string, window int) *ChartComparatorConstructor {
	if window <= 0 {
		window = DefaultChartWindow
	}
	return &ChartComparatorConstructor{
		savePath: savePath,
		window:   window,
	}
}

func (c *ChartComparatorConstructor) NewComparator(run int) core.Comparator {
	return NewChartComparator(path.Join(c.savePath, strconv.Itoa(run), "learning_curve.html"), c.window)
}
