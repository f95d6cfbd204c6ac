// Package showcase renders the static brewing statistics site from an
// aggregate report: one chart page plus the raw statistics JSON behind it.
package showcase

import (
	"bytes"
	"fmt"
	"path/filepath"
	"sort"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/sklopivo/sklopivo.github.io/internal/fsutil"
	"github.com/sklopivo/sklopivo.github.io/internal/stats"
	"github.com/sklopivo/sklopivo.github.io/internal/units"
)

// Options controls the generated page.
type Options struct {
	// Title of the showcase page.
	Title string

	// TopIngredients limits the grain and hop charts to the N most used
	// entries.
	TopIngredients int
}

func (o Options) withDefaults() Options {
	if o.Title == "" {
		o.Title = "Brewing Statistics"
	}
	if o.TopIngredients <= 0 {
		o.TopIngredients = 15
	}
	return o
}

// WriteHTML renders the chart page for the report into dir/index.html.
func WriteHTML(fsys fsutil.FileSystem, dir string, r *stats.Report, o Options) error {
	page := BuildPage(r, o)

	var buf bytes.Buffer
	if err := page.Render(&buf); err != nil {
		return fmt.Errorf("failed to render showcase page: %v", err)
	}

	if err := fsys.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create site directory: %w", err)
	}
	path := filepath.Join(dir, "index.html")
	if err := fsutil.WriteFileAtomic(fsys, path, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("failed to write showcase page: %w", err)
	}
	return nil
}

// BuildPage assembles the chart page: style and timeline overviews first,
// then the ingredient breakdowns.
func BuildPage(r *stats.Report, o Options) *components.Page {
	o = o.withDefaults()

	page := components.NewPage()
	page.PageTitle = o.Title
	page.AddCharts(
		styleBar(r, o),
		timelineLine(r),
		hopPie(r, o),
		grainBar(r, o),
	)
	return page
}

// namedCount is a sortable (name, value) pair shared by the chart builders.
type namedCount struct {
	name  string
	value float64
}

// sortedDesc orders by value descending, name ascending for equal values so
// chart order is stable run to run.
func sortedDesc(pairs []namedCount) []namedCount {
	sort.Slice(pairs, func(i, j int) bool {
		if pairs[i].value != pairs[j].value {
			return pairs[i].value > pairs[j].value
		}
		return pairs[i].name < pairs[j].name
	})
	return pairs
}

func styleBar(r *stats.Report, o Options) components.Charter {
	pairs := make([]namedCount, 0, len(r.Styles))
	for style, count := range r.Styles {
		pairs = append(pairs, namedCount{style, float64(count)})
	}
	pairs = sortedDesc(pairs)

	x := make([]string, 0, len(pairs))
	y := make([]opts.BarData, 0, len(pairs))
	for _, p := range pairs {
		x = append(x, p.name)
		y = append(y, opts.BarData{Value: int(p.value)})
	}

	subtitle := fmt.Sprintf("%d batches", r.TotalBatches)
	if r.TotalVolume > 0 {
		subtitle = fmt.Sprintf("%d batches, %.1f L (%.1f gal) brewed",
			r.TotalBatches, r.TotalVolume,
			units.ConvertVolume(r.TotalVolume, units.Gallons))
	}

	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{
			Title:    "Beer Styles",
			Subtitle: subtitle,
		}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
	)
	bar.SetXAxis(x).AddSeries("batches", y,
		charts.WithLabelOpts(opts.Label{Show: opts.Bool(true), Position: "top"}),
	)
	return bar
}

func timelineLine(r *stats.Report) components.Charter {
	x := make([]string, 0, len(r.MonthlyTimeline))
	y := make([]opts.LineData, 0, len(r.MonthlyTimeline))
	for _, mc := range r.MonthlyTimeline {
		x = append(x, mc.Month)
		y = append(y, opts.LineData{Value: mc.Count})
	}

	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{Title: "Brews per Month"}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
	)
	line.SetXAxis(x).AddSeries("brews", y)
	return line
}

func hopPie(r *stats.Report, o Options) components.Charter {
	pairs := make([]namedCount, 0, len(r.HopPercentages))
	for name, pct := range r.HopPercentages {
		if pct == nil {
			continue
		}
		pairs = append(pairs, namedCount{name, *pct})
	}
	pairs = sortedDesc(pairs)
	if len(pairs) > o.TopIngredients {
		pairs = pairs[:o.TopIngredients]
	}

	data := make([]opts.PieData, 0, len(pairs))
	for _, p := range pairs {
		data = append(data, opts.PieData{Name: p.name, Value: p.value})
	}

	pie := charts.NewPie()
	pie.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{Title: "Hop Bill", Subtitle: "share of total hop mass"}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
	)
	pie.AddSeries("hops", data)
	return pie
}

func grainBar(r *stats.Report, o Options) components.Charter {
	pairs := make([]namedCount, 0, len(r.Grains))
	for name, s := range r.Grains {
		pairs = append(pairs, namedCount{name, float64(s.Count)})
	}
	pairs = sortedDesc(pairs)
	if len(pairs) > o.TopIngredients {
		pairs = pairs[:o.TopIngredients]
	}

	x := make([]string, 0, len(pairs))
	y := make([]opts.BarData, 0, len(pairs))
	for _, p := range pairs {
		x = append(x, p.name)
		y = append(y, opts.BarData{Value: int(p.value)})
	}

	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{Title: "Most Used Grains", Subtitle: "batches using each grain"}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
	)
	bar.SetXAxis(x).AddSeries("batches", y)
	return bar
}
