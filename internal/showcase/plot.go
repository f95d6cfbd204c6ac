package showcase

import (
	"fmt"
	"image/color"
	"os"
	"path/filepath"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/sklopivo/sklopivo.github.io/internal/stats"
)

// WriteTimelinePNG saves a line plot of brews per month into
// dir/timeline.png. The report timeline is already zero-filled and
// chronological, so month index maps straight onto the x axis.
// Writes through the real filesystem since the plot backend saves
// files itself.
func WriteTimelinePNG(dir string, r *stats.Report) error {
	if len(r.MonthlyTimeline) == 0 {
		return nil
	}

	p := plot.New()
	p.Title.Text = "Brews per Month"
	p.X.Label.Text = "Month"
	p.Y.Label.Text = "Brews"

	pts := make(plotter.XYs, 0, len(r.MonthlyTimeline))
	labels := make([]string, 0, len(r.MonthlyTimeline))
	for i, mc := range r.MonthlyTimeline {
		pts = append(pts, plotter.XY{X: float64(i), Y: float64(mc.Count)})
		labels = append(labels, mc.Month)
	}

	line, err := plotter.NewLine(pts)
	if err != nil {
		return fmt.Errorf("failed to build timeline series: %w", err)
	}
	line.Color = color.RGBA{R: 0xd9, G: 0x77, B: 0x06, A: 0xff}
	line.Width = vg.Points(1.5)
	p.Add(line)

	// Label only the first bin of each year, the axis gets unreadable
	// otherwise on long histories.
	ticks := make([]plot.Tick, 0, len(labels))
	for i, label := range labels {
		t := plot.Tick{Value: float64(i)}
		if i == 0 || len(label) >= 7 && label[5:] == "01" {
			t.Label = label
		}
		ticks = append(ticks, t)
	}
	p.X.Tick.Marker = plot.ConstantTicks(ticks)

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create site directory: %w", err)
	}
	out := filepath.Join(dir, "timeline.png")
	if err := p.Save(12*vg.Inch, 4*vg.Inch, out); err != nil {
		return fmt.Errorf("failed to save timeline plot: %w", err)
	}
	return nil
}
