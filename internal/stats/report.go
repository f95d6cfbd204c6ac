package stats

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/sklopivo/sklopivo.github.io/internal/fsutil"
)

// Report is the single statistics document the showcase consumes.
//
// The schema is stable: absent statistics serialize as JSON null, never
// omitted and never zero, and all floats are rounded for diffable output.
// Go marshals map keys sorted, so identical input yields identical bytes.
type Report struct {
	TotalBatches    int                       `json:"total_batches"`
	Styles          map[string]int            `json:"styles"`
	Averages        Averages                  `json:"averages"`
	ColorRange      *Range                    `json:"color_range"`
	Grains          map[string]IngredientStat `json:"grains"`
	Hops            map[string]IngredientStat `json:"hops"`
	Yeasts          map[string]IngredientStat `json:"yeasts"`
	HopPercentages  map[string]*float64       `json:"hop_percentages"`
	MonthlyTimeline []MonthCount              `json:"monthly_timeline"`

	Brewers       map[string]int  `json:"brewers"`
	ABVRange      *Range          `json:"abv_range"`
	IBURange      *Range          `json:"ibu_range"`
	TotalVolume   float64         `json:"total_volume_liters"`
	YearsBrewing  float64         `json:"years_brewing"`
	YearlyBrews   map[string]int  `json:"yearly_brews"`
	BatchTimeline []TimelineEntry `json:"batch_timeline"`

	Skipped map[string]int `json:"skipped_batches"`
}

// Averages holds the per-field arithmetic means, each computed over its own
// present subset. Nil means no batch provided the field.
type Averages struct {
	ABV        *float64 `json:"abv"`
	IBU        *float64 `json:"ibu"`
	BatchSize  *float64 `json:"batch_size"`
	Efficiency *float64 `json:"efficiency"`
	OG         *float64 `json:"og"`
	FG         *float64 `json:"fg"`
}

// Range is an observed min/max pair.
type Range struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// IngredientStat is one row of an ingredient frequency table. Count is the
// number of batches using the ingredient; TotalAmount sums every occurrence
// (kg for grains, g for hops, null for yeasts).
type IngredientStat struct {
	Count       int      `json:"count"`
	TotalAmount *float64 `json:"total_amount"`
}

// MonthCount is one month of the zero-filled brewing timeline.
type MonthCount struct {
	Month string `json:"month"` // "YYYY-MM"
	Count int    `json:"count"`
}

// TimelineEntry is one dated batch in the brewing history.
type TimelineEntry struct {
	Date    string   `json:"date"` // "YYYY-MM-DD"
	Name    string   `json:"name"`
	Style   string   `json:"style"`
	Status  string   `json:"status"`
	BatchNo int      `json:"batch_no"`
	ABV     *float64 `json:"abv"`
}

// Marshal renders the report as indented JSON with a trailing newline.
func (r *Report) Marshal() ([]byte, error) {
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal report: %w", err)
	}
	return append(data, '\n'), nil
}

// WriteFile writes the report to path atomically: the document lands in a
// temporary file first and is renamed into place, so a failed write never
// leaves a partial statistics file behind.
func (r *Report) WriteFile(fsys fsutil.FileSystem, path string) error {
	data, err := r.Marshal()
	if err != nil {
		return err
	}
	if err := fsutil.WriteFileAtomic(fsys, path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write statistics file: %w", err)
	}
	return nil
}

// ReadFile loads a previously written report.
func ReadFile(fsys fsutil.FileSystem, path string) (*Report, error) {
	data, err := fsys.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read statistics file %s: %w", path, err)
	}
	var r Report
	if err := json.Unmarshal(data, &r); err != nil {
		return nil, fmt.Errorf("failed to parse statistics file %s: %w", path, err)
	}
	return &r, nil
}

func parseDay(s string) (time.Time, error) {
	return time.Parse("2006-01-02", s)
}
