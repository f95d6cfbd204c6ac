// Package stats turns a list of batch records into the aggregate statistics
// document consumed by the showcase.
//
// Aggregate is a pure function of its input: no network, no filesystem.
// Batches missing a field are excluded from that one statistic and counted
// in the skip diagnostics; they are never dropped from the total and their
// absent values are never coerced to zero.
package stats

import (
	"math"
	"sort"
	"strings"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/sklopivo/sklopivo.github.io/internal/batch"
	"github.com/sklopivo/sklopivo.github.io/internal/monitoring"
	"github.com/sklopivo/sklopivo.github.io/internal/timeutil"
	"github.com/sklopivo/sklopivo.github.io/internal/units"
)

// StyleUnknown is the distribution bucket for batches without a style, so
// the style counts still sum to the batch total.
const StyleUnknown = "Unknown"

// Skip diagnostic field names
const (
	FieldABV        = "abv"
	FieldIBU        = "ibu"
	FieldBatchSize  = "batch_size"
	FieldEfficiency = "efficiency"
	FieldOG         = "og"
	FieldFG         = "fg"
	FieldColor      = "color"
	FieldBrewDate   = "brew_date"
	FieldStyle      = "style"
	FieldRecipe     = "recipe"
	FieldBrewer     = "brewer"
)

var skipFields = []string{
	FieldABV, FieldIBU, FieldBatchSize, FieldEfficiency, FieldOG, FieldFG,
	FieldColor, FieldBrewDate, FieldStyle, FieldRecipe, FieldBrewer,
}

// Aggregate computes the full statistics report for the given batches.
func Aggregate(batches []batch.Batch) *Report {
	agg := newAggregator()
	for i := range batches {
		agg.add(&batches[i])
	}
	return agg.report()
}

type aggregator struct {
	total   int
	styles  map[string]int
	brewers map[string]int
	yearly  map[string]int
	monthly map[timeutil.YearMonth]int

	abv, ibu, size, efficiency, og, fg, color []float64

	grains *ingredientTable
	hops   *ingredientTable
	yeasts *ingredientTable

	timeline []TimelineEntry
	skipped  map[string]int
}

func newAggregator() *aggregator {
	skipped := make(map[string]int, len(skipFields))
	for _, f := range skipFields {
		skipped[f] = 0
	}
	return &aggregator{
		styles:  make(map[string]int),
		brewers: make(map[string]int),
		yearly:  make(map[string]int),
		monthly: make(map[timeutil.YearMonth]int),
		grains:  newIngredientTable(),
		hops:    newIngredientTable(),
		yeasts:  newIngredientTable(),
		skipped: skipped,
	}
}

func (a *aggregator) skip(field string) {
	a.skipped[field]++
}

func (a *aggregator) add(b *batch.Batch) {
	a.total++

	if style, ok := b.StyleName(); ok {
		a.styles[style]++
	} else {
		a.styles[StyleUnknown]++
		a.skip(FieldStyle)
	}

	if b.Brewer != nil && strings.TrimSpace(*b.Brewer) != "" {
		a.brewers[strings.TrimSpace(*b.Brewer)]++
	} else {
		a.brewers[StyleUnknown]++
		a.skip(FieldBrewer)
	}

	a.collectNumeric(b)

	if t, ok := b.BrewTime(); ok {
		ym := timeutil.YearMonthOf(t)
		a.monthly[ym]++
		a.yearly[t.Format("2006")]++

		style, _ := b.StyleName()
		if style == "" {
			style = StyleUnknown
		}
		status := batch.NormalizeStatus(b.Status)
		if status == "" {
			status = StyleUnknown
		}
		entry := TimelineEntry{
			Date:    t.Format("2006-01-02"),
			Name:    b.Name,
			Style:   style,
			Status:  status,
			BatchNo: b.BatchNo,
		}
		if abv, ok := b.ABV(); ok {
			entry.ABV = roundPtr(abv)
		}
		a.timeline = append(a.timeline, entry)
	} else {
		a.skip(FieldBrewDate)
	}

	if b.Recipe == nil {
		a.skip(FieldRecipe)
		return
	}

	for _, f := range b.Recipe.Fermentables {
		a.grains.add(f.Name, f.Amount)
	}
	for _, h := range b.Recipe.Hops {
		var grams *float64
		if h.Amount != nil {
			g := units.KilogramsToGrams(*h.Amount)
			grams = &g
		}
		a.hops.add(h.Name, grams)
	}
	for _, y := range b.Recipe.Yeasts {
		a.yeasts.add(y.DisplayName(), nil)
	}
	a.grains.endBatch()
	a.hops.endBatch()
	a.yeasts.endBatch()
}

// collectNumeric gathers the per-batch numeric fields, tracking a skip for
// each absent one.
func (a *aggregator) collectNumeric(b *batch.Batch) {
	if v, ok := b.ABV(); ok {
		a.abv = append(a.abv, v)
	} else {
		a.skip(FieldABV)
	}
	if v, ok := b.IBUValue(); ok {
		a.ibu = append(a.ibu, v)
	} else {
		a.skip(FieldIBU)
	}
	if v, ok := b.Size(); ok {
		a.size = append(a.size, v)
	} else {
		a.skip(FieldBatchSize)
	}
	if b.Efficiency != nil {
		a.efficiency = append(a.efficiency, *b.Efficiency)
	} else {
		a.skip(FieldEfficiency)
	}
	if b.OG != nil {
		a.og = append(a.og, *b.OG)
	} else {
		a.skip(FieldOG)
	}
	if b.FG != nil {
		a.fg = append(a.fg, *b.FG)
	} else {
		a.skip(FieldFG)
	}
	if v, ok := b.ColorSRM(); ok {
		a.color = append(a.color, v)
	} else {
		a.skip(FieldColor)
	}
}

func (a *aggregator) report() *Report {
	r := &Report{
		TotalBatches: a.total,
		Styles:       a.styles,
		Averages: Averages{
			ABV:        meanOrNil(a.abv),
			IBU:        meanOrNil(a.ibu),
			BatchSize:  meanOrNil(a.size),
			Efficiency: meanOrNil(a.efficiency),
			OG:         meanOrNil4(a.og),
			FG:         meanOrNil4(a.fg),
		},
		ColorRange:      rangeOrNil(a.color),
		Grains:          a.grains.stats(),
		Hops:            a.hops.stats(),
		Yeasts:          a.yeasts.stats(),
		MonthlyTimeline: a.monthlyTimeline(),
		Brewers:         a.brewers,
		ABVRange:        rangeOrNil(a.abv),
		IBURange:        rangeOrNil(a.ibu),
		TotalVolume:     round2(floats.Sum(a.size)),
		YearsBrewing:    a.yearsBrewing(),
		YearlyBrews:     a.yearly,
		BatchTimeline:   a.sortedTimeline(),
		Skipped:         a.skipped,
	}
	r.HopPercentages = hopPercentages(r.Hops)

	for _, field := range skipFields {
		if n := a.skipped[field]; n > 0 {
			monitoring.Logf("aggregate: %d of %d batches missing %s", n, a.total, field)
		}
	}
	return r
}

// monthlyTimeline zero-fills every calendar month between the earliest and
// latest brew date inclusive. No dated batches means an empty timeline.
func (a *aggregator) monthlyTimeline() []MonthCount {
	if len(a.monthly) == 0 {
		return []MonthCount{}
	}

	first, last := timeutil.YearMonth{}, timeutil.YearMonth{}
	started := false
	for ym := range a.monthly {
		if !started {
			first, last = ym, ym
			started = true
			continue
		}
		if ym.Before(first) {
			first = ym
		}
		if last.Before(ym) {
			last = ym
		}
	}

	months := timeutil.MonthsInclusive(first, last)
	timeline := make([]MonthCount, 0, len(months))
	for _, ym := range months {
		timeline = append(timeline, MonthCount{Month: ym.String(), Count: a.monthly[ym]})
	}
	return timeline
}

func (a *aggregator) sortedTimeline() []TimelineEntry {
	entries := make([]TimelineEntry, len(a.timeline))
	copy(entries, a.timeline)
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Date < entries[j].Date
	})
	return entries
}

// yearsBrewing spans the first to the last dated batch in years; zero when
// fewer than two batches carry a brew date.
func (a *aggregator) yearsBrewing() float64 {
	if len(a.timeline) < 2 {
		return 0
	}
	entries := a.sortedTimeline()
	first, errFirst := parseDay(entries[0].Date)
	last, errLast := parseDay(entries[len(entries)-1].Date)
	if errFirst != nil || errLast != nil {
		return 0
	}
	days := last.Sub(first).Hours() / 24
	return round2(days / 365.25)
}

// ingredientTable accumulates per-name usage. Count increments once per
// batch using the name; totals sum every occurrence, duplicates included.
type ingredientTable struct {
	counts   map[string]int
	totals   map[string]*float64
	display  map[string]string
	seenThis map[string]bool
}

func newIngredientTable() *ingredientTable {
	return &ingredientTable{
		counts:   make(map[string]int),
		totals:   make(map[string]*float64),
		display:  make(map[string]string),
		seenThis: make(map[string]bool),
	}
}

// add records one occurrence within the current batch. Names are
// case-normalized for grouping; the first spelling seen is kept for display.
func (t *ingredientTable) add(name string, amount *float64) {
	display := strings.TrimSpace(name)
	if display == "" {
		display = StyleUnknown
	}
	key := strings.ToLower(display)

	if _, ok := t.display[key]; !ok {
		t.display[key] = display
	}
	if !t.seenThis[key] {
		t.seenThis[key] = true
		t.counts[key]++
	}
	if amount != nil {
		if t.totals[key] == nil {
			total := 0.0
			t.totals[key] = &total
		}
		*t.totals[key] += *amount
	}
}

// endBatch closes out the current batch so the next one counts again.
func (t *ingredientTable) endBatch() {
	t.seenThis = make(map[string]bool)
}

func (t *ingredientTable) stats() map[string]IngredientStat {
	out := make(map[string]IngredientStat, len(t.counts))
	for key, count := range t.counts {
		s := IngredientStat{Count: count}
		if total := t.totals[key]; total != nil {
			s.TotalAmount = roundPtr(*total)
		}
		out[t.display[key]] = s
	}
	return out
}

// hopPercentages shares out each hop's total against the grand total. When
// no hop has an amount every percentage is null, never a division by zero.
func hopPercentages(hops map[string]IngredientStat) map[string]*float64 {
	out := make(map[string]*float64, len(hops))
	grand := 0.0
	for _, s := range hops {
		if s.TotalAmount != nil {
			grand += *s.TotalAmount
		}
	}
	for name, s := range hops {
		if grand == 0 || s.TotalAmount == nil {
			out[name] = nil
			continue
		}
		out[name] = roundPtr(*s.TotalAmount / grand * 100)
	}
	return out
}

func meanOrNil(values []float64) *float64 {
	if len(values) == 0 {
		return nil
	}
	return roundPtr(stat.Mean(values, nil))
}

// meanOrNil4 keeps four decimals for gravity readings, where two would
// collapse the entire 1.0xx range.
func meanOrNil4(values []float64) *float64 {
	if len(values) == 0 {
		return nil
	}
	m := math.Round(stat.Mean(values, nil)*10000) / 10000
	return &m
}

func rangeOrNil(values []float64) *Range {
	if len(values) == 0 {
		return nil
	}
	return &Range{
		Min: round2(floats.Min(values)),
		Max: round2(floats.Max(values)),
	}
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func roundPtr(v float64) *float64 {
	r := round2(v)
	return &r
}
