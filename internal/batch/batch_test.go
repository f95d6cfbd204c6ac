package batch

import (
	"encoding/json"
	"testing"
	"time"
)

func floatPtr(f float64) *float64 { return &f }
func strPtr(s string) *string     { return &s }

func TestNormalizeStatus(t *testing.T) {
	tests := []struct {
		name     string
		status   string
		expected string
	}{
		{"lowercase passthrough", "fermenting", StatusFermenting},
		{"uppercase from API", "Completed", StatusCompleted},
		{"whitespace trimmed", "  brewing ", StatusBrewing},
		{"unrecognized maps to other", "kegged", StatusOther},
		{"empty stays empty", "", ""},
		{"archived", "Archived", StatusArchived},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NormalizeStatus(tt.status); got != tt.expected {
				t.Errorf("NormalizeStatus(%q) = %q, want %q", tt.status, got, tt.expected)
			}
		})
	}
}

func TestABVPrefersMeasured(t *testing.T) {
	b := Batch{
		MeasuredABV:  floatPtr(6.2),
		EstimatedABV: floatPtr(5.9),
	}
	got, ok := b.ABV()
	if !ok || got != 6.2 {
		t.Errorf("ABV() = %v, %v; want 6.2, true", got, ok)
	}
}

func TestABVFallsBackToEstimate(t *testing.T) {
	b := Batch{EstimatedABV: floatPtr(5.9)}
	got, ok := b.ABV()
	if !ok || got != 5.9 {
		t.Errorf("ABV() = %v, %v; want 5.9, true", got, ok)
	}
}

func TestABVAbsent(t *testing.T) {
	var b Batch
	if _, ok := b.ABV(); ok {
		t.Error("ABV() should report absent for an empty batch")
	}
}

func TestStyleNameFallsBackToRecipe(t *testing.T) {
	tests := []struct {
		name     string
		batch    Batch
		expected string
		present  bool
	}{
		{
			"flattened style wins",
			Batch{Style: strPtr("IPA"), Recipe: &Recipe{Style: &RecipeStyle{Name: "Stout"}}},
			"IPA", true,
		},
		{
			"recipe style fallback",
			Batch{Recipe: &Recipe{Style: &RecipeStyle{Name: "Stout"}}},
			"Stout", true,
		},
		{
			"empty flattened style falls through",
			Batch{Style: strPtr("  "), Recipe: &Recipe{Style: &RecipeStyle{Name: "Pilsner"}}},
			"Pilsner", true,
		},
		{"no style at all", Batch{}, "", false},
		{"recipe without style", Batch{Recipe: &Recipe{}}, "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := tt.batch.StyleName()
			if got != tt.expected || ok != tt.present {
				t.Errorf("StyleName() = %q, %v; want %q, %v", got, ok, tt.expected, tt.present)
			}
		})
	}
}

func TestRecipeFieldFallbacks(t *testing.T) {
	b := Batch{
		Recipe: &Recipe{
			BatchSize: floatPtr(21.0),
			IBU:       floatPtr(44.0),
			Color:     floatPtr(8.5),
		},
	}

	if got, ok := b.Size(); !ok || got != 21.0 {
		t.Errorf("Size() = %v, %v", got, ok)
	}
	if got, ok := b.IBUValue(); !ok || got != 44.0 {
		t.Errorf("IBUValue() = %v, %v", got, ok)
	}
	if got, ok := b.ColorSRM(); !ok || got != 8.5 {
		t.Errorf("ColorSRM() = %v, %v", got, ok)
	}

	// Batch-level values win over the recipe.
	b.IBU = floatPtr(60.0)
	if got, _ := b.IBUValue(); got != 60.0 {
		t.Errorf("IBUValue() = %v, want batch-level 60", got)
	}
}

func TestBrewTime(t *testing.T) {
	ts := time.Date(2023, 4, 12, 18, 30, 0, 0, time.UTC)
	millis := ts.UnixMilli()
	b := Batch{BrewDate: &millis}

	got, ok := b.BrewTime()
	if !ok {
		t.Fatal("BrewTime() reported absent")
	}
	if !got.Equal(ts) {
		t.Errorf("BrewTime() = %v, want %v", got, ts)
	}

	var empty Batch
	if _, ok := empty.BrewTime(); ok {
		t.Error("BrewTime() should report absent without a brew date")
	}
}

func TestYeastDisplayName(t *testing.T) {
	tests := []struct {
		name     string
		yeast    Yeast
		expected string
	}{
		{
			"with laboratory",
			Yeast{Name: "American Ale", Laboratory: "Wyeast", ProductID: "1056"},
			"Wyeast 1056 - American Ale",
		},
		{
			"laboratory without product id",
			Yeast{Name: "Nottingham", Laboratory: "Lallemand"},
			"Lallemand - Nottingham",
		},
		{"without laboratory", Yeast{Name: "US-05"}, "US-05"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.yeast.DisplayName(); got != tt.expected {
				t.Errorf("DisplayName() = %q, want %q", got, tt.expected)
			}
		})
	}
}

func TestUnmarshalLegacySpellings(t *testing.T) {
	data := []byte(`{"id": "b-1", "name": "Old Export", "abv": 5.4}`)

	var b Batch
	if err := json.Unmarshal(data, &b); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}
	if b.ID != "b-1" {
		t.Errorf("ID = %q, want b-1", b.ID)
	}
	got, ok := b.ABV()
	if !ok || got != 5.4 {
		t.Errorf("ABV() = %v, %v; want 5.4", got, ok)
	}
}

func TestUnmarshalCurrentSpellingsWin(t *testing.T) {
	data := []byte(`{"_id": "b-2", "id": "ignored", "measuredAbv": 6.0, "abv": 5.0}`)

	var b Batch
	if err := json.Unmarshal(data, &b); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}
	if b.ID != "b-2" {
		t.Errorf("ID = %q, want b-2", b.ID)
	}
	if got, _ := b.ABV(); got != 6.0 {
		t.Errorf("ABV() = %v, want 6.0", got)
	}
}
