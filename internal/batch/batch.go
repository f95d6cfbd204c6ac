// Package batch models brewing batch records as delivered by the upstream
// brewing-log API.
//
// Every field the upstream may omit is a pointer: nil means "absent", which
// downstream statistics must exclude rather than coerce to zero.
package batch

import (
	"encoding/json"
	"strings"
	"time"
)

// Batch status constants
const (
	StatusPlanning     = "planning"
	StatusBrewing      = "brewing"
	StatusFermenting   = "fermenting"
	StatusConditioning = "conditioning"
	StatusCompleted    = "completed"
	StatusArchived     = "archived"
	StatusOther        = "other"
)

// ValidStatuses contains all recognized batch status values
var ValidStatuses = []string{
	StatusPlanning, StatusBrewing, StatusFermenting,
	StatusConditioning, StatusCompleted, StatusArchived, StatusOther,
}

// NormalizeStatus lowercases the upstream status and maps anything
// unrecognized to StatusOther. Empty input stays empty so callers can tell
// "absent" from "other".
func NormalizeStatus(status string) string {
	if status == "" {
		return ""
	}
	s := strings.ToLower(strings.TrimSpace(status))
	for _, valid := range ValidStatuses {
		if s == valid {
			return s
		}
	}
	return StatusOther
}

// Batch is one brewing batch. ID is the only required field.
//
// The upstream API nests several numbers under the recipe object instead of
// the batch itself depending on export version; the accessor methods prefer
// the batch-level field and fall back to the recipe.
type Batch struct {
	ID           string   `json:"_id"`
	Name         string   `json:"name"`
	BatchNo      int      `json:"batchNo"`
	Brewer       *string  `json:"brewer"`
	Status       string   `json:"status"`
	Style        *string  `json:"style"`
	BrewDate     *int64   `json:"brewDate"`     // epoch millis
	BottlingDate *int64   `json:"bottlingDate"` // epoch millis
	BatchSize    *float64 `json:"batchSize"`    // liters
	MeasuredABV  *float64 `json:"measuredAbv"`  // percent
	EstimatedABV *float64 `json:"estimatedAbv"` // percent
	OG           *float64 `json:"og"`
	FG           *float64 `json:"fg"`
	IBU          *float64 `json:"ibu"`
	Color        *float64 `json:"color"` // SRM
	Efficiency   *float64 `json:"efficiency"`
	Recipe       *Recipe  `json:"recipe"`
}

// UnmarshalJSON accepts both the current and the legacy upstream spellings:
// "id" for "_id" and a flat "abv" for "measuredAbv".
func (b *Batch) UnmarshalJSON(data []byte) error {
	type alias Batch
	aux := struct {
		*alias
		LegacyID string   `json:"id"`
		FlatABV  *float64 `json:"abv"`
	}{alias: (*alias)(b)}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	if b.ID == "" {
		b.ID = aux.LegacyID
	}
	if b.MeasuredABV == nil && aux.FlatABV != nil {
		b.MeasuredABV = aux.FlatABV
	}
	return nil
}

// Recipe is the optional nested recipe object.
type Recipe struct {
	Name         string        `json:"name"`
	Style        *RecipeStyle  `json:"style"`
	BatchSize    *float64      `json:"batchSize"` // liters
	IBU          *float64      `json:"ibu"`
	Color        *float64      `json:"estimatedColor"` // SRM
	ABV          *float64      `json:"abv"`
	Fermentables []Fermentable `json:"fermentables"`
	Hops         []Hop         `json:"hops"`
	Yeasts       []Yeast       `json:"yeasts"`
}

// RecipeStyle carries the style name nested under the recipe.
type RecipeStyle struct {
	Name string `json:"name"`
}

// Fermentable is one grain/fermentable entry in a recipe.
type Fermentable struct {
	Name   string   `json:"name"`
	Type   string   `json:"type"`
	Amount *float64 `json:"amount"` // kg
}

// Hop is one hop entry in a recipe.
type Hop struct {
	Name   string   `json:"name"`
	Use    string   `json:"use"`
	Time   *float64 `json:"time"` // boil minutes
	Alpha  *float64 `json:"alpha"`
	Amount *float64 `json:"amount"` // kg
}

// Yeast is one yeast entry in a recipe. Yeast entries carry no amount.
type Yeast struct {
	Name       string `json:"name"`
	Laboratory string `json:"laboratory"`
	ProductID  string `json:"productId"`
}

// DisplayName returns "LAB PRODUCTID - NAME" when the laboratory is known,
// otherwise just the name.
func (y Yeast) DisplayName() string {
	if y.Laboratory != "" {
		return strings.TrimSpace(y.Laboratory+" "+y.ProductID) + " - " + y.Name
	}
	return y.Name
}

// ABV returns the measured ABV when present, falling back to the estimate
// and then to the recipe target. The second return is false when none is
// present.
func (b *Batch) ABV() (float64, bool) {
	if b.MeasuredABV != nil {
		return *b.MeasuredABV, true
	}
	if b.EstimatedABV != nil {
		return *b.EstimatedABV, true
	}
	if b.Recipe != nil && b.Recipe.ABV != nil {
		return *b.Recipe.ABV, true
	}
	return 0, false
}

// StyleName returns the batch style, preferring the flattened field and
// falling back to the nested recipe style. The second return is false when
// no style is recorded at all.
func (b *Batch) StyleName() (string, bool) {
	if b.Style != nil && strings.TrimSpace(*b.Style) != "" {
		return strings.TrimSpace(*b.Style), true
	}
	if b.Recipe != nil && b.Recipe.Style != nil && strings.TrimSpace(b.Recipe.Style.Name) != "" {
		return strings.TrimSpace(b.Recipe.Style.Name), true
	}
	return "", false
}

// IBUValue returns the batch IBU, falling back to the recipe value.
func (b *Batch) IBUValue() (float64, bool) {
	if b.IBU != nil {
		return *b.IBU, true
	}
	if b.Recipe != nil && b.Recipe.IBU != nil {
		return *b.Recipe.IBU, true
	}
	return 0, false
}

// ColorSRM returns the batch color, falling back to the recipe estimate.
func (b *Batch) ColorSRM() (float64, bool) {
	if b.Color != nil {
		return *b.Color, true
	}
	if b.Recipe != nil && b.Recipe.Color != nil {
		return *b.Recipe.Color, true
	}
	return 0, false
}

// Size returns the batch volume in liters, falling back to the recipe value.
func (b *Batch) Size() (float64, bool) {
	if b.BatchSize != nil {
		return *b.BatchSize, true
	}
	if b.Recipe != nil && b.Recipe.BatchSize != nil {
		return *b.Recipe.BatchSize, true
	}
	return 0, false
}

// BrewTime converts the epoch-millis brew date to a time.Time in UTC.
// The second return is false when the batch has no brew date.
func (b *Batch) BrewTime() (time.Time, bool) {
	if b.BrewDate == nil {
		return time.Time{}, false
	}
	return time.UnixMilli(*b.BrewDate).UTC(), true
}
