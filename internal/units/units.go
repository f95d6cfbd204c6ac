// Package units provides shared constants and conversions for ingredient
// amounts and batch volumes.
package units

// Volume unit constants
const (
	Liters  = "l"
	Gallons = "gal"
)

// Amount unit constants. The upstream API reports all ingredient amounts in
// kilograms; hop quantities are conventionally displayed in grams.
const (
	Kilograms = "kg"
	Grams     = "g"
)

// ValidVolumeUnits contains all valid volume unit values
var ValidVolumeUnits = []string{Liters, Gallons}

// IsValidVolumeUnit checks if the given unit is in the list of valid units
func IsValidVolumeUnit(unit string) bool {
	for _, valid := range ValidVolumeUnits {
		if unit == valid {
			return true
		}
	}
	return false
}

// KilogramsToGrams converts an ingredient amount from kilograms to grams.
func KilogramsToGrams(kg float64) float64 {
	return kg * 1000
}

// ConvertVolume converts a volume from liters to the target units.
// The upstream API stores batch sizes in liters.
func ConvertVolume(liters float64, targetUnits string) float64 {
	switch targetUnits {
	case Gallons:
		return liters * 0.264172 // liters to US gallons
	case Liters:
		return liters // no conversion needed
	default:
		return liters // default to liters if unknown unit
	}
}
