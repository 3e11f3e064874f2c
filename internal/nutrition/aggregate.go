// internal/nutrition/aggregate.go
package nutrition

import (
	"math"

	"meal-ledger/internal/models"
)

// round1 rounds to one decimal place, half away from zero. Non-finite
// values collapse to 0 so a single bad magnitude cannot poison a total.
func round1(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return math.Round(v*10) / 10
}

// sumRaw accumulates the four magnitudes at full precision. Scaling uses
// this directly; rounding only happens at the presentation boundary.
func sumRaw(items []models.NutrientItem) models.Totals {
	var t models.Totals
	for _, it := range items {
		t.Calories += ParseMagnitude(it.Calories)
		t.Protein += ParseMagnitude(it.Protein)
		t.Fat += ParseMagnitude(it.Fat)
		t.Carbohydrate += ParseMagnitude(it.Carbohydrate)
	}
	return t
}

// SumItems folds every item's calories/protein/fat/carbohydrate into one
// Totals, each accumulator rounded to a tenth.
func SumItems(items []models.NutrientItem) models.Totals {
	t := sumRaw(items)
	t.Calories = round1(t.Calories)
	t.Protein = round1(t.Protein)
	t.Fat = round1(t.Fat)
	t.Carbohydrate = round1(t.Carbohydrate)
	return t
}
