// internal/nutrition/scale.go
package nutrition

import (
	"meal-ledger/internal/models"
)

// ScaleMeal proportionally rescales a meal so its calorie total matches
// targetBudget. The scale factor comes from the full-precision raw sum, not
// the rounded one, so rounding error does not compound before the final
// one-decimal serialization. A raw kcal sum of zero falls back to a base of
// 1, which keeps a fully-unparseable extraction from producing an infinite
// or NaN factor. Name, quantity, and weight are carried through untouched;
// the returned totals are recomputed from the scaled items.
func ScaleMeal(items []models.NutrientItem, targetBudget float64) ([]models.NutrientItem, models.Totals) {
	raw := sumRaw(items)
	base := raw.Calories
	if base <= 0 {
		base = 1
	}
	factor := targetBudget / base

	scaled := make([]models.NutrientItem, 0, len(items))
	for _, it := range items {
		out := it
		out.Calories = FormatKcal(ParseMagnitude(it.Calories) * factor)
		out.Protein = FormatGrams(ParseMagnitude(it.Protein) * factor)
		out.Fat = FormatGrams(ParseMagnitude(it.Fat) * factor)
		out.Carbohydrate = FormatGrams(ParseMagnitude(it.Carbohydrate) * factor)
		scaled = append(scaled, out)
	}

	return scaled, SumItems(scaled)
}
