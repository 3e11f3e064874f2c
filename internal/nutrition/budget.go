// internal/nutrition/budget.go
package nutrition

import (
	"meal-ledger/internal/models"
)

// SlotBudget derives one meal slot's calorie budget from the daily goal and
// the user's percentage split. Pure arithmetic: out-of-range percentages,
// negative goals, and splits that do not sum to 100 all pass through
// unchanged. Presenting sane inputs is the caller's job.
func SlotBudget(goalCalories float64, split models.CalorieSplit, slot models.MealSlot) float64 {
	return goalCalories * split.Percent(slot) / 100
}
