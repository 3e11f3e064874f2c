// internal/models/nutrient.go
package models

import (
	"time"
)

// NutrientItem is the wire shape exchanged with the extraction model and
// re-displayed to the client. Each magnitude carries its unit as a string
// suffix ("120kcal", "10g"); numeric parsing lives in the nutrition package.
type NutrientItem struct {
	Name         string `json:"name"`
	Quantity     string `json:"quantity,omitempty"`
	Weight       string `json:"weight,omitempty"`
	Calories     string `json:"calories,omitempty"`
	Protein      string `json:"protein,omitempty"`
	Fat          string `json:"fat,omitempty"`
	Carbohydrate string `json:"carbohydrate,omitempty"`
}

type MealSlot string

const (
	SlotMorning MealSlot = "morning"
	SlotMidday  MealSlot = "midday"
	SlotEvening MealSlot = "evening"
)

// Slots lists the three meal slots in day order.
var Slots = []MealSlot{SlotMorning, SlotMidday, SlotEvening}

func (s MealSlot) Valid() bool {
	switch s {
	case SlotMorning, SlotMidday, SlotEvening:
		return true
	}
	return false
}

// Totals holds the four running accumulators for a set of nutrient items.
// Always derived from ledger entries, never stored on its own.
type Totals struct {
	Calories     float64 `json:"kcal"`
	Protein      float64 `json:"protein_g"`
	Fat          float64 `json:"fat_g"`
	Carbohydrate float64 `json:"carbohydrate_g"`
}

// CalorieSplit is the user's morning/midday/evening percentage split.
// Expected, but not enforced, to sum to 100.
type CalorieSplit struct {
	Morning float64 `json:"morning"`
	Midday  float64 `json:"midday"`
	Evening float64 `json:"evening"`
}

func (c CalorieSplit) Percent(slot MealSlot) float64 {
	switch slot {
	case SlotMorning:
		return c.Morning
	case SlotMidday:
		return c.Midday
	case SlotEvening:
		return c.Evening
	}
	return 0
}

// Goals is the user's daily calorie target plus gram targets for the three
// macros. The gram targets are display-only and are not enforced against
// scaled totals.
type Goals struct {
	Calories      float64      `json:"calories"`
	ProteinG      float64      `json:"protein_g"`
	FatG          float64      `json:"fat_g"`
	CarbohydrateG float64      `json:"carbohydrate_g"`
	Split         CalorieSplit `json:"split"`
}

// MealEntry is one extraction event: the scaled item list plus bookkeeping.
type MealEntry struct {
	ID       string         `json:"id"`
	Slot     MealSlot       `json:"slot"`
	Text     string         `json:"text,omitempty"`
	Items    []NutrientItem `json:"items"`
	LoggedAt time.Time      `json:"logged_at"`
	Source   string         `json:"source"` // "manual", "ai_parsed"
}
