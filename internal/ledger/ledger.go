// internal/ledger/ledger.go
package ledger

import (
	"sync"

	"meal-ledger/internal/models"
	"meal-ledger/internal/nutrition"
)

// DayRecord buckets one calendar day's meal entries by slot. Entries are
// only ever appended, never merged or edited, so any historical total can
// be reproduced by replay.
type DayRecord struct {
	Slots map[models.MealSlot][]models.MealEntry
}

func newDayRecord() *DayRecord {
	return &DayRecord{
		Slots: map[models.MealSlot][]models.MealEntry{
			models.SlotMorning: {},
			models.SlotMidday:  {},
			models.SlotEvening: {},
		},
	}
}

// Ledger is the in-memory, date-keyed store of logged meals. Dates use the
// ISO "YYYY-MM-DD" form and are created lazily on first append. The only
// write operation is Append; the RWMutex exists because the HTTP host is
// concurrent, not because the ledger itself needs transactional semantics.
type Ledger struct {
	mu   sync.RWMutex
	days map[string]*DayRecord
}

func New() *Ledger {
	return &Ledger{days: make(map[string]*DayRecord)}
}

// Append pushes one meal entry onto the (date, slot) sequence, creating the
// day record if absent. Prior entries for the same slot are never touched.
func (l *Ledger) Append(date string, slot models.MealSlot, entry models.MealEntry) {
	l.mu.Lock()
	defer l.mu.Unlock()

	day, ok := l.days[date]
	if !ok {
		day = newDayRecord()
		l.days[date] = day
	}
	day.Slots[slot] = append(day.Slots[slot], entry)
}

// TotalsForDate re-aggregates every slot's every entry's every item for the
// date. A never-appended date yields zero totals, not an error.
func (l *Ledger) TotalsForDate(date string) models.Totals {
	l.mu.RLock()
	defer l.mu.RUnlock()

	day, ok := l.days[date]
	if !ok {
		return models.Totals{}
	}

	var items []models.NutrientItem
	for _, slot := range models.Slots {
		for _, entry := range day.Slots[slot] {
			items = append(items, entry.Items...)
		}
	}
	return nutrition.SumItems(items)
}

// SlotTotals aggregates one slot of one date.
func (l *Ledger) SlotTotals(date string, slot models.MealSlot) models.Totals {
	l.mu.RLock()
	defer l.mu.RUnlock()

	day, ok := l.days[date]
	if !ok {
		return models.Totals{}
	}

	var items []models.NutrientItem
	for _, entry := range day.Slots[slot] {
		items = append(items, entry.Items...)
	}
	return nutrition.SumItems(items)
}

// EntriesForDate returns a copy of the date's entries keyed by slot, in
// insertion order, for display. Mutating the result does not touch the
// ledger.
func (l *Ledger) EntriesForDate(date string) map[models.MealSlot][]models.MealEntry {
	l.mu.RLock()
	defer l.mu.RUnlock()

	out := map[models.MealSlot][]models.MealEntry{
		models.SlotMorning: {},
		models.SlotMidday:  {},
		models.SlotEvening: {},
	}
	day, ok := l.days[date]
	if !ok {
		return out
	}
	for _, slot := range models.Slots {
		out[slot] = append(out[slot], day.Slots[slot]...)
	}
	return out
}
