// internal/server/handlers.go
package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"meal-ledger/internal/logger"
	"meal-ledger/internal/models"
	"meal-ledger/internal/nutrition"
)

type logMealRequest struct {
	Date  string                `json:"date,omitempty"`
	Slot  models.MealSlot       `json:"slot"`
	Text  string                `json:"text,omitempty"`
	Items []models.NutrientItem `json:"items,omitempty"`
}

type logMealResponse struct {
	Date      string           `json:"date"`
	Budget    float64          `json:"budget"`
	Entry     models.MealEntry `json:"entry"`
	DayTotals models.Totals    `json:"day_totals"`
}

// logMeal runs one extraction event end to end: extract (unless items were
// supplied manually), budget, scale, append. The ledger is only touched
// after every fallible step has succeeded, so a failed extraction leaves no
// partial state behind.
func (s *Server) logMeal(ctx context.Context, req logMealRequest) (*logMealResponse, error) {
	date := req.Date
	if date == "" {
		date = time.Now().Format("2006-01-02")
	}

	items := req.Items
	source := "manual"
	if items == nil {
		extracted, err := s.extractor.ExtractItems(ctx, req.Text)
		if err != nil {
			return nil, fmt.Errorf("extraction failed: %w", err)
		}
		items = extracted
		source = "ai_parsed"
	}

	goals := s.Goals()
	budget := nutrition.SlotBudget(goals.Calories, goals.Split, req.Slot)
	scaled, _ := nutrition.ScaleMeal(items, budget)

	entry := models.MealEntry{
		ID:       uuid.NewString(),
		Slot:     req.Slot,
		Text:     req.Text,
		Items:    scaled,
		LoggedAt: time.Now(),
		Source:   source,
	}

	if s.journal != nil {
		if err := s.journal.Append(date, req.Slot, entry); err != nil {
			return nil, fmt.Errorf("failed to journal entry: %w", err)
		}
	}
	s.ledger.Append(date, req.Slot, entry)

	logger.Info("meal logged",
		zap.String("date", date),
		zap.String("slot", string(req.Slot)),
		zap.Int("items", len(scaled)),
		zap.Float64("budget", budget))

	return &logMealResponse{
		Date:      date,
		Budget:    budget,
		Entry:     entry,
		DayTotals: s.ledger.TotalsForDate(date),
	}, nil
}

func (s *Server) handleLogMeal(w http.ResponseWriter, r *http.Request) {
	var req logMealRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, fmt.Sprintf("Invalid JSON: %v", err), http.StatusBadRequest)
		return
	}
	if !req.Slot.Valid() {
		http.Error(w, fmt.Sprintf("unknown slot: %q", req.Slot), http.StatusBadRequest)
		return
	}
	if req.Text == "" && req.Items == nil {
		http.Error(w, "text or items required", http.StatusBadRequest)
		return
	}

	resp, err := s.logMeal(r.Context(), req)
	if err != nil {
		logger.Error("log meal failed", zap.Error(err))
		http.Error(w, err.Error(), http.StatusBadGateway)
		return
	}

	s.writeJSON(w, http.StatusOK, resp)
}

type dayResponse struct {
	Date    string                                 `json:"date"`
	Entries map[models.MealSlot][]models.MealEntry `json:"entries"`
	Slots   map[models.MealSlot]models.Totals      `json:"slot_totals"`
	Totals  models.Totals                          `json:"totals"`
}

func (s *Server) handleGetDay(w http.ResponseWriter, r *http.Request) {
	date := chi.URLParam(r, "date")

	slotTotals := make(map[models.MealSlot]models.Totals, len(models.Slots))
	for _, slot := range models.Slots {
		slotTotals[slot] = s.ledger.SlotTotals(date, slot)
	}

	s.writeJSON(w, http.StatusOK, dayResponse{
		Date:    date,
		Entries: s.ledger.EntriesForDate(date),
		Slots:   slotTotals,
		Totals:  s.ledger.TotalsForDate(date),
	})
}

func (s *Server) handleGetDayTotals(w http.ResponseWriter, r *http.Request) {
	date := chi.URLParam(r, "date")
	s.writeJSON(w, http.StatusOK, map[string]interface{}{
		"date":   date,
		"totals": s.ledger.TotalsForDate(date),
	})
}

func (s *Server) handleGetGoals(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, s.Goals())
}

func (s *Server) handlePutGoals(w http.ResponseWriter, r *http.Request) {
	var goals models.Goals
	if err := json.NewDecoder(r.Body).Decode(&goals); err != nil {
		http.Error(w, fmt.Sprintf("Invalid JSON: %v", err), http.StatusBadRequest)
		return
	}
	if goals.Calories <= 0 {
		http.Error(w, "daily calorie goal must be positive", http.StatusBadRequest)
		return
	}

	s.SetGoals(goals)
	s.writeJSON(w, http.StatusOK, goals)
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Error("failed to encode response", zap.Error(err))
	}
}
