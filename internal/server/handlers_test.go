// internal/server/handlers_test.go
package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"meal-ledger/internal/ledger"
	"meal-ledger/internal/models"
)

// stubExtractor returns canned items, or an error when items is nil.
type stubExtractor struct {
	items []models.NutrientItem
	calls int
}

func (e *stubExtractor) ExtractItems(ctx context.Context, text string) ([]models.NutrientItem, error) {
	e.calls++
	if e.items == nil {
		return nil, fmt.Errorf("no content")
	}
	return e.items, nil
}

func newTestServer(ex Extractor) *Server {
	cfg := &Config{Host: "127.0.0.1", Port: 0, AllowedOrigins: []string{"*"}}
	llm := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "not under test", http.StatusServiceUnavailable)
	})
	return New(cfg, ledger.New(), nil, ex, llm)
}

func postJSON(t *testing.T, h http.Handler, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	r := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	r.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, r)
	return w
}

func chickenExtractor() *stubExtractor {
	return &stubExtractor{items: []models.NutrientItem{
		{Name: "chicken breast", Calories: "200kcal", Protein: "40g", Fat: "5g", Carbohydrate: "0g"},
	}}
}

func TestLogMealScalesToSlotBudget(t *testing.T) {
	s := newTestServer(chickenExtractor())
	// 1200 kcal goal, 30/40/30: morning budget is 360.
	s.SetGoals(models.Goals{
		Calories: 1200,
		Split:    models.CalorieSplit{Morning: 30, Midday: 40, Evening: 30},
	})

	w := postJSON(t, s.Handler(), "/api/meals", `{"date":"2026-01-05","slot":"morning","text":"grilled chicken"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", w.Code, w.Body.String())
	}

	var resp logMealResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Budget != 360 {
		t.Errorf("budget = %v, want 360", resp.Budget)
	}
	if got := resp.Entry.Items[0].Calories; got != "360.0kcal" {
		t.Errorf("scaled calories = %q, want %q", got, "360.0kcal")
	}
	if resp.DayTotals.Calories != 360 {
		t.Errorf("day totals kcal = %v, want 360", resp.DayTotals.Calories)
	}
	if resp.Entry.Source != "ai_parsed" {
		t.Errorf("source = %q, want ai_parsed", resp.Entry.Source)
	}
	if resp.Entry.ID == "" {
		t.Error("entry ID is empty")
	}
}

func TestLogMealAccumulatesAcrossAppends(t *testing.T) {
	s := newTestServer(chickenExtractor())
	s.SetGoals(models.Goals{Calories: 1200, Split: models.CalorieSplit{Morning: 30, Midday: 40, Evening: 30}})

	for i := 0; i < 3; i++ {
		if w := postJSON(t, s.Handler(), "/api/meals", `{"date":"2026-01-05","slot":"morning","text":"chicken"}`); w.Code != http.StatusOK {
			t.Fatalf("append %d: status %d", i, w.Code)
		}
	}

	r := httptest.NewRequest(http.MethodGet, "/api/days/2026-01-05/totals", nil)
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, r)

	var resp struct {
		Totals models.Totals `json:"totals"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Totals.Calories != 1080 {
		t.Errorf("kcal after 3 appends = %v, want 1080", resp.Totals.Calories)
	}
}

func TestLogMealManualItemsSkipExtraction(t *testing.T) {
	ex := &stubExtractor{}
	s := newTestServer(ex)

	body := `{"date":"2026-01-05","slot":"evening","items":[{"name":"salmon","calories":"230kcal","protein":"25g"}]}`
	w := postJSON(t, s.Handler(), "/api/meals", body)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", w.Code, w.Body.String())
	}
	if ex.calls != 0 {
		t.Errorf("extractor called %d times for manual items", ex.calls)
	}

	var resp logMealResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Entry.Source != "manual" {
		t.Errorf("source = %q, want manual", resp.Entry.Source)
	}
}

func TestLogMealDefaultsToToday(t *testing.T) {
	s := newTestServer(chickenExtractor())
	w := postJSON(t, s.Handler(), "/api/meals", `{"slot":"midday","text":"chicken"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	var resp logMealResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if want := time.Now().Format("2006-01-02"); resp.Date != want {
		t.Errorf("date = %q, want %q", resp.Date, want)
	}
}

func TestLogMealUnknownSlot(t *testing.T) {
	s := newTestServer(chickenExtractor())
	w := postJSON(t, s.Handler(), "/api/meals", `{"slot":"brunch","text":"chicken"}`)
	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want %d", w.Code, http.StatusBadRequest)
	}
}

func TestLogMealExtractionFailureLeavesLedgerUntouched(t *testing.T) {
	s := newTestServer(&stubExtractor{}) // always fails
	w := postJSON(t, s.Handler(), "/api/meals", `{"date":"2026-01-05","slot":"morning","text":"???"}`)
	if w.Code != http.StatusBadGateway {
		t.Errorf("status = %d, want %d", w.Code, http.StatusBadGateway)
	}

	r := httptest.NewRequest(http.MethodGet, "/api/days/2026-01-05/totals", nil)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, r)
	var resp struct {
		Totals models.Totals `json:"totals"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Totals != (models.Totals{}) {
		t.Errorf("totals after failed extraction = %+v, want zero", resp.Totals)
	}
}

func TestGetDayListsEntriesBySlot(t *testing.T) {
	s := newTestServer(chickenExtractor())
	postJSON(t, s.Handler(), "/api/meals", `{"date":"2026-01-05","slot":"morning","text":"chicken"}`)
	postJSON(t, s.Handler(), "/api/meals", `{"date":"2026-01-05","slot":"morning","text":"more chicken"}`)

	r := httptest.NewRequest(http.MethodGet, "/api/days/2026-01-05", nil)
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, r)

	var resp dayResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got := len(resp.Entries[models.SlotMorning]); got != 2 {
		t.Errorf("morning entries = %d, want 2", got)
	}
	if got := len(resp.Entries[models.SlotEvening]); got != 0 {
		t.Errorf("evening entries = %d, want 0", got)
	}
}

func TestGoalsRoundTrip(t *testing.T) {
	s := newTestServer(chickenExtractor())

	put := httptest.NewRequest(http.MethodPut, "/api/goals",
		strings.NewReader(`{"calories":1500,"protein_g":120,"fat_g":50,"carbohydrate_g":180,"split":{"morning":25,"midday":45,"evening":30}}`))
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, put)
	if w.Code != http.StatusOK {
		t.Fatalf("PUT status = %d", w.Code)
	}

	r := httptest.NewRequest(http.MethodGet, "/api/goals", nil)
	w = httptest.NewRecorder()
	s.Handler().ServeHTTP(w, r)

	var goals models.Goals
	if err := json.Unmarshal(w.Body.Bytes(), &goals); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if goals.Calories != 1500 || goals.Split.Midday != 45 {
		t.Errorf("goals = %+v", goals)
	}
}

func TestPutGoalsRejectsNonPositiveCalories(t *testing.T) {
	s := newTestServer(chickenExtractor())
	put := httptest.NewRequest(http.MethodPut, "/api/goals", strings.NewReader(`{"calories":0}`))
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, put)
	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want %d", w.Code, http.StatusBadRequest)
	}
}

func TestGoalsSplitNotSummingTo100Accepted(t *testing.T) {
	s := newTestServer(chickenExtractor())
	put := httptest.NewRequest(http.MethodPut, "/api/goals",
		strings.NewReader(`{"calories":1000,"split":{"morning":30,"midday":30,"evening":30}}`))
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, put)
	if w.Code != http.StatusOK {
		t.Fatalf("split summing to 90 rejected: status %d", w.Code)
	}

	// Budget uses the split as given, no renormalization.
	mw := postJSON(t, s.Handler(), "/api/meals", `{"date":"2026-01-05","slot":"morning","text":"chicken"}`)
	var resp logMealResponse
	if err := json.Unmarshal(mw.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Budget != 300 {
		t.Errorf("budget = %v, want 300", resp.Budget)
	}
}
