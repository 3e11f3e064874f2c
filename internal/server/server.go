// internal/server/server.go
package server

import (
	"context"
	"fmt"
	"net/http"
	"sync"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"meal-ledger/internal/ledger"
	"meal-ledger/internal/models"
)

type Config struct {
	Host           string
	Port           int
	AllowedOrigins []string
}

// Extractor is the external language-model collaborator: free text in,
// nutrient items or a failure out.
type Extractor interface {
	ExtractItems(ctx context.Context, text string) ([]models.NutrientItem, error)
}

// Server owns the ledger for the lifetime of the process and exposes it
// over REST and an MCP tool surface. The journal, when present, records
// every append so the ledger survives restarts.
type Server struct {
	httpServer *http.Server
	router     *chi.Mux
	ledger     *ledger.Ledger
	journal    *ledger.Journal
	extractor  Extractor

	goalsMu sync.RWMutex
	goals   models.Goals
}

// defaultGoals is a plausible starting configuration until the user saves
// their own. Nothing enforces that a user-provided split sums to 100.
var defaultGoals = models.Goals{
	Calories:      1800,
	ProteinG:      100,
	FatG:          60,
	CarbohydrateG: 250,
	Split:         models.CalorieSplit{Morning: 30, Midday: 40, Evening: 30},
}

// New wires the router. journal may be nil (in-memory only); llmProxy
// handles the credential-hiding prompt forwarding.
func New(cfg *Config, led *ledger.Ledger, journal *ledger.Journal, extractor Extractor, llmProxy http.Handler) *Server {
	s := &Server{
		ledger:    led,
		journal:   journal,
		extractor: extractor,
		goals:     defaultGoals,
	}

	r := chi.NewRouter()
	r.Use(chimiddleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: cfg.AllowedOrigins,
		AllowedMethods: []string{"GET", "POST", "PUT", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))

	r.Post("/api/llm", llmProxy.ServeHTTP)
	r.Post("/api/meals", s.handleLogMeal)
	r.Get("/api/days/{date}", s.handleGetDay)
	r.Get("/api/days/{date}/totals", s.handleGetDayTotals)
	r.Get("/api/goals", s.handleGetGoals)
	r.Put("/api/goals", s.handlePutGoals)
	r.Post("/mcp", s.handleMCP)

	s.router = r
	s.httpServer = &http.Server{
		Addr:    fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Handler: r,
	}

	return s
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) Start(ctx context.Context) error {
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

func (s *Server) Stop() error {
	if s.journal != nil {
		s.journal.Close()
	}
	if s.httpServer != nil {
		return s.httpServer.Shutdown(context.Background())
	}
	return nil
}

// Goals returns a snapshot of the current goal configuration.
func (s *Server) Goals() models.Goals {
	s.goalsMu.RLock()
	defer s.goalsMu.RUnlock()
	return s.goals
}

// SetGoals replaces the goal configuration. The calorie split is stored as
// given: a split that does not sum to 100 simply under- or over-spends the
// daily goal.
func (s *Server) SetGoals(g models.Goals) {
	s.goalsMu.Lock()
	defer s.goalsMu.Unlock()
	s.goals = g
}
