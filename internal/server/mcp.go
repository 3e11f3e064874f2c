// internal/server/mcp.go
package server

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/ThinkInAIXYZ/go-mcp/protocol"
	"go.uber.org/zap"

	"meal-ledger/internal/logger"
	"meal-ledger/internal/models"
)

// MCP tool surface: the same ledger operations, callable by an MCP client.
// Tools are dispatched by hand from a single POST handler rather than
// through a transport-bound MCP server.

type logMealToolParams struct {
	Description string `json:"description" description:"Free-form description of the meal eaten"`
	Slot        string `json:"slot" description:"Meal slot: morning, midday or evening"`
	Date        string `json:"date,omitempty" description:"Ledger date (YYYY-MM-DD), defaults to today"`
}

type dayTotalsToolParams struct {
	Date string `json:"date" description:"Ledger date to total (YYYY-MM-DD)"`
}

// extractParams safely extracts parameters from the request arguments
func extractParams(req *protocol.CallToolRequest, target interface{}) error {
	jsonBytes, err := json.Marshal(req.Arguments)
	if err != nil {
		return fmt.Errorf("failed to marshal arguments: %w", err)
	}

	if err := json.Unmarshal(jsonBytes, target); err != nil {
		return fmt.Errorf("failed to unmarshal parameters: %w", err)
	}

	return nil
}

func (s *Server) handleMCP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	var request protocol.CallToolRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		http.Error(w, fmt.Sprintf("Invalid JSON: %v", err), http.StatusBadRequest)
		return
	}

	var result *protocol.CallToolResult
	var err error

	switch request.Name {
	case "log_meal":
		result, err = s.toolLogMeal(r, &request)
	case "get_day_totals":
		result, err = s.toolDayTotals(&request)
	default:
		http.Error(w, fmt.Sprintf("Unknown tool: %s", request.Name), http.StatusNotFound)
		return
	}

	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	if encErr := json.NewEncoder(w).Encode(result); encErr != nil {
		logger.Error("failed to encode tool response", zap.Error(encErr))
	}
}

func (s *Server) toolLogMeal(r *http.Request, req *protocol.CallToolRequest) (*protocol.CallToolResult, error) {
	var params logMealToolParams
	if err := extractParams(req, &params); err != nil {
		return nil, fmt.Errorf("invalid parameters: %w", err)
	}

	if params.Description == "" {
		return nil, fmt.Errorf("meal description is required")
	}
	slot := models.MealSlot(params.Slot)
	if !slot.Valid() {
		return nil, fmt.Errorf("unknown slot: %q", params.Slot)
	}

	resp, err := s.logMeal(r.Context(), logMealRequest{
		Date: params.Date,
		Slot: slot,
		Text: params.Description,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to log meal: %w", err)
	}

	return createJSONResponse(resp)
}

func (s *Server) toolDayTotals(req *protocol.CallToolRequest) (*protocol.CallToolResult, error) {
	var params dayTotalsToolParams
	if err := extractParams(req, &params); err != nil {
		return nil, fmt.Errorf("invalid parameters: %w", err)
	}

	if params.Date == "" {
		return nil, fmt.Errorf("date is required")
	}

	return createJSONResponse(map[string]interface{}{
		"date":   params.Date,
		"totals": s.ledger.TotalsForDate(params.Date),
	})
}

func createJSONResponse(data interface{}) (*protocol.CallToolResult, error) {
	jsonBytes, err := json.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal response: %w", err)
	}

	return &protocol.CallToolResult{
		Content: []protocol.Content{
			protocol.TextContent{
				Type: "text",
				Text: string(jsonBytes),
			},
		},
	}, nil
}
