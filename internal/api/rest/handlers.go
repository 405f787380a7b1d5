package rest

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/fortuna/fastbreak/internal/dataset"
	"github.com/fortuna/fastbreak/internal/pipeline"
)

// Handler contains dependencies for HTTP handlers.
type Handler struct {
	svc              *pipeline.Service
	defaultStartYear int
	defaultEndYear   int
}

// NewHandler creates a new handler.
func NewHandler(svc *pipeline.Service, defaultStartYear, defaultEndYear int) *Handler {
	return &Handler{svc: svc, defaultStartYear: defaultStartYear, defaultEndYear: defaultEndYear}
}

// HealthCheck handles health check requests.
func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{
		"status":  "healthy",
		"service": "fastbreak",
	})
}

// GetTeams returns the team dataset, optionally filtered by year.
func (h *Handler) GetTeams(w http.ResponseWriter, r *http.Request) {
	result := h.svc.Result()
	if result == nil {
		respondError(w, http.StatusNotFound, "No completed run yet", nil)
		return
	}

	year, ok, err := queryYear(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid year", err)
		return
	}

	teams := result.Teams
	if ok {
		filtered := make([]dataset.TeamSeasonRecord, 0, 32)
		for _, rec := range teams {
			if rec.Year == year {
				filtered = append(filtered, rec)
			}
		}
		teams = filtered
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"count": len(teams),
		"teams": teams,
	})
}

// GetPlayers returns the player dataset, optionally filtered by year
// and/or team code.
func (h *Handler) GetPlayers(w http.ResponseWriter, r *http.Request) {
	result := h.svc.Result()
	if result == nil {
		respondError(w, http.StatusNotFound, "No completed run yet", nil)
		return
	}

	year, filterYear, err := queryYear(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid year", err)
		return
	}
	team := r.URL.Query().Get("team")

	players := make([]dataset.PlayerRecord, 0, len(result.Players))
	for _, rec := range result.Players {
		if filterYear && rec.Year != year {
			continue
		}
		if team != "" && rec.Team != team {
			continue
		}
		players = append(players, rec)
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"count":   len(players),
		"players": players,
	})
}

// GetTrends returns the fitted per-team trends.
func (h *Handler) GetTrends(w http.ResponseWriter, r *http.Request) {
	result := h.svc.Result()
	if result == nil {
		respondError(w, http.StatusNotFound, "No completed run yet", nil)
		return
	}
	if result.Trends == nil {
		respondError(w, http.StatusNotFound, "Latest run has no trend fit", nil)
		return
	}
	respondJSON(w, http.StatusOK, result.Trends)
}

type apiRunRequest struct {
	StartYear int `json:"start_year"`
	EndYear   int `json:"end_year"`
}

// StartRun handles POST /api/v1/runs.
func (h *Handler) StartRun(w http.ResponseWriter, r *http.Request) {
	req := apiRunRequest{StartYear: h.defaultStartYear, EndYear: h.defaultEndYear}
	if r.Body != nil && r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			respondError(w, http.StatusBadRequest, "Invalid request body", err)
			return
		}
	}

	run, err := h.svc.Start(req.StartYear, req.EndYear)
	if err != nil {
		respondError(w, http.StatusConflict, "Failed to start run", err)
		return
	}

	respondJSON(w, http.StatusAccepted, map[string]interface{}{"run": run})
}

// RunStatus handles GET /api/v1/runs/status.
func (h *Handler) RunStatus(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, h.svc.Status())
}

func queryYear(r *http.Request) (int, bool, error) {
	raw := r.URL.Query().Get("year")
	if raw == "" {
		return 0, false, nil
	}
	year, err := strconv.Atoi(raw)
	if err != nil {
		return 0, false, err
	}
	return year, true, nil
}

// respondJSON writes a JSON response.
func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// respondError writes an error response.
func respondError(w http.ResponseWriter, status int, message string, err error) {
	response := map[string]interface{}{
		"error":  message,
		"status": status,
	}
	if err != nil {
		response["details"] = err.Error()
	}
	respondJSON(w, status, response)
}
