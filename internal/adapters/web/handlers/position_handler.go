// Package handlers holds the HTTP handlers for the positioning API.
package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/rezhaque35/wifi-location-data-pipeline-sub002/internal/core/domain"
	"github.com/rezhaque35/wifi-location-data-pipeline-sub002/internal/core/ports"
)

// PositionRequest is the body of a position calculation request.
type PositionRequest struct {
	WifiScanResults []domain.WifiScanResult `json:"wifiScanResults"`
}

// PositionResponse carries the computed position together with the
// calculation trace.
type PositionResponse struct {
	Position        *domain.Position        `json:"position,omitempty"`
	CalculationInfo *domain.CalculationInfo `json:"calculationInfo,omitempty"`
}

type errorResponse struct {
	Error           string                  `json:"error"`
	Code            string                  `json:"code"`
	CalculationInfo *domain.CalculationInfo `json:"calculationInfo,omitempty"`
}

// PositionHandler serves position calculation requests.
type PositionHandler struct {
	service ports.PositionService
}

// NewPositionHandler creates a handler backed by the given service.
func NewPositionHandler(service ports.PositionService) *PositionHandler {
	return &PositionHandler{service: service}
}

// HandleCalculate handles POST /api/v1/position.
func (h *PositionHandler) HandleCalculate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req PositionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_REQUEST", "invalid JSON body", nil)
		return
	}

	pos, info, err := h.service.Locate(r.Context(), req.WifiScanResults)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrInvalidInput):
			writeError(w, http.StatusBadRequest, "INVALID_REQUEST", err.Error(), info)
		case errors.Is(err, domain.ErrNoMatchingAPs):
			writeError(w, http.StatusNotFound, "NO_MATCHING_APS", err.Error(), info)
		case errors.Is(err, domain.ErrNoPosition):
			writeError(w, http.StatusNotFound, "NO_POSITION", err.Error(), info)
		default:
			log.Printf("position calculation failed: %v", err)
			writeError(w, http.StatusInternalServerError, "INTERNAL", "internal error", nil)
		}
		return
	}

	writeJSON(w, http.StatusOK, PositionResponse{Position: pos, CalculationInfo: info})
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("encode response: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, code, msg string, info *domain.CalculationInfo) {
	writeJSON(w, status, errorResponse{Error: msg, Code: code, CalculationInfo: info})
}
