package handlers

import (
	"context"
	"encoding/json"
	"log"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/rezhaque35/wifi-location-data-pipeline-sub002/internal/core/domain"
)

// APStore is the slice of the reference database the access point
// endpoints need.
type APStore interface {
	FindByMAC(ctx context.Context, mac string) (*domain.WifiAccessPoint, error)
	SaveAccessPoints(aps []domain.WifiAccessPoint) error
	CountByStatus() (map[domain.APStatus]int64, error)
}

// AccessPointHandler serves the reference database endpoints.
type AccessPointHandler struct {
	store APStore
}

// NewAccessPointHandler creates a handler over the given store.
func NewAccessPointHandler(store APStore) *AccessPointHandler {
	return &AccessPointHandler{store: store}
}

// HandleGet handles GET /api/v1/accesspoints/{mac}.
func (h *AccessPointHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	mac := domain.NormalizeMAC(mux.Vars(r)["mac"])
	if mac == "" {
		writeError(w, http.StatusBadRequest, "INVALID_MAC", "not a valid MAC address", nil)
		return
	}

	ap, err := h.store.FindByMAC(r.Context(), mac)
	if err != nil {
		log.Printf("access point lookup failed: %v", err)
		writeError(w, http.StatusInternalServerError, "INTERNAL", "internal error", nil)
		return
	}
	if ap == nil {
		writeError(w, http.StatusNotFound, "NOT_FOUND", "access point not known", nil)
		return
	}

	writeJSON(w, http.StatusOK, ap)
}

// HandleUpsert handles POST /api/v1/accesspoints with a JSON array of
// access point records.
func (h *AccessPointHandler) HandleUpsert(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var aps []domain.WifiAccessPoint
	if err := json.NewDecoder(r.Body).Decode(&aps); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_REQUEST", "invalid JSON body", nil)
		return
	}
	if len(aps) == 0 {
		writeError(w, http.StatusBadRequest, "INVALID_REQUEST", "empty access point list", nil)
		return
	}

	for i := range aps {
		mac := domain.NormalizeMAC(aps[i].MACAddress)
		if mac == "" {
			writeError(w, http.StatusBadRequest, "INVALID_MAC", "not a valid MAC address: "+aps[i].MACAddress, nil)
			return
		}
		aps[i].MACAddress = mac
	}

	if err := h.store.SaveAccessPoints(aps); err != nil {
		log.Printf("access point upsert failed: %v", err)
		writeError(w, http.StatusInternalServerError, "INTERNAL", "internal error", nil)
		return
	}

	writeJSON(w, http.StatusOK, map[string]int{"saved": len(aps)})
}

// HandleStats handles GET /api/v1/accesspoints/stats.
func (h *AccessPointHandler) HandleStats(w http.ResponseWriter, r *http.Request) {
	counts, err := h.store.CountByStatus()
	if err != nil {
		log.Printf("access point stats failed: %v", err)
		writeError(w, http.StatusInternalServerError, "INTERNAL", "internal error", nil)
		return
	}

	total := int64(0)
	byStatus := make(map[string]int64, len(counts))
	for status, n := range counts {
		byStatus[string(status)] = n
		total += n
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"total":    total,
		"byStatus": byStatus,
	})
}
