package server

import (
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/rezhaque35/wifi-location-data-pipeline-sub002/internal/adapters/web/middleware"
)

// SetupRoutes builds the router for the positioning API.
func SetupRoutes(s *Server) http.Handler {
	r := mux.NewRouter()

	// Position calculation is the expensive path; cap per-client rate.
	positionLimiter := middleware.NewRateLimiter(60, 1*time.Minute)
	r.Handle("/api/v1/position",
		middleware.RateLimitMiddleware(positionLimiter)(http.HandlerFunc(s.PositionHandler.HandleCalculate))).
		Methods(http.MethodPost)

	// Reference database
	r.HandleFunc("/api/v1/accesspoints/stats", s.AccessPointHandler.HandleStats).Methods(http.MethodGet)
	r.HandleFunc("/api/v1/accesspoints/{mac}", s.AccessPointHandler.HandleGet).Methods(http.MethodGet)
	r.HandleFunc("/api/v1/accesspoints", s.AccessPointHandler.HandleUpsert).Methods(http.MethodPost)

	// Live calculation feed
	r.HandleFunc("/ws", s.WSManager.HandleWebSocket)

	r.Handle("/metrics", promhttp.Handler())
	r.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})

	return r
}
