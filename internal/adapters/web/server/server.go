// Package server wires the HTTP surface of the positioning service.
package server

import (
	"context"
	"log"
	"net/http"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/rezhaque35/wifi-location-data-pipeline-sub002/internal/adapters/web/handlers"
	"github.com/rezhaque35/wifi-location-data-pipeline-sub002/internal/adapters/web/websocket"
	"github.com/rezhaque35/wifi-location-data-pipeline-sub002/internal/core/ports"
)

// Server handles HTTP and WebSocket connections.
type Server struct {
	Addr string

	PositionHandler    *handlers.PositionHandler
	AccessPointHandler *handlers.AccessPointHandler
	WSManager          *websocket.WSManager

	srv *http.Server
}

// NewServer creates a web server over the positioning service and the
// reference database.
func NewServer(addr string, positions ports.PositionService, store handlers.APStore, wsManager *websocket.WSManager) *Server {
	return &Server{
		Addr:               addr,
		PositionHandler:    handlers.NewPositionHandler(positions),
		AccessPointHandler: handlers.NewAccessPointHandler(store),
		WSManager:          wsManager,
	}
}

// Run starts the server and the websocket broadcaster, blocking until
// the context is cancelled.
func (s *Server) Run(ctx context.Context) error {
	s.WSManager.Start(ctx)

	handler := SetupRoutes(s)
	instrumentedHandler := otelhttp.NewHandler(handler, "wifipos-server")

	s.srv = &http.Server{
		Addr:              s.Addr,
		Handler:           instrumentedHandler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		log.Println("Web server shutting down...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := s.srv.Shutdown(shutdownCtx); err != nil {
			log.Printf("Web server shutdown error: %v", err)
		}
	}()

	log.Printf("Web server listening on %s", s.Addr)
	if err := s.srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}
