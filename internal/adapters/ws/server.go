package ws

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"cattle-auction-service/internal/config"
	"cattle-auction-service/internal/ports/inbound"
	"cattle-auction-service/internal/ports/outbound"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
)

const serviceName = "cattle-auction"

type Server struct {
	handler        *WsHandler
	auctionService inbound.AuctionService
	httpServer     *http.Server
	mux            *http.ServeMux
	config         *config.Config
	logger         zerolog.Logger
}

type ServerParams struct {
	Config         *config.Config
	AuctionService inbound.AuctionService
	Broadcaster    outbound.Broadcaster
	// MetricsHandler is mounted on /metrics when set
	MetricsHandler http.Handler
	Logger         zerolog.Logger
}

func NewServer(params ServerParams) *Server {
	handler := NewHandler(WsHandlerParams{
		Upgrader: websocket.Upgrader{
			ReadBufferSize:  params.Config.WebSocket.ReadBufferSize,
			WriteBufferSize: params.Config.WebSocket.WriteBufferSize,
			// Bidding front-ends are served from other origins
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		AuctionService: params.AuctionService,
		Broadcaster:    params.Broadcaster,
		Logger:         params.Logger,
	})

	s := &Server{
		handler:        handler,
		auctionService: params.AuctionService,
		config:         params.Config,
		logger:         params.Logger.With().Str("component", "http_server").Logger(),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/ws", handler.HandleWebSocket)
	mux.HandleFunc("/health", s.handleHealth)
	mux.HandleFunc("/lots", s.handleLots)
	if params.MetricsHandler != nil {
		mux.Handle("/metrics", params.MetricsHandler)
	}
	s.mux = mux

	s.httpServer = &http.Server{
		Addr:         params.Config.GetServerAddress(),
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Minute,
	}

	return s
}

// Handler returns the routing handler, used by tests
func (s *Server) Handler() http.Handler {
	return s.mux
}

// Start starts the HTTP and WebSocket server
func (s *Server) Start() error {
	s.logger.Info().Str("addr", s.httpServer.Addr).Msg("Starting WebSocket server")

	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("failed to start WebSocket server: %w", err)
	}

	return nil
}

// Stop gracefully stops the server and closes open WebSocket connections
func (s *Server) Stop(ctx context.Context) error {
	s.logger.Info().Msg("Stopping WebSocket server...")

	// Shutdown does not track hijacked connections
	s.handler.CloseAll()

	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("failed to shutdown WebSocket server: %w", err)
	}

	s.logger.Info().Msg("WebSocket server stopped")
	return nil
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	stats := s.auctionService.Stats(r.Context())
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":       "ok",
		"service":      serviceName,
		"lots":         stats.Lots,
		"open_lots":    stats.OpenLots,
		"participants": stats.Participants,
		"clients":      s.handler.GetConnectedClients(),
	})
}

func (s *Server) handleLots(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", http.MethodGet)
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}

	lots := s.auctionService.ListLots(r.Context())
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"lots":  lots,
		"count": len(lots),
	})
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
