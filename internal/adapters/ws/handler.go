package ws

import (
	"context"
	"fmt"
	"net/http"
	"sync"

	"cattle-auction-service/internal/domain/shared"
	"cattle-auction-service/internal/ports/inbound"
	"cattle-auction-service/internal/ports/outbound"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
)

// WsHandler manages WebSocket connections and message routing
type WsHandler struct {
	clients        map[string]*WsClient // clientID -> Client
	clientsMu      sync.RWMutex
	upgrader       websocket.Upgrader
	auctionService inbound.AuctionService
	broadcaster    outbound.Broadcaster
	logger         zerolog.Logger
}

type WsHandlerParams struct {
	Upgrader       websocket.Upgrader
	AuctionService inbound.AuctionService
	Broadcaster    outbound.Broadcaster
	Logger         zerolog.Logger
}

// NewHandler creates a new WebSocket handler
func NewHandler(params WsHandlerParams) *WsHandler {
	return &WsHandler{
		clients:        make(map[string]*WsClient),
		upgrader:       params.Upgrader,
		auctionService: params.AuctionService,
		broadcaster:    params.Broadcaster,
		logger:         params.Logger.With().Str("component", "ws_handler").Logger(),
	}
}

// HandleWebSocket handles WebSocket connection upgrades
func (handler *WsHandler) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	// Upgrade HTTP connection to WebSocket
	conn, err := handler.upgrader.Upgrade(w, r, nil)
	if err != nil {
		handler.logger.Error().Err(err).Msg("Failed to upgrade WebSocket connection")
		return
	}

	client := NewClient(WsClientParams{
		Conn:    conn,
		Handler: handler,
		Logger:  handler.logger,
	})

	handler.registerClient(client)

	// Every connection follows the lot event stream
	if handler.broadcaster != nil {
		if err := handler.broadcaster.Subscribe(r.Context(), client.id, client.eventChan); err != nil {
			handler.logger.Error().Err(err).Str("client_id", client.id).Msg("Failed to subscribe client to lot events")
		}
	}

	// Start client message handling
	client.Start()

	go handler.listenForClientEvents(client)

	// Wait for client to disconnect
	go func() {
		<-client.ctx.Done()
		handler.unregisterClient(client)
	}()

	handler.logger.Info().Str("client_id", client.id).Str("remote_addr", r.RemoteAddr).Msg("WebSocket client connected")
}

func (handler *WsHandler) registerClient(client *WsClient) {
	handler.clientsMu.Lock()
	defer handler.clientsMu.Unlock()
	handler.clients[client.id] = client
	handler.logger.Debug().Str("client_id", client.id).Int("total_clients", len(handler.clients)).Msg("Client registered")
}

// unregisterClient stops the client and releases its participant name
func (handler *WsHandler) unregisterClient(client *WsClient) {
	handler.clientsMu.Lock()
	delete(handler.clients, client.id)
	total := len(handler.clients)
	handler.clientsMu.Unlock()

	client.Stop()

	if handler.broadcaster != nil {
		if err := handler.broadcaster.Unsubscribe(context.Background(), client.id); err != nil {
			handler.logger.Warn().Err(err).Str("client_id", client.id).Msg("Failed to unsubscribe client from lot events")
		}
	}

	client.sessionMu.Lock()
	name := client.name
	client.name = ""
	client.sessionMu.Unlock()
	if name != "" {
		handler.auctionService.Disconnect(context.Background(), name)
	}

	handler.logger.Info().Str("client_id", client.id).Str("participant", name).Int("total_clients", total).Msg("WebSocket client disconnected")
}

// listenForClientEvents forwards broadcast lot events to the connection
func (handler *WsHandler) listenForClientEvents(client *WsClient) {
	for {
		select {
		case event, ok := <-client.eventChan:
			if !ok {
				return
			}
			if err := client.Send(NewEventMessage(event)); err != nil {
				handler.logger.Warn().Err(err).Str("client_id", client.id).Str("event_type", string(event.Type)).Msg("Failed to send event to WebSocket client")
			}

		case <-client.ctx.Done():
			return
		}
	}
}

func (handler *WsHandler) HandleClientMessage(client *WsClient, msg *ClientMessage) error {
	switch msg.Type {
	case MessageTypeConnect:
		return handler.handleConnect(client, msg)

	case MessageTypeDisconnect:
		return handler.handleDisconnect(client, msg)

	case MessageTypeListLots:
		return handler.handleListLots(client, msg)

	case MessageTypePlaceBid:
		return handler.handlePlaceBid(client, msg)

	default:
		handler.logger.Warn().Str("client_id", client.id).Str("message_type", string(msg.Type)).Msg("Unknown message type from client")
		return shared.ErrUnknownMessageType
	}
}

// GetConnectedClients returns the number of open connections
func (handler *WsHandler) GetConnectedClients() int {
	handler.clientsMu.RLock()
	defer handler.clientsMu.RUnlock()
	return len(handler.clients)
}

// CloseAll stops every open connection
func (handler *WsHandler) CloseAll() {
	handler.clientsMu.RLock()
	clients := make([]*WsClient, 0, len(handler.clients))
	for _, client := range handler.clients {
		clients = append(clients, client)
	}
	handler.clientsMu.RUnlock()

	for _, client := range clients {
		client.Stop()
	}
}

// handleConnect binds a participant name to the connection
func (handler *WsHandler) handleConnect(client *WsClient, msg *ClientMessage) error {
	name, err := msg.stringField("name")
	if err != nil {
		return err
	}

	client.sessionMu.Lock()
	defer client.sessionMu.Unlock()

	if client.name != "" {
		return fmt.Errorf("%w: connection is bound to %q", shared.ErrAlreadyConnected, client.name)
	}
	if err := handler.auctionService.Connect(context.Background(), name); err != nil {
		return err
	}
	client.name = name

	response := NewServerMessage(MessageTypeConnected, msg.RequestID)
	response.Data["name"] = name

	handler.logger.Info().Str("client_id", client.id).Str("participant", name).Msg("Participant bound to connection")
	return client.Send(response)
}

// handleDisconnect releases the bound name; the socket stays open
func (handler *WsHandler) handleDisconnect(client *WsClient, msg *ClientMessage) error {
	client.sessionMu.Lock()
	name := client.name
	if name != "" {
		handler.auctionService.Disconnect(context.Background(), name)
		client.name = ""
	}
	client.sessionMu.Unlock()

	response := NewServerMessage(MessageTypeDisconnected, msg.RequestID)
	response.Data["name"] = name
	return client.Send(response)
}

// handleListLots replies with every lot
func (handler *WsHandler) handleListLots(client *WsClient, msg *ClientMessage) error {
	lots := handler.auctionService.ListLots(context.Background())

	response := NewServerMessage(MessageTypeLots, msg.RequestID)
	response.Data["lots"] = lots
	response.Data["count"] = len(lots)
	return client.Send(response)
}

// handlePlaceBid bids on behalf of the connected participant
func (handler *WsHandler) handlePlaceBid(client *WsClient, msg *ClientMessage) error {
	bidder := client.SessionName()
	if bidder == "" {
		return fmt.Errorf("%w: send connect before bidding", shared.ErrNotConnected)
	}

	lotID, err := msg.stringField("lot_id")
	if err != nil {
		return err
	}
	amount, err := msg.stringField("amount")
	if err != nil {
		return err
	}

	updated, err := handler.auctionService.PlaceBid(context.Background(), inbound.PlaceBidRequest{
		LotID:  lotID,
		Amount: amount,
		Bidder: bidder,
	})
	if err != nil {
		return err
	}

	response := NewServerMessage(MessageTypeBidAccepted, msg.RequestID)
	id := updated.ID
	response.LotID = &id
	response.Data["lot"] = updated

	handler.logger.Info().
		Str("client_id", client.id).
		Str("bidder", bidder).
		Int("lot_id", updated.ID).
		Str("amount", updated.CurrentBidAmount.StringFixed(2)).
		Msg("Bid accepted over WebSocket")
	return client.Send(response)
}
