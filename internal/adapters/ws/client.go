package ws

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"cattle-auction-service/internal/config"
	"cattle-auction-service/internal/ports/outbound"

	"github.com/alitto/pond"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
)

var (
	errClientStopped  = errors.New("client is stopped")
	errSendBufferFull = errors.New("client send channel is full")
	errServerBusy     = errors.New("too many pending requests on this connection")
)

// WsClient is one WebSocket connection. Requests are processed by a bounded
// worker pool, so replies may arrive out of order; request_id correlates
// them.
type WsClient struct {
	id         string
	conn       *websocket.Conn
	sendChan   chan *ServerMessage
	eventChan  chan outbound.Event
	ctx        context.Context
	cancel     context.CancelFunc
	handler    *WsHandler
	workerPool *pond.WorkerPool
	stopped    bool
	mu         sync.Mutex

	// session holds the participant name bound by connect
	sessionMu sync.Mutex
	name      string

	logger zerolog.Logger
}

type WsClientParams struct {
	Conn    *websocket.Conn
	Handler *WsHandler
	Logger  zerolog.Logger
}

// NewClient creates a new WebSocket client
func NewClient(params WsClientParams) *WsClient {
	ctx, cancel := context.WithCancel(context.Background())

	pool := pond.New(
		config.WSMaxWorkers,
		config.WSMaxCapacity,
		pond.Context(ctx),
		pond.Strategy(pond.Balanced()),
	)

	id := uuid.New().String()
	return &WsClient{
		id:         id,
		conn:       params.Conn,
		sendChan:   make(chan *ServerMessage, 100), // Buffered channel to handle multiple events
		eventChan:  make(chan outbound.Event, 100),
		ctx:        ctx,
		cancel:     cancel,
		handler:    params.Handler,
		workerPool: pool,
		logger:     params.Logger.With().Str("client_id", id).Logger(),
	}
}

func (client *WsClient) Start() {
	go client.messageSender()
	go client.messageReceiver()
}

// Stop closes the connection and stops the worker pool. It is safe to call
// more than once.
func (client *WsClient) Stop() {
	client.mu.Lock()
	defer client.mu.Unlock()

	// Prevent double closing
	if client.stopped {
		return
	}
	client.stopped = true

	client.cancel()
	client.conn.Close()

	// Stop the worker pool
	if client.workerPool != nil {
		client.workerPool.Stop()
	}
}

// Send queues a message for the connection
func (client *WsClient) Send(msg *ServerMessage) error {
	client.mu.Lock()
	if client.stopped {
		client.mu.Unlock()
		return errClientStopped
	}
	client.mu.Unlock()

	select {
	case client.sendChan <- msg:
		return nil
	default:
		// Channel is full, try to send with a timeout
		select {
		case client.sendChan <- msg:
			return nil
		case <-client.ctx.Done():
			return errClientStopped
		case <-time.After(100 * time.Millisecond):
			return errSendBufferFull
		}
	}
}

// SessionName returns the connected participant name, empty before connect
func (client *WsClient) SessionName() string {
	client.sessionMu.Lock()
	defer client.sessionMu.Unlock()
	return client.name
}

func (client *WsClient) messageSender() {
	for {
		select {
		case msg := <-client.sendChan:
			if err := client.conn.WriteJSON(msg); err != nil {
				client.logger.Error().Err(err).Msg("Failed to send message to client")
				client.cancel()
				return
			}
		case <-client.ctx.Done():
			return
		}
	}
}

func (client *WsClient) messageReceiver() {
	for {
		select {
		case <-client.ctx.Done():
			return
		default:
			_, message, err := client.conn.ReadMessage()
			if err != nil {
				if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure, websocket.CloseAbnormalClosure) {
					client.logger.Error().Err(err).Msg("WebSocket read error for client")
				} else {
					client.logger.Info().Str("error", err.Error()).Msg("WebSocket connection closed for client")
				}
				// Cancel context to notify handler about disconnection
				client.cancel()
				return
			}
			client.logger.Debug().Str("message", string(message)).Msg("Message received from client")

			submitted := client.workerPool.TrySubmit(func() {
				client.process(message)
			})
			if !submitted && client.ctx.Err() == nil {
				client.logger.Warn().Msg("Worker pool saturated, rejecting request")
				_ = client.Send(NewErrorMessage(errServerBusy, ""))
			}
		}
	}
}

// process handles one request and sends either its reply or an error reply
func (client *WsClient) process(data []byte) {
	requestID, err := client.handleMessage(data)
	if err == nil {
		return
	}

	client.logger.Debug().Err(err).Str("request_id", requestID).Msg("Request failed")
	if sendErr := client.Send(NewErrorMessage(err, requestID)); sendErr != nil {
		client.logger.Warn().Err(sendErr).Msg("Failed to send error reply")
	}
}

func (client *WsClient) handleMessage(data []byte) (string, error) {
	msg, err := ParseClientMessage(data)
	if err != nil {
		return "", err
	}

	// Validate the message
	if err := msg.Validate(); err != nil {
		return msg.RequestID, err
	}

	if msg.Type == MessageTypePing {
		return msg.RequestID, client.Send(NewServerMessage(MessageTypePong, msg.RequestID))
	}

	if client.handler == nil {
		return msg.RequestID, fmt.Errorf("handler not available")
	}
	return msg.RequestID, client.handler.HandleClientMessage(client, msg)
}
