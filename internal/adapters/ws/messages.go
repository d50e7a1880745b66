package ws

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"cattle-auction-service/internal/domain/shared"
	"cattle-auction-service/internal/ports/outbound"
)

type MessageType string

const (
	// Client to Server message types
	MessageTypeConnect    MessageType = "connect"
	MessageTypeDisconnect MessageType = "disconnect"
	MessageTypeListLots   MessageType = "list_lots"
	MessageTypePlaceBid   MessageType = "place_bid"
	MessageTypePing       MessageType = "ping"

	// Server to Client replies
	MessageTypeConnected    MessageType = "connected"
	MessageTypeDisconnected MessageType = "disconnected"
	MessageTypeLots         MessageType = "lots"
	MessageTypeBidAccepted  MessageType = "bid_accepted"
	MessageTypeError        MessageType = "error"
	MessageTypePong         MessageType = "pong"

	// Server to Client pushed events
	MessageTypeLotCreated   MessageType = "lot_created"
	MessageTypeBidPlaced    MessageType = "bid_placed"
	MessageTypeLotClosed    MessageType = "lot_closed"
	MessageTypeLotWithdrawn MessageType = "lot_withdrawn"
	MessageTypeLotUpdate    MessageType = "lot_update"
)

type ClientMessage struct {
	Type      MessageType            `json:"type"`
	RequestID string                 `json:"request_id,omitempty"`
	Data      map[string]interface{} `json:"data,omitempty"`
	Timestamp int64                  `json:"timestamp"`
}

// ServerMessage represents a message sent from server to client
type ServerMessage struct {
	Type      MessageType            `json:"type"`
	RequestID string                 `json:"request_id,omitempty"`
	Sequence  uint64                 `json:"sequence,omitempty"`
	LotID     *int                   `json:"lot_id,omitempty"`
	Data      map[string]interface{} `json:"data,omitempty"`
	Error     *ErrorBody             `json:"error,omitempty"`
	Timestamp int64                  `json:"timestamp"`
}

// ErrorBody carries the discriminated failure of a request
type ErrorBody struct {
	Kind    shared.ErrorKind `json:"kind"`
	Message string           `json:"message"`
}

func NewServerMessage(msgType MessageType, requestID string) *ServerMessage {
	return &ServerMessage{
		Type:      msgType,
		RequestID: requestID,
		Data:      make(map[string]interface{}),
		Timestamp: time.Now().Unix(),
	}
}

func NewErrorMessage(err error, requestID string) *ServerMessage {
	return &ServerMessage{
		Type:      MessageTypeError,
		RequestID: requestID,
		Error: &ErrorBody{
			Kind:    shared.KindOf(err),
			Message: err.Error(),
		},
		Timestamp: time.Now().Unix(),
	}
}

// NewEventMessage converts a broadcast lot event to a pushed message
func NewEventMessage(event outbound.Event) *ServerMessage {
	msgType := MessageTypeLotUpdate
	switch event.Type {
	case outbound.EventTypeLotCreated:
		msgType = MessageTypeLotCreated
	case outbound.EventTypeBidPlaced:
		msgType = MessageTypeBidPlaced
	case outbound.EventTypeLotClosed:
		msgType = MessageTypeLotClosed
	case outbound.EventTypeLotWithdrawn:
		msgType = MessageTypeLotWithdrawn
	}

	lotID := event.LotID
	return &ServerMessage{
		Type:      msgType,
		Sequence:  event.Sequence,
		LotID:     &lotID,
		Data:      event.Data,
		Timestamp: event.Timestamp,
	}
}

// ParseClientMessage parses a JSON message from client. Numbers are kept as
// json.Number so amounts reach the decimal parser unchanged.
func ParseClientMessage(data []byte) (*ClientMessage, error) {
	var msg ClientMessage
	decoder := json.NewDecoder(bytes.NewReader(data))
	decoder.UseNumber()
	if err := decoder.Decode(&msg); err != nil {
		return nil, fmt.Errorf("%w: failed to parse client message: %v", shared.ErrInvalidInput, err)
	}

	// Validate required fields
	if msg.Type == "" {
		return nil, shared.ErrMessageTypeRequired
	}

	return &msg, nil
}

// Validate validates a client message
func (m *ClientMessage) Validate() error {
	switch m.Type {
	case MessageTypeConnect:
		if _, err := m.stringField("name"); err != nil {
			return err
		}
	case MessageTypePlaceBid:
		if _, err := m.stringField("lot_id"); err != nil {
			return err
		}
		if _, err := m.stringField("amount"); err != nil {
			return err
		}
	case MessageTypeDisconnect, MessageTypeListLots, MessageTypePing:

	default:
		return fmt.Errorf("%w: %q", shared.ErrUnknownMessageType, m.Type)
	}

	return nil
}

// stringField returns a data field as text. JSON numbers are accepted and
// keep their literal form.
func (m *ClientMessage) stringField(key string) (string, error) {
	raw, ok := m.Data[key]
	if !ok || raw == nil {
		return "", fmt.Errorf("%w: %s is required", shared.ErrInvalidInput, key)
	}

	var value string
	switch v := raw.(type) {
	case string:
		value = v
	case json.Number:
		value = v.String()
	case float64:
		value = fmt.Sprintf("%v", v)
	default:
		return "", fmt.Errorf("%w: %s must be a string or number", shared.ErrInvalidInput, key)
	}

	if strings.TrimSpace(value) == "" {
		return "", fmt.Errorf("%w: %s is required", shared.ErrInvalidInput, key)
	}
	return value, nil
}
