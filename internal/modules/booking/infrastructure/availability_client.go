package infrastructure

import (
	"encoding/json"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const (
	streamWriteWait  = 5 * time.Second
	streamPongWait   = 60 * time.Second
	streamPingPeriod = 30 * time.Second
	streamReadLimit  = 1 << 12
)

// StreamCommand is the only inbound frame the stream understands.
type StreamCommand struct {
	Action string `json:"action"`
}

// StreamClient is one websocket connection following a restaurant's availability.
type StreamClient struct {
	hub          *AvailabilityHub
	conn         *websocket.Conn
	send         chan []byte
	restaurantID string
	sessionID    string
	closeOnce    sync.Once
}

func NewStreamClient(hub *AvailabilityHub, conn *websocket.Conn, restaurantID, sessionID string, buf int) *StreamClient {
	if buf <= 0 {
		buf = 8
	}
	return &StreamClient{
		hub:          hub,
		conn:         conn,
		send:         make(chan []byte, buf),
		restaurantID: strings.TrimSpace(restaurantID),
		sessionID:    sessionID,
	}
}

func (c *StreamClient) RestaurantID() string { return c.restaurantID }

func (c *StreamClient) enqueue(data []byte) {
	select {
	case c.send <- data:
	default:
		slog.Warn("availability send buffer full", slog.String("restaurantId", c.restaurantID), slog.String("sessionId", c.sessionID))
		go c.hub.detach(c)
	}
}

func (c *StreamClient) close() {
	c.closeOnce.Do(func() {
		close(c.send)
		_ = c.conn.Close()
	})
}

func (c *StreamClient) WritePump() {
	ping := time.NewTicker(streamPingPeriod)
	defer ping.Stop()

	for {
		select {
		case msg, ok := <-c.send:
			if !ok {
				return
			}
			_ = c.conn.SetWriteDeadline(time.Now().Add(streamWriteWait))
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				slog.Warn("availability write error", slog.String("restaurantId", c.restaurantID), slog.Any("error", err))
				return
			}
		case <-ping.C:
			if err := c.conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(streamWriteWait)); err != nil {
				slog.Warn("availability ping error", slog.String("restaurantId", c.restaurantID), slog.Any("error", err))
				return
			}
		}
	}
}

// ReadPump blocks until the connection closes, then detaches the client. A
// {"action":"refresh"} frame asks for an immediate refetch.
func (c *StreamClient) ReadPump() {
	c.conn.SetReadLimit(streamReadLimit)
	_ = c.conn.SetReadDeadline(time.Now().Add(streamPongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(streamPongWait))
	})
	defer c.hub.detach(c)
	for {
		_, raw, err := c.conn.ReadMessage()
		if err != nil {
			if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				slog.Debug("availability read closed", slog.String("restaurantId", c.restaurantID), slog.Any("error", err))
			}
			return
		}
		_ = c.conn.SetReadDeadline(time.Now().Add(streamPongWait))
		var cmd StreamCommand
		if err := json.Unmarshal(raw, &cmd); err != nil {
			continue
		}
		if strings.EqualFold(strings.TrimSpace(cmd.Action), "refresh") {
			c.hub.requestRefresh(c.restaurantID)
		}
	}
}
