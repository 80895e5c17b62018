package websocket

import (
	"errors"
	"time"

	"github.com/gorilla/websocket"
	"github.com/lumiskin/skincare-backend/pkg/logger"
)

// Session limits. Shoppers only ever send ping frames, so inbound frames stay small.
const (
	eventWriteTimeout    = 10 * time.Second
	idleTimeout          = 70 * time.Second
	heartbeatInterval    = 25 * time.Second // below idleTimeout
	maxInboundFrameSize  = 512
	maxMessagesPerSecond = 10
)

// Conn is the upgraded socket behind one storefront or backoffice session
type Conn struct {
	*websocket.Conn
}

func (c *Conn) touch() {
	c.SetReadDeadline(time.Now().Add(idleTimeout))
}

// ReceiveFrames reads client frames until the session ends, then leaves the hub
func (c *Client) ReceiveFrames() {
	defer func() {
		c.Hub.Unregister(c)
		c.Conn.Close()
	}()

	c.Conn.SetReadLimit(maxInboundFrameSize)
	c.Conn.touch()
	c.Conn.SetPongHandler(func(string) error {
		c.Conn.touch()
		return nil
	})

	for {
		_, frame, err := c.Conn.ReadMessage()
		switch {
		case err == nil:
			c.Conn.touch()
			c.Hub.HandleClientMessage(c, frame)
			continue
		case errors.Is(err, websocket.ErrReadLimit):
			logger.Warn("WebSocket frame too large, closing session", map[string]interface{}{
				"user_id":    c.UserID,
				"backoffice": c.Backoffice,
			})
		case websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure, websocket.CloseNoStatusReceived):
			logger.Warn("WebSocket session dropped", map[string]interface{}{
				"user_id": c.UserID,
				"error":   err.Error(),
			})
		}
		return
	}
}

// StreamEvents writes queued cart, order and payment events to the socket and
// sends heartbeats while the session is idle
func (c *Client) StreamEvents() {
	heartbeat := time.NewTicker(heartbeatInterval)
	defer func() {
		heartbeat.Stop()
		c.Conn.Close()
	}()

	for {
		select {
		case event, ok := <-c.Send:
			c.Conn.SetWriteDeadline(time.Now().Add(eventWriteTimeout))
			if !ok {
				// the hub dropped this session
				c.Conn.WriteMessage(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseNormalClosure, "session ended"))
				return
			}
			if err := c.Conn.WriteMessage(websocket.TextMessage, event); err != nil {
				logger.Error("Failed to deliver event", err, map[string]interface{}{
					"user_id": c.UserID,
				})
				return
			}

		case <-heartbeat.C:
			c.Conn.SetWriteDeadline(time.Now().Add(eventWriteTimeout))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
