// Package server manages individual WebSocket clients, handling read/write
// pumps, rate limiting, and lifecycle control for each connection.
package server

import (
	"errors"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/gorilla/websocket"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10
)

// isExpectedCloseError checks if an error is expected during connection closure.
func isExpectedCloseError(err error) bool {
	if err == nil {
		return true
	}
	errStr := err.Error()
	return strings.Contains(errStr, "use of closed network connection") ||
		strings.Contains(errStr, "websocket: close sent") ||
		strings.Contains(errStr, "broken pipe")
}

// Client owns one WebSocket connection: its transport handle, buffered send
// queue, and the chat Session layered on top. All inbound frames for a client
// are handled sequentially by its read pump.
type Client struct {
	conn    *websocket.Conn
	send    chan []byte
	done    chan struct{}
	hub     *Hub
	addr    string
	session *Session
	log     *slog.Logger

	maxMessageSize int64
	limiter        *frameLimiter
	rateLimit      RateLimitConfig
}

// NewClient creates a Client for an upgraded connection. The send channel is
// buffered so broadcasts to a briefly slow client queue up rather than drop.
func NewClient(conn *websocket.Conn, hub *Hub, addr string) *Client {
	cfg := currentConfig()
	if conn != nil {
		conn.SetReadLimit(cfg.MaxMessageSize)
	}

	c := &Client{
		conn:           conn,
		send:           make(chan []byte, 256),
		done:           make(chan struct{}),
		hub:            hub,
		addr:           addr,
		log:            hub.log,
		maxMessageSize: cfg.MaxMessageSize,
		limiter:        newFrameLimiter(cfg.RateLimit.Burst, cfg.RateLimit.RefillInterval),
		rateLimit:      cfg.RateLimit,
	}
	c.session = newSession(c)
	return c
}

// Session returns the chat session attached to this connection.
func (c *Client) Session() *Session { return c.session }

// trySend queues a payload for delivery without blocking. It returns false
// when the client is shutting down or its send buffer is full; callers treat
// that as a silent skip. The send channel is never closed, so trySend is safe
// to race with disconnect handling.
func (c *Client) trySend(payload []byte) bool {
	select {
	case <-c.done:
		return false
	default:
	}

	select {
	case c.send <- payload:
		return true
	default:
		return false
	}
}

// setupReadConnection configures the read deadline and pong handler.
func (c *Client) setupReadConnection() {
	if err := c.conn.SetReadDeadline(time.Now().Add(pongWait)); err != nil {
		c.log.Warn("set initial read deadline", "addr", c.addr, "err", err)
	}
	c.conn.SetPongHandler(func(string) error {
		if err := c.conn.SetReadDeadline(time.Now().Add(pongWait)); err != nil {
			c.log.Warn("set read deadline in pong handler", "addr", c.addr, "err", err)
		}
		return nil
	})
}

// logReadError reports why the read loop is exiting, at a level matching how
// surprising the cause is.
func (c *Client) logReadError(err error) {
	switch {
	case errors.Is(err, websocket.ErrReadLimit):
		c.log.Warn("frame exceeded max message size", "addr", c.addr, "limit", c.maxMessageSize)
	case websocket.IsCloseError(err,
		websocket.CloseNormalClosure,
		websocket.CloseGoingAway,
		websocket.CloseAbnormalClosure):
		c.log.Debug("client disconnected", "addr", c.addr, "err", err)
	case errors.Is(err, io.EOF), isExpectedCloseError(err):
		c.log.Debug("connection closed", "addr", c.addr, "err", err)
	default:
		c.log.Warn("websocket read error", "addr", c.addr, "err", err)
	}
}

// allowFrame applies the per-connection rate limit.
func (c *Client) allowFrame() bool {
	if c.limiter != nil && !c.limiter.allow() {
		c.log.Warn("rate limit exceeded, discarding frame",
			"addr", c.addr, "burst", c.rateLimit.Burst, "interval", c.rateLimit.RefillInterval)
		return false
	}
	return true
}

// readPump reads frames until the connection fails or closes, handing each
// one to the router. Frames are processed strictly one at a time, in arrival
// order, so a session's events are never reordered or handled concurrently
// with each other.
func (c *Client) readPump() {
	defer func() {
		// During hub shutdown the run loop is gone; skip the handoff rather
		// than block forever.
		select {
		case c.hub.unregister <- c:
		case <-c.hub.ctx.Done():
		}
		if err := c.conn.Close(); err != nil && !isExpectedCloseError(err) {
			c.log.Warn("close connection in read pump", "addr", c.addr, "err", err)
		}
	}()

	c.setupReadConnection()

	for {
		_, raw, err := c.conn.ReadMessage()
		if err != nil {
			c.logReadError(err)
			break
		}

		if !c.allowFrame() {
			continue
		}

		c.hub.router.HandleFrame(c.hub.ctx, c.session, raw)
	}
}

// writePump drains the send queue onto the wire and keeps the connection
// alive with periodic pings. Queued payloads are coalesced newline-separated
// into a single frame when the queue has backed up.
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		if err := c.conn.Close(); err != nil && !isExpectedCloseError(err) {
			c.log.Warn("close connection in write pump", "addr", c.addr, "err", err)
		}
	}()

	for {
		select {
		case payload := <-c.send:
			if !c.writeFrame(payload) {
				return
			}

		case <-ticker.C:
			if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
				return
			}
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}

		case <-c.done:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.CloseMessage, []byte{}); err != nil && !isExpectedCloseError(err) {
				c.log.Debug("write close message", "addr", c.addr, "err", err)
			}
			return

		case <-c.hub.ctx.Done():
			return
		}
	}
}

// writeFrame writes one payload plus anything else queued behind it.
func (c *Client) writeFrame(payload []byte) bool {
	if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		c.log.Warn("set write deadline", "addr", c.addr, "err", err)
		return false
	}

	w, err := c.conn.NextWriter(websocket.TextMessage)
	if err != nil {
		return false
	}

	if _, err := w.Write(payload); err != nil {
		return false
	}
	queued := len(c.send)
	for range queued {
		if _, err := w.Write([]byte{'\n'}); err != nil {
			return false
		}
		if _, err := w.Write(<-c.send); err != nil {
			return false
		}
	}

	if err := w.Close(); err != nil {
		c.log.Warn("close frame writer", "addr", c.addr, "err", err)
		return false
	}
	return true
}
