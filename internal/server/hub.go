// Package server coordinates connection registration, room membership, and
// disconnect cleanup for the SharkChat WebSocket system via the Hub type.
package server

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// Hub tracks every live connection regardless of room, launches the pump
// goroutines for new clients, and drives disconnect cleanup through the
// router. Room-level membership lives in the Registry; the hub owns
// connection lifecycle only.
type Hub struct {
	clients    map[*Client]struct{}
	register   chan *Client
	unregister chan *Client

	registry *Registry
	router   *Router
	log      *slog.Logger

	wg     sync.WaitGroup
	ctx    context.Context
	cancel context.CancelFunc
	done   chan struct{}
}

// NewHub creates a hub over the given registry and router. Run must be
// started in its own goroutine before clients are registered.
func NewHub(registry *Registry, router *Router, log *slog.Logger) *Hub {
	ctx, cancel := context.WithCancel(context.Background())
	return &Hub{
		clients:    make(map[*Client]struct{}),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		registry:   registry,
		router:     router,
		log:        log,
		ctx:        ctx,
		cancel:     cancel,
		done:       make(chan struct{}),
	}
}

// Register hands a new client to the hub, which starts its pumps.
func (h *Hub) Register(c *Client) {
	h.register <- c
}

// Registry returns the hub's room registry.
func (h *Hub) Registry() *Registry { return h.registry }

// Run is the hub's main loop. It serializes connection registration and
// unregistration, so disconnect cleanup for a client runs exactly once.
func (h *Hub) Run() {
	defer close(h.done)

	for {
		select {
		case <-h.ctx.Done():
			h.shutdownClients()
			return

		case c := <-h.register:
			if c == nil {
				h.log.Warn("nil client registration skipped")
				continue
			}
			h.clients[c] = struct{}{}
			metricActiveConnections.Inc()
			h.log.Info("client connected", "addr", c.addr, "session", c.session.id, "clients", len(h.clients))

			h.wg.Add(2)
			go func() {
				defer h.wg.Done()
				c.writePump()
			}()
			go func() {
				defer h.wg.Done()
				c.readPump()
			}()

		case c := <-h.unregister:
			if _, ok := h.clients[c]; !ok {
				continue
			}
			delete(h.clients, c)
			metricActiveConnections.Dec()
			close(c.done)

			// Membership removal and leave notifications. Broadcast sends
			// are non-blocking, so the hub loop cannot stall on a slow peer.
			h.router.HandleClose(c.session)
			h.log.Info("client disconnected", "addr", c.addr, "session", c.session.id, "clients", len(h.clients))
		}
	}
}

// shutdownClients closes every live connection so the pump goroutines unwind.
func (h *Hub) shutdownClients() {
	h.log.Info("closing client connections", "clients", len(h.clients))

	for c := range h.clients {
		if c.conn != nil {
			if err := c.conn.Close(); err != nil && !isExpectedCloseError(err) {
				h.log.Warn("close client connection", "addr", c.addr, "err", err)
			}
		}
	}
}

// Shutdown initiates graceful shutdown and waits for the run loop and all
// client goroutines to finish, or for the timeout to elapse.
func (h *Hub) Shutdown(timeout time.Duration) error {
	h.log.Info("hub shutdown initiated")

	h.cancel()
	<-h.done

	finished := make(chan struct{})
	go func() {
		h.wg.Wait()
		close(finished)
	}()

	select {
	case <-finished:
		h.log.Info("hub shutdown complete")
		return nil
	case <-time.After(timeout):
		h.log.Warn("hub shutdown timed out, goroutines may still be running")
		return context.DeadlineExceeded
	}
}
