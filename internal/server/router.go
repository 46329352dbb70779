// Package server routes decoded client events to the store, registry, and
// broadcaster through the Router type.
package server

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/Shark-Fang/SharkChat/internal/store"
)

// Router decodes inbound frames, validates them against the session state
// machine, and dispatches the resulting work. Every failure is reported to
// the originating connection only, as an error event; nothing here terminates
// a connection.
//
// Frames from a single session are handled one at a time in arrival order
// (the read pump calls HandleFrame synchronously), which is what guarantees
// per-room ordering for events originating from one session.
type Router struct {
	store       store.Store
	registry    *Registry
	broadcaster *Broadcaster
	log         *slog.Logger
}

// NewRouter wires a router over the given collaborators.
func NewRouter(st store.Store, registry *Registry, broadcaster *Broadcaster, log *slog.Logger) *Router {
	return &Router{store: st, registry: registry, broadcaster: broadcaster, log: log}
}

// HandleFrame processes one raw inbound frame from a session.
func (r *Router) HandleFrame(ctx context.Context, sess *Session, raw []byte) {
	var ev InboundEvent
	if err := json.Unmarshal(raw, &ev); err != nil {
		r.reject(sess, decodeError())
		return
	}
	if ev.Type == "" || ev.RoomCode == "" {
		r.reject(sess, decodeError())
		return
	}

	metricInboundEvents.WithLabelValues(ev.Type).Inc()

	switch ev.Type {
	case EventJoin:
		r.handleJoin(sess, ev)
	case EventMessage:
		r.handleMessage(ctx, sess, ev)
	default:
		r.reject(sess, unknownEventError())
	}
}

func (r *Router) handleJoin(sess *Session, ev InboundEvent) {
	if err := sess.join(ev.RoomCode, ev.Sender); err != nil {
		r.reject(sess, err)
		return
	}

	r.registry.Add(ev.RoomCode, sess.id, ev.Sender, sess.client)
	r.log.Info("session joined room", "room", ev.RoomCode, "name", ev.Sender, "session", sess.id)

	// Private welcome to the joiner, join notice to everyone else, then a
	// membership snapshot to the whole room including the joiner.
	r.sendDirect(sess.client, systemEvent(ev.RoomCode, welcomeText))
	r.broadcaster.Broadcast(ev.RoomCode, systemEvent(ev.RoomCode, ev.Sender+" has joined the chat."), sess.id)
	r.broadcaster.Broadcast(ev.RoomCode, usersEvent(ev.RoomCode, r.registry.Names(ev.RoomCode)), "")
}

func (r *Router) handleMessage(ctx context.Context, sess *Session, ev InboundEvent) {
	roomCode, name, evErr := sess.sender()
	if evErr != nil {
		r.reject(sess, evErr)
		return
	}
	if ev.Content == "" {
		r.reject(sess, validationError(msgContentRequired))
		return
	}

	msg, err := r.store.CreateMessage(ctx, roomCode, name, ev.Content)
	if err != nil {
		r.log.Error("persist message", "room", roomCode, "err", err)
		r.reject(sess, internalError(msgSaveFailed))
		return
	}
	metricMessagesStored.Inc()

	// The sender receives the broadcast too, so its UI reflects the
	// store-assigned id and timestamp.
	r.broadcaster.Broadcast(roomCode, messageEvent(msg), "")
}

// HandleClose runs the disconnect transition for a session: membership
// removal and, if the room still has members, a leave notice plus a refreshed
// membership snapshot. An empty room is pruned by the registry with no
// broadcast.
func (r *Router) HandleClose(sess *Session) {
	roomCode, name, wasJoined := sess.close()
	if !wasJoined {
		return
	}

	remaining := r.registry.Remove(roomCode, sess.id)
	r.log.Info("session left room", "room", roomCode, "name", name, "session", sess.id, "remaining", remaining)
	if remaining == 0 {
		return
	}

	r.broadcaster.Broadcast(roomCode, systemEvent(roomCode, name+" has left the chat."), "")
	r.broadcaster.Broadcast(roomCode, usersEvent(roomCode, r.registry.Names(roomCode)), "")
}

// reject reports an eventError to the originating connection only.
func (r *Router) reject(sess *Session, evErr *eventError) {
	metricEventErrors.WithLabelValues(evErr.Kind.String()).Inc()
	r.log.Debug("event rejected", "session", sess.id, "kind", evErr.Kind.String(), "reason", evErr.Message)
	r.sendDirect(sess.client, errorEvent(evErr.Message))
}

// sendDirect delivers an event to a single client, best effort.
func (r *Router) sendDirect(c *Client, event OutboundEvent) {
	payload, err := json.Marshal(event)
	if err != nil {
		r.log.Error("marshal direct event", "type", event.Type, "err", err)
		return
	}
	if !c.trySend(payload) {
		metricBroadcastDrops.Inc()
	}
}
