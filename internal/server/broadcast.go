// Package server fans events out to room members through the Broadcaster.
package server

import (
	"encoding/json"
	"log/slog"
)

// Broadcaster delivers an event to every current member of a room. Delivery is
// best effort: a member whose transport cannot accept the frame is skipped
// silently and is never evicted from the send path; the close handler owns all
// cleanup. The event is serialized once per broadcast.
type Broadcaster struct {
	registry *Registry
	log      *slog.Logger
}

// NewBroadcaster creates a broadcaster over the given registry.
func NewBroadcaster(registry *Registry, log *slog.Logger) *Broadcaster {
	return &Broadcaster{registry: registry, log: log}
}

// Broadcast sends event to all members of roomCode. A non-empty
// excludeSessionID skips that member, for cases where a bespoke payload was
// already delivered to the actor directly.
func (b *Broadcaster) Broadcast(roomCode string, event OutboundEvent, excludeSessionID string) {
	payload, err := json.Marshal(event)
	if err != nil {
		b.log.Error("marshal broadcast event", "room", roomCode, "type", event.Type, "err", err)
		return
	}

	// Snapshot under the registry lock, send outside it: a slow transport
	// must not stall unrelated rooms or sessions.
	recipients := b.registry.clients(roomCode, excludeSessionID)
	for _, c := range recipients {
		if c.trySend(payload) {
			metricBroadcastDeliveries.Inc()
		} else {
			metricBroadcastDrops.Inc()
			b.log.Debug("broadcast skipped unwritable client", "room", roomCode, "addr", c.addr)
		}
	}
}
