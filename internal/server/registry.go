// Package server tracks which live connections belong to which room via the
// Registry type, the single source of truth for broadcast fan-out.
package server

import "sync"

// member is one joined connection inside a room entry.
type member struct {
	sessionID string
	name      string
	client    *Client
}

// roomEntry holds a room's members in join order.
type roomEntry struct {
	members []member
}

// Registry is the in-memory mapping from room code to the set of active
// connections in that room. All methods are safe for concurrent use; each is
// atomic with respect to the others, so callers never need external locking.
// Registry state is purely about liveness: it says nothing about stored
// message history.
type Registry struct {
	mu    sync.RWMutex
	rooms map[string]*roomEntry
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{rooms: make(map[string]*roomEntry)}
}

// ensure returns the entry for roomCode, allocating an empty one on first use.
// Callers must hold r.mu.
func (r *Registry) ensure(roomCode string) *roomEntry {
	entry := r.rooms[roomCode]
	if entry == nil {
		entry = &roomEntry{}
		r.rooms[roomCode] = entry
	}
	return entry
}

// Add inserts a member into a room, creating the room entry if absent.
// Callers must not add the same session twice.
func (r *Registry) Add(roomCode, sessionID, name string, c *Client) {
	r.mu.Lock()
	defer r.mu.Unlock()

	entry := r.ensure(roomCode)
	entry.members = append(entry.members, member{sessionID: sessionID, name: name, client: c})
}

// Remove deletes a member from a room and returns how many members remain.
// When the last member leaves, the room entry itself is dropped from the
// registry; stored message history is unaffected.
func (r *Registry) Remove(roomCode, sessionID string) int {
	r.mu.Lock()
	defer r.mu.Unlock()

	entry := r.rooms[roomCode]
	if entry == nil {
		return 0
	}

	for i, m := range entry.members {
		if m.sessionID == sessionID {
			entry.members = append(entry.members[:i], entry.members[i+1:]...)
			break
		}
	}

	remaining := len(entry.members)
	if remaining == 0 {
		delete(r.rooms, roomCode)
	}
	return remaining
}

// Count returns the number of current members in a room, 0 if unknown.
func (r *Registry) Count(roomCode string) int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	entry := r.rooms[roomCode]
	if entry == nil {
		return 0
	}
	return len(entry.members)
}

// Names returns the display names of a room's members in join order. Two
// members may share a name; no uniqueness is enforced.
func (r *Registry) Names(roomCode string) []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	entry := r.rooms[roomCode]
	if entry == nil {
		return nil
	}

	names := make([]string, len(entry.members))
	for i, m := range entry.members {
		names[i] = m.name
	}
	return names
}

// clients snapshots the clients in a room, skipping excludeID if non-empty.
// The snapshot lets broadcasters release the registry lock before performing
// any per-connection sends.
func (r *Registry) clients(roomCode, excludeID string) []*Client {
	r.mu.RLock()
	defer r.mu.RUnlock()

	entry := r.rooms[roomCode]
	if entry == nil {
		return nil
	}

	out := make([]*Client, 0, len(entry.members))
	for _, m := range entry.members {
		if excludeID != "" && m.sessionID == excludeID {
			continue
		}
		out = append(out, m.client)
	}
	return out
}
