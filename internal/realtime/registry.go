// Corkboard - Collaborative Kanban Board Server
// Copyright 2026 Corkboard contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/corkboard/corkboard

package realtime

import (
	"sort"
	"sync"
)

// Registry tracks open realtime connections. Each connection is scoped to
// exactly one board for its lifetime, so the registry keeps two views: by
// connection id for unregistration, and by board id for broadcast fan-out.
// All methods are safe for concurrent use.
type Registry struct {
	mu     sync.RWMutex
	conns  map[string]*Client
	boards map[int64]map[string]*Client
}

// NewRegistry creates an empty connection registry.
func NewRegistry() *Registry {
	return &Registry{
		conns:  make(map[string]*Client),
		boards: make(map[int64]map[string]*Client),
	}
}

// Register adds a client to both views. Re-registering an id replaces the
// prior entry; in practice each physical connection registers exactly once.
func (r *Registry) Register(c *Client) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if prior, ok := r.conns[c.id]; ok {
		r.removeFromBoard(prior)
	}

	r.conns[c.id] = c
	set, ok := r.boards[c.boardID]
	if !ok {
		set = make(map[string]*Client)
		r.boards[c.boardID] = set
	}
	set[c.id] = c
}

// Unregister removes the connection from both views and returns the removed
// client, or nil if the id is unknown. A board whose connection set becomes
// empty is dropped entirely so idle boards do not accumulate.
func (r *Registry) Unregister(connID string) *Client {
	r.mu.Lock()
	defer r.mu.Unlock()

	c, ok := r.conns[connID]
	if !ok {
		return nil
	}
	delete(r.conns, connID)
	r.removeFromBoard(c)
	return c
}

// removeFromBoard deletes c from its board set. Caller holds r.mu.
func (r *Registry) removeFromBoard(c *Client) {
	set, ok := r.boards[c.boardID]
	if !ok {
		return
	}
	delete(set, c.id)
	if len(set) == 0 {
		delete(r.boards, c.boardID)
	}
}

// ConnectionsForBoard returns a snapshot of the connections scoped to
// boardID, sorted by registration sequence for deterministic fan-out order.
func (r *Registry) ConnectionsForBoard(boardID int64) []*Client {
	r.mu.RLock()
	defer r.mu.RUnlock()

	set := r.boards[boardID]
	clients := make([]*Client, 0, len(set))
	for _, c := range set {
		clients = append(clients, c)
	}
	sort.Slice(clients, func(i, j int) bool {
		return clients[i].seq < clients[j].seq
	})
	return clients
}

// Count returns the total number of registered connections.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.conns)
}

// BoardCount returns the number of connections scoped to boardID.
func (r *Registry) BoardCount(boardID int64) int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.boards[boardID])
}

// all returns every registered client sorted by registration sequence.
// Used by the hub during shutdown.
func (r *Registry) all() []*Client {
	r.mu.RLock()
	defer r.mu.RUnlock()

	clients := make([]*Client, 0, len(r.conns))
	for _, c := range r.conns {
		clients = append(clients, c)
	}
	sort.Slice(clients, func(i, j int) bool {
		return clients[i].seq < clients[j].seq
	})
	return clients
}
