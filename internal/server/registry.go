// Package server coordinates connection registration, message broadcast, and
// connection cleanup for the linecast system.
package server

import "sync"

// Registry is the shared set of live connections used as the broadcast
// fan-out list. It preserves insertion order and is safe for concurrent use
// by the acceptor, the broadcaster, and every receiver.
type Registry struct {
	mutex sync.RWMutex
	conns []*Conn
	index map[*Conn]int
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{
		index: make(map[*Conn]int),
	}
}

// Add appends the connection to the registry. The connection is visible to
// every subsequent Snapshot call.
func (r *Registry) Add(c *Conn) {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	if _, exists := r.index[c]; exists {
		return
	}
	r.index[c] = len(r.conns)
	r.conns = append(r.conns, c)
}

// Remove evicts the connection and reports whether it was present, so that
// concurrent eviction from the receiver and the broadcaster is harmless.
func (r *Registry) Remove(c *Conn) bool {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	pos, exists := r.index[c]
	if !exists {
		return false
	}
	delete(r.index, c)
	r.conns = append(r.conns[:pos], r.conns[pos+1:]...)
	for i := pos; i < len(r.conns); i++ {
		r.index[r.conns[i]] = i
	}
	return true
}

// Snapshot returns a point-in-time ordered copy of the registry for fan-out.
// The caller may range over it without holding any lock.
func (r *Registry) Snapshot() []*Conn {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	snapshot := make([]*Conn, len(r.conns))
	copy(snapshot, r.conns)
	return snapshot
}

// Len returns the current number of registered connections.
func (r *Registry) Len() int {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	return len(r.conns)
}
