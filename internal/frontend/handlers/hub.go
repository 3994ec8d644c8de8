package handlers

import (
	"sort"
	"sync"

	"github.com/cory-johannsen/fate/internal/frontend/telnet"
)

// Hub tracks which sessions are in which channel. It is safe for concurrent use.
type Hub struct {
	mu       sync.RWMutex
	channels map[string]map[string]member
}

type member struct {
	name string
	conn *telnet.Conn
}

// NewHub creates an empty Hub.
func NewHub() *Hub {
	return &Hub{channels: make(map[string]map[string]member)}
}

// Join adds conn to channel under name.
func (h *Hub) Join(channel, name string, conn *telnet.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	members, ok := h.channels[channel]
	if !ok {
		members = make(map[string]member)
		h.channels[channel] = members
	}
	members[conn.ID()] = member{name: name, conn: conn}
}

// Leave removes conn from channel. Empty channels are dropped.
func (h *Hub) Leave(channel string, conn *telnet.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.channels[channel], conn.ID())
	if len(h.channels[channel]) == 0 {
		delete(h.channels, channel)
	}
}

// Members returns the sorted names present in channel.
func (h *Hub) Members(channel string) []string {
	h.mu.RLock()
	defer h.mu.RUnlock()
	names := make([]string, 0, len(h.channels[channel]))
	for _, m := range h.channels[channel] {
		names = append(names, m.name)
	}
	sort.Strings(names)
	return names
}

// Broadcast writes text to every session in channel. Write failures are
// ignored; the failing session's own read loop will end.
func (h *Hub) Broadcast(channel, text string) {
	h.mu.RLock()
	conns := make([]*telnet.Conn, 0, len(h.channels[channel]))
	for _, m := range h.channels[channel] {
		conns = append(conns, m.conn)
	}
	h.mu.RUnlock()

	for _, c := range conns {
		_ = c.WriteLine(text)
	}
}
