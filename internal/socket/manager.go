// internal/socket/manager.go
package socket

import (
	"encoding/json"
	"sync"

	"github.com/coder/websocket"
	"github.com/sirupsen/logrus"
	"github.com/tectoast/wizard/internal/game"
)

// OnlineCounter tracks the number of registered users.
type OnlineCounter interface {
	IncOnlinePlayers()
	DecOnlinePlayers()
}

// Manager maps usernames to their single live connection. It implements game.Sender.
type Manager struct {
	mu    sync.RWMutex
	conns map[string]*Conn

	log    *logrus.Logger
	online OnlineCounter
}

// NewManager returns an empty manager. online may be nil.
func NewManager(logger *logrus.Logger, online OnlineCounter) *Manager {
	return &Manager{
		conns:  make(map[string]*Conn),
		log:    logger,
		online: online,
	}
}

// Register makes c the connection of its user and starts its writer. A previous connection
// of the same user is closed.
func (m *Manager) Register(c *Conn) {
	m.mu.Lock()
	old, replaced := m.conns[c.Username]
	m.conns[c.Username] = c
	m.mu.Unlock()

	go c.writeLoop()

	if replaced {
		go old.Close(websocket.StatusPolicyViolation, "replaced by a new connection")
		c.log.Info("connection replaced")
		return
	}
	if m.online != nil {
		m.online.IncOnlinePlayers()
	}
}

// Unregister removes the user's connection if it is still the one with the given id.
func (m *Manager) Unregister(c *Conn) bool {
	m.mu.Lock()
	cur, ok := m.conns[c.Username]
	if !ok || cur.ID != c.ID {
		m.mu.Unlock()
		return false
	}
	delete(m.conns, c.Username)
	m.mu.Unlock()

	if m.online != nil {
		m.online.DecOnlinePlayers()
	}
	return true
}

// Online reports whether username has a registered connection.
func (m *Manager) Online(username string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.conns[username]
	return ok
}

// Count returns the number of registered users.
func (m *Manager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.conns)
}

// Send queues ev for username without blocking. A user whose queue overflows is disconnected.
func (m *Manager) Send(username string, ev game.Event) {
	m.mu.RLock()
	c, ok := m.conns[username]
	m.mu.RUnlock()
	if !ok {
		return
	}
	data, err := json.Marshal(ev)
	if err != nil {
		m.log.WithError(err).WithField("type", ev.EventType()).Error("failed to marshal event")
		return
	}
	if !c.enqueue(data) {
		c.log.WithField("type", ev.EventType()).Debug("event not queued, connection closed")
	}
}

// Broadcast queues ev for every registered user.
func (m *Manager) Broadcast(ev game.Event) {
	data, err := json.Marshal(ev)
	if err != nil {
		m.log.WithError(err).WithField("type", ev.EventType()).Error("failed to marshal event")
		return
	}
	m.mu.RLock()
	conns := make([]*Conn, 0, len(m.conns))
	for _, c := range m.conns {
		conns = append(conns, c)
	}
	m.mu.RUnlock()

	for _, c := range conns {
		if !c.enqueue(data) {
			c.log.WithField("type", ev.EventType()).Debug("broadcast not queued, connection closed")
		}
	}
}

// CloseAll closes every connection with a going-away status.
func (m *Manager) CloseAll() {
	m.mu.Lock()
	conns := m.conns
	m.conns = make(map[string]*Conn)
	m.mu.Unlock()
	for _, c := range conns {
		c.Close(websocket.StatusGoingAway, "server shutting down")
		if m.online != nil {
			m.online.DecOnlinePlayers()
		}
	}
}
