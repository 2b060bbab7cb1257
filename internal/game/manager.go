// internal/game/manager.go
package game

import (
	"sort"
	"sync"

	"github.com/sirupsen/logrus"
)

// Manager is the registry of live rooms by integer id.
// Its lock is never held while a game lock is taken.
type Manager struct {
	mu    sync.Mutex
	games map[int]*Game

	cfg Config
	log *logrus.Entry
}

// NewManager returns an empty registry whose games share cfg.
func NewManager(cfg Config) *Manager {
	logger := cfg.Logger
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &Manager{
		games: make(map[int]*Game),
		cfg:   cfg,
		log:   logger.WithField("component", "game_manager"),
	}
}

// Create opens a new lobby owned by owner under the smallest free id.
func (m *Manager) Create(owner string) *Game {
	m.mu.Lock()
	id := 0
	for {
		if _, taken := m.games[id]; !taken {
			break
		}
		id++
	}
	g := newGame(id, owner, m.cfg, func(id int) { m.Remove(id) }, m.BroadcastOpenGames)
	m.games[id] = g
	m.mu.Unlock()

	m.log.WithFields(logrus.Fields{"game": id, "owner": owner}).Info("game created")
	return g
}

// Get returns the game with the given id.
func (m *Manager) Get(id int) (*Game, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	g, ok := m.games[id]
	return g, ok
}

// Remove unregisters and closes a game, then refreshes everyone's lobby list.
func (m *Manager) Remove(id int) bool {
	m.mu.Lock()
	g, ok := m.games[id]
	delete(m.games, id)
	m.mu.Unlock()
	if !ok {
		return false
	}

	g.Close()
	m.log.WithField("game", id).Info("game removed")
	m.BroadcastOpenGames()
	return true
}

// Delete removes a game on behalf of user, who must own it.
func (m *Manager) Delete(id int, user string) bool {
	g, ok := m.Get(id)
	if !ok || g.Owner != user {
		return false
	}
	return m.Remove(id)
}

// Count returns the number of live games.
func (m *Manager) Count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.games)
}

// OpenGames lists the games still in their lobby, ordered by id.
func (m *Manager) OpenGames() []GameData {
	m.mu.Lock()
	games := make([]GameData, 0, len(m.games))
	for id, g := range m.games {
		if g.Open() {
			games = append(games, GameData{Owner: g.Owner, ID: id})
		}
	}
	m.mu.Unlock()

	sort.Slice(games, func(i, j int) bool { return games[i].ID < games[j].ID })
	return games
}

// SendOpenGames sends the lobby list to one user.
func (m *Manager) SendOpenGames(user string) {
	if m.cfg.Sender != nil {
		m.cfg.Sender.Send(user, NewOpenGames(m.OpenGames()))
	}
}

// BroadcastOpenGames sends the lobby list to every connected user.
func (m *Manager) BroadcastOpenGames() {
	if m.cfg.Sender != nil {
		m.cfg.Sender.Broadcast(NewOpenGames(m.OpenGames()))
	}
}

// CloseAll closes every game, cancelling their timers. Used on shutdown.
func (m *Manager) CloseAll() {
	m.mu.Lock()
	games := make([]*Game, 0, len(m.games))
	for id, g := range m.games {
		games = append(games, g)
		delete(m.games, id)
	}
	m.mu.Unlock()

	for _, g := range games {
		g.Close()
	}
}
