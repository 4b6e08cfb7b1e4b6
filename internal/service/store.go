package service

import (
	"absurdlyvisual/internal/model"
	"sort"
	"sync"
)

type gameEntry struct {
	mu      sync.Mutex
	game    *model.Game
	removed bool
}

// Store holds every live game and the player directory for one process.
// Games are mutated only inside update, one game at a time. A player is
// only ever touched under the lock of the game it belongs to.
type Store struct {
	mu         sync.RWMutex
	games      map[string]*gameEntry
	players    map[string]*model.Player
	membership map[string]string // playerID -> gameID while on a roster
}

// NewStore creates an empty store
func NewStore() *Store {
	return &Store{
		games:      make(map[string]*gameEntry),
		players:    make(map[string]*model.Player),
		membership: make(map[string]string),
	}
}

func (s *Store) insert(g *model.Game) {
	s.mu.Lock()
	s.games[g.ID] = &gameEntry{game: g}
	s.mu.Unlock()
}

// update runs fn with exclusive access to the game
func (s *Store) update(gameID string, fn func(*model.Game) error) error {
	s.mu.RLock()
	e := s.games[gameID]
	s.mu.RUnlock()
	if e == nil {
		return ErrGameNotFound
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if e.removed {
		return ErrGameNotFound
	}
	return fn(e.game)
}

// remove drops the game and every player record that belongs to it
func (s *Store) remove(gameID string) bool {
	s.mu.RLock()
	e := s.games[gameID]
	s.mu.RUnlock()
	if e == nil {
		return false
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if e.removed {
		return false
	}
	e.removed = true

	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.games, gameID)
	for id, p := range s.players {
		if p.GameID == gameID {
			delete(s.players, id)
			delete(s.membership, id)
		}
	}
	return true
}

func (s *Store) exists(gameID string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.games[gameID]
	return ok
}

func (s *Store) gameIDs() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ids := make([]string, 0, len(s.games))
	for id := range s.games {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// player looks up a directory entry. Callers hold the owning game's lock
// before touching mutable fields.
func (s *Store) player(id string) *model.Player {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.players[id]
}

// bind adds the player to the directory as a member of gameID
func (s *Store) bind(p *model.Player) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if current, ok := s.membership[p.ID]; ok && current != p.GameID {
		return ErrAlreadyInGame
	}
	s.players[p.ID] = p
	s.membership[p.ID] = p.GameID
	return nil
}

// unbind clears roster membership. The record stays in the directory so
// round history keeps resolving until the game is torn down.
func (s *Store) unbind(playerID string) {
	s.mu.Lock()
	delete(s.membership, playerID)
	s.mu.Unlock()
}

// gameOf returns the game the player is currently on a roster of
func (s *Store) gameOf(playerID string) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := s.membership[playerID]
	return id, ok
}
