package memory

import (
	"context"
	"fmt"
	"sync"

	"fortress-hunt-service/internal/domain"
)

// PlayerStore is an in-memory implementation of app.PlayerStore. Mutations
// hold the store lock for the whole read-modify-write, giving the same
// per-record atomicity the Postgres store gets from row locks.
type PlayerStore struct {
	mu      sync.Mutex
	players map[string]domain.Player
}

func NewPlayerStore() *PlayerStore {
	return &PlayerStore{players: make(map[string]domain.Player)}
}

func (s *PlayerStore) Get(_ context.Context, email string) (domain.Player, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	player, ok := s.players[email]
	if !ok {
		return domain.Player{}, domain.ErrNotFound
	}
	return clonePlayer(player), nil
}

func (s *PlayerStore) Create(_ context.Context, player *domain.Player) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.players[player.Email]; ok {
		return fmt.Errorf("player %s already exists", player.Email)
	}
	s.players[player.Email] = clonePlayer(*player)
	return nil
}

func (s *PlayerStore) Mutate(_ context.Context, email string, fn func(*domain.Player) error) (domain.Player, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	player, ok := s.players[email]
	if !ok {
		return domain.Player{}, domain.ErrNotFound
	}
	updated := clonePlayer(player)
	if err := fn(&updated); err != nil {
		return domain.Player{}, err
	}
	s.players[email] = updated
	return clonePlayer(updated), nil
}

func (s *PlayerStore) List(_ context.Context) ([]domain.Player, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	players := make([]domain.Player, 0, len(s.players))
	for _, p := range s.players {
		players = append(players, clonePlayer(p))
	}
	return players, nil
}

func clonePlayer(p domain.Player) domain.Player {
	clone := p
	clone.SolvedClues = append([]int64(nil), p.SolvedClues...)
	return clone
}
