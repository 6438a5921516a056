package memory

import (
	"context"
	"sync"

	"fortress-hunt-service/internal/domain"
)

// WindowStore holds the single quiz window record in memory. A cleared
// store reports no record, which the policy treats as unrestricted play.
type WindowStore struct {
	mu     sync.RWMutex
	window domain.QuizWindow
	set    bool
}

func NewWindowStore() *WindowStore {
	return &WindowStore{}
}

func (s *WindowStore) Get(_ context.Context) (domain.QuizWindow, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.window, s.set, nil
}

func (s *WindowStore) Set(window domain.QuizWindow) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.window = window
	s.set = true
}

func (s *WindowStore) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.window = domain.QuizWindow{}
	s.set = false
}
