package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"fortress-hunt-service/internal/domain"
)

func TestHuntRepositoryCaches(t *testing.T) {
	loader := &countingLoader{HuntLoader: NewStaticHuntLoader(sampleRounds())}
	repo := NewHuntRepository(loader, time.Minute)

	if _, err := repo.Round(context.Background(), 1); err != nil {
		t.Fatalf("round: %v", err)
	}
	if loader.calls != 1 {
		t.Fatalf("expected loader once, got %d", loader.calls)
	}

	if _, err := repo.Clue(context.Background(), 3); err != nil {
		t.Fatalf("clue: %v", err)
	}
	if loader.calls != 1 {
		t.Fatalf("expected cache hit, loader calls %d", loader.calls)
	}
}

func TestHuntRepositoryFirstRound(t *testing.T) {
	repo := NewHuntRepository(NewStaticHuntLoader(sampleRounds()), time.Minute)
	first, err := repo.FirstRound(context.Background())
	if err != nil {
		t.Fatalf("first round: %v", err)
	}
	if first != 1 {
		t.Fatalf("expected first round 1, got %d", first)
	}
}

func TestHuntRepositoryUnknownRound(t *testing.T) {
	repo := NewHuntRepository(NewStaticHuntLoader(sampleRounds()), time.Minute)
	if _, err := repo.Round(context.Background(), 99); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

type countingLoader struct {
	HuntLoader
	calls int
}

func (l *countingLoader) LoadRounds(ctx context.Context) ([]domain.Round, error) {
	l.calls++
	return l.HuntLoader.LoadRounds(ctx)
}

func sampleRounds() []domain.Round {
	return []domain.Round{
		{
			Number:   1,
			Question: "Where does the journey begin?",
			Answer:   "library",
			Clues: []domain.Clue{
				{ID: 1, RoundNo: 1, Question: "Shelves of stories", Answer: "books", Position: domain.Position{10, 20}},
				{ID: 2, RoundNo: 1, Question: "Keeper of silence", Answer: "librarian", Position: domain.Position{30, 40}},
			},
		},
		{
			Number:   2,
			Question: "Follow the water",
			Answer:   "fountain",
			Clues: []domain.Clue{
				{ID: 3, RoundNo: 2, Question: "It rises and falls", Answer: "water", Position: domain.Position{50, 60}},
			},
		},
	}
}
