package memory

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"fortress-hunt-service/internal/domain"
	"golang.org/x/sync/singleflight"
)

// HuntLoader fetches the full hunt content from a backing store.
type HuntLoader interface {
	LoadRounds(ctx context.Context) ([]domain.Round, error)
}

// huntSnapshot is the indexed form of loaded hunt content.
type huntSnapshot struct {
	rounds    map[int]domain.Round
	clues     map[int64]domain.Clue
	first     int
	expiresAt time.Time
}

// HuntRepository caches hunt content with a TTL to avoid repeated store
// hits. Round and clue data is read-only at request time, so unbounded
// concurrent reads are safe.
type HuntRepository struct {
	loader HuntLoader
	ttl    time.Duration
	clock  func() time.Time
	sf     singleflight.Group
	rnd    *rand.Rand

	mu   sync.RWMutex
	snap *huntSnapshot
}

func NewHuntRepository(loader HuntLoader, ttl time.Duration) *HuntRepository {
	return &HuntRepository{
		loader: loader,
		ttl:    ttl,
		clock:  time.Now,
		rnd:    rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

func (r *HuntRepository) Round(ctx context.Context, number int) (domain.Round, error) {
	snap, err := r.snapshot(ctx)
	if err != nil {
		return domain.Round{}, err
	}
	round, ok := snap.rounds[number]
	if !ok {
		return domain.Round{}, domain.ErrNotFound
	}
	return round, nil
}

func (r *HuntRepository) Clue(ctx context.Context, id int64) (domain.Clue, error) {
	snap, err := r.snapshot(ctx)
	if err != nil {
		return domain.Clue{}, err
	}
	clue, ok := snap.clues[id]
	if !ok {
		return domain.Clue{}, domain.ErrNotFound
	}
	return clue, nil
}

func (r *HuntRepository) FirstRound(ctx context.Context) (int, error) {
	snap, err := r.snapshot(ctx)
	if err != nil {
		return 0, err
	}
	if len(snap.rounds) == 0 {
		return 0, domain.ErrNotFound
	}
	return snap.first, nil
}

func (r *HuntRepository) snapshot(ctx context.Context) (*huntSnapshot, error) {
	now := r.clock()

	r.mu.RLock()
	if r.snap != nil && r.snap.expiresAt.After(now) {
		snap := r.snap
		r.mu.RUnlock()
		return snap, nil
	}
	r.mu.RUnlock()

	result, err, _ := r.sf.Do("hunt", func() (interface{}, error) {
		now := r.clock()
		r.mu.RLock()
		if r.snap != nil && r.snap.expiresAt.After(now) {
			snap := r.snap
			r.mu.RUnlock()
			return snap, nil
		}
		r.mu.RUnlock()

		rounds, err := r.loader.LoadRounds(ctx)
		if err != nil {
			return nil, err
		}
		snap := indexRounds(rounds)
		snap.expiresAt = now.Add(r.ttlWithJitter())

		r.mu.Lock()
		r.snap = snap
		r.mu.Unlock()
		return snap, nil
	})
	if err != nil {
		return nil, err
	}
	return result.(*huntSnapshot), nil
}

func indexRounds(rounds []domain.Round) *huntSnapshot {
	snap := &huntSnapshot{
		rounds: make(map[int]domain.Round, len(rounds)),
		clues:  make(map[int64]domain.Clue),
	}
	for i, round := range rounds {
		snap.rounds[round.Number] = round
		if i == 0 || round.Number < snap.first {
			snap.first = round.Number
		}
		for _, clue := range round.Clues {
			snap.clues[clue.ID] = clue
		}
	}
	return snap
}

func (r *HuntRepository) ttlWithJitter() time.Duration {
	if r.ttl <= 0 {
		return 0
	}
	// up to 10% jitter to spread expirations
	jitterMax := int64(r.ttl) / 10
	return r.ttl + time.Duration(r.rnd.Int63n(jitterMax+1))
}

// StaticHuntLoader serves rounds from an in-memory slice (tests/demos).
type StaticHuntLoader struct {
	rounds []domain.Round
}

func NewStaticHuntLoader(rounds []domain.Round) *StaticHuntLoader {
	return &StaticHuntLoader{rounds: rounds}
}

func (l *StaticHuntLoader) LoadRounds(_ context.Context) ([]domain.Round, error) {
	return l.rounds, nil
}
