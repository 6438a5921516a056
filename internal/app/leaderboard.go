package app

import (
	"context"
	"log/slog"
	"sort"
	"sync"
	"time"

	"fortress-hunt-service/internal/domain"
)

// Leaderboard derives ordered standings from all non-staff players and
// fans live snapshots out to subscribers.
type Leaderboard struct {
	players PlayerStore
	policy  *WindowPolicy
	now     func() time.Time

	mu          sync.Mutex
	subscribers map[chan domain.Standings]struct{}
}

func NewLeaderboard(players PlayerStore, policy *WindowPolicy) *Leaderboard {
	return &Leaderboard{
		players:     players,
		policy:      policy,
		now:         time.Now,
		subscribers: make(map[chan domain.Standings]struct{}),
	}
}

// ExportRow is one line of the administrative CSV dump.
type ExportRow struct {
	DisplayName string
	Email       string
	Score       int
}

// Standings returns the ranked leaderboard. When the window hides the
// leaderboard the result is empty with Hidden set, regardless of player
// data.
func (l *Leaderboard) Standings(ctx context.Context) (domain.Standings, error) {
	if l.policy.Hidden(ctx) {
		return domain.Standings{Hidden: true, Entries: []domain.Standing{}, UpdatedAt: l.now()}, nil
	}

	ranked, err := l.ranked(ctx)
	if err != nil {
		return domain.Standings{}, err
	}

	entries := make([]domain.Standing, 0, len(ranked))
	for i, p := range ranked {
		entries = append(entries, domain.Standing{
			Rank:        i + 1,
			DisplayName: p.DisplayName,
			Score:       p.Score,
			AvatarURL:   p.AvatarURL,
		})
	}
	return domain.Standings{Entries: entries, UpdatedAt: l.now()}, nil
}

// Rank returns the 1-based position of the identity, or 0 when it has no
// player record.
func (l *Leaderboard) Rank(ctx context.Context, email string) (int, error) {
	ranked, err := l.ranked(ctx)
	if err != nil {
		return 0, err
	}
	for i, p := range ranked {
		if p.Email == email {
			return i + 1, nil
		}
	}
	return 0, nil
}

// ExportRows returns the full un-hidden ordering including emails, for the
// administrative CSV download. Staff stay excluded.
func (l *Leaderboard) ExportRows(ctx context.Context) ([]ExportRow, error) {
	ranked, err := l.ranked(ctx)
	if err != nil {
		return nil, err
	}
	rows := make([]ExportRow, 0, len(ranked))
	for _, p := range ranked {
		rows = append(rows, ExportRow{DisplayName: p.DisplayName, Email: p.Email, Score: p.Score})
	}
	return rows, nil
}

// ranked selects non-staff players ordered by score descending, earlier
// submit time winning ties.
func (l *Leaderboard) ranked(ctx context.Context) ([]domain.Player, error) {
	players, err := l.players.List(ctx)
	if err != nil {
		return nil, err
	}
	ranked := make([]domain.Player, 0, len(players))
	for _, p := range players {
		if !p.IsStaff {
			ranked = append(ranked, p)
		}
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].Score != ranked[j].Score {
			return ranked[i].Score > ranked[j].Score
		}
		return ranked[i].SubmitTime.Before(ranked[j].SubmitTime)
	})
	return ranked, nil
}

// Subscribe returns a channel receiving standings snapshots. The caller
// must invoke the cancel function to avoid leaks.
func (l *Leaderboard) Subscribe(ctx context.Context) (<-chan domain.Standings, func(), error) {
	initial, err := l.Standings(ctx)
	if err != nil {
		return nil, nil, err
	}

	ch := make(chan domain.Standings, 8)
	l.mu.Lock()
	l.subscribers[ch] = struct{}{}
	l.mu.Unlock()

	ch <- initial

	cancel := func() {
		l.mu.Lock()
		if _, ok := l.subscribers[ch]; ok {
			delete(l.subscribers, ch)
			close(ch)
		}
		l.mu.Unlock()
	}
	return ch, cancel, nil
}

// PublishStandings recomputes standings and broadcasts them to all
// subscribers. Slow subscribers have their stale frame replaced rather
// than blocking the broadcast.
func (l *Leaderboard) PublishStandings(ctx context.Context) {
	standings, err := l.Standings(ctx)
	if err != nil {
		slog.Warn("standings broadcast skipped", "error", err)
		return
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	for ch := range l.subscribers {
		select {
		case ch <- standings:
		default:
			select {
			case <-ch:
			default:
			}
			ch <- standings
		}
	}
}
