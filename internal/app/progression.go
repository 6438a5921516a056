package app

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"fortress-hunt-service/internal/domain"
)

// RoundReward is the fixed score awarded for a correct round answer.
const RoundReward = 10

// Engine contains the round-progression and scoring use cases.
type Engine struct {
	players PlayerStore
	hunt    HuntRepository
	policy  *WindowPolicy
	board   *Leaderboard
	now     func() time.Time
}

func NewEngine(players PlayerStore, hunt HuntRepository, policy *WindowPolicy, board *Leaderboard) *Engine {
	return &Engine{players: players, hunt: hunt, policy: policy, board: board, now: time.Now}
}

// NewEngineWithClock is test-only for deterministic submit timestamps.
func NewEngineWithClock(players PlayerStore, hunt HuntRepository, policy *WindowPolicy, board *Leaderboard, now func() time.Time) *Engine {
	return &Engine{players: players, hunt: hunt, policy: policy, board: board, now: now}
}

// SubmitResult reports a successful round advance.
type SubmitResult struct {
	RoundNo int `json:"roundNo"`
	Score   int `json:"score"`
}

// GetCurrentRound returns the round the player must solve next, with its
// derived centre point.
func (e *Engine) GetCurrentRound(ctx context.Context, email string) (domain.RoundView, error) {
	player, err := e.gatedPlayer(ctx, email)
	if err != nil {
		return domain.RoundView{}, err
	}

	if max, ok := e.policy.MaxQuestion(ctx); ok && player.RoundNo > max {
		return domain.RoundView{}, domain.ErrQuizFinished
	}

	round, err := e.hunt.Round(ctx, player.RoundNo)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.RoundView{}, domain.ErrQuizFinished
		}
		return domain.RoundView{}, err
	}

	return domain.RoundView{
		Number:   round.Number,
		Question: round.Question,
		Centre:   round.CentrePoint(),
	}, nil
}

// SubmitRoundAnswer verifies the answer for the player's current round and,
// on a match, advances the round and applies scoring as one atomic write.
func (e *Engine) SubmitRoundAnswer(ctx context.Context, email, answer string) (SubmitResult, error) {
	if _, err := e.gatedPlayer(ctx, email); err != nil {
		return SubmitResult{}, err
	}

	frozen := e.policy.Frozen(ctx)

	// Answer validation runs inside the atomic mutation so a concurrent
	// duplicate submit observes the already-advanced round and cannot be
	// credited twice.
	updated, err := e.players.Mutate(ctx, email, func(p *domain.Player) error {
		round, err := e.hunt.Round(ctx, p.RoundNo)
		if err != nil {
			return err
		}
		if !domain.AnswerMatches(answer, round.Answer) {
			return domain.ErrWrongAnswer
		}
		if !frozen {
			p.Score += RoundReward
		}
		p.RoundNo++
		p.SubmitTime = e.now()
		return nil
	})
	if err != nil {
		return SubmitResult{}, err
	}

	e.board.PublishStandings(ctx)
	return SubmitResult{RoundNo: updated.RoundNo, Score: updated.Score}, nil
}

// ListClues reports every clue of the player's current round in insertion
// order, revealing positions only for clues the player has solved.
func (e *Engine) ListClues(ctx context.Context, email string) ([]domain.ClueStatus, error) {
	player, err := e.gatedPlayer(ctx, email)
	if err != nil {
		return nil, err
	}

	round, err := e.hunt.Round(ctx, player.RoundNo)
	if err != nil {
		return nil, err
	}

	statuses := make([]domain.ClueStatus, 0, len(round.Clues))
	for _, clue := range round.Clues {
		status := domain.ClueStatus{
			ID:       clue.ID,
			Question: clue.Question,
			Solved:   player.HasSolved(clue.ID),
		}
		if status.Solved {
			pos := clue.Position
			status.Position = &pos
		}
		statuses = append(statuses, status)
	}
	return statuses, nil
}

// SubmitClueAnswer verifies a clue answer and, on a match, records the clue
// as solved and returns its position. Re-solving a clue is a no-op success;
// clues never award score.
func (e *Engine) SubmitClueAnswer(ctx context.Context, email string, clueID int64, answer string) (domain.Position, error) {
	if _, err := e.gatedPlayer(ctx, email); err != nil {
		return domain.Position{}, err
	}

	clue, err := e.hunt.Clue(ctx, clueID)
	if err != nil {
		return domain.Position{}, err
	}
	if !domain.AnswerMatches(answer, clue.Answer) {
		return domain.Position{}, domain.ErrWrongAnswer
	}

	if _, err := e.players.Mutate(ctx, email, func(p *domain.Player) error {
		p.MarkSolved(clueID)
		return nil
	}); err != nil {
		return domain.Position{}, err
	}
	return clue.Position, nil
}

// Player returns the progress record for an authenticated identity. Profile
// reads are not window-gated.
func (e *Engine) Player(ctx context.Context, email string) (domain.Player, error) {
	return e.players.Get(ctx, email)
}

// gatedPlayer resolves the player and applies the window gate. A missing
// record for an authenticated identity is a data-integrity problem, so it
// is logged before surfacing as not found.
func (e *Engine) gatedPlayer(ctx context.Context, email string) (domain.Player, error) {
	player, err := e.players.Get(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			slog.Error("authenticated player has no progress record", "email", email)
		}
		return domain.Player{}, err
	}
	if !e.policy.PlayAllowed(ctx, player) {
		return domain.Player{}, domain.ErrQuizInactive
	}
	return player, nil
}
