package postgres

import (
	"context"
	"fmt"
	"sort"

	"fortress-hunt-service/internal/domain"
	"github.com/jackc/pgx/v4/pgxpool"
)

// HuntLoader reads rounds and their clues from Postgres. Content is
// administrator-managed and read-only at request time, so it loads whole
// and is cached by the repositories layered on top.
type HuntLoader struct {
	pool *pgxpool.Pool
}

func NewHuntLoader(pool *pgxpool.Pool) *HuntLoader {
	return &HuntLoader{pool: pool}
}

func (l *HuntLoader) LoadRounds(ctx context.Context) ([]domain.Round, error) {
	rows, err := l.pool.Query(ctx, `SELECT round_number, question, answer FROM rounds ORDER BY round_number`)
	if err != nil {
		return nil, fmt.Errorf("load rounds: %w", err)
	}
	defer rows.Close()

	byNumber := make(map[int]*domain.Round)
	var numbers []int
	for rows.Next() {
		var round domain.Round
		if err := rows.Scan(&round.Number, &round.Question, &round.Answer); err != nil {
			return nil, fmt.Errorf("scan round: %w", err)
		}
		byNumber[round.Number] = &round
		numbers = append(numbers, round.Number)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("load rounds: %w", err)
	}

	clueRows, err := l.pool.Query(ctx, `SELECT id, round_number, question, answer, pos_x, pos_y FROM clues ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("load clues: %w", err)
	}
	defer clueRows.Close()

	for clueRows.Next() {
		var clue domain.Clue
		if err := clueRows.Scan(&clue.ID, &clue.RoundNo, &clue.Question, &clue.Answer, &clue.Position[0], &clue.Position[1]); err != nil {
			return nil, fmt.Errorf("scan clue: %w", err)
		}
		if round, ok := byNumber[clue.RoundNo]; ok {
			round.Clues = append(round.Clues, clue)
		}
	}
	if err := clueRows.Err(); err != nil {
		return nil, fmt.Errorf("load clues: %w", err)
	}

	sort.Ints(numbers)
	rounds := make([]domain.Round, 0, len(numbers))
	for _, n := range numbers {
		rounds = append(rounds, *byNumber[n])
	}
	return rounds, nil
}
