package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"fortress-hunt-service/internal/domain"
	"github.com/uptrace/bun"
)

// WindowStore reads the single administrator-managed quiz window row.
type WindowStore struct {
	db *bun.DB
}

func NewWindowStore(db *bun.DB) *WindowStore {
	return &WindowStore{db: db}
}

func (s *WindowStore) Get(ctx context.Context) (domain.QuizWindow, bool, error) {
	rec := new(windowRecord)
	err := s.db.NewSelect().Model(rec).Limit(1).Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.QuizWindow{}, false, nil
		}
		return domain.QuizWindow{}, false, fmt.Errorf("get quiz window: %w", err)
	}
	return domain.QuizWindow{
		StartTime:         rec.StartTime,
		EndTime:           rec.EndTime,
		MaxQuestion:       rec.MaxQuestion,
		LeaderboardFreeze: rec.LeaderboardFreeze,
		LeaderboardHide:   rec.LeaderboardHide,
	}, true, nil
}
