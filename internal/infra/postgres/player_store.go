package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"fortress-hunt-service/internal/domain"
	"github.com/uptrace/bun"
)

// PlayerStore persists player progress records in Postgres. Mutate takes a
// row lock for the whole read-modify-write, so concurrent submissions for
// the same player serialize and each correct answer is credited once.
type PlayerStore struct {
	db *bun.DB
}

func NewPlayerStore(db *bun.DB) *PlayerStore {
	return &PlayerStore{db: db}
}

func (s *PlayerStore) Get(ctx context.Context, email string) (domain.Player, error) {
	rec := new(playerRecord)
	err := s.db.NewSelect().Model(rec).Where("email = ?", email).Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Player{}, domain.ErrNotFound
		}
		return domain.Player{}, fmt.Errorf("get player: %w", err)
	}
	return rec.toDomain(), nil
}

func (s *PlayerStore) Create(ctx context.Context, player *domain.Player) error {
	rec := fromDomain(*player)
	if _, err := s.db.NewInsert().Model(&rec).Exec(ctx); err != nil {
		return fmt.Errorf("create player: %w", err)
	}
	return nil
}

func (s *PlayerStore) Mutate(ctx context.Context, email string, fn func(*domain.Player) error) (domain.Player, error) {
	var updated domain.Player
	err := s.db.RunInTx(ctx, &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
		rec := new(playerRecord)
		err := tx.NewSelect().Model(rec).Where("email = ?", email).For("UPDATE").Scan(ctx)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return domain.ErrNotFound
			}
			return fmt.Errorf("lock player: %w", err)
		}

		player := rec.toDomain()
		if err := fn(&player); err != nil {
			return err
		}

		next := fromDomain(player)
		if _, err := tx.NewUpdate().Model(&next).WherePK().Exec(ctx); err != nil {
			return fmt.Errorf("update player: %w", err)
		}
		updated = player
		return nil
	})
	if err != nil {
		return domain.Player{}, err
	}
	return updated, nil
}

func (s *PlayerStore) List(ctx context.Context) ([]domain.Player, error) {
	var recs []playerRecord
	if err := s.db.NewSelect().Model(&recs).Scan(ctx); err != nil {
		return nil, fmt.Errorf("list players: %w", err)
	}
	players := make([]domain.Player, 0, len(recs))
	for i := range recs {
		players = append(players, recs[i].toDomain())
	}
	return players, nil
}
