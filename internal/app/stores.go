package app

import (
	"context"

	"fortress-hunt-service/internal/domain"
)

// PlayerStore abstracts how player progress records are persisted
// (in-memory, Postgres, etc).
type PlayerStore interface {
	Get(ctx context.Context, email string) (domain.Player, error)
	Create(ctx context.Context, player *domain.Player) error
	// Mutate applies fn to the player record as a single atomic
	// read-modify-write. If fn returns an error, nothing is written.
	Mutate(ctx context.Context, email string, fn func(*domain.Player) error) (domain.Player, error)
	List(ctx context.Context) ([]domain.Player, error)
}

// HuntRepository serves read-only round and clue content (from cache or a
// backing store).
type HuntRepository interface {
	Round(ctx context.Context, number int) (domain.Round, error)
	Clue(ctx context.Context, id int64) (domain.Clue, error)
	FirstRound(ctx context.Context) (int, error)
}

// WindowStore loads the single quiz window record. ok is false when no
// record exists, which is a valid unrestricted state.
type WindowStore interface {
	Get(ctx context.Context) (window domain.QuizWindow, ok bool, err error)
}

// TokenIssuer manages opaque session tokens with single-active-token
// semantics per identity.
type TokenIssuer interface {
	// Issue atomically revokes all prior tokens for the identity and
	// returns one fresh token.
	Issue(ctx context.Context, email string) (string, error)
	// Identity resolves a token back to the identity it was issued for.
	Identity(ctx context.Context, token string) (string, error)
	RevokeAll(ctx context.Context, email string) error
}

// IdentityVerifier exchanges a provider credential for a verified profile.
// The engine never inspects provider internals.
type IdentityVerifier interface {
	Verify(ctx context.Context, provider, credential string) (domain.Identity, error)
}
