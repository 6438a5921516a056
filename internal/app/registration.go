package app

import (
	"context"
	"errors"
	"log/slog"

	"fortress-hunt-service/internal/domain"
)

// Registrar reconciles verified external identities with player records and
// issues session tokens with single-active-token semantics.
type Registrar struct {
	players  PlayerStore
	hunt     HuntRepository
	verifier IdentityVerifier
	tokens   TokenIssuer
}

func NewRegistrar(players PlayerStore, hunt HuntRepository, verifier IdentityVerifier, tokens TokenIssuer) *Registrar {
	return &Registrar{players: players, hunt: hunt, verifier: verifier, tokens: tokens}
}

// Register verifies the provider credential and creates a player record for
// a new identity, or falls through to login for a known one. Either way the
// identity ends with exactly one valid token.
func (r *Registrar) Register(ctx context.Context, provider, credential string) (domain.Player, string, error) {
	identity, err := r.verifier.Verify(ctx, provider, credential)
	if err != nil {
		return domain.Player{}, "", err
	}

	player, err := r.players.Get(ctx, identity.Email)
	switch {
	case err == nil:
		return r.issue(ctx, player)
	case errors.Is(err, domain.ErrNotFound):
		// fall through to create
	default:
		return domain.Player{}, "", err
	}

	first, err := r.hunt.FirstRound(ctx)
	if err != nil {
		return domain.Player{}, "", err
	}
	player = domain.Player{
		Email:       identity.Email,
		DisplayName: identity.DisplayName,
		AvatarURL:   identity.AvatarURL,
		RoundNo:     first,
		Score:       0,
		SolvedClues: []int64{},
	}
	if err := r.players.Create(ctx, &player); err != nil {
		return domain.Player{}, "", err
	}
	slog.Info("player registered", "email", identity.Email)
	return r.issue(ctx, player)
}

// Login verifies the credential and reissues the identity's single token.
func (r *Registrar) Login(ctx context.Context, provider, credential string) (domain.Player, string, error) {
	identity, err := r.verifier.Verify(ctx, provider, credential)
	if err != nil {
		return domain.Player{}, "", err
	}

	player, err := r.players.Get(ctx, identity.Email)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.Player{}, "", domain.ErrNotRegistered
		}
		return domain.Player{}, "", err
	}
	return r.issue(ctx, player)
}

// issue performs the revoke-then-reissue step. The TokenIssuer applies it
// atomically so a concurrent login can never leave two valid tokens.
func (r *Registrar) issue(ctx context.Context, player domain.Player) (domain.Player, string, error) {
	token, err := r.tokens.Issue(ctx, player.Email)
	if err != nil {
		return domain.Player{}, "", err
	}
	return player, token, nil
}
