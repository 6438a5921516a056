package app

import (
	"context"
	"log/slog"
	"time"

	"fortress-hunt-service/internal/domain"
)

// WindowPolicy answers whether play is currently allowed. Lookups fail open:
// a missing record or a store error must never block players.
type WindowPolicy struct {
	windows WindowStore
	now     func() time.Time
}

func NewWindowPolicy(windows WindowStore) *WindowPolicy {
	return &WindowPolicy{windows: windows, now: time.Now}
}

// NewWindowPolicyWithClock is test-only for deterministic time.
func NewWindowPolicyWithClock(windows WindowStore, now func() time.Time) *WindowPolicy {
	return &WindowPolicy{windows: windows, now: now}
}

// PlayAllowed reports whether the player may act right now. Staff always
// may; everyone may when no window is configured or the lookup fails.
func (p *WindowPolicy) PlayAllowed(ctx context.Context, player domain.Player) bool {
	if player.IsStaff {
		return true
	}
	window, ok, err := p.windows.Get(ctx)
	if err != nil {
		slog.Warn("window lookup failed, allowing play", "error", err)
		return true
	}
	if !ok {
		return true
	}
	now := p.now()
	return now.After(window.StartTime) && now.Before(window.EndTime)
}

// Hidden reports whether standings queries should return nothing.
func (p *WindowPolicy) Hidden(ctx context.Context) bool {
	window, ok, err := p.windows.Get(ctx)
	if err != nil || !ok {
		return false
	}
	return window.LeaderboardHide
}

// Frozen reports whether score increments are currently suppressed.
func (p *WindowPolicy) Frozen(ctx context.Context) bool {
	window, ok, err := p.windows.Get(ctx)
	if err != nil || !ok {
		return false
	}
	return window.LeaderboardFreeze
}

// MaxQuestion returns the round ceiling, if a window is configured.
func (p *WindowPolicy) MaxQuestion(ctx context.Context) (int, bool) {
	window, ok, err := p.windows.Get(ctx)
	if err != nil || !ok {
		return 0, false
	}
	return window.MaxQuestion, true
}
