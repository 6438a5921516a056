package memory

import (
	"context"
	"errors"
	"testing"

	"fortress-hunt-service/internal/domain"
)

func TestTokenStoreKeepsSingleActiveToken(t *testing.T) {
	ctx := context.Background()
	store := NewTokenStore()

	first, err := store.Issue(ctx, "a@example.com")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	second, err := store.Issue(ctx, "a@example.com")
	if err != nil {
		t.Fatalf("reissue: %v", err)
	}
	if first == second {
		t.Fatalf("expected distinct tokens")
	}

	if _, err := store.Identity(ctx, first); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected first token revoked, got %v", err)
	}
	email, err := store.Identity(ctx, second)
	if err != nil || email != "a@example.com" {
		t.Fatalf("expected second token valid, got %q (%v)", email, err)
	}
}

func TestTokenStoreRevokeAll(t *testing.T) {
	ctx := context.Background()
	store := NewTokenStore()

	token, _ := store.Issue(ctx, "a@example.com")
	if err := store.RevokeAll(ctx, "a@example.com"); err != nil {
		t.Fatalf("revoke: %v", err)
	}
	if _, err := store.Identity(ctx, token); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected token revoked, got %v", err)
	}
}
