package memory

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"sync"

	"fortress-hunt-service/internal/domain"
)

// TokenStore is an in-memory implementation of app.TokenIssuer. Issue holds
// the lock across revoke and reissue, so an identity always ends the call
// with exactly one valid token.
type TokenStore struct {
	mu         sync.Mutex
	byToken    map[string]string
	byIdentity map[string]string
}

func NewTokenStore() *TokenStore {
	return &TokenStore{
		byToken:    make(map[string]string),
		byIdentity: make(map[string]string),
	}
}

func (s *TokenStore) Issue(_ context.Context, email string) (string, error) {
	token, err := newToken()
	if err != nil {
		return "", err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if old, ok := s.byIdentity[email]; ok {
		delete(s.byToken, old)
	}
	s.byIdentity[email] = token
	s.byToken[token] = email
	return token, nil
}

func (s *TokenStore) Identity(_ context.Context, token string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	email, ok := s.byToken[token]
	if !ok {
		return "", domain.ErrNotFound
	}
	return email, nil
}

func (s *TokenStore) RevokeAll(_ context.Context, email string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if old, ok := s.byIdentity[email]; ok {
		delete(s.byToken, old)
		delete(s.byIdentity, email)
	}
	return nil
}

func newToken() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}
