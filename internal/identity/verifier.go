package identity

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"fortress-hunt-service/internal/domain"
)

// Providers recognized by the verifier.
const (
	ProviderGoogle = "google"
	ProviderGithub = "github"
)

// Config carries the provider credentials needed for verification.
type Config struct {
	GoogleClientID     string
	GithubClientID     string
	GithubClientSecret string
}

// Verifier exchanges provider credentials for verified profiles. It
// implements app.IdentityVerifier.
type Verifier struct {
	cfg    Config
	client *http.Client

	// endpoint overrides for tests
	googleTokenInfoURL string
	githubTokenURL     string
	githubAPIURL       string
}

func NewVerifier(cfg Config) *Verifier {
	return &Verifier{
		cfg:                cfg,
		client:             &http.Client{Timeout: 15 * time.Second},
		googleTokenInfoURL: "https://oauth2.googleapis.com/tokeninfo",
		githubTokenURL:     "https://github.com/login/oauth/access_token",
		githubAPIURL:       "https://api.github.com",
	}
}

func (v *Verifier) Verify(ctx context.Context, provider, credential string) (domain.Identity, error) {
	switch provider {
	case ProviderGoogle:
		return v.verifyGoogle(ctx, credential)
	case ProviderGithub:
		return v.verifyGithub(ctx, credential)
	default:
		return domain.Identity{}, fmt.Errorf("unknown identity provider %q", provider)
	}
}
