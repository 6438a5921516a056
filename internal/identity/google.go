package identity

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"fortress-hunt-service/internal/domain"
)

type googleTokenInfo struct {
	Email         string `json:"email"`
	EmailVerified string `json:"email_verified"`
	Name          string `json:"name"`
	Picture       string `json:"picture"`
	Audience      string `json:"aud"`
	Issuer        string `json:"iss"`
}

// verifyGoogle validates a Google ID token against the tokeninfo endpoint
// and checks issuer and audience before trusting the profile.
func (v *Verifier) verifyGoogle(ctx context.Context, idToken string) (domain.Identity, error) {
	u := v.googleTokenInfoURL + "?id_token=" + url.QueryEscape(idToken)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return domain.Identity{}, fmt.Errorf("google tokeninfo request: %w", err)
	}

	resp, err := v.client.Do(req)
	if err != nil {
		return domain.Identity{}, fmt.Errorf("google tokeninfo: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return domain.Identity{}, fmt.Errorf("google rejected token: %s", string(body))
	}

	var info googleTokenInfo
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		return domain.Identity{}, fmt.Errorf("decode google tokeninfo: %w", err)
	}

	if info.Issuer != "accounts.google.com" && info.Issuer != "https://accounts.google.com" {
		return domain.Identity{}, fmt.Errorf("wrong google token issuer %q", info.Issuer)
	}
	if v.cfg.GoogleClientID != "" && info.Audience != v.cfg.GoogleClientID {
		return domain.Identity{}, fmt.Errorf("google token issued for another client")
	}
	if info.Email == "" {
		return domain.Identity{}, fmt.Errorf("google token carries no email")
	}

	name := info.Name
	if name == "" {
		name = "User"
	}
	return domain.Identity{
		Email:       info.Email,
		DisplayName: name,
		AvatarURL:   info.Picture,
	}, nil
}
