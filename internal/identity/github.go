package identity

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"fortress-hunt-service/internal/domain"
)

// verifyGithub exchanges an OAuth authorization code for an access token,
// then resolves the user's profile and primary email.
func (v *Verifier) verifyGithub(ctx context.Context, code string) (domain.Identity, error) {
	token, err := v.githubAccessToken(ctx, code)
	if err != nil {
		return domain.Identity{}, err
	}

	var user struct {
		Name      string `json:"name"`
		Login     string `json:"login"`
		AvatarURL string `json:"avatar_url"`
	}
	if err := v.githubGet(ctx, token, "/user", &user); err != nil {
		return domain.Identity{}, err
	}

	var emails []struct {
		Email   string `json:"email"`
		Primary bool   `json:"primary"`
	}
	if err := v.githubGet(ctx, token, "/user/emails", &emails); err != nil {
		return domain.Identity{}, err
	}
	if len(emails) == 0 {
		return domain.Identity{}, fmt.Errorf("github account has no email")
	}
	email := emails[0].Email
	for _, e := range emails {
		if e.Primary {
			email = e.Email
			break
		}
	}

	name := user.Name
	if name == "" {
		name = user.Login
	}
	return domain.Identity{
		Email:       email,
		DisplayName: name,
		AvatarURL:   user.AvatarURL,
	}, nil
}

func (v *Verifier) githubAccessToken(ctx context.Context, code string) (string, error) {
	form := url.Values{}
	form.Set("client_id", v.cfg.GithubClientID)
	form.Set("client_secret", v.cfg.GithubClientSecret)
	form.Set("code", code)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, v.githubTokenURL, strings.NewReader(form.Encode()))
	if err != nil {
		return "", fmt.Errorf("github token request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")

	resp, err := v.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("github token exchange: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("github token exchange failed: %s", string(body))
	}

	var payload struct {
		AccessToken string `json:"access_token"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return "", fmt.Errorf("decode github token response: %w", err)
	}
	if payload.AccessToken == "" {
		return "", fmt.Errorf("invalid github code")
	}
	return payload.AccessToken, nil
}

func (v *Verifier) githubGet(ctx context.Context, token, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, v.githubAPIURL+path, nil)
	if err != nil {
		return fmt.Errorf("github request %s: %w", path, err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Accept", "application/vnd.github+json")

	resp, err := v.client.Do(req)
	if err != nil {
		return fmt.Errorf("github %s: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("github %s failed: %s", path, string(body))
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode github %s: %w", path, err)
	}
	return nil
}
