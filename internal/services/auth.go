package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
)

// AuthService implements [AuthAPI] against the backend's REST auth
// endpoints. Endpoint shapes follow
// https://docs.directus.io/reference/authentication.html
type AuthService struct {
	baseURL    string
	httpClient *http.Client
	resetURL   string
}

// NewAuthService creates an auth client for the given base URL.
func NewAuthService(baseURL string, client *http.Client) *AuthService {
	if client == nil {
		client = http.DefaultClient
	}
	return &AuthService{
		baseURL:    baseURL,
		httpClient: client,
		resetURL:   baseURL + "/password-reset",
	}
}

// doJSON performs a JSON request and decodes the `data` envelope into result.
// Non-2xx responses become [APIError].
func (a *AuthService) doJSON(ctx context.Context, method, endpoint string, payload, result any) error {
	var reqBody io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, a.baseURL+endpoint, reqBody)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := a.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return newAPIError(resp.StatusCode, body)
	}

	if result != nil {
		envelope := struct {
			Data any `json:"data"`
		}{Data: result}
		if err := json.Unmarshal(body, &envelope); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
	}

	return nil
}

// Login exchanges email and password for a token pair.
func (a *AuthService) Login(ctx context.Context, email, password string) (*AuthTokens, error) {
	payload := map[string]string{"email": email, "password": password, "mode": "json"}

	var tokens AuthTokens
	if err := a.doJSON(ctx, http.MethodPost, "/auth/login", payload, &tokens); err != nil {
		return nil, err
	}

	if tokens.AccessToken == "" || tokens.RefreshToken == "" {
		return nil, fmt.Errorf("invalid response from server: missing tokens")
	}

	return &tokens, nil
}

// Refresh exchanges a refresh token for a new token pair.
func (a *AuthService) Refresh(ctx context.Context, refreshToken string) (*AuthTokens, error) {
	payload := map[string]string{"refresh_token": refreshToken, "mode": "json"}

	var tokens AuthTokens
	if err := a.doJSON(ctx, http.MethodPost, "/auth/refresh", payload, &tokens); err != nil {
		return nil, err
	}

	if tokens.AccessToken == "" || tokens.RefreshToken == "" {
		return nil, fmt.Errorf("invalid response from server: missing tokens")
	}

	return &tokens, nil
}

// Logout terminates the remote session for the given refresh token.
func (a *AuthService) Logout(ctx context.Context, refreshToken string) error {
	payload := map[string]string{"refresh_token": refreshToken}
	return a.doJSON(ctx, http.MethodPost, "/auth/logout", payload, nil)
}

// Me fetches the authenticated user's profile.
func (a *AuthService) Me(ctx context.Context, accessToken string) (*Profile, error) {
	endpoint := "/users/me?fields=id,email,first_name,last_name,role"

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, a.baseURL+endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)

	resp, err := a.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, newAPIError(resp.StatusCode, body)
	}

	var envelope struct {
		Data Profile `json:"data"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil, fmt.Errorf("failed to decode profile: %w", err)
	}

	return &envelope.Data, nil
}

// Register creates an account through the activation-code extension.
// The endpoint validates the code and creates the user already activated.
func (a *AuthService) Register(ctx context.Context, req RegisterRequest) error {
	return a.doJSON(ctx, http.MethodPost, "/custom/register", req, nil)
}

// RequestPasswordReset asks the server to mail a reset link.
func (a *AuthService) RequestPasswordReset(ctx context.Context, email string) error {
	payload := map[string]string{"email": email, "reset_url": a.resetURL}
	return a.doJSON(ctx, http.MethodPost, "/auth/password/request", payload, nil)
}

// ResetPassword completes a reset with the mailed token.
func (a *AuthService) ResetPassword(ctx context.Context, token, password string) error {
	payload := map[string]string{"token": token, "password": password}
	return a.doJSON(ctx, http.MethodPost, "/auth/password/reset", payload, nil)
}
