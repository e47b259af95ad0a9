package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestAuthServiceLogin(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path != "/auth/login" {
				t.Errorf("unexpected path %s", r.URL.Path)
			}

			var payload map[string]string
			if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
				t.Fatalf("failed to decode payload: %v", err)
			}
			if payload["email"] != "singer@example.com" || payload["mode"] != "json" {
				t.Errorf("unexpected payload: %v", payload)
			}

			fmt.Fprint(w, `{"data":{"access_token":"access","refresh_token":"refresh","expires":900000}}`)
		}))
		defer server.Close()

		service := NewAuthService(server.URL, nil)
		tokens, err := service.Login(context.Background(), "singer@example.com", "pw")
		if err != nil {
			t.Fatalf("login failed: %v", err)
		}
		if tokens.AccessToken != "access" || tokens.RefreshToken != "refresh" {
			t.Errorf("unexpected tokens: %+v", tokens)
		}
		if tokens.Expires != 900000 {
			t.Errorf("expected expires 900000, got %d", tokens.Expires)
		}
	})

	t.Run("invalid credentials", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusUnauthorized)
			fmt.Fprint(w, `{"errors":[{"message":"Invalid user credentials.","extensions":{"code":"INVALID_CREDENTIALS"}}]}`)
		}))
		defer server.Close()

		service := NewAuthService(server.URL, nil)
		_, err := service.Login(context.Background(), "singer@example.com", "wrong")
		if err == nil {
			t.Fatal("expected login error")
		}

		var apiErr *APIError
		if !errors.As(err, &apiErr) {
			t.Fatalf("expected APIError, got %T", err)
		}
		if !apiErr.HasCode(CodeInvalidCredentials) {
			t.Errorf("expected INVALID_CREDENTIALS code, got %+v", apiErr)
		}
	})

	t.Run("incomplete token pair rejected", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			fmt.Fprint(w, `{"data":{"access_token":"only-access"}}`)
		}))
		defer server.Close()

		service := NewAuthService(server.URL, nil)
		if _, err := service.Login(context.Background(), "a@example.com", "pw"); err == nil {
			t.Fatal("expected error for missing refresh token")
		}
	})
}

func TestAuthServiceRefresh(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/auth/refresh" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}

		var payload map[string]string
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			t.Fatalf("failed to decode payload: %v", err)
		}
		if payload["refresh_token"] != "old-refresh" {
			t.Errorf("unexpected refresh token %q", payload["refresh_token"])
		}

		fmt.Fprint(w, `{"data":{"access_token":"new-access","refresh_token":"new-refresh","expires":900000}}`)
	}))
	defer server.Close()

	service := NewAuthService(server.URL, nil)
	tokens, err := service.Refresh(context.Background(), "old-refresh")
	if err != nil {
		t.Fatalf("refresh failed: %v", err)
	}
	if tokens.AccessToken != "new-access" || tokens.RefreshToken != "new-refresh" {
		t.Errorf("unexpected tokens: %+v", tokens)
	}
}

func TestAuthServiceMe(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer access" {
			t.Errorf("unexpected authorization header %q", got)
		}
		fmt.Fprint(w, `{"data":{"id":"u1","email":"singer@example.com","first_name":"Anna","last_name":"Bach","role":"activated"}}`)
	}))
	defer server.Close()

	service := NewAuthService(server.URL, nil)
	profile, err := service.Me(context.Background(), "access")
	if err != nil {
		t.Fatalf("me failed: %v", err)
	}
	if profile.Email != "singer@example.com" || profile.Role != "activated" {
		t.Errorf("unexpected profile: %+v", profile)
	}
}

func TestAuthServicePasswordReset(t *testing.T) {
	var requestPayload map[string]string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/auth/password/request":
			if err := json.NewDecoder(r.Body).Decode(&requestPayload); err != nil {
				t.Fatalf("failed to decode payload: %v", err)
			}
		case "/auth/password/reset":
		default:
			t.Errorf("unexpected path %s", r.URL.Path)
		}
	}))
	defer server.Close()

	service := NewAuthService(server.URL, nil)

	if err := service.RequestPasswordReset(context.Background(), "singer@example.com"); err != nil {
		t.Fatalf("request failed: %v", err)
	}
	if requestPayload["email"] != "singer@example.com" || requestPayload["reset_url"] == "" {
		t.Errorf("unexpected request payload: %v", requestPayload)
	}

	if err := service.ResetPassword(context.Background(), "reset-token", "new-pw"); err != nil {
		t.Fatalf("reset failed: %v", err)
	}
}
