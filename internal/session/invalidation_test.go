package session

import (
	"context"
	"fmt"
	"net/http"
	"testing"

	"github.com/cantus/hymnal/internal/models"
	"github.com/cantus/hymnal/internal/repositories"
	"github.com/cantus/hymnal/internal/services"
	"github.com/cantus/hymnal/internal/shared"
)

func TestIsInvalidCredentials(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{
			name: "nil error",
			err:  nil,
			want: false,
		},
		{
			name: "plain network error",
			err:  fmt.Errorf("network timeout"),
			want: false,
		},
		{
			name: "literal message substring",
			err:  fmt.Errorf("request failed: Invalid user credentials"),
			want: true,
		},
		{
			name: "structured error list message",
			err: &services.APIError{
				StatusCode: http.StatusForbidden,
				Errors: []services.APIErrorItem{
					{Message: "Invalid user credentials."},
				},
			},
			want: true,
		},
		{
			name: "extensions code",
			err: &services.APIError{
				StatusCode: http.StatusForbidden,
				Errors: []services.APIErrorItem{
					{
						Message:    "Access denied",
						Extensions: services.APIErrorExtensions{Code: services.CodeInvalidCredentials},
					},
				},
			},
			want: true,
		},
		{
			name: "raw 401 without body",
			err:  &services.APIError{StatusCode: http.StatusUnauthorized},
			want: true,
		},
		{
			name: "500 with unrelated message",
			err: &services.APIError{
				StatusCode: http.StatusInternalServerError,
				Errors:     []services.APIErrorItem{{Message: "database unavailable"}},
			},
			want: false,
		},
		{
			name: "wrapped api error",
			err:  fmt.Errorf("fetch failed: %w", &services.APIError{StatusCode: http.StatusUnauthorized}),
			want: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsInvalidCredentials(tt.err); got != tt.want {
				t.Errorf("IsInvalidCredentials(%v) = %v, want %v", tt.err, got, tt.want)
			}
		})
	}
}

func TestInvalidationHandlerObserve(t *testing.T) {
	t.Run("invalid credentials wipe all tables", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		songs := repositories.NewSongRepository(db)
		if err := songs.ReplaceAll([]models.Song{{ID: "a", Ordinal: 1, Title: "Song"}}); err != nil {
			t.Fatalf("failed to seed songs: %v", err)
		}
		sessions := repositories.NewSessionRepository(db)
		if err := sessions.Save(models.Session{ID: models.SessionKey, AccessToken: "t"}); err != nil {
			t.Fatalf("failed to seed session: %v", err)
		}

		var gotReason LogoutReason
		handler := NewInvalidationHandler(db, shared.NewLogger(nil), func(reason LogoutReason) {
			gotReason = reason
		})

		apiErr := &services.APIError{
			StatusCode: http.StatusForbidden,
			Errors: []services.APIErrorItem{
				{Extensions: services.APIErrorExtensions{Code: services.CodeInvalidCredentials}},
			},
		}
		if !handler.Observe(context.Background(), apiErr) {
			t.Fatal("expected Observe to consume the error")
		}

		if gotReason != ReasonAccountDeleted {
			t.Errorf("expected account_deleted reason, got %q", gotReason)
		}

		count, err := songs.Count()
		if err != nil {
			t.Fatalf("failed to count songs: %v", err)
		}
		if count != 0 {
			t.Errorf("expected songs wiped, got %d", count)
		}

		stored, err := sessions.Get()
		if err != nil {
			t.Fatalf("failed to read session: %v", err)
		}
		if stored != nil {
			t.Errorf("expected session wiped, got %+v", stored)
		}
	})

	t.Run("transient error leaves data intact", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		songs := repositories.NewSongRepository(db)
		if err := songs.ReplaceAll([]models.Song{{ID: "a", Ordinal: 1, Title: "Song"}}); err != nil {
			t.Fatalf("failed to seed songs: %v", err)
		}

		called := false
		handler := NewInvalidationHandler(db, shared.NewLogger(nil), func(LogoutReason) { called = true })

		if handler.Observe(context.Background(), fmt.Errorf("network timeout")) {
			t.Error("expected Observe to ignore a transient error")
		}
		if called {
			t.Error("logout callback must not fire for transient errors")
		}

		count, _ := songs.Count()
		if count != 1 {
			t.Errorf("expected songs preserved, got %d", count)
		}
	})
}
