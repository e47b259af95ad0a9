package services

import (
	"context"

	"github.com/cantus/hymnal/internal/models"
)

// ContentAPI is the remote gateway for synced content.
type ContentAPI interface {
	// FetchCatalog returns the full approved song catalog. Response order
	// defines each song's 1-based ordinal.
	FetchCatalog(ctx context.Context) ([]models.Song, error)

	// FetchAsset downloads one binary asset by its server-side id.
	FetchAsset(ctx context.Context, assetID string) ([]byte, error)
}

// AuthAPI is the remote gateway for session lifecycle operations.
type AuthAPI interface {
	Login(ctx context.Context, email, password string) (*AuthTokens, error)
	Refresh(ctx context.Context, refreshToken string) (*AuthTokens, error)
	Logout(ctx context.Context, refreshToken string) error
	Me(ctx context.Context, accessToken string) (*Profile, error)
	Register(ctx context.Context, req RegisterRequest) error
	RequestPasswordReset(ctx context.Context, email string) error
	ResetPassword(ctx context.Context, token, password string) error
}

// TokenSource supplies bearer tokens for authenticated requests and
// performs the single refresh the retry protocol allows.
type TokenSource interface {
	// CurrentToken returns a usable access token or "" when no session exists.
	CurrentToken(ctx context.Context) (string, error)

	// Refresh exchanges the stored refresh token for a new pair.
	// Returns false on any failure, leaving existing tokens untouched.
	Refresh(ctx context.Context) bool
}

// ErrorObserver inspects every remote failure before it is returned,
// so "credentials permanently rejected" signals are never swallowed.
// Observe reports whether it consumed the error as an invalidation.
type ErrorObserver interface {
	Observe(ctx context.Context, err error) bool
}

// AuthTokens is the token pair returned by login and refresh.
type AuthTokens struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`

	// Expires is the access token lifetime in milliseconds. The server
	// may omit it; callers fall back to the token's exp claim.
	Expires int64 `json:"expires"`
}

// Profile is the authenticated user's account record.
type Profile struct {
	ID        string `json:"id"`
	Email     string `json:"email"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Role      string `json:"role"`
}

// RegisterRequest carries the fields of the activation-code registration endpoint.
type RegisterRequest struct {
	Email          string `json:"email"`
	Password       string `json:"password"`
	ActivationCode string `json:"code"`
	FirstName      string `json:"first_name,omitempty"`
	LastName       string `json:"last_name,omitempty"`
}
