package shared

import "fmt"

var (
	// Configuration errors
	ErrMissingConfig = fmt.Errorf("configuration not found")
	ErrInvalidConfig = fmt.Errorf("invalid configuration")

	// Authentication errors
	ErrAuthFailed         = fmt.Errorf("authentication failed")
	ErrNotAuthenticated   = fmt.Errorf("not authenticated")
	ErrNoSession          = fmt.Errorf("no local session")
	ErrTokenExpired       = fmt.Errorf("access token expired")
	ErrRefreshFailed      = fmt.Errorf("token refresh failed")
	ErrNoRefreshToken     = fmt.Errorf("no refresh token available")
	ErrInvalidCredentials = fmt.Errorf("invalid credentials")

	// API and sync errors
	ErrAPIRequest     = fmt.Errorf("API request failed")
	ErrSyncInProgress = fmt.Errorf("sync already in progress")
	ErrSyncFailed     = fmt.Errorf("sync failed")

	// Local store errors
	ErrSongNotFound     = fmt.Errorf("song not found")
	ErrAssetNotFound    = fmt.Errorf("asset not found")
	ErrPlaylistNotFound = fmt.Errorf("playlist not found")

	// Input validation errors
	ErrInvalidInput    = fmt.Errorf("invalid input")
	ErrMissingArgument = fmt.Errorf("missing required argument")
	ErrInvalidArgument = fmt.Errorf("invalid argument")
)
