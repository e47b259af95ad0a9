package session

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"strings"

	"github.com/cantus/hymnal/internal/repositories"
	"github.com/cantus/hymnal/internal/services"
	"github.com/charmbracelet/log"
)

// LogoutReason is a machine-readable code carried to the login surface
// after a forced logout.
type LogoutReason string

const (
	ReasonAccountDeleted     LogoutReason = "account_deleted"
	ReasonSessionExpired     LogoutReason = "session_expired"
	ReasonInvalidCredentials LogoutReason = "invalid_credentials"
)

// ReasonMessages maps logout reasons to user-facing text.
var ReasonMessages = map[LogoutReason]string{
	ReasonAccountDeleted:     "Your account was deleted. All local data has been removed.",
	ReasonSessionExpired:     "Your session has expired. Please log in again.",
	ReasonInvalidCredentials: "Invalid credentials. Please log in again.",
}

// invalidCredentialsMessage is the literal the backend uses for permanent
// credential rejections.
const invalidCredentialsMessage = "Invalid user credentials"

// IsInvalidCredentials reports whether err represents a permanent
// rejection of the current credentials, as opposed to a transient fault.
//
// Detection is layered: literal message substring, structured error-list
// substring, nested extensions code, then raw 401 status.
func IsInvalidCredentials(err error) bool {
	if err == nil {
		return false
	}

	if strings.Contains(err.Error(), invalidCredentialsMessage) {
		return true
	}

	var apiErr *services.APIError
	if !errors.As(err, &apiErr) {
		return false
	}

	for _, item := range apiErr.Errors {
		if strings.Contains(item.Message, invalidCredentialsMessage) {
			return true
		}
	}

	if apiErr.HasCode(services.CodeInvalidCredentials) {
		return true
	}

	return apiErr.StatusCode == http.StatusUnauthorized
}

// InvalidationHandler wipes local state when the backend permanently
// rejects the session. It implements [services.ErrorObserver] so every
// collaborator that makes remote calls can route failures through it.
type InvalidationHandler struct {
	db       *sql.DB
	logger   *log.Logger
	onLogout func(LogoutReason)
}

// NewInvalidationHandler creates a handler over the given store.
// onLogout, if non-nil, is invoked after the wipe with the reason code so
// the caller can route the user back to login.
func NewInvalidationHandler(db *sql.DB, logger *log.Logger, onLogout func(LogoutReason)) *InvalidationHandler {
	return &InvalidationHandler{db: db, logger: logger, onLogout: onLogout}
}

// Observe checks one remote failure and, on a positive detection, performs
// the full wipe + forced logout. Reports whether the error was consumed as
// an invalidation.
func (h *InvalidationHandler) Observe(ctx context.Context, err error) bool {
	if !IsInvalidCredentials(err) {
		return false
	}

	h.Invalidate(ctx, ReasonAccountDeleted)
	return true
}

// Invalidate wipes every local table and fires the forced-logout callback.
// The wipe is best-effort: a partial failure is logged, not returned, so
// the logout still proceeds.
func (h *InvalidationHandler) Invalidate(ctx context.Context, reason LogoutReason) {
	h.logger.Warn("credentials no longer valid, clearing local data", "reason", reason)

	if err := repositories.WipeAll(h.db); err != nil {
		h.logger.Error("failed to clear local data", "error", err)
	}

	if h.onLogout != nil {
		h.onLogout(reason)
	}
}
