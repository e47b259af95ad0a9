package repositories

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/cantus/hymnal/internal/models"
)

// SessionRepository persists the auth singleton.
//
// At most one session row exists; Save clears the table before inserting
// so a crash between the two statements leaves at worst an empty table,
// never two competing sessions.
type SessionRepository struct {
	db *sql.DB
}

// NewSessionRepository creates a new SessionRepository with the given database connection
func NewSessionRepository(db *sql.DB) *SessionRepository {
	return &SessionRepository{db: db}
}

// Save replaces the stored session with the given one.
func (r *SessionRepository) Save(session models.Session) error {
	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM auth"); err != nil {
		return fmt.Errorf("failed to clear auth: %w", err)
	}

	_, err = tx.Exec(
		"INSERT INTO auth (id, access_token, refresh_token, expires_at) VALUES (?, ?, ?, ?)",
		models.SessionKey, session.AccessToken, session.RefreshToken, session.ExpiresAt.UnixMilli(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert session: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit session: %w", err)
	}

	return nil
}

// Get returns the stored session, or nil when none exists.
func (r *SessionRepository) Get() (*models.Session, error) {
	var (
		session   models.Session
		expiresAt int64
	)

	err := r.db.QueryRow("SELECT id, access_token, refresh_token, expires_at FROM auth WHERE id = ?", models.SessionKey).
		Scan(&session.ID, &session.AccessToken, &session.RefreshToken, &expiresAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query session: %w", err)
	}

	session.ExpiresAt = time.UnixMilli(expiresAt)
	return &session, nil
}

// Clear deletes the stored session.
func (r *SessionRepository) Clear() error {
	if _, err := r.db.Exec("DELETE FROM auth"); err != nil {
		return fmt.Errorf("failed to clear auth: %w", err)
	}
	return nil
}
