package repositories

import (
	"database/sql"
	"fmt"

	"github.com/cantus/hymnal/internal/models"
)

// UserRepository persists the profile singleton paired with the session.
type UserRepository struct {
	db *sql.DB
}

// NewUserRepository creates a new UserRepository with the given database connection
func NewUserRepository(db *sql.DB) *UserRepository {
	return &UserRepository{db: db}
}

// Save replaces the stored user with the given one.
func (r *UserRepository) Save(user models.User) error {
	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM users"); err != nil {
		return fmt.Errorf("failed to clear users: %w", err)
	}

	_, err = tx.Exec(
		"INSERT INTO users (id, email, first_name, last_name, role, activated, skip_auth) VALUES (?, ?, ?, ?, ?, ?, ?)",
		user.ID, user.Email, user.FirstName, user.LastName, user.Role, user.Activated, user.SkipAuth,
	)
	if err != nil {
		return fmt.Errorf("failed to insert user: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit user: %w", err)
	}

	return nil
}

// Get returns the stored user, or nil when none exists.
func (r *UserRepository) Get() (*models.User, error) {
	var user models.User

	err := r.db.QueryRow("SELECT id, email, first_name, last_name, role, activated, skip_auth FROM users LIMIT 1").
		Scan(&user.ID, &user.Email, &user.FirstName, &user.LastName, &user.Role, &user.Activated, &user.SkipAuth)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query user: %w", err)
	}

	return &user, nil
}

// Clear deletes the stored user.
func (r *UserRepository) Clear() error {
	if _, err := r.db.Exec("DELETE FROM users"); err != nil {
		return fmt.Errorf("failed to clear users: %w", err)
	}
	return nil
}
