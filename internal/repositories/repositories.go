package repositories

import (
	"database/sql"
	"errors"
	"fmt"
)

// Tables lists every user-data table in wipe order.
var Tables = []string{"auth", "users", "songs", "files", "playlists", "preferences"}

// WipeAll clears every local table.
//
// First tier attempts a single transaction. If that fails, each table is
// cleared independently so one failing table doesn't block the others; the
// collected per-table failures are returned joined.
func WipeAll(db *sql.DB) error {
	if err := wipeInTx(db); err == nil {
		return nil
	}

	var errs []error
	for _, table := range Tables {
		if _, err := db.Exec("DELETE FROM " + table); err != nil {
			errs = append(errs, fmt.Errorf("failed to clear %s: %w", table, err))
		}
	}
	return errors.Join(errs...)
}

func wipeInTx(db *sql.DB) error {
	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	for _, table := range Tables {
		if _, err := tx.Exec("DELETE FROM " + table); err != nil {
			return fmt.Errorf("failed to clear %s: %w", table, err)
		}
	}

	return tx.Commit()
}

// countRows returns the row count of a table.
func countRows(db *sql.DB, table string) (int, error) {
	var count int
	if err := db.QueryRow("SELECT COUNT(*) FROM " + table).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count %s: %w", table, err)
	}
	return count, nil
}
