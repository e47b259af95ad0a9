package repositories

import (
	"database/sql"
	"fmt"

	"github.com/cantus/hymnal/internal/models"
	"github.com/cantus/hymnal/internal/shared"
)

// FileRepository persists downloaded note sheet blobs.
//
// Rows are keyed by the remote asset id. Coverage is best-effort relative
// to the song table: a song may reference assets that were never stored.
type FileRepository struct {
	db *sql.DB
}

// NewFileRepository creates a new FileRepository with the given database connection
func NewFileRepository(db *sql.DB) *FileRepository {
	return &FileRepository{db: db}
}

// Put upserts one asset blob.
func (r *FileRepository) Put(blob models.AssetBlob) error {
	query := `
		INSERT INTO files (id, data, filename) VALUES (?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET data = excluded.data, filename = excluded.filename
	`
	if _, err := r.db.Exec(query, blob.ID, blob.Data, blob.Filename); err != nil {
		return fmt.Errorf("failed to store asset %s: %w", blob.ID, err)
	}
	return nil
}

// Get retrieves an asset blob by its remote id.
func (r *FileRepository) Get(id string) (*models.AssetBlob, error) {
	var blob models.AssetBlob
	err := r.db.QueryRow("SELECT id, data, filename FROM files WHERE id = ?", id).
		Scan(&blob.ID, &blob.Data, &blob.Filename)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("%w: %s", shared.ErrAssetNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query asset: %w", err)
	}
	return &blob, nil
}

// Has reports whether an asset is stored locally without loading its data.
func (r *FileRepository) Has(id string) (bool, error) {
	var exists bool
	err := r.db.QueryRow("SELECT EXISTS(SELECT 1 FROM files WHERE id = ?)", id).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check asset: %w", err)
	}
	return exists, nil
}

// Count returns the number of stored assets.
func (r *FileRepository) Count() (int, error) {
	return countRows(r.db, "files")
}

// Clear removes every stored asset.
func (r *FileRepository) Clear() error {
	if _, err := r.db.Exec("DELETE FROM files"); err != nil {
		return fmt.Errorf("failed to clear files: %w", err)
	}
	return nil
}
