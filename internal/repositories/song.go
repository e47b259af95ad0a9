package repositories

import (
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/cantus/hymnal/internal/models"
	"github.com/cantus/hymnal/internal/shared"
)

// SongRepository persists the synced song catalog.
//
// The catalog is full-replace: [SongRepository.ReplaceAll] clears and bulk
// inserts in one transaction, so a failed sync never leaves a half-written
// generation and songs dropped from the remote catalog disappear locally.
type SongRepository struct {
	db *sql.DB
}

// NewSongRepository creates a new SongRepository with the given database connection
func NewSongRepository(db *sql.DB) *SongRepository {
	return &SongRepository{db: db}
}

// ReplaceAll swaps the entire song table for the given catalog in one transaction.
func (r *SongRepository) ReplaceAll(songs []models.Song) error {
	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM songs"); err != nil {
		return fmt.Errorf("failed to clear songs: %w", err)
	}

	stmt, err := tx.Prepare(`
		INSERT INTO songs (id, ordinal, title, verses, text_authors, notations, melody_authors, note_refs, categories)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer stmt.Close()

	for i := range songs {
		song := &songs[i]
		verses, err := encodeColumn(song.ID, song.Verses)
		if err != nil {
			return err
		}
		textAuthors, err := encodeColumn(song.ID, song.TextAuthors)
		if err != nil {
			return err
		}
		notations, err := encodeColumn(song.ID, song.Notations)
		if err != nil {
			return err
		}
		melodyAuthors, err := encodeColumn(song.ID, song.MelodyAuthors)
		if err != nil {
			return err
		}
		noteRefs, err := encodeColumn(song.ID, song.NoteRefs)
		if err != nil {
			return err
		}
		categories, err := encodeColumn(song.ID, song.Categories)
		if err != nil {
			return err
		}

		_, err = stmt.Exec(song.ID, song.Ordinal, song.Title,
			verses, textAuthors, notations, melodyAuthors, noteRefs, categories)
		if err != nil {
			return fmt.Errorf("failed to insert song %s: %w", song.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit catalog: %w", err)
	}

	return nil
}

// Get retrieves a song by ID.
func (r *SongRepository) Get(id string) (*models.Song, error) {
	query := `
		SELECT id, ordinal, title, verses, text_authors, notations, melody_authors, note_refs, categories
		FROM songs
		WHERE id = ?
	`
	song, err := scanSong(r.db.QueryRow(query, id))
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("%w: %s", shared.ErrSongNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query song: %w", err)
	}
	return song, nil
}

// List retrieves the whole catalog in ordinal order.
func (r *SongRepository) List() ([]models.Song, error) {
	query := `
		SELECT id, ordinal, title, verses, text_authors, notations, melody_authors, note_refs, categories
		FROM songs
		ORDER BY ordinal ASC
	`

	rows, err := r.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to query songs: %w", err)
	}
	defer rows.Close()

	var songs []models.Song
	for rows.Next() {
		song, err := scanSong(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan song: %w", err)
		}
		songs = append(songs, *song)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return songs, nil
}

// Count returns the number of locally cached songs.
func (r *SongRepository) Count() (int, error) {
	return countRows(r.db, "songs")
}

// Clear removes every cached song.
func (r *SongRepository) Clear() error {
	if _, err := r.db.Exec("DELETE FROM songs"); err != nil {
		return fmt.Errorf("failed to clear songs: %w", err)
	}
	return nil
}

// encodeColumn marshals one nested song part into its JSON column.
func encodeColumn(songID string, part any) (string, error) {
	data, err := json.Marshal(part)
	if err != nil {
		return "", fmt.Errorf("failed to encode song %s: %w", songID, err)
	}
	return string(data), nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

// scanSong decodes one songs row back into a [models.Song].
func scanSong(row rowScanner) (*models.Song, error) {
	var (
		song                                models.Song
		verses, textAuthors, notations      string
		melodyAuthors, noteRefs, categories string
	)

	err := row.Scan(&song.ID, &song.Ordinal, &song.Title,
		&verses, &textAuthors, &notations, &melodyAuthors, &noteRefs, &categories)
	if err != nil {
		return nil, err
	}

	decode := func(col string, target any) error {
		if col == "" {
			return nil
		}
		return json.Unmarshal([]byte(col), target)
	}

	if err := decode(verses, &song.Verses); err != nil {
		return nil, fmt.Errorf("failed to decode song %s: %w", song.ID, err)
	}
	if err := decode(textAuthors, &song.TextAuthors); err != nil {
		return nil, fmt.Errorf("failed to decode song %s: %w", song.ID, err)
	}
	if err := decode(notations, &song.Notations); err != nil {
		return nil, fmt.Errorf("failed to decode song %s: %w", song.ID, err)
	}
	if err := decode(melodyAuthors, &song.MelodyAuthors); err != nil {
		return nil, fmt.Errorf("failed to decode song %s: %w", song.ID, err)
	}
	if err := decode(noteRefs, &song.NoteRefs); err != nil {
		return nil, fmt.Errorf("failed to decode song %s: %w", song.ID, err)
	}
	if err := decode(categories, &song.Categories); err != nil {
		return nil, fmt.Errorf("failed to decode song %s: %w", song.ID, err)
	}

	return &song, nil
}
