package repositories

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/cantus/hymnal/internal/models"
	"github.com/cantus/hymnal/internal/shared"
)

// PlaylistRepository persists user-created playlists.
//
// Playlists live independently of the sync lifecycle: song ids they hold
// may dangle after a resync and are filtered out at read time by callers.
type PlaylistRepository struct {
	db *sql.DB
}

// NewPlaylistRepository creates a new PlaylistRepository with the given database connection
func NewPlaylistRepository(db *sql.DB) *PlaylistRepository {
	return &PlaylistRepository{db: db}
}

// Create inserts a new empty playlist with a generated ID.
func (r *PlaylistRepository) Create(name, emoji string) (*models.Playlist, error) {
	now := time.Now()
	playlist := models.Playlist{
		ID:        shared.GenerateID(),
		Name:      name,
		Emoji:     emoji,
		SongIDs:   []string{},
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := playlist.Validate(); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	query := `
		INSERT INTO playlists (id, name, emoji, song_ids, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`
	_, err := r.db.Exec(query, playlist.ID, playlist.Name, playlist.Emoji, "[]", playlist.CreatedAt, playlist.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to insert playlist: %w", err)
	}

	return &playlist, nil
}

// Get retrieves a playlist by ID.
func (r *PlaylistRepository) Get(id string) (*models.Playlist, error) {
	query := `
		SELECT id, name, emoji, song_ids, created_at, updated_at
		FROM playlists
		WHERE id = ?
	`
	playlist, err := scanPlaylist(r.db.QueryRow(query, id))
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("%w: %s", shared.ErrPlaylistNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query playlist: %w", err)
	}
	return playlist, nil
}

// List retrieves all playlists, newest first.
func (r *PlaylistRepository) List() ([]models.Playlist, error) {
	query := `
		SELECT id, name, emoji, song_ids, created_at, updated_at
		FROM playlists
		ORDER BY created_at DESC
	`

	rows, err := r.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to query playlists: %w", err)
	}
	defer rows.Close()

	var playlists []models.Playlist
	for rows.Next() {
		playlist, err := scanPlaylist(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan playlist: %w", err)
		}
		playlists = append(playlists, *playlist)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return playlists, nil
}

// Update persists name/emoji changes to an existing playlist.
func (r *PlaylistRepository) Update(id string, name, emoji string) error {
	playlist, err := r.Get(id)
	if err != nil {
		return err
	}

	if name != "" {
		playlist.Name = name
	}
	if emoji != "" {
		playlist.Emoji = emoji
	}

	return r.save(playlist)
}

// Delete removes a playlist by ID.
func (r *PlaylistRepository) Delete(id string) error {
	result, err := r.db.Exec("DELETE FROM playlists WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete playlist: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("%w: %s", shared.ErrPlaylistNotFound, id)
	}

	return nil
}

// AddSong appends a song id to the playlist. Adding an id already present
// is a no-op.
func (r *PlaylistRepository) AddSong(playlistID, songID string) error {
	playlist, err := r.Get(playlistID)
	if err != nil {
		return err
	}

	if playlist.Contains(songID) {
		return nil
	}

	playlist.SongIDs = append(playlist.SongIDs, songID)
	return r.save(playlist)
}

// AddSongs appends multiple song ids, skipping those already present.
func (r *PlaylistRepository) AddSongs(playlistID string, songIDs []string) error {
	playlist, err := r.Get(playlistID)
	if err != nil {
		return err
	}

	added := false
	for _, songID := range songIDs {
		if !playlist.Contains(songID) {
			playlist.SongIDs = append(playlist.SongIDs, songID)
			added = true
		}
	}
	if !added {
		return nil
	}

	return r.save(playlist)
}

// RemoveSong removes a song id from the playlist.
func (r *PlaylistRepository) RemoveSong(playlistID, songID string) error {
	playlist, err := r.Get(playlistID)
	if err != nil {
		return err
	}

	filtered := playlist.SongIDs[:0]
	for _, id := range playlist.SongIDs {
		if id != songID {
			filtered = append(filtered, id)
		}
	}
	playlist.SongIDs = filtered

	return r.save(playlist)
}

// Reorder replaces the playlist's song order wholesale.
func (r *PlaylistRepository) Reorder(playlistID string, songIDs []string) error {
	playlist, err := r.Get(playlistID)
	if err != nil {
		return err
	}

	playlist.SongIDs = songIDs
	return r.save(playlist)
}

// save validates and writes the playlist back, bumping updated_at.
func (r *PlaylistRepository) save(playlist *models.Playlist) error {
	if err := playlist.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	songIDs, err := json.Marshal(playlist.SongIDs)
	if err != nil {
		return fmt.Errorf("failed to encode song ids: %w", err)
	}

	playlist.UpdatedAt = time.Now()

	query := `
		UPDATE playlists
		SET name = ?, emoji = ?, song_ids = ?, updated_at = ?
		WHERE id = ?
	`
	result, err := r.db.Exec(query, playlist.Name, playlist.Emoji, string(songIDs), playlist.UpdatedAt, playlist.ID)
	if err != nil {
		return fmt.Errorf("failed to update playlist: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("%w: %s", shared.ErrPlaylistNotFound, playlist.ID)
	}

	return nil
}

// scanPlaylist decodes one playlists row.
func scanPlaylist(row rowScanner) (*models.Playlist, error) {
	var (
		playlist models.Playlist
		songIDs  string
	)

	err := row.Scan(&playlist.ID, &playlist.Name, &playlist.Emoji, &songIDs, &playlist.CreatedAt, &playlist.UpdatedAt)
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal([]byte(songIDs), &playlist.SongIDs); err != nil {
		return nil, fmt.Errorf("failed to decode song ids: %w", err)
	}

	return &playlist, nil
}
