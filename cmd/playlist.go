package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/cantus/hymnal/internal/formatter"
	"github.com/cantus/hymnal/internal/models"
	"github.com/cantus/hymnal/internal/shared"
	"github.com/urfave/cli/v3"
)

// PlaylistCreate creates an empty playlist.
func (r *Runner) PlaylistCreate(ctx context.Context, cmd *cli.Command) error {
	name := cmd.StringArg("name")
	if name == "" {
		return fmt.Errorf("%w: playlist name is required", shared.ErrMissingArgument)
	}

	playlist, err := r.playlists.Create(name, cmd.String("emoji"))
	if err != nil {
		return fmt.Errorf("failed to create playlist: %w", err)
	}

	r.writePlain("✓ Created playlist '%s'\n", playlist.Name)
	r.writePlain("  ID: %s\n", playlist.ID)
	return nil
}

// PlaylistList lists all local playlists.
func (r *Runner) PlaylistList(ctx context.Context, cmd *cli.Command) error {
	playlists, err := r.playlists.List()
	if err != nil {
		return fmt.Errorf("failed to list playlists: %w", err)
	}

	if len(playlists) == 0 {
		return r.writePlain("No playlists. Create one with 'hymnal playlist create <name>'.\n")
	}

	r.writePlainHeader(fmt.Sprintf("Playlists (%d)", len(playlists)))
	for _, playlist := range playlists {
		label := playlist.Name
		if playlist.Emoji != "" {
			label = playlist.Emoji + " " + label
		}
		r.writePlain("%s · %d songs · %s\n", label, len(playlist.SongIDs), playlist.ID)
	}

	return nil
}

// PlaylistShow shows one playlist with its resolved songs.
func (r *Runner) PlaylistShow(ctx context.Context, cmd *cli.Command) error {
	playlist, err := r.requirePlaylist(cmd)
	if err != nil {
		return err
	}

	songs, missing := r.resolveSongs(playlist)

	title := playlist.Name
	if playlist.Emoji != "" {
		title = playlist.Emoji + " " + title
	}
	r.writePlainHeader(title)

	if len(songs) == 0 {
		r.writePlain("Empty playlist\n")
	}
	for i, song := range songs {
		r.writePlain("%d. Nr. %d · %s\n", i+1, song.Ordinal, song.Title)
	}
	if missing > 0 {
		r.writePlain("(%d songs no longer in the catalog)\n", missing)
	}

	return nil
}

// PlaylistAdd adds songs by number, skipping ones already present.
func (r *Runner) PlaylistAdd(ctx context.Context, cmd *cli.Command) error {
	playlist, err := r.requirePlaylist(cmd)
	if err != nil {
		return err
	}

	var songIDs []string
	for _, ref := range cmd.StringSlice("song") {
		song, err := r.findSong(ref)
		if err != nil {
			return err
		}
		songIDs = append(songIDs, song.ID)
	}

	if err := r.playlists.AddSongs(playlist.ID, songIDs); err != nil {
		return fmt.Errorf("failed to add songs: %w", err)
	}

	return r.writePlain("✓ Added %d songs to '%s'\n", len(songIDs), playlist.Name)
}

// PlaylistRemove removes one song from a playlist.
func (r *Runner) PlaylistRemove(ctx context.Context, cmd *cli.Command) error {
	playlist, err := r.requirePlaylist(cmd)
	if err != nil {
		return err
	}

	song, err := r.findSong(cmd.String("song"))
	if err != nil {
		return err
	}

	if err := r.playlists.RemoveSong(playlist.ID, song.ID); err != nil {
		return fmt.Errorf("failed to remove song: %w", err)
	}

	return r.writePlain("✓ Removed Nr. %d from '%s'\n", song.Ordinal, playlist.Name)
}

// PlaylistReorder replaces a playlist's order with the given song numbers.
// The new order must cover exactly the songs already in the playlist.
func (r *Runner) PlaylistReorder(ctx context.Context, cmd *cli.Command) error {
	playlist, err := r.requirePlaylist(cmd)
	if err != nil {
		return err
	}

	var songIDs []string
	for _, ref := range cmd.StringSlice("song") {
		song, err := r.findSong(ref)
		if err != nil {
			return err
		}
		songIDs = append(songIDs, song.ID)
	}

	if err := r.playlists.Reorder(playlist.ID, songIDs); err != nil {
		return fmt.Errorf("failed to reorder playlist: %w", err)
	}

	return r.writePlain("✓ Reordered '%s'\n", playlist.Name)
}

// PlaylistRename renames a playlist, optionally replacing its emoji.
func (r *Runner) PlaylistRename(ctx context.Context, cmd *cli.Command) error {
	playlist, err := r.requirePlaylist(cmd)
	if err != nil {
		return err
	}

	name := cmd.String("name")
	emoji := cmd.String("emoji")
	if emoji == "" {
		emoji = playlist.Emoji
	}

	if err := r.playlists.Update(playlist.ID, name, emoji); err != nil {
		return fmt.Errorf("failed to rename playlist: %w", err)
	}

	return r.writePlain("✓ Renamed '%s' to '%s'\n", playlist.Name, name)
}

// PlaylistDelete deletes a playlist. Songs themselves stay cached.
func (r *Runner) PlaylistDelete(ctx context.Context, cmd *cli.Command) error {
	playlist, err := r.requirePlaylist(cmd)
	if err != nil {
		return err
	}

	if err := r.playlists.Delete(playlist.ID); err != nil {
		return fmt.Errorf("failed to delete playlist: %w", err)
	}

	return r.writePlain("✓ Deleted playlist '%s'\n", playlist.Name)
}

// PlaylistExport writes a playlist to csv, markdown, or text.
func (r *Runner) PlaylistExport(ctx context.Context, cmd *cli.Command) error {
	playlist, err := r.requirePlaylist(cmd)
	if err != nil {
		return err
	}

	songs, _ := r.resolveSongs(playlist)

	var data []byte
	switch format := cmd.String("format"); format {
	case "csv":
		data, err = formatter.ExportToCSV(playlist, songs)
	case "markdown", "md":
		data, err = formatter.ExportToMarkdown(playlist, songs)
	case "text", "txt":
		data, err = formatter.ExportToText(playlist, songs)
	default:
		return fmt.Errorf("%w: unknown format %q (csv, markdown, text)", shared.ErrInvalidArgument, format)
	}
	if err != nil {
		return fmt.Errorf("export failed: %w", err)
	}

	if outputPath := cmd.String("output"); outputPath != "" {
		if err := os.WriteFile(outputPath, data, 0644); err != nil {
			return fmt.Errorf("failed to write export: %w", err)
		}
		return r.writePlain("✓ Exported '%s' to %s\n", playlist.Name, outputPath)
	}

	return r.writePlain("%s", data)
}

// requirePlaylist resolves the id argument, matching playlist names as a
// convenience fallback.
func (r *Runner) requirePlaylist(cmd *cli.Command) (*models.Playlist, error) {
	arg := cmd.StringArg("id")
	if arg == "" {
		return nil, fmt.Errorf("%w: playlist id is required", shared.ErrMissingArgument)
	}

	playlist, err := r.playlists.Get(arg)
	if err == nil {
		return playlist, nil
	}

	playlists, listErr := r.playlists.List()
	if listErr != nil {
		return nil, fmt.Errorf("failed to load playlist: %w", err)
	}
	for i := range playlists {
		if strings.EqualFold(playlists[i].Name, arg) {
			return &playlists[i], nil
		}
	}

	return nil, fmt.Errorf("%w: %s", shared.ErrPlaylistNotFound, arg)
}

// resolveSongs maps a playlist's song ids onto cached songs, counting
// references the catalog no longer contains.
func (r *Runner) resolveSongs(playlist *models.Playlist) ([]models.Song, int) {
	var songs []models.Song
	missing := 0

	for _, id := range playlist.SongIDs {
		song, err := r.songs.Get(id)
		if err != nil {
			missing++
			continue
		}
		songs = append(songs, *song)
	}

	return songs, missing
}
