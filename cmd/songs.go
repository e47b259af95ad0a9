package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/cantus/hymnal/internal/formatter"
	"github.com/cantus/hymnal/internal/models"
	"github.com/cantus/hymnal/internal/shared"
	"github.com/urfave/cli/v3"
)

// SongsList lists the cached catalog, optionally grouped by category.
func (r *Runner) SongsList(ctx context.Context, cmd *cli.Command) error {
	songs, err := r.songs.List()
	if err != nil {
		return fmt.Errorf("failed to list songs: %w", err)
	}

	if len(songs) == 0 {
		return r.writePlain("No cached songs. Run 'hymnal sync run' first.\n")
	}

	if cmd.Bool("json") {
		return r.writeJSON(songs, cmd.Bool("pretty"))
	}

	if cmd.Bool("by-category") {
		groups := formatter.GroupByCategory(songs, r.config.Display.CategoryMergeThreshold)
		for _, group := range groups {
			r.writePlainln("%s (%d)", group.Name, len(group.Songs))
			for _, song := range group.Songs {
				r.writePlain("  %d · %s\n", song.Ordinal, song.Title)
			}
		}
		return nil
	}

	r.writePlainHeader(fmt.Sprintf("Songbook (%d songs)", len(songs)))
	for _, song := range songs {
		r.writePlain("%d · %s\n", song.Ordinal, song.Title)
	}

	return nil
}

// SongsShow prints one song's full text, looked up by song number.
func (r *Runner) SongsShow(ctx context.Context, cmd *cli.Command) error {
	arg := cmd.StringArg("number")
	if arg == "" {
		return fmt.Errorf("%w: song number is required", shared.ErrMissingArgument)
	}

	song, err := r.findSong(arg)
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		return r.writeJSON(song, true)
	}

	return r.writePlain("%s", formatter.SongText(song))
}

// SongsExport writes one song's full text to a file.
func (r *Runner) SongsExport(ctx context.Context, cmd *cli.Command) error {
	arg := cmd.StringArg("number")
	if arg == "" {
		return fmt.Errorf("%w: song number is required", shared.ErrMissingArgument)
	}

	song, err := r.findSong(arg)
	if err != nil {
		return err
	}

	outputPath := cmd.String("output")
	if outputPath == "" {
		outputPath = fmt.Sprintf("%d.txt", song.Ordinal)
	}

	if err := os.WriteFile(outputPath, formatter.SongText(song), 0644); err != nil {
		return fmt.Errorf("failed to write export: %w", err)
	}

	return r.writePlain("✓ Exported Nr. %d to %s\n", song.Ordinal, outputPath)
}

// findSong resolves a CLI song reference: a numeric argument matches the
// song number, anything else is treated as a raw id.
func (r *Runner) findSong(arg string) (*models.Song, error) {
	if ordinal, err := strconv.Atoi(arg); err == nil {
		songs, err := r.songs.List()
		if err != nil {
			return nil, fmt.Errorf("failed to list songs: %w", err)
		}
		for i := range songs {
			if songs[i].Ordinal == ordinal {
				return &songs[i], nil
			}
		}
		return nil, fmt.Errorf("%w: no song with number %d", shared.ErrSongNotFound, ordinal)
	}

	song, err := r.songs.Get(arg)
	if err != nil {
		if errors.Is(err, shared.ErrSongNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to load song: %w", err)
	}
	return song, nil
}
