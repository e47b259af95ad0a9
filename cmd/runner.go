package main

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/cantus/hymnal/internal/repositories"
	"github.com/cantus/hymnal/internal/services"
	"github.com/cantus/hymnal/internal/session"
	"github.com/cantus/hymnal/internal/shared"
	"github.com/cantus/hymnal/internal/tasks"
	"github.com/charmbracelet/log"
	"github.com/urfave/cli/v3"
)

// Runner holds all dependencies for CLI commands and provides methods for each command action.
type Runner struct {
	config    *shared.Config
	db        *sql.DB
	session   *session.Manager
	content   *services.ContentService
	engine    *tasks.SyncEngine
	songs     *repositories.SongRepository
	files     *repositories.FileRepository
	playlists *repositories.PlaylistRepository
	prefs     *repositories.PreferencesRepository
	logger    *log.Logger
	output    io.Writer
}

// RunnerOpts contains configuration options for creating a Runner.
type RunnerOpts struct {
	Config    *shared.Config
	DB        *sql.DB
	Session   *session.Manager
	Content   *services.ContentService
	Songs     *repositories.SongRepository
	Files     *repositories.FileRepository
	Playlists *repositories.PlaylistRepository
	Prefs     *repositories.PreferencesRepository
	Logger    *log.Logger
	Output    io.Writer
}

// NewRunner creates a new Runner with the provided configuration
func NewRunner(opts RunnerOpts) *Runner {
	if opts.Config == nil {
		opts.Config = shared.DefaultConfig()
	}
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	if opts.Output == nil {
		opts.Output = os.Stdout
	}

	engine := tasks.NewSyncEngine(tasks.SyncEngineOpts{
		Content:   opts.Content,
		Songs:     opts.Songs,
		Files:     opts.Files,
		Logger:    opts.Logger,
		BatchSize: opts.Config.Sync.BatchSize,
	})

	return &Runner{
		config:    opts.Config,
		db:        opts.DB,
		session:   opts.Session,
		content:   opts.Content,
		engine:    engine,
		songs:     opts.Songs,
		files:     opts.Files,
		playlists: opts.Playlists,
		prefs:     opts.Prefs,
		logger:    opts.Logger,
		output:    opts.Output,
	}
}

// SetLogger swaps the runner's logger.
func (r *Runner) SetLogger(logger *log.Logger) {
	r.logger = logger
}

func (r *Runner) register() []*cli.Command {
	commands := []*cli.Command{}
	for _, fn := range [](func(*Runner) *cli.Command){
		setupCommand, authCommand, syncCommand, songsCommand, playlistCommand, prefsCommand, tuiCommand,
	} {
		commands = append(commands, fn(r))
	}

	return commands
}

func (r *Runner) writeJSON(data any, pretty bool) error {
	var output []byte
	var err error

	if pretty {
		output, err = json.MarshalIndent(data, "", "  ")
	} else {
		output, err = json.Marshal(data)
	}

	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}

	if _, err := r.output.Write(output); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}

	if _, err := r.output.Write([]byte("\n")); err != nil {
		return fmt.Errorf("failed to write newline: %w", err)
	}

	return nil
}

func (r *Runner) writePlain(format string, args ...any) error {
	text := fmt.Sprintf(format, args...)
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func (r *Runner) writePlainln(format string, args ...any) error {
	text := "\n" + fmt.Sprintf(format, args...) + "\n"
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func (r *Runner) writePlainHeader(title string) {
	r.writePlain("═══════════════════════════════════════\n")
	r.writePlain("%v\n", title)
	r.writePlain("═══════════════════════════════════════\n")
}
