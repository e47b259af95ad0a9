// submodule cmd contains command definitions
package main

import "github.com/urfave/cli/v3"

// setupCommand handles database initialization and config scaffolding.
func setupCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "setup",
		Usage: "Initialize database and run migrations",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to configuration file",
				Value:   "config.toml",
			},
		},
		Action: r.Setup,
	}
}

// authCommand handles the account lifecycle against the backend.
func authCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "auth",
		Usage: "Manage authentication",
		Commands: []*cli.Command{
			{
				Name:  "login",
				Usage: "Log in with email and password",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "email",
						Aliases:  []string{"e"},
						Usage:    "Account email",
						Required: true,
					},
					&cli.StringFlag{
						Name:     "password",
						Aliases:  []string{"p"},
						Usage:    "Account password",
						Required: true,
					},
				},
				Action: r.AuthLogin,
			},
			{
				Name:   "logout",
				Usage:  "Terminate the session and clear stored tokens",
				Action: r.AuthLogout,
			},
			{
				Name:  "register",
				Usage: "Create an account with an activation code",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "email", Required: true, Usage: "Account email"},
					&cli.StringFlag{Name: "password", Required: true, Usage: "Account password"},
					&cli.StringFlag{Name: "first-name", Usage: "First name"},
					&cli.StringFlag{Name: "last-name", Usage: "Last name"},
					&cli.StringFlag{Name: "code", Required: true, Usage: "Activation code"},
				},
				Action: r.AuthRegister,
			},
			{
				Name:   "status",
				Usage:  "Show the current session and user",
				Action: r.AuthStatus,
			},
			{
				Name:  "password",
				Usage: "Password reset operations",
				Commands: []*cli.Command{
					{
						Name:  "request",
						Usage: "Request a password reset mail",
						Arguments: []cli.Argument{
							&cli.StringArg{Name: "email"},
						},
						Action: r.AuthPasswordRequest,
					},
					{
						Name:  "reset",
						Usage: "Complete a password reset with the mailed token",
						Flags: []cli.Flag{
							&cli.StringFlag{Name: "token", Required: true, Usage: "Reset token from the mail"},
							&cli.StringFlag{Name: "password", Required: true, Usage: "New password"},
						},
						Action: r.AuthPasswordReset,
					},
				},
			},
		},
	}
}

// syncCommand handles catalog resync operations.
func syncCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "sync",
		Usage: "Sync the song catalog and note sheets",
		Commands: []*cli.Command{
			{
				Name:   "run",
				Usage:  "Run a full catalog resync",
				Action: r.SyncRun,
			},
			{
				Name:   "status",
				Usage:  "Show cached catalog counts",
				Action: r.SyncStatus,
			},
		},
	}
}

// songsCommand handles the cached catalog.
func songsCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "songs",
		Usage: "Browse the cached song catalog",
		Commands: []*cli.Command{
			{
				Name:  "list",
				Usage: "List cached songs",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Output raw JSON",
					},
					&cli.BoolFlag{
						Name:  "pretty",
						Usage: "Pretty-print output",
					},
					&cli.BoolFlag{
						Name:  "by-category",
						Usage: "Group songs by category",
					},
				},
				Action: r.SongsList,
			},
			{
				Name:  "show",
				Usage: "Print one song's full text",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "number"},
				},
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Output raw JSON",
					},
				},
				Action: r.SongsShow,
			},
			{
				Name:  "export",
				Usage: "Write one song's text to a file",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "number"},
				},
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "output",
						Aliases: []string{"o"},
						Usage:   "Output file path (default: <number>.txt)",
					},
				},
				Action: r.SongsExport,
			},
		},
	}
}

// playlistCommand handles local playlist management.
func playlistCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "playlist",
		Aliases: []string{"pl"},
		Usage:   "Manage local playlists",
		Commands: []*cli.Command{
			{
				Name:  "create",
				Usage: "Create a playlist",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "name"},
				},
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "emoji", Usage: "Playlist emoji"},
				},
				Action: r.PlaylistCreate,
			},
			{
				Name:   "list",
				Usage:  "List playlists",
				Action: r.PlaylistList,
			},
			{
				Name:  "show",
				Usage: "Show a playlist and its songs",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "id"},
				},
				Action: r.PlaylistShow,
			},
			{
				Name:  "add",
				Usage: "Add songs to a playlist by song number",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "id"},
				},
				Flags: []cli.Flag{
					&cli.StringSliceFlag{
						Name:     "song",
						Aliases:  []string{"s"},
						Usage:    "Song number, repeatable",
						Required: true,
					},
				},
				Action: r.PlaylistAdd,
			},
			{
				Name:  "remove",
				Usage: "Remove a song from a playlist",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "id"},
				},
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "song",
						Aliases:  []string{"s"},
						Usage:    "Song number",
						Required: true,
					},
				},
				Action: r.PlaylistRemove,
			},
			{
				Name:  "reorder",
				Usage: "Reorder a playlist by listing every song number in the new order",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "id"},
				},
				Flags: []cli.Flag{
					&cli.StringSliceFlag{
						Name:     "song",
						Aliases:  []string{"s"},
						Usage:    "Song number, repeatable, full new order",
						Required: true,
					},
				},
				Action: r.PlaylistReorder,
			},
			{
				Name:  "rename",
				Usage: "Rename a playlist",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "id"},
				},
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "name", Required: true, Usage: "New name"},
					&cli.StringFlag{Name: "emoji", Usage: "New emoji"},
				},
				Action: r.PlaylistRename,
			},
			{
				Name:  "delete",
				Usage: "Delete a playlist",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "id"},
				},
				Action: r.PlaylistDelete,
			},
			{
				Name:  "export",
				Usage: "Export a playlist to csv, markdown, or text",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "id"},
				},
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "format",
						Aliases: []string{"f"},
						Usage:   "Export format (csv, markdown, text)",
						Value:   "text",
					},
					&cli.StringFlag{
						Name:    "output",
						Aliases: []string{"o"},
						Usage:   "Output file path (default: stdout)",
					},
				},
				Action: r.PlaylistExport,
			},
		},
	}
}

// prefsCommand handles display preferences.
func prefsCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "prefs",
		Usage: "Manage display preferences",
		Commands: []*cli.Command{
			{
				Name:   "show",
				Usage:  "Show current preferences",
				Action: r.PrefsShow,
			},
			{
				Name:  "set",
				Usage: "Set a preference",
				Flags: []cli.Flag{
					&cli.FloatFlag{
						Name:  "notation-scale",
						Usage: "Note sheet zoom factor (0.5 to 2.0)",
					},
					&cli.StringFlag{
						Name:  "text-size",
						Usage: "Song text size (small, medium, large, xlarge)",
					},
				},
				Action: r.PrefsSet,
			},
		},
	}
}

// tuiCommand returns the top-level TUI command for interactive browsing.
func tuiCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "tui",
		Aliases: []string{"interactive", "browse"},
		Usage:   "Launch interactive songbook browser",
		Action:  r.TUI,
	}
}
