package main

import (
	"context"
	"os"

	"github.com/cantus/hymnal/internal/repositories"
	"github.com/cantus/hymnal/internal/services"
	"github.com/cantus/hymnal/internal/session"
	"github.com/cantus/hymnal/internal/shared"
	"github.com/urfave/cli/v3"
)

func main() {
	logger := shared.NewLogger(nil)

	config := shared.DefaultConfig()
	if _, err := os.Stat("config.toml"); err == nil {
		if loadedConfig, err := shared.LoadConfig("config.toml"); err == nil {
			config = loadedConfig
		}
	}

	db, err := shared.NewDatabase(config.Database.Path)
	if err != nil {
		logger.Fatalf("failed to open database: %v", err)
	}
	defer db.Close()
	shared.ConfigureDatabase(db, config.Database.MaxOpenConns, config.Database.MaxIdleConns)

	songs := repositories.NewSongRepository(db)
	files := repositories.NewFileRepository(db)
	playlists := repositories.NewPlaylistRepository(db)
	prefs := repositories.NewPreferencesRepository(db)
	sessions := repositories.NewSessionRepository(db)
	users := repositories.NewUserRepository(db)

	handler := session.NewInvalidationHandler(db, logger, func(reason session.LogoutReason) {
		logger.Warn("logged out", "reason", reason, "message", session.ReasonMessages[reason])
	})

	authAPI := services.NewAuthService(config.Server.BaseURL, nil)
	manager := session.NewManager(session.ManagerOpts{
		API:         authAPI,
		Sessions:    sessions,
		Users:       users,
		Logger:      logger,
		Observer:    handler,
		StaticToken: config.Server.StaticToken,
	})
	if err := manager.Load(); err != nil {
		logger.Warn("failed to load stored session", "error", err)
	}

	content := services.NewContentService(services.ContentServiceOpts{
		BaseURL:   config.Server.BaseURL,
		Tokens:    manager,
		Observer:  handler,
		RateLimit: config.Sync.RateLimit,
	})

	runner := NewRunner(RunnerOpts{
		Config:    config,
		DB:        db,
		Session:   manager,
		Content:   content,
		Songs:     songs,
		Files:     files,
		Playlists: playlists,
		Prefs:     prefs,
		Logger:    logger,
	})

	app := &cli.Command{
		Name:     "hymnal",
		Usage:    "Offline songbook with catalog sync, playlists, and note sheets",
		Version:  "0.3.0",
		Commands: runner.register(),
	}

	if err := app.Run(context.Background(), os.Args); err != nil {
		logger.Fatalf("application error: %v", err)
	}
}
