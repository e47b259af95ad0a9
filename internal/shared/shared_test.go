package shared

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultConfig(t *testing.T) {
	config := DefaultConfig()

	if config.Server.BaseURL == "" {
		t.Error("expected a default server URL")
	}
	if config.Sync.BatchSize != 5 {
		t.Errorf("expected default batch size 5, got %d", config.Sync.BatchSize)
	}
	if config.Display.CategoryMergeThreshold != 3 {
		t.Errorf("expected default merge threshold 3, got %d", config.Display.CategoryMergeThreshold)
	}
	if config.Database.Path == "" {
		t.Error("expected a default database path")
	}
}

func TestLoadConfig(t *testing.T) {
	t.Run("parses TOML", func(t *testing.T) {
		dir := t.TempDir()
		path := filepath.Join(dir, "config.toml")
		content := `
[server]
base_url = "https://content.example.com"

[database]
path = "custom.db"

[sync]
batch_size = 10
rate_limit = 2.5

[display]
category_merge_threshold = 5
`
		if err := os.WriteFile(path, []byte(content), 0644); err != nil {
			t.Fatalf("failed to write config: %v", err)
		}

		config, err := LoadConfig(path)
		if err != nil {
			t.Fatalf("failed to load config: %v", err)
		}

		if config.Server.BaseURL != "https://content.example.com" {
			t.Errorf("unexpected base URL %q", config.Server.BaseURL)
		}
		if config.Sync.BatchSize != 10 || config.Sync.RateLimit != 2.5 {
			t.Errorf("unexpected sync config: %+v", config.Sync)
		}
		if config.Display.CategoryMergeThreshold != 5 {
			t.Errorf("unexpected merge threshold %d", config.Display.CategoryMergeThreshold)
		}
	})

	t.Run("environment overrides file", func(t *testing.T) {
		dir := t.TempDir()
		path := filepath.Join(dir, "config.toml")
		if err := os.WriteFile(path, []byte("[server]\nbase_url = \"https://file.example.com\"\n"), 0644); err != nil {
			t.Fatalf("failed to write config: %v", err)
		}

		t.Setenv("HYMNAL_SERVER_URL", "https://env.example.com")
		t.Setenv("HYMNAL_AUTH_TOKEN", "env-token")

		config, err := LoadConfig(path)
		if err != nil {
			t.Fatalf("failed to load config: %v", err)
		}
		if config.Server.BaseURL != "https://env.example.com" {
			t.Errorf("expected env override, got %q", config.Server.BaseURL)
		}
		if config.Server.StaticToken != "env-token" {
			t.Errorf("expected env token, got %q", config.Server.StaticToken)
		}
	})

	t.Run("missing file", func(t *testing.T) {
		if _, err := LoadConfig("/nonexistent/config.toml"); err == nil {
			t.Error("expected error for missing file")
		}
	})
}

func TestCreateConfigFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")

	if err := CreateConfigFile(path); err != nil {
		t.Fatalf("failed to create config file: %v", err)
	}

	if _, err := LoadConfig(path); err != nil {
		t.Fatalf("created config should parse: %v", err)
	}

	if err := CreateConfigFile(path); err == nil {
		t.Error("expected error when config already exists")
	}
}

func TestRunMigrations(t *testing.T) {
	db, err := NewDatabase(":memory:")
	if err != nil {
		t.Fatalf("failed to create database: %v", err)
	}
	defer db.Close()

	if err := RunMigrations(db); err != nil {
		t.Fatalf("migrations failed: %v", err)
	}

	version, err := SchemaVersion(db)
	if err != nil {
		t.Fatalf("failed to read schema version: %v", err)
	}
	if version != 3 {
		t.Errorf("expected schema version 3, got %d", version)
	}

	for _, table := range []string{"songs", "files", "auth", "users", "playlists", "preferences"} {
		var count int
		if err := db.QueryRow("SELECT COUNT(*) FROM " + table).Scan(&count); err != nil {
			t.Errorf("expected table %s to exist: %v", table, err)
		}
	}

	// re-running must be a no-op, not an error
	if err := RunMigrations(db); err != nil {
		t.Fatalf("second migration run failed: %v", err)
	}
}
