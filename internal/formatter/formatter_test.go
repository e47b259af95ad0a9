package formatter

import (
	"strings"
	"testing"
	"time"

	"github.com/cantus/hymnal/internal/models"
)

func sampleSongs() []models.Song {
	return []models.Song{
		{
			ID:      "a",
			Ordinal: 1,
			Title:   "Die güldne Sonne",
			Verses: []models.Verse{
				{Number: 1, Text: "Die güldne Sonne\nvoll Freud und Wonne"},
			},
			TextAuthors:   []models.Author{{FirstName: "Paul", LastName: "Gerhardt"}},
			MelodyAuthors: []models.Author{{FirstName: "Johann", LastName: "Ebeling"}},
			Categories:    []models.Category{{ID: "1", Name: "Morgenlieder"}},
		},
		{
			ID:         "b",
			Ordinal:    2,
			Title:      "Nun danket alle Gott",
			Verses:     []models.Verse{{Number: 1, Text: "Nun danket alle Gott"}},
			Categories: []models.Category{{ID: "2", Name: "Danklieder"}},
		},
	}
}

func samplePlaylist() *models.Playlist {
	return &models.Playlist{
		ID:        "pl-1",
		Name:      "Sonntag",
		Emoji:     "🎵",
		SongIDs:   []string{"a", "b"},
		CreatedAt: time.Now(),
	}
}

func TestExportToCSV(t *testing.T) {
	data, err := ExportToCSV(samplePlaylist(), sampleSongs())
	if err != nil {
		t.Fatalf("export failed: %v", err)
	}

	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	if len(lines) != 3 {
		t.Fatalf("expected header plus 2 rows, got %d lines", len(lines))
	}
	if !strings.HasPrefix(lines[0], "Nr,Title,") {
		t.Errorf("unexpected header: %s", lines[0])
	}
	if !strings.Contains(lines[1], "Die güldne Sonne") || !strings.Contains(lines[1], "Paul Gerhardt") {
		t.Errorf("unexpected first row: %s", lines[1])
	}
}

func TestExportToMarkdown(t *testing.T) {
	data, err := ExportToMarkdown(samplePlaylist(), sampleSongs())
	if err != nil {
		t.Fatalf("export failed: %v", err)
	}

	text := string(data)
	if !strings.Contains(text, "# 🎵 Sonntag") {
		t.Errorf("expected emoji title, got:\n%s", text)
	}
	if !strings.Contains(text, "1. Nr. 1: Die güldne Sonne") {
		t.Errorf("expected numbered song line, got:\n%s", text)
	}
}

func TestExportToText(t *testing.T) {
	data, err := ExportToText(samplePlaylist(), sampleSongs())
	if err != nil {
		t.Fatalf("export failed: %v", err)
	}
	if !strings.Contains(string(data), "Playlist: Sonntag") {
		t.Errorf("unexpected output:\n%s", data)
	}
}

func TestSongText(t *testing.T) {
	songs := sampleSongs()
	text := string(SongText(&songs[0]))

	if !strings.Contains(text, "Nr. 1: Die güldne Sonne") {
		t.Errorf("expected title line, got:\n%s", text)
	}
	if !strings.Contains(text, "Text: Paul Gerhardt") {
		t.Errorf("expected text author credit, got:\n%s", text)
	}
	if !strings.Contains(text, "voll Freud und Wonne") {
		t.Errorf("expected verse body, got:\n%s", text)
	}
}

func TestGroupByCategory(t *testing.T) {
	songs := []models.Song{
		{ID: "a", Ordinal: 1, Title: "A", Categories: []models.Category{{Name: "Morgenlieder"}}},
		{ID: "b", Ordinal: 2, Title: "B", Categories: []models.Category{{Name: "Morgenlieder"}}},
		{ID: "c", Ordinal: 3, Title: "C", Categories: []models.Category{{Name: "Morgenlieder"}}},
		{ID: "d", Ordinal: 4, Title: "D", Categories: []models.Category{{Name: "Abendlieder"}}},
		{ID: "e", Ordinal: 5, Title: "E"},
	}

	t.Run("sparse categories merge into the catch-all bucket", func(t *testing.T) {
		groups := GroupByCategory(songs, 3)

		if len(groups) != 2 {
			t.Fatalf("expected 2 groups, got %d: %+v", len(groups), groups)
		}
		if groups[0].Name != "Morgenlieder" || len(groups[0].Songs) != 3 {
			t.Errorf("unexpected first group: %+v", groups[0])
		}
		if groups[1].Name != MergedCategoryName || len(groups[1].Songs) != 2 {
			t.Errorf("expected merged bucket with the sparse and uncategorized songs, got %+v", groups[1])
		}
		if groups[1].Songs[0].Ordinal > groups[1].Songs[1].Ordinal {
			t.Errorf("merged bucket should be ordered by ordinal: %+v", groups[1].Songs)
		}
	})

	t.Run("threshold zero disables merging", func(t *testing.T) {
		groups := GroupByCategory(songs, 0)

		names := make([]string, 0, len(groups))
		for _, g := range groups {
			names = append(names, g.Name)
		}
		if len(groups) != 3 {
			t.Fatalf("expected 3 groups, got %v", names)
		}
		if names[0] != "Abendlieder" || names[1] != "Morgenlieder" || names[2] != MergedCategoryName {
			t.Errorf("expected alphabetical order with merged bucket last, got %v", names)
		}
	})
}
