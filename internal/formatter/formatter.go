// package formatter renders songs and playlists to shareable formats (CSV, Markdown, plain text)
package formatter

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/cantus/hymnal/internal/models"
)

// MergedCategoryName is the catch-all bucket sparse categories merge into.
const MergedCategoryName = "Weitere"

// ExportToCSV converts a playlist to CSV with columns: Nr, Title, Categories, Text Authors, Melody Authors, Verses.
// songs is the playlist's resolved song list in playlist order; dangling ids
// are expected to be filtered out by the caller.
func ExportToCSV(playlist *models.Playlist, songs []models.Song) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	headers := []string{"Nr", "Title", "Categories", "Text Authors", "Melody Authors", "Verses"}
	if err := writer.Write(headers); err != nil {
		return nil, fmt.Errorf("failed to write CSV headers: %w", err)
	}

	for _, song := range songs {
		record := []string{
			strconv.Itoa(song.Ordinal),
			song.Title,
			joinCategories(song.Categories),
			joinAuthors(song.TextAuthors),
			joinAuthors(song.MelodyAuthors),
			strconv.Itoa(len(song.Verses)),
		}
		if err := writer.Write(record); err != nil {
			return nil, fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("CSV writer error: %w", err)
	}

	return buf.Bytes(), nil
}

// ExportToMarkdown converts a playlist to Markdown.
func ExportToMarkdown(playlist *models.Playlist, songs []models.Song) ([]byte, error) {
	var buf bytes.Buffer

	title := playlist.Name
	if playlist.Emoji != "" {
		title = playlist.Emoji + " " + title
	}
	buf.WriteString(fmt.Sprintf("# %s\n\n", title))
	buf.WriteString(fmt.Sprintf("**Songs**: %d\n\n", len(songs)))

	buf.WriteString("## Songs\n\n")
	for i, song := range songs {
		authorPart := ""
		if authors := joinAuthors(song.TextAuthors); authors != "" {
			authorPart = fmt.Sprintf(" — %s", authors)
		}
		buf.WriteString(fmt.Sprintf("%d. Nr. %d: %s%s\n", i+1, song.Ordinal, song.Title, authorPart))
	}

	return buf.Bytes(), nil
}

// ExportToText converts a playlist to plain text.
func ExportToText(playlist *models.Playlist, songs []models.Song) ([]byte, error) {
	var buf bytes.Buffer

	buf.WriteString(fmt.Sprintf("Playlist: %s\n", playlist.Name))
	buf.WriteString(fmt.Sprintf("Songs: %d\n\n", len(songs)))

	for i, song := range songs {
		buf.WriteString(fmt.Sprintf("%d. Nr. %d: %s\n", i+1, song.Ordinal, song.Title))
	}

	return buf.Bytes(), nil
}

// SongText renders one song's full lyrics as plain text.
func SongText(song *models.Song) []byte {
	var buf bytes.Buffer

	buf.WriteString(fmt.Sprintf("Nr. %d: %s\n", song.Ordinal, song.Title))
	if authors := joinAuthors(song.TextAuthors); authors != "" {
		buf.WriteString(fmt.Sprintf("Text: %s\n", authors))
	}
	if authors := joinAuthors(song.MelodyAuthors); authors != "" {
		buf.WriteString(fmt.Sprintf("Melody: %s\n", authors))
	}
	if categories := joinCategories(song.Categories); categories != "" {
		buf.WriteString(fmt.Sprintf("Categories: %s\n", categories))
	}
	buf.WriteString("\n")

	for _, verse := range song.Verses {
		buf.WriteString(fmt.Sprintf("%d.\n%s\n", verse.Number, verse.Text))
		if verse.Annotation != "" {
			buf.WriteString(fmt.Sprintf("(%s)\n", verse.Annotation))
		}
		buf.WriteString("\n")
	}

	return buf.Bytes()
}

// CategoryGroup is one display bucket of the grouped catalog.
type CategoryGroup struct {
	Name  string
	Songs []models.Song
}

// GroupByCategory buckets songs by category name for display.
//
// Categories holding fewer songs than mergeThreshold are combined into the
// [MergedCategoryName] bucket; a threshold of 0 disables merging. Groups
// come back alphabetically with the merged bucket last, and a song
// belonging to several categories appears in each.
func GroupByCategory(songs []models.Song, mergeThreshold int) []CategoryGroup {
	buckets := make(map[string][]models.Song)
	for _, song := range songs {
		if len(song.Categories) == 0 {
			buckets[MergedCategoryName] = append(buckets[MergedCategoryName], song)
			continue
		}
		for _, category := range song.Categories {
			buckets[category.Name] = append(buckets[category.Name], song)
		}
	}

	var merged []models.Song
	var names []string
	for name, grouped := range buckets {
		if name != MergedCategoryName && mergeThreshold > 0 && len(grouped) < mergeThreshold {
			merged = append(merged, grouped...)
			continue
		}
		if name != MergedCategoryName {
			names = append(names, name)
		}
	}
	sort.Strings(names)

	groups := make([]CategoryGroup, 0, len(names)+1)
	for _, name := range names {
		groups = append(groups, CategoryGroup{Name: name, Songs: buckets[name]})
	}

	rest := append(merged, buckets[MergedCategoryName]...)
	if len(rest) > 0 {
		sort.Slice(rest, func(i, j int) bool { return rest[i].Ordinal < rest[j].Ordinal })
		groups = append(groups, CategoryGroup{Name: MergedCategoryName, Songs: rest})
	}

	return groups
}

func joinAuthors(authors []models.Author) string {
	names := make([]string, 0, len(authors))
	for _, author := range authors {
		names = append(names, author.Name())
	}
	return strings.Join(names, ", ")
}

func joinCategories(categories []models.Category) string {
	names := make([]string, 0, len(categories))
	for _, category := range categories {
		names = append(names, category.Name)
	}
	return strings.Join(names, ", ")
}
