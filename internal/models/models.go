package models

import (
	"fmt"
	"strings"
	"time"
)

// Author is a text or melody author linked to a song.
type Author struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	DeathYear *int   `json:"death_year,omitempty"`
}

// Name returns the author's display name.
func (a Author) Name() string {
	return strings.TrimSpace(a.FirstName + " " + a.LastName)
}

// Verse is one numbered verse of a song's lyrics.
type Verse struct {
	Number     int    `json:"number"`
	Text       string `json:"text"`
	Annotation string `json:"annotation,omitempty"`
	Amendment  string `json:"amendment,omitempty"`
}

// Notation is one melody variant in ABC notation.
type Notation struct {
	Name    string `json:"name"`
	ABC     string `json:"abc"`
	Default bool   `json:"default"`
	FileID  string `json:"file_id,omitempty"`
}

// NoteRef references a note sheet asset stored on the content server.
type NoteRef struct {
	ID       string `json:"id"`
	Filename string `json:"filename"`
}

// IsImage reports whether the referenced file is a downloadable sheet image.
func (n NoteRef) IsImage() bool {
	name := strings.ToLower(n.Filename)
	return strings.HasSuffix(name, ".png") ||
		strings.HasSuffix(name, ".jpg") ||
		strings.HasSuffix(name, ".svg")
}

// Category is a hymn category a song belongs to.
type Category struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Song is one hymn from the synced catalog.
//
// Ordinal is the 1-based display order assigned from the catalog response
// order of the last sync. It is stable within one sync generation but not
// across resyncs; only ID is durable.
type Song struct {
	ID            string     `json:"id"`
	Ordinal       int        `json:"ordinal"`
	Title         string     `json:"title"`
	Verses        []Verse    `json:"verses"`
	TextAuthors   []Author   `json:"text_authors"`
	Notations     []Notation `json:"notations"`
	MelodyAuthors []Author   `json:"melody_authors"`
	NoteRefs      []NoteRef  `json:"note_refs"`
	Categories    []Category `json:"categories"`
}

// ImageNoteRefs returns the song's note refs that point at image assets.
func (s *Song) ImageNoteRefs() []NoteRef {
	var refs []NoteRef
	for _, ref := range s.NoteRefs {
		if ref.IsImage() {
			refs = append(refs, ref)
		}
	}
	return refs
}

// AssetBlob is a downloaded note sheet, keyed by the server-side asset id.
// Existence is best-effort relative to the song that references it.
type AssetBlob struct {
	ID       string
	Data     []byte
	Filename string
}

// SessionKey is the fixed primary key of the session singleton.
const SessionKey = "current"

// TokenExpiryBuffer is how long before the actual expiry a token is
// already treated as expired, leaving room for in-flight requests.
const TokenExpiryBuffer = 5 * time.Minute

// Session holds the authenticated token pair. At most one exists locally.
type Session struct {
	ID           string
	AccessToken  string
	RefreshToken string
	ExpiresAt    time.Time
}

// IsExpired reports whether the access token is expired or inside the
// expiry buffer at the given instant.
func (s *Session) IsExpired(now time.Time) bool {
	return !now.Before(s.ExpiresAt.Add(-TokenExpiryBuffer))
}

// User is the locally persisted profile paired with the session.
type User struct {
	ID        string
	Email     string
	FirstName string
	LastName  string
	Role      string
	Activated bool
	SkipAuth  bool
}

// DisplayName returns the user's name, falling back to the email address.
func (u *User) DisplayName() string {
	name := strings.TrimSpace(u.FirstName + " " + u.LastName)
	if name == "" {
		return u.Email
	}
	return name
}

// Playlist is a user-created, ordered collection of song ids.
type Playlist struct {
	ID        string
	Name      string
	Emoji     string
	SongIDs   []string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Validate checks playlist fields before persistence.
func (p *Playlist) Validate() error {
	if p.Name == "" {
		return fmt.Errorf("playlist name is required")
	}
	seen := make(map[string]struct{}, len(p.SongIDs))
	for _, id := range p.SongIDs {
		if _, dup := seen[id]; dup {
			return fmt.Errorf("duplicate song id in playlist: %s", id)
		}
		seen[id] = struct{}{}
	}
	return nil
}

// Contains reports whether the playlist already holds the given song id.
func (p *Playlist) Contains(songID string) bool {
	for _, id := range p.SongIDs {
		if id == songID {
			return true
		}
	}
	return false
}

// PreferencesKey is the fixed primary key of the preferences singleton.
const PreferencesKey = "default"

// Text sizes for lyric rendering.
const (
	TextSizeSmall  = "small"
	TextSizeMedium = "medium"
	TextSizeLarge  = "large"
	TextSizeXLarge = "xlarge"
)

// Notation scale bounds.
const (
	MinNotationScale = 0.5
	MaxNotationScale = 2.0
)

// Preferences holds user display settings.
type Preferences struct {
	ID            string
	NotationScale float64
	TextSize      string
}

// DefaultPreferences returns the preferences used before the user changes anything.
func DefaultPreferences() Preferences {
	return Preferences{ID: PreferencesKey, NotationScale: 1.0, TextSize: TextSizeMedium}
}

// ClampNotationScale restricts a scale factor to the supported range.
func ClampNotationScale(scale float64) float64 {
	if scale < MinNotationScale {
		return MinNotationScale
	}
	if scale > MaxNotationScale {
		return MaxNotationScale
	}
	return scale
}

// ValidTextSize reports whether the given size is one of the supported steps.
func ValidTextSize(size string) bool {
	switch size {
	case TextSizeSmall, TextSizeMedium, TextSizeLarge, TextSizeXLarge:
		return true
	}
	return false
}
