package services

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
)

// staticTokens implements TokenSource with a fixed token and a switchable
// refresh outcome.
type staticTokens struct {
	token        string
	refreshOK    bool
	refreshCalls atomic.Int32
}

func (s *staticTokens) CurrentToken(ctx context.Context) (string, error) {
	return s.token, nil
}

func (s *staticTokens) Refresh(ctx context.Context) bool {
	s.refreshCalls.Add(1)
	if s.refreshOK {
		s.token = "refreshed-token"
	}
	return s.refreshOK
}

// recordingObserver implements ErrorObserver and remembers what it saw.
type recordingObserver struct {
	errs []error
}

func (o *recordingObserver) Observe(ctx context.Context, err error) bool {
	o.errs = append(o.errs, err)
	return false
}

const catalogBody = `{
	"data": {
		"gesangbuchlied": [
			{
				"id": "song-1",
				"titel": "Die güldne Sonne",
				"textId": {
					"strophenEinzeln": [
						{"strophe": "Die güldne Sonne", "anmerkung": "", "aenderungsvorschlag": ""},
						{"strophe": "voll Freud und Wonne", "anmerkung": "Kanon", "aenderungsvorschlag": ""}
					],
					"autorId": [
						{"autor_id": {"vorname": "Paul", "nachname": "Gerhardt", "sterbejahr": 1676}}
					]
				},
				"melodieId": {
					"abc_melodie": [
						{"name": "Hauptmelodie", "abc_notation": "X:1", "is_default": true, "file_id": ""}
					],
					"autorId": [
						{"autor_id": {"vorname": "Johann", "nachname": "Ebeling", "sterbejahr": null}}
					],
					"noten": [
						{"directus_files_id": {"filename_download": "sonne.png", "id": "asset-1"}},
						{"directus_files_id": {"filename_download": "sonne.pdf", "id": "asset-2"}}
					]
				},
				"kategorieId": [
					{"kategorie_id": {"id": 7, "name": "Morgenlieder"}}
				]
			},
			{
				"id": "song-2",
				"titel": "Nun danket alle Gott",
				"textId": null,
				"melodieId": null,
				"kategorieId": []
			}
		]
	}
}`

func TestFetchCatalog(t *testing.T) {
	t.Run("transforms nested structure and assigns ordinals", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path != "/graphql" {
				t.Errorf("unexpected path %s", r.URL.Path)
			}
			if got := r.Header.Get("Authorization"); got != "Bearer test-token" {
				t.Errorf("unexpected authorization header %q", got)
			}
			w.Header().Set("Content-Type", "application/json")
			fmt.Fprint(w, catalogBody)
		}))
		defer server.Close()

		service := NewContentService(ContentServiceOpts{
			BaseURL: server.URL,
			Tokens:  &staticTokens{token: "test-token"},
		})

		songs, err := service.FetchCatalog(context.Background())
		if err != nil {
			t.Fatalf("FetchCatalog failed: %v", err)
		}

		if len(songs) != 2 {
			t.Fatalf("expected 2 songs, got %d", len(songs))
		}

		first := songs[0]
		if first.Ordinal != 1 || songs[1].Ordinal != 2 {
			t.Errorf("expected 1-based ordinals, got %d and %d", first.Ordinal, songs[1].Ordinal)
		}
		if first.Title != "Die güldne Sonne" {
			t.Errorf("unexpected title %q", first.Title)
		}
		if len(first.Verses) != 2 || first.Verses[1].Number != 2 || first.Verses[1].Annotation != "Kanon" {
			t.Errorf("unexpected verses: %+v", first.Verses)
		}
		if len(first.TextAuthors) != 1 || first.TextAuthors[0].LastName != "Gerhardt" {
			t.Errorf("unexpected text authors: %+v", first.TextAuthors)
		}
		if first.TextAuthors[0].DeathYear == nil || *first.TextAuthors[0].DeathYear != 1676 {
			t.Errorf("expected death year 1676, got %v", first.TextAuthors[0].DeathYear)
		}
		if len(first.Notations) != 1 || !first.Notations[0].Default {
			t.Errorf("unexpected notations: %+v", first.Notations)
		}
		if len(first.NoteRefs) != 2 {
			t.Fatalf("expected 2 note refs, got %d", len(first.NoteRefs))
		}
		images := first.ImageNoteRefs()
		if len(images) != 1 || images[0].ID != "asset-1" {
			t.Errorf("expected only the png ref as image, got %+v", images)
		}
		if len(first.Categories) != 1 || first.Categories[0].ID != "7" || first.Categories[0].Name != "Morgenlieder" {
			t.Errorf("unexpected categories: %+v", first.Categories)
		}

		second := songs[1]
		if len(second.Verses) != 0 || len(second.Notations) != 0 {
			t.Errorf("expected empty relations for bare song, got %+v", second)
		}
	})

	t.Run("401 triggers one refresh and one retry", func(t *testing.T) {
		var calls atomic.Int32
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if calls.Add(1) == 1 {
				w.WriteHeader(http.StatusUnauthorized)
				fmt.Fprint(w, `{"errors":[{"message":"Token expired.","extensions":{"code":"TOKEN_EXPIRED"}}]}`)
				return
			}
			if got := r.Header.Get("Authorization"); got != "Bearer refreshed-token" {
				t.Errorf("retry should carry refreshed token, got %q", got)
			}
			fmt.Fprint(w, catalogBody)
		}))
		defer server.Close()

		tokens := &staticTokens{token: "stale-token", refreshOK: true}
		service := NewContentService(ContentServiceOpts{
			BaseURL: server.URL,
			Tokens:  tokens,
		})

		songs, err := service.FetchCatalog(context.Background())
		if err != nil {
			t.Fatalf("FetchCatalog failed: %v", err)
		}
		if len(songs) != 2 {
			t.Errorf("expected songs after retry, got %d", len(songs))
		}
		if calls.Load() != 2 {
			t.Errorf("expected exactly 2 requests, got %d", calls.Load())
		}
		if tokens.refreshCalls.Load() != 1 {
			t.Errorf("expected exactly 1 refresh, got %d", tokens.refreshCalls.Load())
		}
	})

	t.Run("failed refresh surfaces the original error", func(t *testing.T) {
		var calls atomic.Int32
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			calls.Add(1)
			w.WriteHeader(http.StatusUnauthorized)
		}))
		defer server.Close()

		tokens := &staticTokens{token: "stale-token", refreshOK: false}
		observer := &recordingObserver{}
		service := NewContentService(ContentServiceOpts{
			BaseURL:  server.URL,
			Tokens:   tokens,
			Observer: observer,
		})

		_, err := service.FetchCatalog(context.Background())
		if err == nil {
			t.Fatal("expected error after failed refresh")
		}
		if !IsUnauthorized(err) {
			t.Errorf("expected unauthorized error, got %v", err)
		}
		if calls.Load() != 1 {
			t.Errorf("expected no retry after failed refresh, got %d requests", calls.Load())
		}
		if len(observer.errs) != 1 {
			t.Errorf("expected observer to see the failure once, got %d", len(observer.errs))
		}
	})

	t.Run("GraphQL errors list with 200 status is an API error", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			fmt.Fprint(w, `{"data":null,"errors":[{"message":"Invalid user credentials.","extensions":{"code":"INVALID_CREDENTIALS"}}]}`)
		}))
		defer server.Close()

		service := NewContentService(ContentServiceOpts{
			BaseURL: server.URL,
			Tokens:  &staticTokens{token: "t"},
		})

		_, err := service.FetchCatalog(context.Background())
		if err == nil {
			t.Fatal("expected error for GraphQL error list")
		}
		if !strings.Contains(err.Error(), "Invalid user credentials") {
			t.Errorf("expected credentials message in error, got %v", err)
		}
	})
}

func TestFetchAsset(t *testing.T) {
	t.Run("downloads bytes", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path != "/assets/asset-1" {
				t.Errorf("unexpected path %s", r.URL.Path)
			}
			w.Write([]byte{0x89, 0x50, 0x4e, 0x47})
		}))
		defer server.Close()

		service := NewContentService(ContentServiceOpts{
			BaseURL: server.URL,
			Tokens:  &staticTokens{token: "t"},
		})

		data, err := service.FetchAsset(context.Background(), "asset-1")
		if err != nil {
			t.Fatalf("FetchAsset failed: %v", err)
		}
		if len(data) != 4 || data[0] != 0x89 {
			t.Errorf("unexpected asset bytes: %v", data)
		}
	})

	t.Run("missing asset surfaces status", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNotFound)
		}))
		defer server.Close()

		service := NewContentService(ContentServiceOpts{
			BaseURL: server.URL,
			Tokens:  &staticTokens{token: "t"},
		})

		if _, err := service.FetchAsset(context.Background(), "gone"); err == nil {
			t.Fatal("expected error for missing asset")
		}
	})
}
