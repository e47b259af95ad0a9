package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/cantus/hymnal/internal/models"
	"golang.org/x/time/rate"
)

// catalogQuery fetches every approved hymn with its nested text, melody,
// note sheet and category relations. Server-side filter restricts to songs
// rated "Rein"; the 5000 cap is well above catalog size.
const catalogQuery = `{ gesangbuchlied( filter: { bewertungKleinerKreis: { bezeichner: { _eq: "Rein" } } } limit: 5000 ) { id titel textId { strophenEinzeln { strophe anmerkung aenderungsvorschlag } autorId { autor_id { vorname nachname sterbejahr } } } melodieId { abc_melodie { name abc_notation is_default file_id } autorId { autor_id { vorname nachname sterbejahr } } noten { directus_files_id { filename_download id } } } kategorieId { kategorie_id { id name } } } }`

// GraphQL response types (nested relation structure from Directus)

type gqlAuthor struct {
	AutorID struct {
		Vorname    string `json:"vorname"`
		Nachname   string `json:"nachname"`
		Sterbejahr *int   `json:"sterbejahr"`
	} `json:"autor_id"`
}

type gqlVerse struct {
	Strophe             string `json:"strophe"`
	Anmerkung           string `json:"anmerkung"`
	Aenderungsvorschlag string `json:"aenderungsvorschlag"`
}

type gqlNotation struct {
	Name        string `json:"name"`
	ABCNotation string `json:"abc_notation"`
	IsDefault   bool   `json:"is_default"`
	FileID      string `json:"file_id"`
}

type gqlNoteFile struct {
	DirectusFilesID struct {
		FilenameDownload string `json:"filename_download"`
		ID               string `json:"id"`
	} `json:"directus_files_id"`
}

type gqlCategory struct {
	KategorieID struct {
		ID   json.Number `json:"id"`
		Name string      `json:"name"`
	} `json:"kategorie_id"`
}

type gqlSong struct {
	ID     string `json:"id"`
	Titel  string `json:"titel"`
	TextID *struct {
		StrophenEinzeln []gqlVerse  `json:"strophenEinzeln"`
		AutorID         []gqlAuthor `json:"autorId"`
	} `json:"textId"`
	MelodieID *struct {
		ABCMelodie []gqlNotation `json:"abc_melodie"`
		AutorID    []gqlAuthor   `json:"autorId"`
		Noten      []gqlNoteFile `json:"noten"`
	} `json:"melodieId"`
	KategorieID []gqlCategory `json:"kategorieId"`
}

type catalogResponse struct {
	Data struct {
		Gesangbuchlied []gqlSong `json:"gesangbuchlied"`
	} `json:"data"`
	Errors []APIErrorItem `json:"errors"`
}

// ContentService implements [ContentAPI] against the backend's GraphQL and
// asset endpoints.
type ContentService struct {
	baseURL    string
	httpClient *http.Client
	tokens     TokenSource
	observer   ErrorObserver
	limiter    *rate.Limiter
}

// ContentServiceOpts configures a [ContentService].
type ContentServiceOpts struct {
	BaseURL    string
	HTTPClient *http.Client
	Tokens     TokenSource
	Observer   ErrorObserver

	// RateLimit caps asset requests per second; <= 0 disables limiting.
	RateLimit float64
}

// NewContentService creates a content client with the given options.
func NewContentService(opts ContentServiceOpts) *ContentService {
	if opts.HTTPClient == nil {
		opts.HTTPClient = http.DefaultClient
	}

	var limiter *rate.Limiter
	if opts.RateLimit > 0 {
		limiter = rate.NewLimiter(rate.Limit(opts.RateLimit), 1)
	}

	return &ContentService{
		baseURL:    opts.BaseURL,
		httpClient: opts.HTTPClient,
		tokens:     opts.Tokens,
		observer:   opts.Observer,
		limiter:    limiter,
	}
}

// observe hands a failure to the invalidation observer before it surfaces.
func (c *ContentService) observe(ctx context.Context, err error) error {
	if err != nil && c.observer != nil {
		c.observer.Observe(ctx, err)
	}
	return err
}

// withRetry runs fn once, and once more after a successful token refresh if
// the first attempt was rejected as unauthorized. No further retries.
func (c *ContentService) withRetry(ctx context.Context, fn func() error) error {
	err := fn()
	if err == nil || !IsUnauthorized(err) || c.tokens == nil {
		return c.observe(ctx, err)
	}

	if !c.tokens.Refresh(ctx) {
		return c.observe(ctx, err)
	}

	return c.observe(ctx, fn())
}

// FetchCatalog executes the catalog query and returns songs with ordinals
// assigned 1..N in response order.
func (c *ContentService) FetchCatalog(ctx context.Context) ([]models.Song, error) {
	var songs []models.Song
	err := c.withRetry(ctx, func() error {
		fetched, err := c.fetchCatalogOnce(ctx)
		if err != nil {
			return err
		}
		songs = fetched
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to fetch catalog: %w", err)
	}
	return songs, nil
}

func (c *ContentService) fetchCatalogOnce(ctx context.Context) ([]models.Song, error) {
	payload, err := json.Marshal(map[string]string{"query": catalogQuery})
	if err != nil {
		return nil, fmt.Errorf("failed to encode query: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/graphql", bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if err := c.authorize(ctx, req); err != nil {
		return nil, err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, newAPIError(resp.StatusCode, body)
	}

	var decoded catalogResponse
	if err := json.Unmarshal(body, &decoded); err != nil {
		return nil, fmt.Errorf("failed to decode catalog: %w", err)
	}

	// GraphQL reports auth failures with a 200 status and an errors list
	if len(decoded.Errors) > 0 {
		return nil, &APIError{StatusCode: resp.StatusCode, Errors: decoded.Errors}
	}

	songs := make([]models.Song, 0, len(decoded.Data.Gesangbuchlied))
	for i, raw := range decoded.Data.Gesangbuchlied {
		songs = append(songs, transformSong(raw, i+1))
	}

	return songs, nil
}

// FetchAsset downloads one binary asset, rate-limited and bearer-authorized.
func (c *ContentService) FetchAsset(ctx context.Context, assetID string) ([]byte, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("rate limiter: %w", err)
		}
	}

	var data []byte
	err := c.withRetry(ctx, func() error {
		fetched, err := c.fetchAssetOnce(ctx, assetID)
		if err != nil {
			return err
		}
		data = fetched
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to fetch asset %s: %w", assetID, err)
	}
	return data, nil
}

func (c *ContentService) fetchAssetOnce(ctx context.Context, assetID string) ([]byte, error) {
	url := fmt.Sprintf("%s/assets/%s", c.baseURL, assetID)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	if err := c.authorize(ctx, req); err != nil {
		return nil, err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, newAPIError(resp.StatusCode, body)
	}

	return body, nil
}

// authorize attaches the current bearer token when one is available.
func (c *ContentService) authorize(ctx context.Context, req *http.Request) error {
	if c.tokens == nil {
		return nil
	}
	token, err := c.tokens.CurrentToken(ctx)
	if err != nil {
		return err
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return nil
}

// transformSong flattens the nested relation structure into a [models.Song].
// ordinal is the 1-based position in the catalog response.
func transformSong(raw gqlSong, ordinal int) models.Song {
	song := models.Song{
		ID:      raw.ID,
		Ordinal: ordinal,
		Title:   raw.Titel,
	}

	if raw.TextID != nil {
		for i, v := range raw.TextID.StrophenEinzeln {
			song.Verses = append(song.Verses, models.Verse{
				Number:     i + 1,
				Text:       v.Strophe,
				Annotation: v.Anmerkung,
				Amendment:  v.Aenderungsvorschlag,
			})
		}
		song.TextAuthors = transformAuthors(raw.TextID.AutorID)
	}

	if raw.MelodieID != nil {
		for _, n := range raw.MelodieID.ABCMelodie {
			song.Notations = append(song.Notations, models.Notation{
				Name:    n.Name,
				ABC:     n.ABCNotation,
				Default: n.IsDefault,
				FileID:  n.FileID,
			})
		}
		song.MelodyAuthors = transformAuthors(raw.MelodieID.AutorID)
		for _, n := range raw.MelodieID.Noten {
			song.NoteRefs = append(song.NoteRefs, models.NoteRef{
				ID:       n.DirectusFilesID.ID,
				Filename: n.DirectusFilesID.FilenameDownload,
			})
		}
	}

	for _, k := range raw.KategorieID {
		song.Categories = append(song.Categories, models.Category{
			ID:   k.KategorieID.ID.String(),
			Name: k.KategorieID.Name,
		})
	}

	return song
}

func transformAuthors(raw []gqlAuthor) []models.Author {
	var authors []models.Author
	for _, a := range raw {
		authors = append(authors, models.Author{
			FirstName: a.AutorID.Vorname,
			LastName:  a.AutorID.Nachname,
			DeathYear: a.AutorID.Sterbejahr,
		})
	}
	return authors
}
