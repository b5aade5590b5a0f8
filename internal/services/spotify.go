// Spotify API implementation of [Service]
//
// Spotify API response types based on https://developer.spotify.com/documentation/web-api/reference/
package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/desertthunder/replay/internal/history"
	"github.com/desertthunder/replay/internal/shared"
	"golang.org/x/oauth2"
	"golang.org/x/time/rate"
)

const (
	spotifyAuthURL  = "https://accounts.spotify.com/authorize"
	spotifyTokenURL = "https://accounts.spotify.com/api/token"
	spotifyBaseURL  = "https://api.spotify.com/v1"

	// historyPageSize is the maximum page size the recently-played
	// endpoint accepts. A page shorter than this signals end-of-data
	// even when a next cursor is present.
	historyPageSize = 50

	// maxHistoryPages bounds a sync cycle. Reaching it stops early with
	// a partial result; it is not an error.
	maxHistoryPages = 10

	// pageInterval is the unconditional pacing delay between page
	// fetches, a rate-limit courtesy rather than adaptive backoff.
	pageInterval = 100 * time.Millisecond
)

// SpotifyImage represents an image resource.
type SpotifyImage struct {
	URL    string `json:"url"`
	Height int    `json:"height"`
	Width  int    `json:"width"`
}

// SpotifyArtist represents a Spotify artist.
type SpotifyArtist struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	URI  string `json:"uri"`
}

// SpotifyAlbum represents a Spotify album.
type SpotifyAlbum struct {
	ID     string         `json:"id"`
	Name   string         `json:"name"`
	Images []SpotifyImage `json:"images"`
	URI    string         `json:"uri"`
}

// SpotifyTrack represents a Spotify track.
type SpotifyTrack struct {
	ID         string          `json:"id"`
	Name       string          `json:"name"`
	Artists    []SpotifyArtist `json:"artists"`
	Album      SpotifyAlbum    `json:"album"`
	DurationMS int             `json:"duration_ms"`
	URI        string          `json:"uri"`
}

// SpotifyPlayHistoryItem represents one play event in the history feed.
type SpotifyPlayHistoryItem struct {
	Track    SpotifyTrack `json:"track"`
	PlayedAt string       `json:"played_at"`
}

// SpotifyRecentlyPlayedPage represents a paginated response from the
// recently-played endpoint. Next is an opaque cursor URL or null.
type SpotifyRecentlyPlayedPage struct {
	Items []SpotifyPlayHistoryItem `json:"items"`
	Next  *string                  `json:"next"`
	Limit int                      `json:"limit"`
}

// SpotifyService implements the [OAuthService] interface for the
// Spotify Web API. Uses [oauth2] for authentication and paces history
// page fetches with a [rate.Limiter].
type SpotifyService struct {
	config     *oauth2.Config
	token      *oauth2.Token
	httpClient *http.Client
	limiter    *rate.Limiter
	baseURL    string
}

// NewSpotifyService creates a new Spotify service with the given OAuth2 credentials.
func NewSpotifyService(credentials map[string]string) (*SpotifyService, error) {
	clientID, ok := credentials["client_id"]
	if !ok || clientID == "" {
		return nil, fmt.Errorf("%w: missing client_id", shared.ErrMissingCredentials)
	}

	clientSecret, ok := credentials["client_secret"]
	if !ok || clientSecret == "" {
		return nil, fmt.Errorf("%w: missing client_secret", shared.ErrMissingCredentials)
	}

	redirectURI, ok := credentials["redirect_uri"]
	if !ok || redirectURI == "" {
		redirectURI = "http://127.0.0.1:9843/callback"
	}

	config := &oauth2.Config{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		RedirectURL:  redirectURI,
		Scopes: []string{
			"user-read-recently-played",
			"user-read-playback-state",
			"user-read-currently-playing",
		},
		Endpoint: oauth2.Endpoint{
			AuthURL:  spotifyAuthURL,
			TokenURL: spotifyTokenURL,
		},
	}

	return &SpotifyService{
		config:     config,
		httpClient: http.DefaultClient,
		limiter:    rate.NewLimiter(rate.Every(pageInterval), 1),
		baseURL:    spotifyBaseURL,
	}, nil
}

func (s *SpotifyService) Name() string {
	return "Spotify"
}

// GetAuthURL returns the OAuth2 authorization URL for user login.
func (s *SpotifyService) GetAuthURL(state string) string {
	return s.config.AuthCodeURL(state)
}

// Exchange performs the single-shot authorization-code exchange against
// the token endpoint. The redirect URI sent matches the one used to
// build the authorization URL byte for byte.
//
// A provider rejection or a response lacking an access token surfaces
// as [shared.ErrTokenExchange] with the status and body when available.
func (s *SpotifyService) Exchange(ctx context.Context, code string) (*oauth2.Token, error) {
	token, err := s.config.Exchange(ctx, code)
	if err != nil {
		var retrieveErr *oauth2.RetrieveError
		if errors.As(err, &retrieveErr) {
			return nil, fmt.Errorf("%w: status %d: %s", shared.ErrTokenExchange,
				retrieveErr.Response.StatusCode, string(retrieveErr.Body))
		}
		return nil, fmt.Errorf("%w: %v", shared.ErrTokenExchange, err)
	}

	if token.AccessToken == "" {
		return nil, fmt.Errorf("%w: response missing access token", shared.ErrTokenExchange)
	}

	return token, nil
}

// SetToken installs the bearer token used for API requests.
func (s *SpotifyService) SetToken(token *oauth2.Token) {
	s.token = token
}

// Token returns the installed bearer token, or nil.
func (s *SpotifyService) Token() *oauth2.Token {
	return s.token
}

// RecentlyPlayed retrieves the user's play history as a raw ordered
// union of pages.
//
// Pagination is strictly sequential: each page's next cursor feeds the
// following request. Fetching continues only while the cursor is
// non-null AND the page came back full; it stops unconditionally after
// maxHistoryPages pages. Successive fetches are paced by the limiter.
//
// A 401 surfaces as [shared.ErrTokenExpired] so the caller can
// invalidate the session; any other non-2xx aborts the cycle with
// [shared.ErrFetchFailed] and the partial pages are discarded.
func (s *SpotifyService) RecentlyPlayed(ctx context.Context) ([]history.PlayRecord, error) {
	if s.token == nil {
		return nil, fmt.Errorf("%w: call SetToken first", shared.ErrNotAuthenticated)
	}

	pageURL := fmt.Sprintf("%s/me/player/recently-played?limit=%d", s.baseURL, historyPageSize)

	var raw []history.PlayRecord

	for fetched := 0; fetched < maxHistoryPages; fetched++ {
		if err := s.limiter.Wait(ctx); err != nil {
			return nil, err
		}

		page, err := s.fetchHistoryPage(ctx, pageURL)
		if err != nil {
			return nil, err
		}

		for _, item := range page.Items {
			rec, err := item.ToPlayRecord()
			if err != nil {
				return nil, fmt.Errorf("%w: %v", shared.ErrFetchFailed, err)
			}
			raw = append(raw, rec)
		}

		if page.Next == nil || len(page.Items) < historyPageSize {
			break
		}
		pageURL = *page.Next
	}

	return raw, nil
}

// fetchHistoryPage performs a single authenticated GET against the
// recently-played endpoint (or a next-page cursor URL).
func (s *SpotifyService) fetchHistoryPage(ctx context.Context, pageURL string) (*SpotifyRecentlyPlayedPage, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Authorization", "Bearer "+s.token.AccessToken)
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrFetchFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized {
		return nil, fmt.Errorf("%w: history fetch returned 401", shared.ErrTokenExpired)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("%w: status %d: %s", shared.ErrFetchFailed, resp.StatusCode, string(body))
	}

	var page SpotifyRecentlyPlayedPage
	if err := json.NewDecoder(resp.Body).Decode(&page); err != nil {
		return nil, fmt.Errorf("%w: failed to decode page: %v", shared.ErrFetchFailed, err)
	}

	return &page, nil
}

// ToPlayRecord maps the wire representation to the canonical model.
func (i SpotifyPlayHistoryItem) ToPlayRecord() (history.PlayRecord, error) {
	playedAt, err := time.Parse(time.RFC3339, i.PlayedAt)
	if err != nil {
		return history.PlayRecord{}, fmt.Errorf("invalid played_at %q: %v", i.PlayedAt, err)
	}

	artists := make([]history.Artist, 0, len(i.Track.Artists))
	for _, artist := range i.Track.Artists {
		artists = append(artists, history.Artist{Name: artist.Name})
	}

	images := make([]string, 0, len(i.Track.Album.Images))
	for _, img := range i.Track.Album.Images {
		images = append(images, img.URL)
	}

	return history.PlayRecord{
		Track: history.Track{
			ID:      i.Track.ID,
			Name:    i.Track.Name,
			Artists: artists,
			Album:   history.Album{Name: i.Track.Album.Name, ImageURLs: images},
		},
		PlayedAt: playedAt,
	}, nil
}
