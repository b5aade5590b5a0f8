// package services defines interface Service for streaming providers
// that expose a listening history over HTTP.
package services

import (
	"context"

	"github.com/desertthunder/replay/internal/history"
	"golang.org/x/oauth2"
)

// Service defines the interface for music streaming providers that can
// report the user's recently played tracks.
type Service interface {
	// RecentlyPlayed retrieves the raw listening history: the union of
	// all fetched pages in fetch order, possibly containing duplicates
	// across page boundaries. Callers normalize the result.
	RecentlyPlayed(ctx context.Context) ([]history.PlayRecord, error)

	// Name returns the name of the service (e.g., "Spotify")
	Name() string
}

// OAuthService extends Service for providers using the OAuth2
// authorization code flow.
type OAuthService interface {
	Service

	// GetAuthURL returns the provider authorization URL carrying the
	// given CSRF state parameter.
	GetAuthURL(state string) string

	// Exchange performs the single-shot authorization-code exchange.
	Exchange(ctx context.Context, code string) (*oauth2.Token, error)

	// SetToken installs a bearer token for subsequent API calls.
	SetToken(token *oauth2.Token)

	// Token returns the installed token, or nil when unauthenticated.
	Token() *oauth2.Token
}
