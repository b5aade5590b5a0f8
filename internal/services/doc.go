// Package services implements clients for streaming provider HTTP APIs.
//
// # Interfaces
//
// The [Service] interface is the minimal capability the sync pipeline
// needs: a name and a raw recently-played fetch. The [OAuthService]
// interface extends Service for OAuth providers, exposing the
// authorization URL, the single-shot code exchange, and token
// installation. The auth session drives OAuthService; the history
// engine only sees Service.
//
// # Spotify
//
// [SpotifyService] talks to the Spotify Web API directly with bearer
// authentication. History retrieval is a bounded, sequentially
// paginated loop: at most ten pages of fifty records per sync cycle,
// paced at one page per hundred milliseconds, ending early on a null
// cursor or a short page. Wire types ([SpotifyTrack],
// [SpotifyPlayHistoryItem], ...) mirror the API's JSON and map into the
// canonical history model via ToPlayRecord.
//
// # Errors
//
// A 401 anywhere in the fetch loop surfaces [shared.ErrTokenExpired]
// and the cycle's partial pages are discarded; the session must be
// invalidated and login restarted. Other non-2xx responses surface
// [shared.ErrFetchFailed] with the status and body. Nothing is retried
// automatically.
package services
