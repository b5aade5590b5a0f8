// Package session implements the OAuth2 authorization-code state
// machine owning the pending CSRF state and the access token lifecycle.
//
// A [Session] moves through Idle → AwaitingCallback → Exchanging →
// Authenticated, with Error reachable from the callback and exchange
// steps. Only the most recently issued pending state is valid: a new
// [Session.Begin] supersedes any prior attempt, and callbacks carrying
// a stale state are ignored rather than treated as failures. The
// validated state comparison is a hard security gate; the code exchange
// never proceeds on a mismatch.
package session

import (
	"context"
	"fmt"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/replay/internal/services"
	"github.com/desertthunder/replay/internal/shared"
	"golang.org/x/oauth2"
)

// State enumerates the positions of the auth state machine.
type State int

const (
	StateIdle State = iota
	StateAwaitingCallback
	StateExchanging
	StateAuthenticated
	StateError
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateAwaitingCallback:
		return "awaiting_callback"
	case StateExchanging:
		return "exchanging"
	case StateAuthenticated:
		return "authenticated"
	case StateError:
		return "error"
	default:
		return "unknown"
	}
}

// Callback carries the result of an authorization redirect. Exactly one
// of Code or Err is populated per the OAuth contract.
type Callback struct {
	Code  string
	State string
	Err   string
}

// CallbackReceiver consumes authorization callback results. Transports
// (loopback HTTP server, platform deep link) deliver into this
// interface without knowing how the result is validated.
type CallbackReceiver interface {
	HandleCallback(ctx context.Context, cb Callback) error
}

// Store persists the two process-wide auth slots: the bearer token and
// the pending CSRF state. The pending state must survive a process
// restart occurring between browser launch and callback delivery.
type Store interface {
	SaveToken(token string) error
	LoadToken() (string, error)
	ClearToken() error

	SavePendingState(state string) error
	LoadPendingState() (string, error)
	ClearPendingState() error
}

// Session owns the pending OAuth state and token lifecycle for a single
// account. All slot access is mutex-guarded: callback delivery may race
// with a user-initiated retry.
type Session struct {
	mu      sync.Mutex
	state   State
	pending string

	// generation increments on every Begin. An exchange completing for
	// a superseded attempt discards its result instead of clobbering
	// the newer login.
	generation uint64

	svc    services.OAuthService
	store  Store
	logger *log.Logger
}

var _ CallbackReceiver = (*Session)(nil)

// New creates a Session over the given provider and persistence slots.
func New(svc services.OAuthService, store Store, logger *log.Logger) *Session {
	if logger == nil {
		logger = shared.NewLogger(nil)
	}

	return &Session{
		state:  StateIdle,
		svc:    svc,
		store:  store,
		logger: logger,
	}
}

// State reports the machine's current position.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Authenticated reports whether a usable token is installed.
func (s *Session) Authenticated() bool {
	return s.State() == StateAuthenticated
}

// Begin starts a login attempt: generates a fresh CSRF state,
// supersedes any pending attempt, persists the pending value, and
// returns the authorization URL to open in the external browser.
func (s *Session) Begin() (string, error) {
	state, err := shared.GenerateState()
	if err != nil {
		return "", err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.pending != "" {
		s.logger.Debug("superseding pending login attempt")
	}

	s.pending = state
	s.generation++
	s.state = StateAwaitingCallback

	if err := s.store.SavePendingState(state); err != nil {
		return "", fmt.Errorf("failed to persist pending state: %w", err)
	}

	return s.svc.GetAuthURL(state), nil
}

// HandleCallback consumes one authorization redirect result.
//
// A callback arriving with no pending state (a duplicate delivery, or
// one superseded by a newer Begin) is ignored silently. A provider
// error clears the attempt and surfaces [shared.ErrAuthDenied]. A state
// mismatch while an attempt is pending is a CSRF rejection: the
// exchange never runs, and the pending attempt stays live so the
// genuine callback for the current attempt can still arrive. On a
// match the pending state is consumed exactly once and the code is
// exchanged; success persists the token unless a newer Begin superseded
// the attempt mid-exchange.
func (s *Session) HandleCallback(ctx context.Context, cb Callback) error {
	s.mu.Lock()

	if s.pending == "" {
		s.mu.Unlock()
		s.logger.Debug("ignoring callback with no pending login")
		return nil
	}

	if cb.Err != "" {
		s.clearPendingLocked()
		s.state = StateError
		s.mu.Unlock()
		return fmt.Errorf("%w: %s", shared.ErrAuthDenied, cb.Err)
	}

	if cb.State != s.pending {
		s.mu.Unlock()
		s.logger.Debug("rejecting callback with non-matching state")
		return fmt.Errorf("%w: callback state does not match pending login", shared.ErrStateMismatch)
	}

	s.clearPendingLocked()
	s.state = StateExchanging
	generation := s.generation
	s.mu.Unlock()

	// Single-shot: a failed exchange requires restarting from Begin.
	token, err := s.svc.Exchange(ctx, cb.Code)

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.generation != generation {
		s.logger.Debug("discarding exchange result for superseded login")
		return nil
	}

	if err != nil {
		s.state = StateError
		return err
	}

	s.svc.SetToken(token)
	s.state = StateAuthenticated

	if err := s.store.SaveToken(token.AccessToken); err != nil {
		s.logger.Warn("failed to persist access token", "error", err)
	}

	return nil
}

// Restore rehydrates a previously persisted token, moving straight from
// Idle to Authenticated without the authorization dance. Returns false
// when no token is stored.
func (s *Session) Restore() (bool, error) {
	stored, err := s.store.LoadToken()
	if err != nil {
		return false, fmt.Errorf("failed to load persisted token: %w", err)
	}
	if stored == "" {
		return false, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.svc.SetToken(tokenFromAccess(stored))
	s.state = StateAuthenticated

	return true, nil
}

// ResumePending reloads a persisted pending state after a process
// restart, so a callback delivered to the restarted process can still
// be validated against the state issued before the restart. Returns
// false when no login was pending.
func (s *Session) ResumePending() (bool, error) {
	stored, err := s.store.LoadPendingState()
	if err != nil {
		return false, fmt.Errorf("failed to load pending state: %w", err)
	}
	if stored == "" {
		return false, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.pending = stored
	s.generation++
	s.state = StateAwaitingCallback

	return true, nil
}

// Invalidate clears the persisted token and returns the machine to
// Idle. Called when a downstream request reports the token is no longer
// accepted; the surrounding system must start a fresh login.
func (s *Session) Invalidate() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.svc.SetToken(nil)
	s.state = StateIdle

	if err := s.store.ClearToken(); err != nil {
		return fmt.Errorf("failed to clear persisted token: %w", err)
	}

	return nil
}

// tokenFromAccess wraps a bare persisted access token for installation
// into the service client.
func tokenFromAccess(access string) *oauth2.Token {
	return &oauth2.Token{AccessToken: access, TokenType: "Bearer"}
}

func (s *Session) clearPendingLocked() {
	s.pending = ""
	if err := s.store.ClearPendingState(); err != nil {
		s.logger.Warn("failed to clear persisted pending state", "error", err)
	}
}
