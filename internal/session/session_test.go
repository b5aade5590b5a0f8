package session

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"sync"
	"testing"

	"github.com/desertthunder/replay/internal/history"
	"github.com/desertthunder/replay/internal/shared"
	"golang.org/x/oauth2"
)

// fakeService implements services.OAuthService without network I/O.
type fakeService struct {
	mu          sync.Mutex
	token       *oauth2.Token
	exchangeErr error
	exchanged   []string
}

func (f *fakeService) Name() string { return "Fake" }

func (f *fakeService) RecentlyPlayed(ctx context.Context) ([]history.PlayRecord, error) {
	return nil, nil
}

func (f *fakeService) GetAuthURL(state string) string {
	return "https://accounts.example/authorize?state=" + url.QueryEscape(state)
}

func (f *fakeService) Exchange(ctx context.Context, code string) (*oauth2.Token, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.exchanged = append(f.exchanged, code)
	if f.exchangeErr != nil {
		return nil, f.exchangeErr
	}
	return &oauth2.Token{AccessToken: "token_for_" + code}, nil
}

func (f *fakeService) SetToken(token *oauth2.Token) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.token = token
}

func (f *fakeService) Token() *oauth2.Token {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.token
}

// memStore implements Store in memory.
type memStore struct {
	mu      sync.Mutex
	token   string
	pending string
}

func (m *memStore) SaveToken(token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.token = token
	return nil
}

func (m *memStore) LoadToken() (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.token, nil
}

func (m *memStore) ClearToken() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.token = ""
	return nil
}

func (m *memStore) SavePendingState(state string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pending = state
	return nil
}

func (m *memStore) LoadPendingState() (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.pending, nil
}

func (m *memStore) ClearPendingState() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pending = ""
	return nil
}

func newTestSession() (*Session, *fakeService, *memStore) {
	svc := &fakeService{}
	store := &memStore{}
	return New(svc, store, nil), svc, store
}

// pendingState extracts the state Begin embedded in the auth URL.
func pendingState(t *testing.T, authURL string) string {
	t.Helper()
	u, err := url.Parse(authURL)
	if err != nil {
		t.Fatalf("failed to parse auth URL: %v", err)
	}
	return u.Query().Get("state")
}

func TestSessionBegin(t *testing.T) {
	t.Run("Issues Fresh State And Persists It", func(t *testing.T) {
		sess, _, store := newTestSession()

		authURL, err := sess.Begin()
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		state := pendingState(t, authURL)
		if state == "" {
			t.Fatal("expected state parameter in auth URL")
		}

		if store.pending != state {
			t.Errorf("expected pending state persisted, got %q", store.pending)
		}

		if sess.State() != StateAwaitingCallback {
			t.Errorf("expected awaiting_callback, got %s", sess.State())
		}
	})

	t.Run("Supersedes Prior Attempt", func(t *testing.T) {
		sess, _, _ := newTestSession()

		first, _ := sess.Begin()
		second, err := sess.Begin()
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		if pendingState(t, first) == pendingState(t, second) {
			t.Error("expected a fresh state per login attempt")
		}

		// The superseded state must no longer validate, and rejecting it
		// must leave the newer attempt live.
		err = sess.HandleCallback(context.Background(), Callback{
			Code:  "code",
			State: pendingState(t, first),
		})
		if !errors.Is(err, shared.ErrStateMismatch) {
			t.Errorf("expected ErrStateMismatch for stale state, got %v", err)
		}
		if sess.State() != StateAwaitingCallback {
			t.Errorf("expected newer attempt still awaiting callback, got %s", sess.State())
		}
	})
}

func TestSessionHandleCallback(t *testing.T) {
	ctx := context.Background()

	t.Run("Rejects Mismatched State", func(t *testing.T) {
		sess, svc, store := newTestSession()
		sess.Begin()

		err := sess.HandleCallback(ctx, Callback{Code: "valid_code", State: "forged"})
		if !errors.Is(err, shared.ErrStateMismatch) {
			t.Fatalf("expected ErrStateMismatch, got %v", err)
		}

		if len(svc.exchanged) != 0 {
			t.Error("exchange must never run on a state mismatch")
		}
		if sess.State() != StateAwaitingCallback {
			t.Errorf("expected attempt to survive a forged callback, got %s", sess.State())
		}
		if store.pending == "" {
			t.Error("expected pending state retained after a forged callback")
		}
	})

	t.Run("Stale Callback Then Genuine Callback", func(t *testing.T) {
		sess, svc, _ := newTestSession()

		first, _ := sess.Begin()
		second, _ := sess.Begin()

		// A late redirect from the superseded attempt is rejected
		// without consuming the current attempt's state.
		err := sess.HandleCallback(ctx, Callback{Code: "stale_code", State: pendingState(t, first)})
		if !errors.Is(err, shared.ErrStateMismatch) {
			t.Fatalf("expected ErrStateMismatch for stale callback, got %v", err)
		}

		if err := sess.HandleCallback(ctx, Callback{Code: "fresh_code", State: pendingState(t, second)}); err != nil {
			t.Fatalf("expected genuine callback to validate, got %v", err)
		}

		if sess.State() != StateAuthenticated {
			t.Errorf("expected authenticated after genuine callback, got %s", sess.State())
		}
		if len(svc.exchanged) != 1 || svc.exchanged[0] != "fresh_code" {
			t.Errorf("expected exactly one exchange for the genuine code, got %v", svc.exchanged)
		}
	})

	t.Run("Rejects Missing State", func(t *testing.T) {
		sess, svc, _ := newTestSession()
		sess.Begin()

		err := sess.HandleCallback(ctx, Callback{Code: "valid_code"})
		if !errors.Is(err, shared.ErrStateMismatch) {
			t.Fatalf("expected ErrStateMismatch, got %v", err)
		}
		if len(svc.exchanged) != 0 {
			t.Error("exchange must never run without a matching state")
		}
	})

	t.Run("Accepts Matching State Exactly Once", func(t *testing.T) {
		sess, svc, store := newTestSession()
		authURL, _ := sess.Begin()
		state := pendingState(t, authURL)

		cb := Callback{Code: "the_code", State: state}

		if err := sess.HandleCallback(ctx, cb); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		if sess.State() != StateAuthenticated {
			t.Errorf("expected authenticated, got %s", sess.State())
		}
		if store.token != "token_for_the_code" {
			t.Errorf("expected token persisted, got %q", store.token)
		}
		if store.pending != "" {
			t.Error("expected pending state cleared after consumption")
		}

		// Second delivery of the same values: pending already cleared,
		// silently ignored, no second exchange.
		if err := sess.HandleCallback(ctx, cb); err != nil {
			t.Fatalf("duplicate delivery should be ignored, got %v", err)
		}
		if len(svc.exchanged) != 1 {
			t.Errorf("expected exactly one exchange, got %d", len(svc.exchanged))
		}
	})

	t.Run("Provider Error Surfaces AuthDenied", func(t *testing.T) {
		sess, _, _ := newTestSession()
		sess.Begin()

		err := sess.HandleCallback(ctx, Callback{Err: "access_denied"})
		if !errors.Is(err, shared.ErrAuthDenied) {
			t.Fatalf("expected ErrAuthDenied, got %v", err)
		}
		if !strings.Contains(err.Error(), "access_denied") {
			t.Errorf("expected provider message surfaced verbatim, got %v", err)
		}
		if sess.State() != StateError {
			t.Errorf("expected error state, got %s", sess.State())
		}
	})

	t.Run("Exchange Failure Requires Restart", func(t *testing.T) {
		sess, svc, store := newTestSession()
		svc.exchangeErr = fmt.Errorf("%w: status 400", shared.ErrTokenExchange)

		authURL, _ := sess.Begin()
		err := sess.HandleCallback(ctx, Callback{Code: "bad", State: pendingState(t, authURL)})
		if !errors.Is(err, shared.ErrTokenExchange) {
			t.Fatalf("expected ErrTokenExchange, got %v", err)
		}

		if sess.State() != StateError {
			t.Errorf("expected error state, got %s", sess.State())
		}
		if store.token != "" {
			t.Error("no token should be persisted after a failed exchange")
		}
	})

	t.Run("Ignores Callback With No Pending Login", func(t *testing.T) {
		sess, svc, _ := newTestSession()

		if err := sess.HandleCallback(ctx, Callback{Code: "code", State: "whatever"}); err != nil {
			t.Fatalf("stale callback should be ignored silently, got %v", err)
		}
		if len(svc.exchanged) != 0 {
			t.Error("no exchange should run for a stale callback")
		}
	})
}

func TestSessionRestore(t *testing.T) {
	t.Run("Rehydrates Persisted Token", func(t *testing.T) {
		sess, svc, store := newTestSession()
		store.token = "persisted_token"

		ok, err := sess.Restore()
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if !ok {
			t.Fatal("expected restore to find a token")
		}

		if sess.State() != StateAuthenticated {
			t.Errorf("expected authenticated, got %s", sess.State())
		}
		if svc.Token() == nil || svc.Token().AccessToken != "persisted_token" {
			t.Error("expected token installed into service")
		}
	})

	t.Run("No Stored Token", func(t *testing.T) {
		sess, _, _ := newTestSession()

		ok, err := sess.Restore()
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if ok {
			t.Error("expected restore to report no token")
		}
		if sess.State() != StateIdle {
			t.Errorf("expected idle, got %s", sess.State())
		}
	})
}

func TestSessionResumePending(t *testing.T) {
	sess, _, store := newTestSession()
	store.pending = "persisted_state"

	ok, err := sess.ResumePending()
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if !ok {
		t.Fatal("expected a pending login to resume")
	}

	if sess.State() != StateAwaitingCallback {
		t.Errorf("expected awaiting_callback, got %s", sess.State())
	}

	// A callback carrying the pre-restart state validates.
	if err := sess.HandleCallback(context.Background(), Callback{Code: "code", State: "persisted_state"}); err != nil {
		t.Errorf("expected resumed state to validate, got %v", err)
	}
}

func TestSessionInvalidate(t *testing.T) {
	sess, svc, store := newTestSession()
	store.token = "stale_token"
	if _, err := sess.Restore(); err != nil {
		t.Fatalf("restore failed: %v", err)
	}

	if err := sess.Invalidate(); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if sess.State() != StateIdle {
		t.Errorf("expected idle after invalidation, got %s", sess.State())
	}
	if store.token != "" {
		t.Error("expected persisted token cleared")
	}
	if svc.Token() != nil {
		t.Error("expected service token cleared")
	}
}
