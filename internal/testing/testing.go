// package testing contains shared testing utilities
package testing

import (
	"context"
	"errors"
	"sync"

	"github.com/desertthunder/replay/internal/history"
	"golang.org/x/oauth2"
)

// MockService is a test double for [services.OAuthService]
type MockService struct {
	mu          sync.Mutex
	token       *oauth2.Token
	Records     []history.PlayRecord
	RecordsErr  error
	ExchangeErr error
	Exchanged   []string
}

func (m *MockService) Name() string { return "mock" }

func (m *MockService) RecentlyPlayed(ctx context.Context) ([]history.PlayRecord, error) {
	if m.RecordsErr != nil {
		return nil, m.RecordsErr
	}
	return m.Records, nil
}

func (m *MockService) GetAuthURL(state string) string {
	return "https://accounts.mock/authorize?state=" + state
}

func (m *MockService) Exchange(ctx context.Context, code string) (*oauth2.Token, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Exchanged = append(m.Exchanged, code)
	if m.ExchangeErr != nil {
		return nil, m.ExchangeErr
	}
	return &oauth2.Token{AccessToken: "mock_token_for_" + code}, nil
}

func (m *MockService) SetToken(token *oauth2.Token) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.token = token
}

func (m *MockService) Token() *oauth2.Token {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.token
}

// MemStore is an in-memory test double for [session.Store]
type MemStore struct {
	mu      sync.Mutex
	token   string
	pending string
}

func (m *MemStore) SaveToken(token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.token = token
	return nil
}

func (m *MemStore) LoadToken() (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.token, nil
}

func (m *MemStore) ClearToken() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.token = ""
	return nil
}

func (m *MemStore) SavePendingState(state string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pending = state
	return nil
}

func (m *MemStore) LoadPendingState() (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.pending, nil
}

func (m *MemStore) ClearPendingState() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pending = ""
	return nil
}

// FWriter always returns an error on Write
type FWriter struct{}

func (f *FWriter) Write(p []byte) (n int, err error) {
	return 0, errors.New("write failed")
}
