package main

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/desertthunder/replay/internal/history"
	"github.com/desertthunder/replay/internal/session"
	"github.com/desertthunder/replay/internal/shared"
	tu "github.com/desertthunder/replay/internal/testing"
)

func newTestRunner(svc *tu.MockService, store *tu.MemStore) (*Runner, *bytes.Buffer) {
	output := &bytes.Buffer{}
	sess := session.New(svc, store, shared.NewLogger(os.Stderr))

	runner := NewRunner(RunnerOpts{
		Config:  shared.DefaultConfig(),
		Service: svc,
		Session: sess,
		Store:   store,
		Output:  output,
	})

	return runner, output
}

func TestRunner(t *testing.T) {
	t.Run("NewRunner", func(t *testing.T) {
		t.Run("with nil config uses defaults", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{Config: nil})

			if runner.config == nil {
				t.Error("expected default config to be set")
			}
		})

		t.Run("with nil logger uses default", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{Logger: nil})

			if runner.logger == nil {
				t.Error("expected default logger to be set")
			}
		})

		t.Run("with nil output uses stdout", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{Output: nil})

			if runner.output != os.Stdout {
				t.Error("expected output to default to os.Stdout")
			}
		})

		t.Run("constructs engine", func(t *testing.T) {
			runner, _ := newTestRunner(&tu.MockService{}, &tu.MemStore{})

			if runner.engine == nil {
				t.Error("expected engine to be constructed")
			}
		})
	})

	t.Run("writePlain", func(t *testing.T) {
		t.Run("writes formatted text", func(t *testing.T) {
			runner, output := newTestRunner(&tu.MockService{}, &tu.MemStore{})

			if err := runner.writePlain("count: %d\n", 3); err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if output.String() != "count: 3\n" {
				t.Errorf("unexpected output %q", output.String())
			}
		})

		t.Run("surfaces write failure", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{Output: &tu.FWriter{}})

			if err := runner.writePlain("anything"); err == nil {
				t.Error("expected write error")
			}
		})
	})

	t.Run("writeJSON", func(t *testing.T) {
		runner, output := newTestRunner(&tu.MockService{}, &tu.MemStore{})

		data := map[string]int{"plays": 7}
		if err := runner.writeJSON(data, false); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if !strings.Contains(output.String(), `"plays":7`) {
			t.Errorf("unexpected output %q", output.String())
		}
	})
}

func TestRunSync(t *testing.T) {
	ctx := context.Background()
	base := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

	records := []history.PlayRecord{
		{Track: history.Track{ID: "t1", Name: "First"}, PlayedAt: base.Add(time.Hour)},
		{Track: history.Track{ID: "t2", Name: "Second"}, PlayedAt: base},
		{Track: history.Track{ID: "t2", Name: "Second"}, PlayedAt: base},
	}

	t.Run("Restores Session And Syncs", func(t *testing.T) {
		svc := &tu.MockService{Records: records}
		store := &tu.MemStore{}
		store.SaveToken("persisted_token")
		runner, _ := newTestRunner(svc, store)

		result, err := runner.runSync(ctx)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		if len(result.Records) != 2 {
			t.Errorf("expected 2 records after dedupe, got %d", len(result.Records))
		}
		if svc.Token() == nil {
			t.Error("expected token restored into service")
		}
	})

	t.Run("Requires Login Without Stored Token", func(t *testing.T) {
		runner, _ := newTestRunner(&tu.MockService{Records: records}, &tu.MemStore{})

		_, err := runner.runSync(ctx)
		if !errors.Is(err, shared.ErrNotAuthenticated) {
			t.Fatalf("expected ErrNotAuthenticated, got %v", err)
		}
	})

	t.Run("Missing Credentials", func(t *testing.T) {
		runner := NewRunner(RunnerOpts{Output: &bytes.Buffer{}})

		_, err := runner.runSync(ctx)
		if !errors.Is(err, shared.ErrMissingCredentials) {
			t.Fatalf("expected ErrMissingCredentials, got %v", err)
		}
	})

	t.Run("Expired Token Prompts Reauthorization", func(t *testing.T) {
		svc := &tu.MockService{RecordsErr: fmt.Errorf("%w: status 401", shared.ErrTokenExpired)}
		store := &tu.MemStore{}
		store.SaveToken("stale_token")
		runner, output := newTestRunner(svc, store)

		_, err := runner.runSync(ctx)
		if !errors.Is(err, shared.ErrTokenExpired) {
			t.Fatalf("expected ErrTokenExpired, got %v", err)
		}

		if !strings.Contains(output.String(), "replay auth login") {
			t.Errorf("expected reauthorization prompt, got %q", output.String())
		}

		// The engine invalidates the session, so the stored token is gone.
		token, _ := store.LoadToken()
		if token != "" {
			t.Errorf("expected stored token cleared, got %q", token)
		}
	})
}

func TestAuthCommands(t *testing.T) {
	ctx := context.Background()

	t.Run("Status Reports Not Authorized", func(t *testing.T) {
		runner, output := newTestRunner(&tu.MockService{}, &tu.MemStore{})

		if err := runner.AuthStatus(ctx, nil); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if !strings.Contains(output.String(), "Not authorized") {
			t.Errorf("unexpected output %q", output.String())
		}
	})

	t.Run("Status Reports Authorized After Restore", func(t *testing.T) {
		store := &tu.MemStore{}
		store.SaveToken("persisted_token")
		runner, output := newTestRunner(&tu.MockService{}, store)

		if err := runner.AuthStatus(ctx, nil); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if !strings.Contains(output.String(), "✓ Authorized") {
			t.Errorf("unexpected output %q", output.String())
		}
	})

	t.Run("Logout Clears Stored Token", func(t *testing.T) {
		store := &tu.MemStore{}
		store.SaveToken("persisted_token")
		runner, output := newTestRunner(&tu.MockService{}, store)

		if err := runner.AuthLogout(ctx, nil); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		token, _ := store.LoadToken()
		if token != "" {
			t.Errorf("expected token cleared, got %q", token)
		}
		if !strings.Contains(output.String(), "Logged out") {
			t.Errorf("unexpected output %q", output.String())
		}
	})
}

func TestWindowFlagUsage(t *testing.T) {
	usage := windowFlagUsage()

	for _, w := range history.Windows() {
		if !strings.Contains(usage, string(w)) {
			t.Errorf("expected window %q in flag usage %q", w, usage)
		}
	}
}
