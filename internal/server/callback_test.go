package server

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/desertthunder/replay/internal/session"
)

// recordingReceiver captures forwarded callbacks.
type recordingReceiver struct {
	callbacks []session.Callback
	err       error
}

func (r *recordingReceiver) HandleCallback(ctx context.Context, cb session.Callback) error {
	r.callbacks = append(r.callbacks, cb)
	return r.err
}

func TestCallbackHandler(t *testing.T) {
	t.Run("Forwards Code And State", func(t *testing.T) {
		receiver := &recordingReceiver{}
		handler := NewCallbackHandler(receiver)

		req := httptest.NewRequest("GET", "/callback?code=abc&state=xyz", nil)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		if len(receiver.callbacks) != 1 {
			t.Fatalf("expected one forwarded callback, got %d", len(receiver.callbacks))
		}

		cb := receiver.callbacks[0]
		if cb.Code != "abc" || cb.State != "xyz" || cb.Err != "" {
			t.Errorf("unexpected callback %+v", cb)
		}

		if rec.Code != http.StatusOK {
			t.Errorf("expected 200, got %d", rec.Code)
		}

		select {
		case err := <-handler.Done():
			if err != nil {
				t.Errorf("expected nil completion, got %v", err)
			}
		default:
			t.Error("expected Done to be signalled")
		}
	})

	t.Run("Forwards Provider Error", func(t *testing.T) {
		receiver := &recordingReceiver{err: fmt.Errorf("authorization denied: access_denied")}
		handler := NewCallbackHandler(receiver)

		req := httptest.NewRequest("GET", "/callback?error=access_denied", nil)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		if len(receiver.callbacks) != 1 {
			t.Fatalf("expected one forwarded callback, got %d", len(receiver.callbacks))
		}
		if receiver.callbacks[0].Err != "access_denied" {
			t.Errorf("expected error forwarded, got %+v", receiver.callbacks[0])
		}

		if rec.Code != http.StatusBadRequest {
			t.Errorf("expected 400, got %d", rec.Code)
		}

		select {
		case err := <-handler.Done():
			if err == nil {
				t.Error("expected completion error")
			}
		default:
			t.Error("expected Done to be signalled")
		}
	})

	t.Run("Signals Done Only Once", func(t *testing.T) {
		receiver := &recordingReceiver{}
		handler := NewCallbackHandler(receiver)

		for i := 0; i < 2; i++ {
			req := httptest.NewRequest("GET", "/callback?code=abc&state=xyz", nil)
			handler.ServeHTTP(httptest.NewRecorder(), req)
		}

		// Both hits are forwarded (the session ignores the stale one);
		// the completion channel still fires exactly once.
		if len(receiver.callbacks) != 2 {
			t.Errorf("expected both deliveries forwarded, got %d", len(receiver.callbacks))
		}

		count := 0
		for range handler.Done() {
			count++
		}
		if count != 1 {
			t.Errorf("expected exactly one completion signal, got %d", count)
		}
	})

	t.Run("Routes", func(t *testing.T) {
		handler := NewCallbackHandler(&recordingReceiver{})
		routes := handler.Routes()
		if len(routes) != 1 || routes[0] != "/callback" {
			t.Errorf("unexpected routes %v", routes)
		}
	})
}
