package server

import (
	"fmt"
	"net/http"
	"sync"

	"github.com/desertthunder/replay/internal/session"
)

// CallbackHandler receives the OAuth2 authorization redirect on the
// loopback server and forwards it to a [session.CallbackReceiver].
// Implements the [Handler] interface for registration with a [Router].
//
// The handler is transport glue only: state validation and the code
// exchange live in the receiver. Duplicate or stale redirects are
// forwarded as-is; the receiver ignores them.
type CallbackHandler struct {
	receiver session.CallbackReceiver
	done     chan error
	once     sync.Once
}

// NewCallbackHandler creates a handler delivering into the given receiver.
func NewCallbackHandler(receiver session.CallbackReceiver) *CallbackHandler {
	return &CallbackHandler{
		receiver: receiver,
		done:     make(chan error, 1),
	}
}

// Routes returns the HTTP routes this handler serves.
func (h *CallbackHandler) Routes() []string {
	return []string{"/callback"}
}

// ServeHTTP parses the redirect query into a [session.Callback],
// forwards it, and renders a closing page for the browser tab.
func (h *CallbackHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	cb := session.Callback{
		Code:  query.Get("code"),
		State: query.Get("state"),
		Err:   query.Get("error"),
	}

	err := h.receiver.HandleCallback(r.Context(), cb)
	h.signal(err)

	if err != nil {
		w.Header().Set("Content-Type", "text/html")
		w.WriteHeader(http.StatusBadRequest)
		fmt.Fprintf(w, resultPage, "✗ Authorization Failed", "You can close this window and try again from the terminal.")
		return
	}

	w.Header().Set("Content-Type", "text/html")
	w.WriteHeader(http.StatusOK)
	fmt.Fprintf(w, resultPage, "✓ Authorization Successful", "You can close this window and return to the terminal.")
}

// signal reports the flow result through the channel (only once).
func (h *CallbackHandler) signal(err error) {
	h.once.Do(func() {
		h.done <- err
		close(h.done)
	})
}

// Done returns the channel signalling flow completion.
//
// The channel receives exactly one value and is then closed.
func (h *CallbackHandler) Done() <-chan error {
	return h.done
}

const resultPage = `
<!DOCTYPE html>
<html>
<head>
    <title>replay</title>
    <style>
        body { font-family: -apple-system, BlinkMacSystemFont, "Segoe UI", Roboto, sans-serif;
               display: flex; align-items: center; justify-content: center; height: 100vh;
               margin: 0; background: #f5f5f5; }
        .container { text-align: center; background: white; padding: 2rem;
                     border-radius: 8px; box-shadow: 0 2px 4px rgba(0,0,0,0.1); }
        h1 { color: #1DB954; margin: 0 0 1rem 0; }
        p { color: #666; margin: 0; }
    </style>
</head>
<body>
    <div class="container">
        <h1>%s</h1>
        <p>%s</p>
    </div>
</body>
</html>
`
