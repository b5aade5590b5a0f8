// Package server provides HTTP routing, middleware, and the loopback
// authorization callback receiver.
//
// # Router Infrastructure
//
// The [Router] interface defines HTTP routing with middleware support.
//
// [Middleware] wraps handlers in reverse order (last added executes first), following the standard Go pattern.
//
// The [BasicRouter] implementation uses [http.ServeMux] internally with method filtering.
//
// # Callback Handler
//
// [CallbackHandler] is one transport for delivering the OAuth2
// authorization redirect: a temporary HTTP server on the configured
// loopback address receives `/callback`, parses `(code, state, error)`
// into a [session.Callback], and hands it to the session. The session
// owns validation; the handler owns nothing but parsing and the
// browser-facing result page. Completion is signalled exactly once
// through [CallbackHandler.Done], after which the CLI shuts the server
// down.
//
// A platform deep-link receiver would implement the same delivery by
// constructing a [session.Callback] from the deep-link URI; the session
// is agnostic to the transport.
package server
