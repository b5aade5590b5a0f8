package shared

import "fmt"

var (
	// Configuration errors
	ErrMissingConfig      = fmt.Errorf("configuration not found")
	ErrInvalidConfig      = fmt.Errorf("invalid configuration")
	ErrMissingCredentials = fmt.Errorf("missing credentials")

	// Authentication errors
	ErrEntropyUnavailable = fmt.Errorf("secure random source unavailable")
	ErrStateMismatch      = fmt.Errorf("authorization state mismatch")
	ErrAuthDenied         = fmt.Errorf("authorization denied")
	ErrTokenExchange      = fmt.Errorf("token exchange failed")
	ErrTokenExpired       = fmt.Errorf("access token expired")
	ErrNotAuthenticated   = fmt.Errorf("not authenticated")
	ErrTimeout            = fmt.Errorf("operation timed out")

	// API and service errors
	ErrFetchFailed        = fmt.Errorf("history fetch failed")
	ErrServiceUnavailable = fmt.Errorf("service unavailable")

	// Input validation errors
	ErrInvalidInput    = fmt.Errorf("invalid input")
	ErrMissingArgument = fmt.Errorf("missing required argument")
	ErrInvalidArgument = fmt.Errorf("invalid argument")
)
