package shared

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
)

// stateBytes is the entropy of a generated state token. 16 bytes gives
// 128 bits, the minimum for an unguessable OAuth state parameter.
const stateBytes = 16

// GenerateState produces a cryptographically random hex token for CSRF
// protection during the OAuth2 authorization code flow.
//
// The hex alphabet is safe in a URL query parameter without escaping.
// A failing entropy source is fatal: login must not proceed with a
// predictable state value.
func GenerateState() (string, error) {
	b := make([]byte, stateBytes)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("%w: %v", ErrEntropyUnavailable, err)
	}
	return hex.EncodeToString(b), nil
}
