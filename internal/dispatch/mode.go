// internal/dispatch/mode.go
package dispatch

import "strings"

// Mode selects which path produces embeddings. It is resolved once at the
// process boundary and passed explicitly; nothing reads it from ambient
// state after that.
type Mode int

const (
	// ModeReal asks the configured model provider, falling back to the
	// hash path when the provider is unavailable.
	ModeReal Mode = iota
	// ModeMock derives vectors locally from a hash without touching a
	// provider.
	ModeMock
)

// EnvMode is the environment variable the mode is conventionally read from.
const EnvMode = "EMBEDDINGS_MODE"

// ResolveMode normalizes a raw configuration value to a Mode. Comparison is
// case-insensitive and only the literal "mock" selects ModeMock; every other
// value, including the empty string for unset, selects ModeReal. There is no
// error path.
func ResolveMode(raw string) Mode {
	if strings.ToLower(raw) == "mock" {
		return ModeMock
	}
	return ModeReal
}

func (m Mode) String() string {
	if m == ModeMock {
		return "mock"
	}
	return "real"
}
