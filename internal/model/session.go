package model

// Sentinel is the reserved session value that resets session-scoped state.
const Sentinel = "CLEAR"

// SessionKind distinguishes the two session state variants.
type SessionKind string

const (
	SessionCleared SessionKind = "cleared"
	SessionEntries SessionKind = "entries"
)

// SessionState is either Cleared or an ordered list of free-form entries.
type SessionState struct {
	kind    SessionKind
	entries []string
}

// Cleared returns the cleared session state.
func Cleared() SessionState {
	return SessionState{kind: SessionCleared}
}

// Entries returns a session state carrying the given records in order.
func Entries(records []string) SessionState {
	return SessionState{kind: SessionEntries, entries: records}
}

// Kind returns the variant. The zero value reports SessionEntries.
func (s SessionState) Kind() SessionKind {
	if s.kind == "" {
		return SessionEntries
	}
	return s.kind
}

// IsCleared reports whether the state is the Cleared variant.
func (s SessionState) IsCleared() bool {
	return s.kind == SessionCleared
}

// Entries returns the ordered records. Empty for the Cleared variant.
func (s SessionState) Entries() []string {
	return s.entries
}

// OutputContract holds the four mandatory response-contract fields.
type OutputContract struct {
	Format    string `json:"format"`
	Schema    string `json:"schema"`
	Variance  string `json:"variance"`
	OnFailure string `json:"on_failure"`
}
