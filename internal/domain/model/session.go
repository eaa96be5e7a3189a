package model

// SessionPhase is the Session Manager's state machine position.
type SessionPhase string

const (
	SessionUninitialized SessionPhase = "uninitialized"
	SessionValidating    SessionPhase = "validating"
	SessionAuthenticated SessionPhase = "authenticated"
	SessionAnonymous     SessionPhase = "anonymous"
)

// Terminal reports whether startup validation has resolved.
func (p SessionPhase) Terminal() bool {
	return p == SessionAuthenticated || p == SessionAnonymous
}

// SessionState is a read-only snapshot handed to consumers.
// Ready == false implies User == nil.
type SessionState struct {
	Phase SessionPhase
	User  *User
	Ready bool
}

func (s SessionState) Authenticated() bool { return s.User != nil }
