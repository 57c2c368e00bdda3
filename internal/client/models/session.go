// Package models defines client-side data models used by the capgallery
// coordination layer.
package models

// Status is the client's three-valued belief about authentication.
type Status string

const (
	StatusUnknown       Status = "unknown"
	StatusAuthenticated Status = "authenticated"
	StatusAnonymous     Status = "anonymous"
)

// Session is the current session belief. Username is non-empty iff Status is
// StatusAuthenticated; an empty Username stands for "no user".
type Session struct {
	Status   Status
	Username string
}

func UnknownSession() Session {
	return Session{Status: StatusUnknown}
}

func AnonymousSession() Session {
	return Session{Status: StatusAnonymous}
}

// AuthenticatedSession returns an authenticated session for username. An empty
// username yields an anonymous session so the invariant cannot be broken.
func AuthenticatedSession(username string) Session {
	if username == "" {
		return AnonymousSession()
	}
	return Session{Status: StatusAuthenticated, Username: username}
}

func (s Session) IsAuthenticated() bool {
	return s.Status == StatusAuthenticated
}

// Valid reports whether s satisfies the username/status invariant.
func (s Session) Valid() bool {
	switch s.Status {
	case StatusAuthenticated:
		return s.Username != ""
	case StatusUnknown, StatusAnonymous:
		return s.Username == ""
	default:
		return false
	}
}

func (s Session) String() string {
	if s.IsAuthenticated() {
		return s.Username
	}
	return string(s.Status)
}
