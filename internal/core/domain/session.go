package domain

type (
	User struct {
		ID     int    `json:"id"`
		Name   string `json:"name"`
		Email  string `json:"email"`
		Role   string `json:"role"`
		Avatar string `json:"avatar,omitempty"`
		Phone  string `json:"phone,omitempty"`
	}

	// Session mirrors the server-issued credential pair. It is valid
	// only when both halves are present.
	Session struct {
		Token string `json:"token"`
		User  User   `json:"user"`
	}
)

func (s Session) Authenticated() bool {
	return s.Token != "" && s.User.ID != 0
}

// AuthState is the auth namespace state machine.
type AuthState int

const (
	Anonymous AuthState = iota
	Authenticating
	Authenticated
)

func (s AuthState) String() string {
	switch s {
	case Anonymous:
		return "anonymous"
	case Authenticating:
		return "authenticating"
	case Authenticated:
		return "authenticated"
	}
	return "unknown"
}
