package auth

import "time"

// Identity is the public view of a user, as returned by getUser.
type Identity struct {
	ID                  int64      `json:"id"`
	FullName            string     `json:"fullName"`
	Email               string     `json:"email"`
	LastLogonTime       *time.Time `json:"lastLogonTime"`
	OnboardingCompleted bool       `json:"onboardingCompleted"`
}

// User is the DB level type.
type User struct {
	Identity
	PasswordHash string
	CreatedAt    time.Time
}

type Session struct {
	AccessToken  string    `json:"accessToken"`
	RefreshToken string    `json:"refreshToken"`
	ExpiresAt    time.Time `json:"expiresAt"`
	User         Identity  `json:"user"`
	// set only right after an OAuth sign in
	ProviderToken        string `json:"providerToken,omitempty"`
	ProviderRefreshToken string `json:"providerRefreshToken,omitempty"`
}

// Event is an auth state change, one of:
//   - SIGNED_IN
//   - SIGNED_OUT
//   - TOKEN_REFRESHED
type Event string

const (
	EventSignedIn       Event = "SIGNED_IN"
	EventSignedOut      Event = "SIGNED_OUT"
	EventTokenRefreshed Event = "TOKEN_REFRESHED"
)

func (e Event) String() string {
	return string(e)
}

func (e Event) IsValid() bool {
	switch e {
	case EventSignedIn, EventSignedOut, EventTokenRefreshed:
		return true
	default:
		return false
	}
}
