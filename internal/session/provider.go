package session

import "context"

// User is the authenticated user as reported by the external auth provider.
type User struct {
	ID       string
	Email    string
	UserName string
}

// Auth state-change events pushed by the provider.
const (
	EventSignedIn       = "SIGNED_IN"
	EventSignedOut      = "SIGNED_OUT"
	EventUserUpdated    = "USER_UPDATED"
	EventTokenRefreshed = "TOKEN_REFRESHED"
)

// SignUpRequest carries the registration input.
type SignUpRequest struct {
	UserName string
	Email    string
	Password string
}

// Provider is the external identity provider boundary. Implementations wrap
// a real auth backend; expected failures (bad credentials, duplicate email)
// come back as errors carrying the provider's message.
type Provider interface {
	SignUp(ctx context.Context, req SignUpRequest) (*User, error)
	SignIn(ctx context.Context, email, password string) (*User, error)
	SignOut(ctx context.Context) error
	SendResetLink(ctx context.Context, email string) error
	UpdatePassword(ctx context.Context, newPassword string) (*User, error)

	// CurrentUser returns the user for the active session, or nil when there
	// is none.
	CurrentUser(ctx context.Context) (*User, error)

	// OnStateChange registers a listener for the provider's own session
	// change notifications (sign-in, sign-out, token refresh).
	OnStateChange(fn func(event string, user *User))
}
