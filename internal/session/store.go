// Package session presents the external auth provider's push-based session
// notifications as observable identity streams and wraps its imperative
// operations with audit logging.
package session

import (
	"context"

	"github.com/mikawa/storefront/internal/actionlog"
	"github.com/mikawa/storefront/pkg/pubsub"
)

// Identity is the authenticated user's display name and opaque id. Both
// fields are present together or absent together.
type Identity struct {
	UserID   string
	UserName string
}

// Present reports whether the identity is usable for placing orders.
func (i Identity) Present() bool {
	return i.UserID != "" && i.UserName != ""
}

// Store owns the reactive identity state. The display name and user id are
// two independently observable streams, driven by the provider's change
// notifications. SignIn and SignOut additionally push an immediate local
// update so consumers react before the provider's own notification arrives;
// this double update is designed redundancy, not a bug.
type Store struct {
	provider Provider
	log      *actionlog.Logger

	userName *pubsub.Subject[string]
	userID   *pubsub.Subject[string]
}

// NewStore creates a Store bound to the given provider and starts listening
// for its state-change notifications. The empty string on either stream
// means "absent".
func NewStore(provider Provider, log *actionlog.Logger) *Store {
	s := &Store{
		provider: provider,
		log:      log,
		userName: pubsub.NewSubject[string](),
		userID:   pubsub.NewSubject[string](),
	}

	provider.OnStateChange(func(event string, user *User) {
		s.push(user)
		userID := ""
		if user != nil {
			userID = user.ID
		}
		s.log.Action("auth_state_change", actionlog.Details{
			"event":           event,
			"userId":          userID,
			"isAuthenticated": user != nil,
		})
	})

	return s
}

// UserName is the display-name stream; empty string when signed out.
func (s *Store) UserName() *pubsub.Subject[string] { return s.userName }

// UserID is the opaque-id stream; empty string when signed out.
func (s *Store) UserID() *pubsub.Subject[string] { return s.userID }

// Identity returns a point-in-time snapshot of both streams.
func (s *Store) Identity() Identity {
	name, _ := s.userName.Get()
	id, _ := s.userID.Get()
	return Identity{UserID: id, UserName: name}
}

// push updates both identity streams from the given user (nil clears them).
func (s *Store) push(user *User) {
	name, id := "", ""
	if user != nil {
		name = user.UserName
		id = user.ID
	}
	s.userName.Set(name)
	s.userID.Set(id)
}

// SignUp registers a new user. The session does not change; the provider
// sends a confirmation email before the account becomes usable.
func (s *Store) SignUp(ctx context.Context, username, email, password string) error {
	s.log.Action("signup_attempt", actionlog.Details{"username": username, "email": email})

	user, err := s.provider.SignUp(ctx, SignUpRequest{
		UserName: username,
		Email:    email,
		Password: password,
	})
	if err != nil {
		s.log.Error(err, "signup_failed", actionlog.Details{"username": username, "email": email})
		return err
	}

	s.log.Action("signup_success", actionlog.Details{
		"username": username,
		"email":    email,
		"userId":   user.ID,
	})
	return nil
}

// SignIn authenticates with email and password. On success the identity
// streams update immediately, without waiting for the provider notification.
func (s *Store) SignIn(ctx context.Context, email, password string) error {
	s.log.Action("login_attempt", actionlog.Details{"email": email})

	user, err := s.provider.SignIn(ctx, email, password)
	if err != nil {
		s.log.Error(err, "login_failed", actionlog.Details{"email": email})
		return err
	}

	s.push(user)
	s.log.Action("login_success", actionlog.Details{
		"email":    email,
		"userId":   user.ID,
		"username": user.UserName,
	})
	return nil
}

// SignOut ends the session. On success the identity streams clear
// immediately.
func (s *Store) SignOut(ctx context.Context) error {
	id := s.Identity()
	s.log.Action("logout_attempt", actionlog.Details{"userId": id.UserID, "username": id.UserName})

	if err := s.provider.SignOut(ctx); err != nil {
		s.log.Error(err, "logout_failed", actionlog.Details{"userId": id.UserID, "username": id.UserName})
		return err
	}

	s.push(nil)
	s.log.Action("logout_success", actionlog.Details{"userId": id.UserID, "username": id.UserName})
	return nil
}

// SendResetLink asks the provider to email a password-reset link.
func (s *Store) SendResetLink(ctx context.Context, email string) error {
	s.log.Action("password_reset_request", actionlog.Details{"email": email})

	if err := s.provider.SendResetLink(ctx, email); err != nil {
		s.log.Error(err, "password_reset_request_failed", actionlog.Details{"email": email})
		return err
	}

	s.log.Action("password_reset_email_sent", actionlog.Details{"email": email})
	return nil
}

// ResetPassword sets a new password for the active session's user.
func (s *Store) ResetPassword(ctx context.Context, newPassword string) error {
	s.log.Action("password_reset_attempt", nil)

	user, err := s.provider.UpdatePassword(ctx, newPassword)
	if err != nil {
		s.log.Error(err, "password_reset_failed", nil)
		return err
	}

	s.log.Action("password_reset_success", actionlog.Details{"userId": user.ID})
	return nil
}

// IsAuthenticatedNow asks the provider whether an authenticated session
// exists right now. Used by the route guard; one check per navigation.
func (s *Store) IsAuthenticatedNow(ctx context.Context) (bool, error) {
	user, err := s.provider.CurrentUser(ctx)
	if err != nil {
		return false, err
	}
	return user != nil, nil
}
