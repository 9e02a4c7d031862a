package view

import (
	"context"
	"fmt"

	"github.com/mikawa/storefront/internal/nav"
	"github.com/mikawa/storefront/internal/session"
)

// Alerter shows a message to the user. The interactive shell prints it;
// tests record it.
type Alerter interface {
	Alert(message string)
}

// NopAlerter discards alerts.
type NopAlerter struct{}

func (NopAlerter) Alert(string) {}

// AuthViews drives the four authentication forms. Each submit validates
// locally first; an invalid form never reaches the provider.
type AuthViews struct {
	session *session.Store
	router  *nav.Router
	alert   Alerter
}

func NewAuthViews(store *session.Store, router *nav.Router, alert Alerter) *AuthViews {
	if alert == nil {
		alert = NopAlerter{}
	}
	return &AuthViews{session: store, router: router, alert: alert}
}

// Login signs the user in and moves to the home view on success.
func (v *AuthViews) Login(ctx context.Context, form LoginForm) error {
	if err := validateForm(form); err != nil {
		v.alertValidation(err)
		return err
	}
	if err := v.session.SignIn(ctx, form.Email, form.Password); err != nil {
		v.alert.Alert(fmt.Sprintf("Login failed: %s", err))
		return err
	}
	v.alert.Alert("Login Success")
	v.router.Navigate(ctx, nav.RouteHome)
	return nil
}

// Register creates the account and returns to the login view so the user
// can sign in with it.
func (v *AuthViews) Register(ctx context.Context, form RegisterForm) error {
	if err := validateForm(form); err != nil {
		v.alertValidation(err)
		return err
	}
	if err := v.session.SignUp(ctx, form.Username, form.Email, form.Password); err != nil {
		v.alert.Alert(fmt.Sprintf("Registration failed: %s", err))
		return err
	}
	v.alert.Alert("Registration Success")
	v.router.Navigate(ctx, nav.RouteLogin)
	return nil
}

// ForgotPassword requests a reset link for the given address.
func (v *AuthViews) ForgotPassword(ctx context.Context, form ForgotPasswordForm) error {
	if err := validateForm(form); err != nil {
		v.alertValidation(err)
		return err
	}
	if err := v.session.SendResetLink(ctx, form.Email); err != nil {
		v.alert.Alert(fmt.Sprintf("Error: %s", err))
		return err
	}
	v.alert.Alert("Password reset email sent.")
	return nil
}

// ResetPassword sets the new password and returns to the login view.
func (v *AuthViews) ResetPassword(ctx context.Context, form ResetPasswordForm) error {
	if err := validateForm(form); err != nil {
		v.alertValidation(err)
		return err
	}
	if err := v.session.ResetPassword(ctx, form.NewPassword); err != nil {
		v.alert.Alert(fmt.Sprintf("Password reset failed: %s", err))
		return err
	}
	v.alert.Alert("Password reset successful!")
	v.router.Navigate(ctx, nav.RouteLogin)
	return nil
}

func (v *AuthViews) alertValidation(err error) {
	v.alert.Alert(err.Error())
}
