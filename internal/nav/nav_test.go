package nav

import (
	"context"
	"net/http"
	"sync"
	"testing"

	"github.com/go-faster/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/mikawa/storefront/internal/actionlog"
)

type fakeChecker struct {
	mu    sync.Mutex
	ok    bool
	err   error
	calls int
}

func (f *fakeChecker) IsAuthenticatedNow(context.Context) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	return f.ok, f.err
}

func testRouter(t *testing.T, checker AuthChecker) *Router {
	t.Helper()
	log := actionlog.New(zaptest.NewLogger(t), http.DefaultClient, actionlog.Config{})
	return NewRouter(NewGuard(checker), log)
}

func TestNavigate_StartsAtLogin(t *testing.T) {
	r := testRouter(t, &fakeChecker{})

	route, ok := r.Current().Get()
	require.True(t, ok)
	assert.Equal(t, RouteLogin, route)
}

func TestNavigate_UnknownFallsBackToLogin(t *testing.T) {
	r := testRouter(t, &fakeChecker{ok: true})

	assert.Equal(t, RouteLogin, r.Navigate(context.Background(), "/no-such-page"))
	assert.Equal(t, RouteLogin, r.Navigate(context.Background(), ""))
}

func TestNavigate_StripsQueryAndFragment(t *testing.T) {
	r := testRouter(t, &fakeChecker{})

	got := r.Navigate(context.Background(), "/reset-password?token=abc#top")
	assert.Equal(t, RouteResetPassword, got)
}

func TestNavigate_GuardedRoutes(t *testing.T) {
	tests := []struct {
		name    string
		checker *fakeChecker
		target  string
		want    string
		checks  int
	}{
		{"home allowed", &fakeChecker{ok: true}, RouteHome, RouteHome, 1},
		{"home denied", &fakeChecker{ok: false}, RouteHome, RouteLogin, 1},
		{"history denied on check error", &fakeChecker{ok: true, err: errors.New("network down")}, RouteOrderHistory, RouteLogin, 1},
		{"register needs no check", &fakeChecker{ok: false}, RouteRegister, RouteRegister, 0},
		{"login needs no check", &fakeChecker{ok: false}, RouteLogin, RouteLogin, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := testRouter(t, tt.checker)

			got := r.Navigate(context.Background(), tt.target)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.checks, tt.checker.calls, "one fresh check per guarded navigation")

			route, _ := r.Current().Get()
			assert.Equal(t, tt.want, route)
		})
	}
}

func TestNavigate_ChecksEveryAttempt(t *testing.T) {
	checker := &fakeChecker{ok: true}
	r := testRouter(t, checker)

	r.Navigate(context.Background(), RouteHome)
	checker.ok = false
	got := r.Navigate(context.Background(), RouteOrderHistory)

	assert.Equal(t, RouteLogin, got, "no cached verdict")
	assert.Equal(t, 2, checker.calls)
}

func TestShowNavbar(t *testing.T) {
	assert.True(t, ShowNavbar(RouteHome))
	assert.True(t, ShowNavbar(RouteOrderHistory))
	assert.False(t, ShowNavbar(RouteLogin))
	assert.False(t, ShowNavbar(RouteRegister))
	assert.False(t, ShowNavbar(RouteForgotPassword))
	assert.False(t, ShowNavbar(RouteResetPassword))
}
