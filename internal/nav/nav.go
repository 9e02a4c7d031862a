// Package nav holds the route table and the auth guard that protects the
// signed-in views.
package nav

import (
	"context"
	"strings"
	"sync"

	"github.com/mikawa/storefront/internal/actionlog"
	"github.com/mikawa/storefront/pkg/pubsub"
)

// Known routes. The empty path and any unknown path resolve to RouteLogin.
const (
	RouteLogin          = "/login"
	RouteHome           = "/home"
	RouteRegister       = "/register"
	RouteForgotPassword = "/forgot-password"
	RouteResetPassword  = "/reset-password"
	RouteOrderHistory   = "/order-history"
)

// protected routes require a live session.
var protected = map[string]bool{
	RouteHome:         true,
	RouteOrderHistory: true,
}

// noNavbarRoutes are the auth views, rendered without the navbar.
var noNavbarRoutes = []string{
	RouteLogin,
	RouteRegister,
	RouteForgotPassword,
	RouteResetPassword,
}

// AuthChecker reports whether a session exists right now. nav asks on every
// guarded navigation instead of trusting a cached flag.
type AuthChecker interface {
	IsAuthenticatedNow(ctx context.Context) (bool, error)
}

// Guard serializes authentication checks so two concurrent navigations
// cannot interleave a check with a sign-out in between.
type Guard struct {
	mu      sync.Mutex
	checker AuthChecker
}

func NewGuard(checker AuthChecker) *Guard {
	return &Guard{checker: checker}
}

// Allow runs a fresh authentication check. Both a negative answer and a
// check failure deny access.
func (g *Guard) Allow(ctx context.Context) bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	ok, err := g.checker.IsAuthenticatedNow(ctx)
	if err != nil {
		return false
	}
	return ok
}

// Router resolves navigation targets against the route table and exposes
// the current route as a replayed stream.
type Router struct {
	guard   *Guard
	log     *actionlog.Logger
	current *pubsub.Subject[string]
}

func NewRouter(guard *Guard, log *actionlog.Logger) *Router {
	r := &Router{
		guard:   guard,
		log:     log,
		current: pubsub.NewSubject[string](),
	}
	r.current.Set(RouteLogin)
	return r
}

// Current returns the route stream. It always holds a value, starting at
// the login view.
func (r *Router) Current() *pubsub.Subject[string] {
	return r.current
}

// Navigate resolves target and moves to it, or to the login view when the
// target is unknown or the guard denies it. It returns the route actually
// landed on.
func (r *Router) Navigate(ctx context.Context, target string) string {
	route := resolve(target)
	if protected[route] && !r.guard.Allow(ctx) {
		route = RouteLogin
	}
	r.current.Set(route)
	r.log.Action("page_navigation", actionlog.Details{
		"url":        route,
		"showNavbar": ShowNavbar(route),
	})
	return route
}

// ShowNavbar reports whether the navbar is rendered on the given route.
// The auth views hide it.
func ShowNavbar(route string) bool {
	for _, p := range noNavbarRoutes {
		if strings.HasPrefix(route, p) {
			return false
		}
	}
	return true
}

// resolve strips query and fragment and maps unknown paths to the login
// view.
func resolve(target string) string {
	path := target
	if i := strings.IndexByte(path, '?'); i >= 0 {
		path = path[:i]
	}
	if i := strings.IndexByte(path, '#'); i >= 0 {
		path = path[:i]
	}
	switch path {
	case RouteLogin, RouteHome, RouteRegister,
		RouteForgotPassword, RouteResetPassword, RouteOrderHistory:
		return path
	default:
		return RouteLogin
	}
}
