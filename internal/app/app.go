// Package app wires the storefront client together and runs the
// interactive shell.
package app

import (
	"context"
	"net/http"
	"os"

	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/app"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/mikawa/storefront/internal/actionlog"
	"github.com/mikawa/storefront/internal/cart"
	"github.com/mikawa/storefront/internal/catalog"
	"github.com/mikawa/storefront/internal/gateway"
	"github.com/mikawa/storefront/internal/gotrue"
	"github.com/mikawa/storefront/internal/nav"
	"github.com/mikawa/storefront/internal/session"
	"github.com/mikawa/storefront/internal/view"
)

// Run builds the object graph and runs the shell until ctx is cancelled or
// the user quits. It is the single wiring point for the client.
func Run(ctx context.Context, lg *zap.Logger, m *app.Telemetry, cfg *Config) error {
	lg.Info("Initializing", zap.String("api", cfg.APIBaseURL), zap.String("auth", cfg.Auth.URL))

	httpClient := &http.Client{
		Timeout: cfg.HTTPTimeout,
		Transport: otelhttp.NewTransport(http.DefaultTransport,
			otelhttp.WithTracerProvider(m.TracerProvider()),
			otelhttp.WithMeterProvider(m.MeterProvider()),
		),
	}

	actions := actionlog.New(lg.Named("actionlog"), httpClient, actionlog.Config{
		BaseURL: cfg.APIBaseURL,
		Actions: actionlog.StreamConfig{
			Enabled: cfg.Logging.ActionsConsole || cfg.Logging.ActionsServer,
			Console: cfg.Logging.ActionsConsole,
			Server:  cfg.Logging.ActionsServer,
		},
		Errors: actionlog.StreamConfig{
			Enabled: cfg.Logging.ErrorsConsole || cfg.Logging.ErrorsServer,
			Console: cfg.Logging.ErrorsConsole,
			Server:  cfg.Logging.ErrorsServer,
		},
		QueueSize: cfg.Logging.QueueSize,
	})

	provider := gotrue.NewClient(gotrue.Config{
		BaseURL:           cfg.Auth.URL,
		AnonKey:           cfg.Auth.AnonKey,
		SignUpRedirectURL: cfg.Auth.SignUpRedirectURL,
		ResetRedirectURL:  cfg.Auth.ResetRedirectURL,
	}, httpClient)
	store := session.NewStore(provider, actions)

	gw := gateway.NewClient(cfg.APIBaseURL, httpClient)

	cat, err := catalog.Load()
	if err != nil {
		return errors.Wrap(err, "load catalog")
	}

	console := newConsole(os.Stdout)
	orch := cart.New(gw, store, actions, console)
	router := nav.NewRouter(nav.NewGuard(store), actions)

	shell := &Shell{
		out:     os.Stdout,
		in:      os.Stdin,
		actions: actions,
		store:   store,
		router:  router,
		cart:    orch,
		auth:    view.NewAuthViews(store, router, console),
		home:    view.NewHomeView(cat, orch),
		history: view.NewHistoryView(gw, store),
	}

	// The identity stream drives log attribution and the best-effort
	// member-status fetch, exactly once per identity change.
	unsubscribe := store.UserID().Subscribe(func(userID string) {
		actions.SetUserID(userID)
		if userID != "" {
			go orch.RefreshMemberStatus(ctx, userID)
		}
	})
	defer unsubscribe()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return actions.Run(ctx)
	})
	g.Go(func() error {
		// Quitting the shell stops the log worker too.
		defer cancel()
		defer lg.Info("Shell stopped")
		return shell.Run(ctx)
	})
	return g.Wait()
}
