package main

import (
	"context"

	"github.com/go-faster/sdk/app"
	"go.uber.org/zap"

	"github.com/mikawa/storefront/internal/stubapi"
)

func main() {
	app.Run(func(ctx context.Context, lg *zap.Logger, m *app.Telemetry) error {
		cfg, err := stubapi.LoadConfig()
		if err != nil {
			return err
		}
		return stubapi.Run(ctx, lg, m, cfg)
	})
}
