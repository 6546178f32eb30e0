package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"ardelivero-storefront/config"
	"ardelivero-storefront/logging"
	"ardelivero-storefront/storefront/internal/app"
	"ardelivero-storefront/storefront/internal/cli"
)

func newApp(ctx context.Context, configFile string) (*app.App, error) {
	cfg, err := config.Load(configFile)
	if err != nil {
		return nil, err
	}
	logger := logging.New("storefront", cfg.Logging.Level)
	return app.New(ctx, cfg, logger, app.Options{})
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := cli.NewRootCommand(newApp).ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}
