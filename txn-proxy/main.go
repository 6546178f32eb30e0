package main

import (
	"context"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"ardelivero-storefront/config"
	"ardelivero-storefront/logging"
	"ardelivero-storefront/txn-proxy/internal/proxy"
)

func main() {
	configFile := flag.String("config", "", "path to a config file")
	flag.Parse()

	cfg, err := config.Load(*configFile)
	if err != nil {
		log.Fatal("Failed to load config:", err)
	}

	logger := logging.New("txn-proxy", cfg.Logging.Level)

	p := proxy.NewProxy(proxy.Config{
		StatusURL: cfg.Gateway.StatusURL,
		SecretKey: cfg.Gateway.SecretKey,
	}, &http.Client{}, logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger.Info("transaction proxy starting", "addr", cfg.Proxy.Addr, "gateway", cfg.Gateway.StatusURL)
	if err := proxy.NewServer(cfg.Proxy.Addr, p.SetupRoutes()).Run(ctx); err != nil {
		logger.Error("server stopped", "error", err)
		os.Exit(1)
	}
	logger.Info("transaction proxy stopped")
}
