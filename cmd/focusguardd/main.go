package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"focusguard/internal/account"
	"focusguard/internal/api"
	"focusguard/internal/config"
	"focusguard/internal/logger"
	"focusguard/internal/session"
	"focusguard/internal/store"
)

func main() {
	var (
		cfgPath = flag.String("config", "config/config.yaml", "Path to configuration file")
		listen  = flag.String("listen", "", "Listen address override (host:port)")
	)
	flag.Parse()

	cfg := config.Init(*cfgPath)
	if err := logger.Init(cfg.LogPath); err != nil {
		logger.Errorf("Cannot open log file, logging to stdout: %v", err)
	}

	storage, err := store.OpenSQLite(cfg.DBPath)
	if err != nil {
		logger.Errorf("Cannot open local database: %v", err)
		os.Exit(1)
	}

	tokens := account.NewTokenStore(config.TokenFilePath())
	if tok := tokens.Load(); tok != "" {
		logger.Info("Restored account session from token file")
	}
	client := account.NewClient(cfg.AccountBaseURL, tokens)
	pro := account.NewProCache(client, account.DefaultProTTL)

	st := store.New(storage, client)
	ctrl := session.New(session.Options{
		Store:           st,
		Account:         client,
		Pro:             pro,
		Notifier:        logNotifier{},
		Redirector:      logRedirector{},
		BlockPageURL:    cfg.BlockPageURL,
		AppVersion:      cfg.AppVersion,
		FreeSiteLimit:   cfg.FreeSiteLimit,
		FreePresetLimit: cfg.FreePresetLimit,
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go ctrl.Run(ctx)

	addr := cfg.ListenAddr
	if *listen != "" {
		addr = *listen
	}
	srv := &http.Server{Addr: addr, Handler: api.NewServer(ctrl).Handler()}
	go func() {
		logger.Infof("Listening on %s", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Errorf("HTTP server stopped: %v", err)
			cancel()
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	select {
	case <-sigChan:
		logger.Info("Shutdown signal received, exiting...")
	case <-ctx.Done():
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	_ = srv.Shutdown(shutdownCtx)
}

// logNotifier is the default notification collaborator: the browser companion
// renders real notifications, the daemon just records them.
type logNotifier struct{}

func (logNotifier) Notify(title, message string) error {
	logger.Infof("%s: %s", title, message)
	return nil
}

// logRedirector records redirect requests; the actual tab navigation happens
// in the companion from the decision payload.
type logRedirector struct{}

func (logRedirector) Redirect(tabID int, target string) error {
	logger.Infof("Redirect tab %d -> %s", tabID, target)
	return nil
}
