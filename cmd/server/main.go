// Homestock - Household Inventory Tracker
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/homestock

package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/tomtom215/homestock/internal/api"
	"github.com/tomtom215/homestock/internal/config"
	"github.com/tomtom215/homestock/internal/export"
	"github.com/tomtom215/homestock/internal/imaging"
	"github.com/tomtom215/homestock/internal/inventory"
	"github.com/tomtom215/homestock/internal/logging"
	"github.com/tomtom215/homestock/internal/session"
	"github.com/tomtom215/homestock/internal/store"
	"github.com/tomtom215/homestock/internal/supervisor"
	"github.com/tomtom215/homestock/internal/supervisor/services"
	ws "github.com/tomtom215/homestock/internal/websocket"
)

func main() {
	cfg, err := config.LoadWithKoanf()
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to load configuration")
	}

	logging.Init(logging.Config{
		Level:     cfg.Logging.Level,
		Format:    cfg.Logging.Format,
		Caller:    cfg.Logging.Caller,
		Timestamp: true,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg); err != nil {
		logging.Fatal().Err(err).Msg("Homestock stopped with error")
	}
	logging.Info().Msg("Homestock stopped")
}

//nolint:gocyclo // sequential wiring
func run(ctx context.Context, cfg *config.Config) error {
	logging.Info().
		Str("store_driver", cfg.Store.Driver).
		Str("export_sink", cfg.Export.Sink).
		Str("environment", cfg.Server.Environment).
		Msg("Starting Homestock")

	tree, err := supervisor.NewSupervisorTree(logging.NewSlogLogger(), supervisor.TreeConfigFrom(cfg))
	if err != nil {
		return fmt.Errorf("create supervisor tree: %w", err)
	}

	var natsURL string
	if cfg.Store.Driver == config.StoreDriverNATS && cfg.NATS.EmbeddedServer {
		embedded, err := store.NewEmbeddedServer(store.EmbeddedServerConfig{
			Host:      cfg.NATS.Host,
			Port:      cfg.NATS.Port,
			StoreDir:  cfg.NATS.StoreDir,
			MaxMemory: cfg.NATS.MaxMemory,
			MaxStore:  cfg.NATS.MaxStore,
			Quiet:     true,
		})
		if err != nil {
			return fmt.Errorf("start embedded NATS: %w", err)
		}
		natsURL = embedded.ClientURL()
		tree.AddDataService(services.NewEmbeddedNATSService(embedded, cfg.Server.ShutdownTimeout))
		logging.Info().Str("url", natsURL).Msg("Embedded NATS server started")
	}

	st, err := store.Open(ctx, cfg, natsURL)
	if err != nil {
		return fmt.Errorf("open record store: %w", err)
	}
	defer func() {
		logging.Err(st.Close()).Msg("Record store closed")
	}()

	tokens, err := session.NewTokenManager(&cfg.Security)
	if err != nil {
		return fmt.Errorf("create token manager: %w", err)
	}
	sessions := session.NewProvider(tokens)

	hub := ws.NewHub(ws.HubConfig{
		MessagesPerSecond: cfg.Security.WSMessagesPerSecond,
		Burst:             cfg.Security.WSBurst,
	})

	svc := inventory.NewService(ctx, inventory.Options{
		Store:         st,
		Identity:      sessions,
		CollectionFor: cfg.Store.CollectionPath,
		Presenter:     hub,
		Photos:        imaging.New(cfg.Imaging),
		WriteTimeout:  cfg.Store.OperationTimeout,
	})
	unregister := sessions.OnIdentityChange(svc.Lifecycle().HandleIdentity)
	defer unregister()

	sink, err := export.NewSink(ctx, cfg.Export)
	if err != nil && !errors.Is(err, export.ErrNoSink) {
		return fmt.Errorf("create export sink: %w", err)
	}
	if sink != nil {
		logging.Info().Str("sink", sink.Name()).Msg("Export sink configured")
	}

	ready := map[string]api.ReadinessCheck{
		"session":      func() bool { return sessions.Current() != nil },
		"subscription": svc.Lifecycle().Subscribed,
	}
	if h, ok := st.Unwrap().(interface{ Healthy() bool }); ok {
		ready["store"] = h.Healthy
	}

	handler := api.NewHandler(api.HandlerDeps{
		Config:   cfg,
		Service:  svc,
		Sessions: sessions,
		Hub:      hub,
		Sink:     sink,
		Ready:    ready,
	})
	router := api.NewRouter(handler, api.NewChiMiddleware(api.ChiMiddlewareConfigFrom(&cfg.Security)))

	server := &http.Server{
		Addr:              net.JoinHostPort(cfg.Server.Host, strconv.Itoa(cfg.Server.Port)),
		Handler:           router.Setup(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       cfg.Server.Timeout,
		IdleTimeout:       60 * time.Second,
		// No WriteTimeout: WebSocket connections are long-lived.
	}

	tree.AddDataService(services.NewSessionService(sessions, func(err error) { svc.NotifySignInFailed(err) }))
	tree.AddMessagingService(services.NewWebSocketHubService(hub))
	tree.AddAPIService(services.NewHTTPServerService(server, cfg.Server.ShutdownTimeout))

	err = tree.Serve(ctx)
	if report, rerr := tree.UnstoppedServiceReport(); rerr == nil && len(report) > 0 {
		for _, u := range report {
			logging.Warn().Str("service", u.Name).Msg("Service did not stop within the shutdown timeout")
		}
	}
	svc.Lifecycle().Unsubscribe()

	if err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}
