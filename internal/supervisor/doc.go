// Homestock - Household Inventory Tracker
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/homestock

/*
Package supervisor runs the long-lived Homestock services under a suture v4
tree with restart, backoff and graceful shutdown.

The tree has three layers so that a crash in one does not take down the
others:

	RootSupervisor ("homestock")
	├── DataSupervisor ("data-layer")
	│   ├── EmbeddedNATSService (if NATS_EMBEDDED)
	│   └── SessionService
	├── MessagingSupervisor ("messaging-layer")
	│   └── WebSocketHubService
	└── APISupervisor ("api-layer")
	    └── HTTPServerService

Supervisor events are logged through sutureslog into the zerolog-backed
slog handler from the logging package.

Usage:

	tree, err := supervisor.NewSupervisorTree(logging.NewSlogLogger(), supervisor.DefaultTreeConfig())
	if err != nil {
	    return err
	}
	tree.AddDataService(services.NewSessionService(provider, svc.NotifySignInFailed))
	tree.AddMessagingService(services.NewWebSocketHubService(hub))
	tree.AddAPIService(services.NewHTTPServerService(server, 10*time.Second))
	return tree.Serve(ctx)
*/
package supervisor
