// Homestock - Household Inventory Tracker
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/homestock

/*
Package websocket pushes inventory views and notices to browsers.

The Hub is the inventory Presenter. Each connected Client keeps its own
filter criteria, so a push renders one view per client. Clients change
their criteria with a "filter" message and get a fresh view back.

Architecture:

	inventory.Lifecycle --Render--> Hub --inventory_view--> Client1..N
	inventory.Service   --Notify--> Hub --notice---------->
	sign-out            --Clear---> Hub --cleared--------->

Each client has two goroutines:
  - readPump: reads ping and filter messages, rate limited per client
  - writePump: writes queued messages and keepalive pings

All client state (criteria, membership) is owned by the hub goroutine;
the pumps talk to it over channels.

Server messages:

  - inventory_view: inventory.View for the client's criteria
  - notice: inventory.Notice
  - cleared: the session ended; drop everything shown
  - pong: reply to ping

Client messages:

  - ping
  - filter: {"search": "...", "room": "...", "container": "...", "category": "..."}
*/
package websocket
