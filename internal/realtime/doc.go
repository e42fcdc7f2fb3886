// Corkboard - Collaborative Kanban Board Server
// Copyright 2026 Corkboard contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/corkboard/corkboard

/*
Package realtime implements Corkboard's WebSocket fan-out layer.

Three pieces cooperate:

  - Registry: the concurrent map of open connections, indexed by
    connection id and by the single board each connection is scoped to.
  - Client: one WebSocket connection with the usual gorilla read/write
    pump pair, a bounded outbound queue, and ping/pong keepalive.
  - Hub: the coordinator. It owns the Registry and the advisory lock
    table, serializes register/unregister/broadcast through one run
    loop, dispatches inbound lock.request / lock.release messages, and
    releases a user's locks when their connection drops.

REST handlers call Hub.BroadcastToBoard after every successful board
mutation; only connections registered for that board receive the event.
The hub is supervised: RunWithContext returns when the parent context is
canceled, after closing every client.
*/
package realtime
