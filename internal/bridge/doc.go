// Package bridge implements the realtime relay core.
//
// The bridge multiplexes two classes of long-lived WebSocket clients:
// plugin connections (one or more per game-server realm) and
// operator/admin connections. Every socket passes through
// authentication, a bounded first-frame role classification, and
// registration in the Broker before entering its steady-state loop,
// where inbound frames are rate limited and then routed (admin role)
// or broadcast (plugin role). Close codes: 4401 unauthorized,
// 4404 unknown path, 4412 rate limited.
package bridge
