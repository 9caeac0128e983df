// Package registry implements the Broker: the only shared mutable
// state in the bridge. It owns the live set of plugin connections per
// realm and the set of admin connections, and performs fan-out with
// opportunistic pruning of dead peers.
package registry
