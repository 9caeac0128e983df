// Package protocol defines the JSON envelope exchanged over the bridge
// and the normalization of admin requests into canonical commands.
//
// Envelopes are free-form JSON objects with a flat dot-separated "type"
// taxonomy (console.exec, server.stats, lp.user.perm.add, ...). Legacy
// producers place fields at the top level instead of under "payload",
// and "realm" may appear in either position; accessors tolerate both.
package protocol
