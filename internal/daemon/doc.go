// Package daemon coordinates the long-running hitqueue process.
//
// It wires configuration, the durable queue store, the HTTP hit processor, the
// delivery scheduler and metrics into a single lifecycle. Start applies the
// configured privacy status and brings up the HTTP API; Stop suspends
// delivery; Close releases the store and its file lock.
//
// Keep orchestration logic here: delivery rules live in scheduler and hit
// while the daemon focuses on startup, shutdown and the control surface shared
// by the HTTP API and IPC.
package daemon
