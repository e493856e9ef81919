// Package main implements the hitqueue command-line client.
//
// The CLI talks to a running hitqueued over its Unix control socket using the
// JSON-RPC client from internal/ipc. Commands cover status, manual enqueue,
// queue inspection and clearing, suspend/resume, privacy consent changes and
// configuration scaffolding. Most commands accept --json for scripting.
package main
