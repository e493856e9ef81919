// Package ipc exposes the daemon over JSON-RPC on a Unix socket and ships the
// matching client used by the CLI.
//
// It owns socket lifecycle management and the request/response DTOs. Every
// request carries a correlation id so daemon log lines can be matched to the
// CLI invocation that caused them.
package ipc
