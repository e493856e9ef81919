// Package preflight provides readiness checks for the filesystem paths and
// collector endpoint hitqueue depends on.
//
// These checks run in two contexts:
//   - The daemon runs RunAll once at start and logs every failed check as a
//     warning. Failures never block startup; hits are still queued durably.
//   - The CLI "hitqueue preflight" command runs the same checks locally
//     against the loaded config, without a running daemon.
package preflight
