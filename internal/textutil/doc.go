// Package textutil provides small string helpers for turning user-supplied
// names into safe filesystem segments.
//
// Queue names from configuration and the CLI flow through SanitizeToken
// before they become database file names, so two spellings of the same name
// ("Hits", " hits ") address the same persisted queue.
package textutil
