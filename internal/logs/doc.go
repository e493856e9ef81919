// Package logs reads the daemon log file for the CLI.
//
// Last returns the final N lines with bounded memory, ReadFrom returns the
// complete lines written after a byte offset, and Follow polls for new lines
// until its context ends. Only newline-terminated lines are returned so a
// half-written entry is picked up whole on the next read.
package logs
