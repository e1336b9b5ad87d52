// Package cli implements the voicevault command-line front end. Each command
// opens the configured store and blob backend, runs one operation against
// the services layer and prints a short status line.
package cli
