// Package cli provides the eportfolio command-line client.
//
// One-shot commands (list, create, edit, delete, primary, export, publish ...)
// and an interactive shell share the same App: configuration, the local SQLite
// store, the CV service and the exporter. Every mutation prints either a
// success line or the reason it failed; a failed sync never loses the local
// change and can be retried with resync.
package cli
