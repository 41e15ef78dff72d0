// Package cli is the interactive medisync client.
//
// NewApp wires configuration, the local SQLite database, the encrypted
// credential store, the refreshing HTTP transport and the state store.
// App.Run restores a stored session and then reads one command per line
// until the user exits. Each command calls the store and renders the
// resulting snapshot as a table.
package cli
