// Package storage provides the local key/value store the desktop state and
// settings are mirrored to.
//
// Two implementations share the KV interface:
//   - SQLite: a single itemTable in a modernc.org/sqlite database file
//   - Memory: a map, used by tests and by `--db :memory:`
package storage
