// Package storage provides audit.Storage backends: an in-memory store for
// tests and short-lived runs, and a SQLite store for persistent audit trails.
package storage
