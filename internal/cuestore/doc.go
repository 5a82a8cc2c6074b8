// Package cuestore persists parsed subtitle chunks in SQLite so decode
// sessions can be inspected after the fact.
//
// A Store opened for writing holds an advisory file lock next to the
// database; a second writer gets ErrLocked. Readers open without the lock.
// Store.Sink adapts a store to session.Sink.
package cuestore
